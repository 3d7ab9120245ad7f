// Package validation evaluates declared field rules against current values.
//
// Rules run in model.RuleOrder and the first failure wins, so a field surfaces
// at most one message per pass. Empty optional fields are valid without
// consulting any format or length rule. Format rules (email, phone, url and
// custom patterns) use ECMAScript regular expressions so patterns written for
// HTML pattern attributes behave the same here.
package validation
