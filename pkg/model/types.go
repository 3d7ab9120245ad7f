package model

import (
	"strconv"
	"strings"
)

// RuleKind identifies a single declarative constraint.
type RuleKind string

const (
	RuleRequired     RuleKind = "required"
	RuleEmail        RuleKind = "email"
	RulePhone        RuleKind = "phone"
	RuleURL          RuleKind = "url"
	RuleMinLength    RuleKind = "minLength"
	RuleMaxLength    RuleKind = "maxLength"
	RulePattern      RuleKind = "pattern"
	RuleMatchesField RuleKind = "matchesField"
)

// RuleOrder is the evaluation order used by the validator. The first failing
// rule wins; later rules are not reported.
var RuleOrder = []RuleKind{
	RuleRequired,
	RuleEmail,
	RulePhone,
	RuleURL,
	RuleMinLength,
	RuleMaxLength,
	RulePattern,
	RuleMatchesField,
}

// FieldRule represents a single validation constraint attached to a field.
// Length rules encode their bound in Parameter, pattern rules keep the
// expression source and match rules name the sibling field. Message, when set,
// overrides the catalog template for the rule.
type FieldRule struct {
	Kind      RuleKind `json:"kind" yaml:"kind" toml:"kind"`
	Parameter string   `json:"parameter,omitempty" yaml:"parameter,omitempty" toml:"parameter,omitempty"`
	Message   string   `json:"message,omitempty" yaml:"message,omitempty" toml:"message,omitempty"`
}

// IntParameter parses Parameter as a non-negative integer.
func (r FieldRule) IntParameter() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(r.Parameter))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Control is the kind of form control a field renders as.
type Control string

const (
	ControlInput    Control = "input"
	ControlTextarea Control = "textarea"
	ControlSelect   Control = "select"
)

// Format hints carried by Field.Validate.
const (
	FormatPhone = "phone"
	FormatURL   = "url"
)

// Field models a declared form control.
type Field struct {
	Name           string   `json:"name" yaml:"name" toml:"name"`
	ID             string   `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Control        Control  `json:"control,omitempty" yaml:"control,omitempty" toml:"control,omitempty"`
	Type           string   `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Label          string   `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Placeholder    string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty" toml:"placeholder,omitempty"`
	Options        []string `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	Required       bool     `json:"required,omitempty" yaml:"required,omitempty" toml:"required,omitempty"`
	MinLength      int      `json:"minLength,omitempty" yaml:"minLength,omitempty" toml:"minLength,omitempty"`
	MaxLength      int      `json:"maxLength,omitempty" yaml:"maxLength,omitempty" toml:"maxLength,omitempty"`
	Pattern        string   `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	PatternMessage string   `json:"patternMessage,omitempty" yaml:"patternMessage,omitempty" toml:"patternMessage,omitempty"`
	Validate       string   `json:"validate,omitempty" yaml:"validate,omitempty" toml:"validate,omitempty"`
	Match          string   `json:"match,omitempty" yaml:"match,omitempty" toml:"match,omitempty"`
	Disabled       bool     `json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled,omitempty"`
	// Extra rules appended after the declared ones; they are merged into
	// RuleOrder position by kind.
	Extra []FieldRule `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules,omitempty"`
}

// ControlID returns the element identifier used by renderers.
func (f Field) ControlID() string {
	if id := strings.TrimSpace(f.ID); id != "" {
		return id
	}
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return ""
	}
	return "ff-" + name
}

// Rules compiles the field declaration into rules sorted by RuleOrder. When a
// kind is declared both through attributes and Extra, the Extra entry wins so
// callers can override messages without repeating parameters.
func (f Field) Rules() []FieldRule {
	declared := make(map[RuleKind]FieldRule, len(RuleOrder))
	if f.Required {
		declared[RuleRequired] = FieldRule{Kind: RuleRequired}
	}
	if strings.EqualFold(strings.TrimSpace(f.Type), "email") {
		declared[RuleEmail] = FieldRule{Kind: RuleEmail}
	}
	switch strings.ToLower(strings.TrimSpace(f.Validate)) {
	case FormatPhone:
		declared[RulePhone] = FieldRule{Kind: RulePhone}
	case FormatURL:
		declared[RuleURL] = FieldRule{Kind: RuleURL}
	}
	if f.MinLength > 0 {
		declared[RuleMinLength] = FieldRule{Kind: RuleMinLength, Parameter: strconv.Itoa(f.MinLength)}
	}
	if f.MaxLength > 0 {
		declared[RuleMaxLength] = FieldRule{Kind: RuleMaxLength, Parameter: strconv.Itoa(f.MaxLength)}
	}
	if pattern := f.Pattern; pattern != "" {
		declared[RulePattern] = FieldRule{Kind: RulePattern, Parameter: pattern, Message: f.PatternMessage}
	}
	if match := strings.TrimSpace(f.Match); match != "" {
		declared[RuleMatchesField] = FieldRule{Kind: RuleMatchesField, Parameter: match}
	}

	for _, rule := range f.Extra {
		existing, ok := declared[rule.Kind]
		if ok && rule.Parameter == "" {
			rule.Parameter = existing.Parameter
		}
		declared[rule.Kind] = rule
	}

	out := make([]FieldRule, 0, len(declared))
	for _, kind := range RuleOrder {
		if rule, ok := declared[kind]; ok {
			out = append(out, rule)
		}
	}
	return out
}

// FieldState is the ephemeral result of one validation pass.
type FieldState struct {
	Name         string   `json:"name"`
	Value        string   `json:"value"`
	Valid        bool     `json:"valid"`
	Rule         RuleKind `json:"rule,omitempty"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
}

// Category classifies a form for endpoint and success-copy selection.
type Category string

const (
	CategoryContact     Category = "contact"
	CategoryNewsletter  Category = "newsletter"
	CategoryAppointment Category = "appointment"
)

// Normalize maps unknown or empty categories onto CategoryContact.
func (c Category) Normalize() Category {
	switch Category(strings.ToLower(strings.TrimSpace(string(c)))) {
	case CategoryNewsletter:
		return CategoryNewsletter
	case CategoryAppointment:
		return CategoryAppointment
	default:
		return CategoryContact
	}
}

// FormDefinition is the top-level declaration of a form.
type FormDefinition struct {
	ID          string   `json:"id" yaml:"id" toml:"id"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Category    Category `json:"category,omitempty" yaml:"category,omitempty" toml:"category,omitempty"`
	Endpoint    string   `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
	KeepVisible bool     `json:"keepVisible,omitempty" yaml:"keepVisible,omitempty" toml:"keepVisible,omitempty"`
	SubmitLabel string   `json:"submitLabel,omitempty" yaml:"submitLabel,omitempty" toml:"submitLabel,omitempty"`
	Fields      []Field  `json:"fields" yaml:"fields" toml:"fields"`
}

// Field looks up a field by name.
func (d FormDefinition) Field(name string) (Field, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Status enumerates the submission lifecycle states.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further automatic transition occurs.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}
