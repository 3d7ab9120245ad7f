// Package model defines the declarative form model shared by the validator,
// the presentation surface and the submission controller. A Field carries the
// constraints a control declares (required flag, input type, length bounds,
// pattern, phone/url format hints and a sibling to match); Field.Rules compiles
// them into the ordered FieldRule list the validator walks with early exit.
// Rule parameters are strings so definitions round-trip through YAML, TOML and
// JSON unchanged.
package model
