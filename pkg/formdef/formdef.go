// Package formdef loads form definitions from YAML, TOML and JSON(C) files
// and from OpenAPI request bodies, and checks them for consistency.
package formdef

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formflow/internal/codec"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// ErrInvalidDefinition wraps every consistency failure reported by Validate.
var ErrInvalidDefinition = errors.New("formdef: invalid definition")

// ErrNotFound is returned by Set.Lookup for unknown identifiers.
var ErrNotFound = errors.New("formdef: form not found")

// Document is the file layout: a list of forms under "forms". A file that
// holds a single form at the top level is accepted too.
type Document struct {
	Forms []model.FormDefinition `json:"forms" yaml:"forms" toml:"forms"`
}

// Set is an ordered collection of validated definitions.
type Set struct {
	forms []model.FormDefinition
}

// NewSet validates defs and rejects duplicate identifiers.
func NewSet(defs ...model.FormDefinition) (*Set, error) {
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if err := Validate(def); err != nil {
			return nil, err
		}
		if _, ok := seen[def.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate form id %q", ErrInvalidDefinition, def.ID)
		}
		seen[def.ID] = struct{}{}
	}
	return &Set{forms: append([]model.FormDefinition(nil), defs...)}, nil
}

// Forms returns the definitions in declaration order.
func (s *Set) Forms() []model.FormDefinition {
	if s == nil {
		return nil
	}
	return append([]model.FormDefinition(nil), s.forms...)
}

// IDs returns the form identifiers in declaration order.
func (s *Set) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for _, def := range s.forms {
		ids = append(ids, def.ID)
	}
	return ids
}

// Lookup returns the definition with id.
func (s *Set) Lookup(id string) (model.FormDefinition, error) {
	if s != nil {
		for _, def := range s.forms {
			if def.ID == id {
				return def, nil
			}
		}
	}
	return model.FormDefinition{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// Parse decodes definitions in the format named by ext.
func Parse(ext string, data []byte) (*Set, error) {
	var doc Document
	if err := codec.Decode(ext, data, &doc); err != nil {
		return nil, fmt.Errorf("formdef: %w", err)
	}
	if len(doc.Forms) == 0 {
		var single model.FormDefinition
		if err := codec.Decode(ext, data, &single); err != nil {
			return nil, fmt.Errorf("formdef: %w", err)
		}
		if single.ID == "" && len(single.Fields) == 0 {
			return nil, fmt.Errorf("%w: document declares no forms", ErrInvalidDefinition)
		}
		doc.Forms = []model.FormDefinition{single}
	}
	return NewSet(doc.Forms...)
}

// LoadFile reads definitions from path.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formdef: read %s: %w", path, err)
	}
	set, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// LoadFS reads definitions from name inside fsys.
func LoadFS(fsys fs.FS, name string) (*Set, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("formdef: read %s: %w", name, err)
	}
	set, err := Parse(filepath.Ext(name), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return set, nil
}

// Validate checks def: an id, unique non-empty field names, match targets
// that exist, coherent length bounds, compilable patterns and known
// controls, rule kinds and categories.
func Validate(def model.FormDefinition) error {
	var problems []string
	if strings.TrimSpace(def.ID) == "" {
		problems = append(problems, "id is required")
	}
	if c := strings.TrimSpace(string(def.Category)); c != "" && model.Category(strings.ToLower(c)).Normalize() != model.Category(strings.ToLower(c)) {
		problems = append(problems, fmt.Sprintf("unknown category %q", def.Category))
	}

	names := make(map[string]struct{}, len(def.Fields))
	for i, field := range def.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			problems = append(problems, fmt.Sprintf("fields[%d]: name is required", i))
			continue
		}
		if _, dup := names[name]; dup {
			problems = append(problems, fmt.Sprintf("fields[%d]: duplicate name %q", i, name))
		}
		names[name] = struct{}{}
	}

	for _, field := range def.Fields {
		problems = append(problems, fieldProblems(field, names)...)
	}

	if len(problems) == 0 {
		return nil
	}
	id := def.ID
	if id == "" {
		id = "<unnamed>"
	}
	return fmt.Errorf("%w: form %q: %s", ErrInvalidDefinition, id, strings.Join(problems, "; "))
}

func fieldProblems(field model.Field, names map[string]struct{}) []string {
	var problems []string
	prefix := fmt.Sprintf("field %q: ", field.Name)

	switch field.Control {
	case "", model.ControlInput, model.ControlTextarea, model.ControlSelect:
	default:
		problems = append(problems, prefix+fmt.Sprintf("unknown control %q", field.Control))
	}
	if field.MinLength < 0 || field.MaxLength < 0 {
		problems = append(problems, prefix+"length bounds must not be negative")
	}
	if field.MinLength > 0 && field.MaxLength > 0 && field.MinLength > field.MaxLength {
		problems = append(problems, prefix+fmt.Sprintf("minLength %d exceeds maxLength %d", field.MinLength, field.MaxLength))
	}
	if match := strings.TrimSpace(field.Match); match != "" {
		if match == field.Name {
			problems = append(problems, prefix+"cannot match itself")
		} else if _, ok := names[match]; !ok {
			problems = append(problems, prefix+fmt.Sprintf("match target %q is not declared", match))
		}
	}

	known := make(map[model.RuleKind]struct{}, len(model.RuleOrder))
	for _, kind := range model.RuleOrder {
		known[kind] = struct{}{}
	}
	for _, rule := range field.Extra {
		if _, ok := known[rule.Kind]; !ok {
			problems = append(problems, prefix+fmt.Sprintf("unknown rule %q", rule.Kind))
		}
	}
	for _, rule := range field.Rules() {
		switch rule.Kind {
		case model.RulePattern:
			if err := validation.CheckPattern(rule.Parameter); err != nil {
				problems = append(problems, prefix+err.Error())
			}
		case model.RuleMinLength, model.RuleMaxLength:
			if _, ok := rule.IntParameter(); !ok {
				problems = append(problems, prefix+fmt.Sprintf("%s needs an integer parameter", rule.Kind))
			}
		}
	}
	return problems
}
