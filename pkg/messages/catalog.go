// Package messages holds the user-facing copy of the form pipeline: one error
// template per rule kind, success copy per form category, panel titles and the
// busy label shown while a submission is in flight. Templates may contain
// {placeholders} that Format replaces.
package messages

import (
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Catalog is the message set for one locale. Errors is keyed by rule kind and
// Success by form category.
type Catalog struct {
	Locale       string            `json:"locale" yaml:"locale" toml:"locale"`
	Errors       map[string]string `json:"errors,omitempty" yaml:"errors,omitempty" toml:"errors,omitempty"`
	Success      map[string]string `json:"success,omitempty" yaml:"success,omitempty" toml:"success,omitempty"`
	SuccessTitle string            `json:"successTitle,omitempty" yaml:"successTitle,omitempty" toml:"successTitle,omitempty"`
	ErrorTitle   string            `json:"errorTitle,omitempty" yaml:"errorTitle,omitempty" toml:"errorTitle,omitempty"`
	GenericError string            `json:"genericError,omitempty" yaml:"genericError,omitempty" toml:"genericError,omitempty"`
	BusyLabel    string            `json:"busyLabel,omitempty" yaml:"busyLabel,omitempty" toml:"busyLabel,omitempty"`
	SubmitLabel  string            `json:"submitLabel,omitempty" yaml:"submitLabel,omitempty" toml:"submitLabel,omitempty"`
	CloseLabel   string            `json:"closeLabel,omitempty" yaml:"closeLabel,omitempty" toml:"closeLabel,omitempty"`
}

// Error returns the template for a rule kind.
func (c Catalog) Error(kind model.RuleKind) string {
	return c.Errors[string(kind)]
}

// SuccessFor returns the success copy for a category, falling back to the
// contact copy.
func (c Catalog) SuccessFor(category model.Category) string {
	if msg := strings.TrimSpace(c.Success[string(category.Normalize())]); msg != "" {
		return msg
	}
	return c.Success[string(model.CategoryContact)]
}

// WithDefaults returns a copy of c where every empty entry is filled from base.
func (c Catalog) WithDefaults(base Catalog) Catalog {
	out := c
	if strings.TrimSpace(out.Locale) == "" {
		out.Locale = base.Locale
	}
	out.Errors = mergeMap(base.Errors, c.Errors)
	out.Success = mergeMap(base.Success, c.Success)
	out.SuccessTitle = firstNonEmpty(c.SuccessTitle, base.SuccessTitle)
	out.ErrorTitle = firstNonEmpty(c.ErrorTitle, base.ErrorTitle)
	out.GenericError = firstNonEmpty(c.GenericError, base.GenericError)
	out.BusyLabel = firstNonEmpty(c.BusyLabel, base.BusyLabel)
	out.SubmitLabel = firstNonEmpty(c.SubmitLabel, base.SubmitLabel)
	out.CloseLabel = firstNonEmpty(c.CloseLabel, base.CloseLabel)
	return out
}

// Format replaces {key} placeholders in template with params values. Unknown
// placeholders are left untouched.
func Format(template string, params map[string]string) string {
	if template == "" || len(params) == 0 {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for key, value := range params {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func mergeMap(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overlay {
		if strings.TrimSpace(value) == "" {
			continue
		}
		out[strings.TrimSpace(key)] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
