package submission

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Metadata keys injected into every payload. They win over form fields with
// the same name.
const (
	FieldSubmitTime = "submitTime"
	FieldPageURL    = "pageUrl"
)

// isoLayout matches the millisecond UTC timestamps browsers produce.
const isoLayout = "2006-01-02T15:04:05.000Z"

// HiddenField is a value sent with every submission without being a visible
// control. Use the helpers (CSRFToken) for common fields.
type HiddenField struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token. Callers
// supply the input name to match their backend expectations (for example,
// "_csrf" or "csrf_token").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	return out
}

// BuildPayload merges the form values with the hidden fields and the
// submission metadata. Metadata is applied last.
func BuildPayload(values map[string]string, submittedAt time.Time, pageURL string, hidden ...HiddenField) map[string]string {
	fields := make([]HiddenField, 0, len(hidden)+2)
	fields = append(fields, hidden...)
	fields = append(fields,
		HiddenField{Name: FieldSubmitTime, Value: submittedAt.UTC().Format(isoLayout)},
		HiddenField{Name: FieldPageURL, Value: pageURL},
	)
	return MergeHiddenFields(values, fields...)
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// logging and rendering. Empty names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return out
}
