package submission

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

// ServerError is the decoded body of a non-2xx response.
type ServerError struct {
	// Message is the display message reported by the server, if any.
	Message string
	// Fields maps field names of the definition to their messages.
	Fields map[string][]string
	// Form collects messages that could not be attributed to a field.
	Form []string
}

type serverErrorBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

// DecodeServerError parses a failure body. It reports false when the body is
// not a JSON object; a well-formed object without a message yields an empty
// Message.
func DecodeServerError(def model.FormDefinition, body []byte) (ServerError, bool) {
	var decoded serverErrorBody
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ServerError{}, false
	}

	out := ServerError{Message: strings.TrimSpace(decoded.Message)}
	payload := decodeErrorPayload(decoded.Errors)
	if len(payload) == 0 {
		return out, true
	}
	mapping := MapErrorPayload(def, payload)
	out.Fields = mapping.Fields
	out.Form = mapping.Form
	return out, true
}

// decodeErrorPayload accepts {"field": ["a","b"]}, {"field": "a"} and
// [{"field": "x", "message": "a"}] shapes.
func decodeErrorPayload(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err == nil {
		out := make(map[string][]string, len(generic))
		for key, value := range generic {
			switch typed := value.(type) {
			case string:
				out[key] = append(out[key], typed)
			case []any:
				for _, item := range typed {
					if s, ok := item.(string); ok {
						out[key] = append(out[key], s)
					}
				}
			}
		}
		return out
	}

	var list []struct {
		Field   string `json:"field"`
		Path    string `json:"path"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make(map[string][]string, len(list))
		for _, item := range list {
			key := item.Field
			if key == "" {
				key = item.Path
			}
			out[key] = append(out[key], item.Message)
		}
		return out
	}
	return nil
}

// ErrorMapping splits a server error payload into field-level and form-level
// messages keyed by the field names of a definition.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrorPayload normalises server error payloads (including JSON pointer
// and dotted paths wrapped in body/data envelopes) into field names. Unknown
// paths are treated as form-level errors so messages are not lost.
func MapErrorPayload(def model.FormDefinition, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	names := make(map[string]struct{}, len(def.Fields))
	for _, field := range def.Fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			names[name] = struct{}{}
		}
	}

	for _, rawPath := range slices.Sorted(maps.Keys(payload)) {
		normalized := normalizeMessages(payload[rawPath])
		if len(normalized) == 0 {
			continue
		}
		name, ok := mapErrorPath(rawPath, names)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func mapErrorPath(raw string, names map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", false
	}
	if _, ok := names[trimmed]; ok {
		return trimmed, true
	}

	segments := stripNumericSegments(dropWrapperSegments(parsePathSegments(trimmed)))
	if len(segments) == 0 {
		return "", false
	}
	if joined := strings.Join(segments, "."); joined != "" {
		if _, ok := names[joined]; ok {
			return joined, true
		}
	}
	if _, ok := names[segments[0]]; ok {
		return segments[0], true
	}
	return "", false
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$.")
	clean = strings.TrimLeft(clean, "#/.$")

	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":       {},
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
		"properties": {},
	}
	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
