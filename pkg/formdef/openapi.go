package formdef

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Vendor extensions read from request body schemas and their properties.
const (
	ExtCategory    = "x-formflow-category"
	ExtKeepVisible = "x-formflow-keep-visible"
	ExtSubmitLabel = "x-formflow-submit-label"
	ExtControl     = "x-formflow-control"
	ExtOrder       = "x-formflow-order"
	ExtPlaceholder = "x-formflow-placeholder"
	ExtValidate    = "x-formflow-validate"
	ExtMatch       = "x-match"
	ExtEndpoint    = "x-endpoint"
)

// OpenAPIOptions tunes FromOpenAPI.
type OpenAPIOptions struct {
	// AllowExternalRefs lets the loader follow $refs outside the document.
	AllowExternalRefs bool
	// SkipValidation disables document validation before conversion.
	SkipValidation bool
	// Operations restricts conversion to the listed operation ids.
	Operations []string
}

// OpenAPIOption mutates OpenAPIOptions.
type OpenAPIOption func(*OpenAPIOptions)

// WithExternalRefs toggles external reference resolution.
func WithExternalRefs(enabled bool) OpenAPIOption {
	return func(o *OpenAPIOptions) { o.AllowExternalRefs = enabled }
}

// WithoutValidation skips document validation.
func WithoutValidation() OpenAPIOption {
	return func(o *OpenAPIOptions) { o.SkipValidation = true }
}

// WithOperations limits conversion to ids.
func WithOperations(ids ...string) OpenAPIOption {
	return func(o *OpenAPIOptions) { o.Operations = append(o.Operations, ids...) }
}

// LoadOpenAPIFile reads an OpenAPI document from path and converts it.
func LoadOpenAPIFile(ctx context.Context, path string, options ...OpenAPIOption) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formdef: read %s: %w", path, err)
	}
	return FromOpenAPI(ctx, data, options...)
}

// FromOpenAPI converts every POST, PUT and PATCH operation with an object
// request body into a form definition. The operation id (or "method:path")
// becomes the form id and the operation path its endpoint, unless the
// x-endpoint extension names one.
func FromOpenAPI(ctx context.Context, data []byte, options ...OpenAPIOption) (*Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("formdef: openapi document is empty")
	}
	var opts OpenAPIOptions
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = opts.AllowExternalRefs

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("formdef: load openapi: %w", err)
	}
	if !opts.SkipValidation {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("formdef: validate openapi: %w", err)
		}
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("formdef: openapi document does not contain any paths")
	}

	wanted := make(map[string]struct{}, len(opts.Operations))
	for _, id := range opts.Operations {
		wanted[id] = struct{}{}
	}

	paths := make([]string, 0, doc.Paths.Len())
	for path := range doc.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var forms []model.FormDefinition
	for _, path := range paths {
		item := doc.Paths.Value(path)
		if item == nil {
			continue
		}
		for _, entry := range []struct {
			method string
			op     *openapi3.Operation
		}{
			{"post", item.Post},
			{"put", item.Put},
			{"patch", item.Patch},
		} {
			def, ok := formFromOperation(entry.method, path, entry.op)
			if !ok {
				continue
			}
			if len(wanted) > 0 {
				if _, keep := wanted[def.ID]; !keep {
					continue
				}
			}
			forms = append(forms, def)
		}
	}
	if len(forms) == 0 {
		return nil, errors.New("formdef: no form operations extracted")
	}
	return NewSet(forms...)
}

func formFromOperation(method, path string, op *openapi3.Operation) (model.FormDefinition, bool) {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return model.FormDefinition{}, false
	}
	schema := requestSchema(op.RequestBody.Value.Content)
	if schema == nil || len(schema.Properties) == 0 {
		return model.FormDefinition{}, false
	}

	id := op.OperationID
	if id == "" {
		id = method + ":" + path
	}
	def := model.FormDefinition{
		ID:       id,
		Title:    firstNonEmpty(op.Summary, schema.Title),
		Endpoint: path,
		Category: model.Category(stringExt(schema.Extensions, ExtCategory)),
	}
	if endpoint := firstNonEmpty(stringExt(op.Extensions, ExtEndpoint), stringExt(schema.Extensions, ExtEndpoint)); endpoint != "" {
		def.Endpoint = endpoint
	}
	if keep, ok := schema.Extensions[ExtKeepVisible].(bool); ok {
		def.KeepVisible = keep
	}
	def.SubmitLabel = stringExt(schema.Extensions, ExtSubmitLabel)

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, oj := order(schema.Properties[names[i]]), order(schema.Properties[names[j]])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
			continue
		}
		_, isRequired := required[name]
		def.Fields = append(def.Fields, fieldFromSchema(name, ref.Value, isRequired))
	}
	return def, len(def.Fields) > 0
}

func requestSchema(content openapi3.Content) *openapi3.Schema {
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func fieldFromSchema(name string, src *openapi3.Schema, required bool) model.Field {
	field := model.Field{
		Name:        name,
		Label:       firstNonEmpty(src.Title, name),
		Placeholder: stringExt(src.Extensions, ExtPlaceholder),
		Required:    required,
		MinLength:   clampLength(src.MinLength),
		Pattern:     src.Pattern,
		Match:       stringExt(src.Extensions, ExtMatch),
		Validate:    stringExt(src.Extensions, ExtValidate),
	}
	if src.MaxLength != nil {
		field.MaxLength = clampLength(*src.MaxLength)
	}

	switch strings.ToLower(src.Format) {
	case "email", "idn-email":
		field.Type = "email"
	case "uri", "url", "iri":
		field.Type = "url"
		field.Validate = model.FormatURL
	case "phone", "tel":
		field.Type = "tel"
		field.Validate = model.FormatPhone
	case "password":
		field.Type = "password"
	case "date", "date-time", "time":
		field.Type = strings.ToLower(src.Format)
	}

	if len(src.Enum) > 0 {
		field.Control = model.ControlSelect
		for _, value := range src.Enum {
			field.Options = append(field.Options, fmt.Sprint(value))
		}
	}
	if control := stringExt(src.Extensions, ExtControl); control != "" {
		field.Control = model.Control(control)
	}
	return field
}

func clampLength(n uint64) int {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

func order(ref *openapi3.SchemaRef) float64 {
	if ref == nil || ref.Value == nil {
		return math.MaxFloat64
	}
	switch v := ref.Value.Extensions[ExtOrder].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return math.MaxFloat64
	}
}

func stringExt(extensions map[string]any, key string) string {
	if value, ok := extensions[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
