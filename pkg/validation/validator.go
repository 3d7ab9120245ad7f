package validation

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/messages"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/view"
)

// Siblings gives access to the values of the other fields of a form.
type Siblings interface {
	Value(name string) (string, bool)
}

// Surface is the presentation state a validation pass mutates. *view.Form
// satisfies it.
type Surface interface {
	Siblings
	ClearFieldError(name string)
	MarkField(name string, marker view.Marker)
	ShowFieldError(name, message string)
}

// Option configures a Validator.
type Option func(*Validator)

// WithCatalog sets the message catalog used for error copy.
func WithCatalog(catalog messages.Catalog) Option {
	return func(v *Validator) {
		v.catalog = catalog.WithDefaults(messages.Default())
	}
}

// WithPatterns overrides the email/phone/url expressions. Empty entries keep
// the defaults.
func WithPatterns(patterns Patterns) Option {
	return func(v *Validator) {
		v.patterns = patterns.withDefaults()
	}
}

// WithMatchTimeout bounds each regular expression evaluation.
func WithMatchTimeout(timeout time.Duration) Option {
	return func(v *Validator) {
		v.timeout = timeout
	}
}

// WithLogger sets the logger used to report unusable patterns.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Validator evaluates field rules. It is immutable after construction and
// safe for concurrent use.
type Validator struct {
	catalog  messages.Catalog
	patterns Patterns
	timeout  time.Duration
	logger   *zap.Logger
	cache    *patternCache
}

// New constructs a Validator with the default catalog and patterns.
func New(options ...Option) *Validator {
	v := &Validator{
		catalog:  messages.Default(),
		patterns: DefaultPatterns(),
		timeout:  DefaultMatchTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}
	v.cache = newPatternCache(v.timeout)
	return v
}

// Evaluate computes the state of field for value without side effects.
func (v *Validator) Evaluate(field model.Field, value string, siblings Siblings) model.FieldState {
	state := model.FieldState{
		Name:  field.Name,
		Value: value,
		Valid: true,
	}

	rules := field.Rules()
	if len(rules) == 0 {
		return state
	}

	byKind := make(map[model.RuleKind]model.FieldRule, len(rules))
	for _, rule := range rules {
		byKind[rule.Kind] = rule
	}

	_, required := byKind[model.RuleRequired]
	if !required && strings.TrimSpace(value) == "" {
		return state
	}

	in := input{field: field, value: value, siblings: siblings}
	for _, entry := range evaluators {
		rule, ok := byKind[entry.kind]
		if !ok {
			continue
		}
		passed, params := entry.eval(v, rule, in)
		if passed {
			continue
		}
		state.Valid = false
		state.Rule = rule.Kind
		state.ErrorMessage = v.message(field, rule, params)
		return state
	}
	return state
}

// ValidateField evaluates field against its current value on surface and
// renders the outcome: prior error state is always cleared first, then the
// field is marked valid or marked error with exactly one message.
func (v *Validator) ValidateField(surface Surface, field model.Field) model.FieldState {
	surface.ClearFieldError(field.Name)

	value, _ := surface.Value(field.Name)
	state := v.Evaluate(field, value, surface)
	if state.Valid {
		surface.MarkField(field.Name, view.MarkerValid)
		return state
	}
	surface.MarkField(field.Name, view.MarkerError)
	surface.ShowFieldError(field.Name, state.ErrorMessage)
	return state
}

// Blur validates a field the way leaving a control does: only when it holds a
// value or is required.
func (v *Validator) Blur(surface Surface, field model.Field) (model.FieldState, bool) {
	value, _ := surface.Value(field.Name)
	if strings.TrimSpace(value) == "" && !field.Required {
		return model.FieldState{Name: field.Name, Value: value, Valid: true}, false
	}
	return v.ValidateField(surface, field), true
}

// FormResult is the outcome of validating every control of a form.
type FormResult struct {
	Valid        bool
	States       []model.FieldState
	FirstInvalid string
}

// Invalid returns the failing states in declaration order.
func (r FormResult) Invalid() []model.FieldState {
	var out []model.FieldState
	for _, state := range r.States {
		if !state.Valid {
			out = append(out, state)
		}
	}
	return out
}

// ValidateForm validates every enabled field in declaration order without
// short-circuiting so all errors are visible at once.
func (v *Validator) ValidateForm(surface Surface, def model.FormDefinition) FormResult {
	result := FormResult{Valid: true}
	for _, field := range def.Fields {
		if field.Disabled || strings.TrimSpace(field.Name) == "" {
			continue
		}
		state := v.ValidateField(surface, field)
		result.States = append(result.States, state)
		if !state.Valid {
			result.Valid = false
			if result.FirstInvalid == "" {
				result.FirstInvalid = field.Name
			}
		}
	}
	return result
}

func (v *Validator) message(field model.Field, rule model.FieldRule, params map[string]string) string {
	template := strings.TrimSpace(rule.Message)
	if template == "" {
		template = v.catalog.Error(rule.Kind)
	}
	label := field.Label
	if label == "" {
		label = field.Name
	}
	values := map[string]string{"field": label}
	for key, value := range params {
		values[key] = value
	}
	return messages.Format(template, values)
}
