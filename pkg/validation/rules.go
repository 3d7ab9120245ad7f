package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/model"
)

// input bundles what an evaluator may inspect.
type input struct {
	field    model.Field
	value    string
	siblings Siblings
}

// evaluator reports whether the rule holds and the placeholder values for its
// message when it does not.
type evaluator func(v *Validator, rule model.FieldRule, in input) (bool, map[string]string)

// evaluators lists the rule evaluators in evaluation order.
var evaluators = []struct {
	kind model.RuleKind
	eval evaluator
}{
	{model.RuleRequired, evalRequired},
	{model.RuleEmail, evalFormat(func(p Patterns) string { return p.Email })},
	{model.RulePhone, evalFormat(func(p Patterns) string { return p.Phone })},
	{model.RuleURL, evalFormat(func(p Patterns) string { return p.URL })},
	{model.RuleMinLength, evalMinLength},
	{model.RuleMaxLength, evalMaxLength},
	{model.RulePattern, evalPattern},
	{model.RuleMatchesField, evalMatch},
}

func evalRequired(_ *Validator, _ model.FieldRule, in input) (bool, map[string]string) {
	return strings.TrimSpace(in.value) != "", nil
}

func evalFormat(expr func(Patterns) string) evaluator {
	return func(v *Validator, rule model.FieldRule, in input) (bool, map[string]string) {
		ok, err := v.cache.test(expr(v.patterns), in.value)
		if err != nil {
			v.logger.Warn("format rule failed to evaluate",
				zap.String("field", in.field.Name),
				zap.String("rule", string(rule.Kind)),
				zap.Error(err),
			)
			return false, nil
		}
		return ok, nil
	}
}

func evalMinLength(_ *Validator, rule model.FieldRule, in input) (bool, map[string]string) {
	limit, ok := rule.IntParameter()
	if !ok || limit == 0 {
		return true, nil
	}
	return utf8.RuneCountInString(in.value) >= limit, map[string]string{"min": strconv.Itoa(limit)}
}

func evalMaxLength(_ *Validator, rule model.FieldRule, in input) (bool, map[string]string) {
	limit, ok := rule.IntParameter()
	if !ok || limit == 0 {
		return true, nil
	}
	return utf8.RuneCountInString(in.value) <= limit, map[string]string{"max": strconv.Itoa(limit)}
}

func evalPattern(v *Validator, rule model.FieldRule, in input) (bool, map[string]string) {
	if rule.Parameter == "" {
		return true, nil
	}
	ok, err := v.cache.test(rule.Parameter, in.value)
	if err != nil {
		v.logger.Warn("pattern rule failed to evaluate",
			zap.String("field", in.field.Name),
			zap.Error(err),
		)
		return false, nil
	}
	return ok, nil
}

func evalMatch(_ *Validator, rule model.FieldRule, in input) (bool, map[string]string) {
	other := strings.TrimSpace(rule.Parameter)
	if other == "" {
		return true, nil
	}
	var sibling string
	if in.siblings != nil {
		sibling, _ = in.siblings.Value(other)
	}
	return in.value == sibling, map[string]string{"other": other}
}
