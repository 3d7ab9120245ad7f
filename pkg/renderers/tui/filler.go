// Package tui fills forms from a terminal. Answers are checked with the same
// validator the submission controller uses, so a prompt rejects exactly what
// the form would reject.
package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/view"
)

const (
	defaultMaxAttempts = 3
	noneOption         = "(none)"
)

// Surface receives answers. *view.Form satisfies it.
type Surface interface {
	validation.Siblings
	Input(name, value string) error
}

// Filler prompts for every enabled field of a definition.
type Filler struct {
	driver      PromptDriver
	validator   *validation.Validator
	maxAttempts int
	confirm     string
	theme       Theme
	logger      *zap.Logger
	plain       *bluemonday.Policy
}

// New builds a Filler backed by the survey driver unless overridden.
func New(options ...Option) *Filler {
	f := &Filler{
		driver:      NewSurveyDriver(),
		validator:   validation.New(),
		maxAttempts: defaultMaxAttempts,
		theme:       Theme{ErrorPrefix: "! "},
		logger:      zap.NewNop(),
		plain:       bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fill prompts each enabled field in declaration order and stores the answers
// on surface. Earlier answers are visible to later match rules.
func (f *Filler) Fill(ctx context.Context, def model.FormDefinition, surface Surface) error {
	if surface == nil {
		return errors.New("tui: surface is required")
	}
	if title := strings.TrimSpace(def.Title); title != "" {
		if err := f.driver.Info(ctx, f.theme.InfoPrefix+title); err != nil {
			return err
		}
	}

	for _, field := range def.Fields {
		if field.Disabled || strings.TrimSpace(field.Name) == "" {
			continue
		}
		if err := f.fillField(ctx, field, surface); err != nil {
			return err
		}
	}

	if f.confirm == "" {
		return nil
	}
	ok, err := f.driver.Confirm(ctx, ConfirmConfig{Message: f.confirm, Default: true})
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

func (f *Filler) fillField(ctx context.Context, field model.Field, surface Surface) error {
	check := func(value string) error {
		state := f.validator.Evaluate(field, value, surface)
		if state.Valid {
			return nil
		}
		return errors.New(f.plainText(state.ErrorMessage))
	}

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		value, err := f.ask(ctx, field, check)
		if err != nil {
			return fmt.Errorf("tui: field %q: %w", field.Name, err)
		}
		if err := check(value); err != nil {
			f.logger.Debug("answer rejected",
				zap.String("field", field.Name),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if infoErr := f.driver.Info(ctx, f.theme.ErrorPrefix+err.Error()); infoErr != nil {
				return infoErr
			}
			continue
		}
		return surface.Input(field.Name, value)
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Name)
}

func (f *Filler) ask(ctx context.Context, field model.Field, check func(string) error) (string, error) {
	message := promptLabel(field)
	switch {
	case field.Control == model.ControlSelect && len(field.Options) > 0:
		options := append([]string(nil), field.Options...)
		if !field.Required {
			options = append([]string{noneOption}, options...)
		}
		idx, err := f.driver.Select(ctx, SelectConfig{Message: message, Options: options, Help: field.Placeholder})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(options) || options[idx] == noneOption && !field.Required {
			return "", nil
		}
		return options[idx], nil
	case field.Control == model.ControlTextarea:
		return f.driver.TextArea(ctx, TextAreaConfig{Message: message, Help: field.Placeholder, Validator: check})
	case strings.EqualFold(field.Type, "password"):
		return f.driver.Password(ctx, InputConfig{Message: message, Help: field.Placeholder, Validator: check})
	default:
		return f.driver.Input(ctx, InputConfig{Message: message, Help: field.Placeholder, Validator: check})
	}
}

// Report prints inline errors and panels of a settled form.
func (f *Filler) Report(ctx context.Context, snap view.Snapshot) error {
	for _, field := range snap.Fields {
		for _, msg := range field.Errors {
			label := field.Label
			if label == "" {
				label = field.Name
			}
			if err := f.driver.Info(ctx, f.theme.ErrorPrefix+label+": "+f.plainText(msg)); err != nil {
				return err
			}
		}
	}
	for _, panel := range snap.Panels {
		prefix := f.theme.InfoPrefix
		if panel.Kind == view.PanelError {
			prefix = f.theme.ErrorPrefix
		}
		line := strings.TrimSpace(f.plainText(panel.Title) + " " + f.plainText(panel.Message))
		if err := f.driver.Info(ctx, prefix+line); err != nil {
			return err
		}
	}
	return nil
}

func (f *Filler) plainText(s string) string {
	return html.UnescapeString(f.plain.Sanitize(s))
}

func promptLabel(field model.Field) string {
	label := strings.TrimSpace(field.Label)
	if label == "" {
		label = field.Name
	}
	if field.Required {
		label += " *"
	}
	return label
}
