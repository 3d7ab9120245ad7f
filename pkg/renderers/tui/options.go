package tui

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/validation"
)

// Theme holds message prefixes applied by the filler.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures a Filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithValidator overrides the field validator used for answers.
func WithValidator(v *validation.Validator) Option {
	return func(f *Filler) {
		if v != nil {
			f.validator = v
		}
	}
}

// WithMaxAttempts bounds how often one field is prompted. Zero means three.
func WithMaxAttempts(n int) Option {
	return func(f *Filler) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithConfirm asks for confirmation once every field is filled.
func WithConfirm(message string) Option {
	return func(f *Filler) {
		f.confirm = message
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(f *Filler) {
		f.theme = theme
	}
}

// WithLogger sets the filler logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}
