// Package config holds the immutable configuration of a form pipeline and
// loads it from YAML, TOML or JSONC files and FORMFLOW_* environment
// variables.
package config

import (
	"time"

	"github.com/goliatone/go-formflow/pkg/messages"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Endpoints lists the per-category submission URLs.
type Endpoints struct {
	Contact     string `json:"contact" yaml:"contact" toml:"contact" validate:"omitempty,url"`
	Newsletter  string `json:"newsletter" yaml:"newsletter" toml:"newsletter" validate:"omitempty,url"`
	Appointment string `json:"appointment" yaml:"appointment" toml:"appointment" validate:"omitempty,url"`
}

// HiddenField is a value posted with every submission.
type HiddenField struct {
	Name  string `json:"name" yaml:"name" toml:"name" validate:"required"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// Patterns overrides the format expressions. Empty entries keep the
// defaults.
type Patterns struct {
	Email string `json:"email,omitempty" yaml:"email,omitempty" toml:"email,omitempty" validate:"omitempty,ecmascript_pattern"`
	Phone string `json:"phone,omitempty" yaml:"phone,omitempty" toml:"phone,omitempty" validate:"omitempty,ecmascript_pattern"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty" validate:"omitempty,ecmascript_pattern"`
}

// Config is the pipeline configuration. Durations are in milliseconds.
type Config struct {
	Locale       string `json:"locale" yaml:"locale" toml:"locale" validate:"required,min=2,max=16"`
	MessagesFile string `json:"messagesFile,omitempty" yaml:"messagesFile,omitempty" toml:"messagesFile,omitempty"`

	Endpoints Endpoints `json:"endpoints" yaml:"endpoints" toml:"endpoints"`
	PageURL   string    `json:"pageUrl,omitempty" yaml:"pageUrl,omitempty" toml:"pageUrl,omitempty" validate:"omitempty,url"`

	Simulation         bool `json:"simulation" yaml:"simulation" toml:"simulation"`
	SimulatedLatencyMS int  `json:"simulatedLatencyMs" yaml:"simulatedLatencyMs" toml:"simulatedLatencyMs" validate:"gte=0,lte=60000"`
	PanelLifetimeMS    int  `json:"panelLifetimeMs" yaml:"panelLifetimeMs" toml:"panelLifetimeMs" validate:"gte=0,lte=600000"`
	MatchTimeoutMS     int  `json:"matchTimeoutMs,omitempty" yaml:"matchTimeoutMs,omitempty" toml:"matchTimeoutMs,omitempty" validate:"gte=0"`

	Patterns Patterns      `json:"patterns,omitempty" yaml:"patterns,omitempty" toml:"patterns,omitempty"`
	Hidden   []HiddenField `json:"hidden,omitempty" yaml:"hidden,omitempty" toml:"hidden,omitempty" validate:"dive"`

	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty" toml:"logLevel,omitempty" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the configuration used when nothing is loaded: live mode
// against the default endpoints, English copy.
func Default() Config {
	endpoints := submission.DefaultEndpoints()
	return Config{
		Locale: messages.DefaultLocale,
		Endpoints: Endpoints{
			Contact:     endpoints[model.CategoryContact],
			Newsletter:  endpoints[model.CategoryNewsletter],
			Appointment: endpoints[model.CategoryAppointment],
		},
		SimulatedLatencyMS: int(submission.DefaultSimulatedLatency / time.Millisecond),
		PanelLifetimeMS:    int(submission.DefaultPanelLifetime / time.Millisecond),
		MatchTimeoutMS:     int(validation.DefaultMatchTimeout / time.Millisecond),
		LogLevel:           "info",
	}
}

// Settings converts the configuration into controller settings.
func (c Config) Settings() submission.Settings {
	endpoints := submission.Endpoints{}
	for category, url := range map[model.Category]string{
		model.CategoryContact:     c.Endpoints.Contact,
		model.CategoryNewsletter:  c.Endpoints.Newsletter,
		model.CategoryAppointment: c.Endpoints.Appointment,
	} {
		if url != "" {
			endpoints[category] = url
		}
	}

	hidden := make([]submission.HiddenField, 0, len(c.Hidden))
	for _, field := range c.Hidden {
		hidden = append(hidden, submission.Hidden(field.Name, field.Value))
	}

	return submission.Settings{
		Endpoints:        endpoints,
		Simulation:       c.Simulation,
		SimulatedLatency: time.Duration(c.SimulatedLatencyMS) * time.Millisecond,
		PanelLifetime:    time.Duration(c.PanelLifetimeMS) * time.Millisecond,
		PageURL:          c.PageURL,
		Hidden:           hidden,
	}
}

// ValidationPatterns returns the format expressions with defaults applied.
func (c Config) ValidationPatterns() validation.Patterns {
	def := validation.DefaultPatterns()
	out := validation.Patterns{Email: c.Patterns.Email, Phone: c.Patterns.Phone, URL: c.Patterns.URL}
	if out.Email == "" {
		out.Email = def.Email
	}
	if out.Phone == "" {
		out.Phone = def.Phone
	}
	if out.URL == "" {
		out.URL = def.URL
	}
	return out
}

// MatchTimeout returns the per-match regular expression budget.
func (c Config) MatchTimeout() time.Duration {
	if c.MatchTimeoutMS <= 0 {
		return validation.DefaultMatchTimeout
	}
	return time.Duration(c.MatchTimeoutMS) * time.Millisecond
}

// Catalog returns the message catalog: MessagesFile when set, otherwise the
// built-in catalog of Locale.
func (c Config) Catalog() (messages.Catalog, error) {
	if c.MessagesFile == "" {
		return messages.Resolve(c.Locale), nil
	}
	return messages.LoadFile(c.MessagesFile)
}
