// Package formflow wires configuration, form definitions, validation and the
// submission controller into ready to use form pipelines.
package formflow

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/clock"
	"github.com/goliatone/go-formflow/pkg/config"
	"github.com/goliatone/go-formflow/pkg/formdef"
	"github.com/goliatone/go-formflow/pkg/messages"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/view"
)

// Pipeline is the public surface of a form instance.
type Pipeline interface {
	ValidateField(name string) (model.FieldState, error)
	ValidateForm() validation.FormResult
	Submit(ctx context.Context) (*submission.Attempt, error)
}

var _ Pipeline = (*Form)(nil)

// Form pairs a presentation surface with the controller driving it.
type Form struct {
	*submission.Controller
	View *view.Form
}

// Render renders the current state of the form.
func (f *Form) Render(ctx context.Context, renderer render.Renderer, options render.RenderOptions) ([]byte, error) {
	if renderer == nil {
		return nil, fmt.Errorf("formflow: renderer is required")
	}
	if options.Title == "" {
		options.Title = f.Definition().Title
	}
	return renderer.Render(ctx, f.View.Snapshot(), options)
}

type options struct {
	logger    *zap.Logger
	transport submission.Transport
	client    *http.Client
	clock     clock.Clock
}

// Option customises how forms are built.
type Option func(*options)

// WithLogger sets the logger shared by the validator and controllers.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTransport replaces the HTTP transport. Simulation mode still wins.
func WithTransport(transport submission.Transport) Option {
	return func(o *options) {
		o.transport = transport
	}
}

// WithHTTPClient sets the client used by the default transport.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithClock sets the time source used for payload timestamps and timers.
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		o.clock = clk
	}
}

// New builds a form from cfg and def.
func New(cfg config.Config, def model.FormDefinition, opts ...Option) (*Form, error) {
	if err := formdef.Validate(def); err != nil {
		return nil, err
	}
	shared, err := prepare(cfg, opts)
	if err != nil {
		return nil, err
	}
	return shared.build(cfg, def)
}

// NewAll builds one form per definition of set. The forms share a validator
// and its compiled pattern cache.
func NewAll(cfg config.Config, set *formdef.Set, opts ...Option) (map[string]*Form, error) {
	if set == nil {
		return nil, fmt.Errorf("formflow: definition set is required")
	}
	shared, err := prepare(cfg, opts)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Form, len(set.IDs()))
	for _, def := range set.Forms() {
		form, err := shared.build(cfg, def)
		if err != nil {
			return nil, fmt.Errorf("formflow: form %q: %w", def.ID, err)
		}
		out[def.ID] = form
	}
	return out, nil
}

// Load reads a definitions file and builds every form it declares.
func Load(cfg config.Config, path string, opts ...Option) (map[string]*Form, error) {
	set, err := formdef.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewAll(cfg, set, opts...)
}

type components struct {
	options
	catalog   messages.Catalog
	validator *validation.Validator
}

func prepare(cfg config.Config, opts []Option) (components, error) {
	if err := cfg.Validate(); err != nil {
		return components{}, err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return components{}, fmt.Errorf("formflow: catalog: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	validator := validation.New(
		validation.WithCatalog(catalog),
		validation.WithPatterns(cfg.ValidationPatterns()),
		validation.WithMatchTimeout(cfg.MatchTimeout()),
		validation.WithLogger(o.logger),
	)
	return components{options: o, catalog: catalog, validator: validator}, nil
}

func (c components) build(cfg config.Config, def model.FormDefinition) (*Form, error) {
	surface := view.New(def, c.catalog.SubmitLabel)

	ctrlOpts := []submission.Option{
		submission.WithSettings(cfg.Settings()),
		submission.WithValidator(c.validator),
		submission.WithCatalog(c.catalog),
		submission.WithLogger(c.logger.With(zap.String("form", def.ID))),
	}
	if c.client != nil {
		ctrlOpts = append(ctrlOpts, submission.WithHTTPClient(c.client))
	}
	if c.transport != nil {
		ctrlOpts = append(ctrlOpts, submission.WithTransport(c.transport))
	}
	if c.clock != nil {
		ctrlOpts = append(ctrlOpts, submission.WithClock(c.clock))
	}

	ctrl, err := submission.New(def, surface, ctrlOpts...)
	if err != nil {
		return nil, fmt.Errorf("formflow: controller: %w", err)
	}
	return &Form{Controller: ctrl, View: surface}, nil
}
