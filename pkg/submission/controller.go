package submission

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/goliatone/go-formflow/pkg/clock"
	"github.com/goliatone/go-formflow/pkg/messages"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/view"
)

const (
	successPrefix = "success-"
	errorPrefix   = "error-"
)

// Surface is the presentation state a Controller drives. *view.Form
// satisfies it.
type Surface interface {
	validation.Surface
	Focus(name string)
	Values() map[string]string
	SetBusy(busy bool, label string)
	SetVisible(visible bool)
	ShowPanel(panel view.Panel)
	RemovePanel(id string) bool
	HasPanel(id string) bool
	Reset()
}

// Option configures a Controller.
type Option func(*Controller)

// WithSettings sets endpoints, simulation mode, timings and page URL.
func WithSettings(settings Settings) Option {
	return func(c *Controller) {
		c.settings = settings
	}
}

// WithValidator overrides the field validator.
func WithValidator(v *validation.Validator) Option {
	return func(c *Controller) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithCatalog sets the copy used for panels and the busy label.
func WithCatalog(catalog messages.Catalog) Option {
	return func(c *Controller) {
		c.catalog = catalog.WithDefaults(messages.Default())
	}
}

// WithTransport overrides the live transport. Simulation mode ignores it.
func WithTransport(transport Transport) Option {
	return func(c *Controller) {
		if transport != nil {
			c.transport = transport
		}
	}
}

// WithHTTPClient uses client for live submissions.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) {
		c.transport = NewHTTPTransport(client)
	}
}

// WithClock sets the clock driving simulated latency and panel lifetimes.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller owns the validation and submission lifecycle of one form.
type Controller struct {
	def       model.FormDefinition
	surface   Surface
	validator *validation.Validator
	catalog   messages.Catalog
	transport Transport
	clock     clock.Clock
	logger    *zap.Logger
	settings  Settings

	inflight *semaphore.Weighted

	mu     sync.Mutex
	status model.Status
	timers map[string]*clock.Timer
	closed bool
}

// New constructs a Controller for def rendering onto surface.
func New(def model.FormDefinition, surface Surface, options ...Option) (*Controller, error) {
	if surface == nil {
		return nil, ErrSurfaceRequired
	}
	c := &Controller{
		def:      def,
		surface:  surface,
		catalog:  messages.Default(),
		clock:    clock.Real(),
		logger:   zap.NewNop(),
		settings: DefaultSettings(),
		inflight: semaphore.NewWeighted(1),
		status:   model.StatusIdle,
		timers:   make(map[string]*clock.Timer),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.settings = c.settings.withDefaults()
	if c.validator == nil {
		c.validator = validation.New(validation.WithCatalog(c.catalog), validation.WithLogger(c.logger))
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(nil)
	}
	if c.settings.Simulation {
		c.transport = SimulatedTransport{Clock: c.clock, Delay: c.settings.SimulatedLatency}
		c.logger.Warn("form submissions are simulated; no request will reach the network",
			zap.String("form", def.ID),
			zap.Duration("latency", c.settings.SimulatedLatency),
		)
	}
	if _, err := c.settings.Endpoints.Resolve(def); err != nil && !c.settings.Simulation {
		return nil, err
	}
	return c, nil
}

// Definition returns the form definition.
func (c *Controller) Definition() model.FormDefinition {
	return c.def
}

// Validator returns the validator evaluating the form rules.
func (c *Controller) Validator() *validation.Validator {
	return c.validator
}

// Endpoint resolves the URL submissions are posted to.
func (c *Controller) Endpoint() (string, error) {
	return c.settings.Endpoints.Resolve(c.def)
}

// Status returns the current lifecycle state.
func (c *Controller) Status() model.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) setStatus(status model.Status) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

// ValidateField validates one field by name and renders the result.
func (c *Controller) ValidateField(name string) (model.FieldState, error) {
	field, ok := c.def.Field(name)
	if !ok {
		return model.FieldState{}, view.ErrUnknownField
	}
	return c.validator.ValidateField(c.surface, field), nil
}

// Blur validates a field the way leaving its control does.
func (c *Controller) Blur(name string) (model.FieldState, error) {
	field, ok := c.def.Field(name)
	if !ok {
		return model.FieldState{}, view.ErrUnknownField
	}
	state, _ := c.validator.Blur(c.surface, field)
	return state, nil
}

// ClearField removes a field's error node and markers, as editing the control
// does.
func (c *Controller) ClearField(name string) error {
	if _, ok := c.def.Field(name); !ok {
		return view.ErrUnknownField
	}
	c.surface.ClearFieldError(name)
	return nil
}

// ValidateForm validates every field and renders all errors.
func (c *Controller) ValidateForm() validation.FormResult {
	return c.validator.ValidateForm(c.surface, c.def)
}

// Submit validates the form and, when valid, dispatches the submission on a
// goroutine and returns the in-flight attempt. An invalid form yields a
// *ValidationError with focus moved to the first invalid field. ctx bounds
// the request.
func (c *Controller) Submit(ctx context.Context) (*Attempt, error) {
	if !c.inflight.TryAcquire(1) {
		return nil, ErrInFlight
	}

	c.setStatus(model.StatusValidating)
	result := c.validator.ValidateForm(c.surface, c.def)
	if !result.Valid {
		if result.FirstInvalid != "" {
			c.surface.Focus(result.FirstInvalid)
		}
		c.setStatus(model.StatusIdle)
		c.inflight.Release(1)
		return nil, &ValidationError{Fields: result.Invalid()}
	}

	endpoint, err := c.settings.Endpoints.Resolve(c.def)
	if err != nil && !c.settings.Simulation {
		c.setStatus(model.StatusIdle)
		c.inflight.Release(1)
		return nil, err
	}

	now := c.clock.Now()
	payload := BuildPayload(c.surface.Values(), now, c.settings.PageURL, c.settings.Hidden...)
	attempt := newAttempt(uuid.NewString(), endpoint, payload, now)

	c.setStatus(model.StatusSubmitting)
	c.surface.SetBusy(true, c.catalog.BusyLabel)
	c.logger.Debug("form submission started",
		zap.String("form", c.def.ID),
		zap.String("attempt", attempt.ID),
		zap.String("endpoint", endpoint),
	)

	go c.run(ctx, attempt)
	return attempt, nil
}

func (c *Controller) run(ctx context.Context, attempt *Attempt) {
	var outcome Outcome
	defer func() {
		c.surface.SetBusy(false, "")
		c.setStatus(outcome.Status)
		c.inflight.Release(1)
		attempt.finish(outcome)
	}()

	resp, err := c.transport.Send(ctx, Request{
		ID:       attempt.ID,
		Endpoint: attempt.Endpoint,
		Payload:  attempt.Payload,
	})
	switch {
	case err != nil:
		c.logger.Error("form submission failed",
			zap.String("form", c.def.ID),
			zap.String("attempt", attempt.ID),
			zap.Error(err),
		)
		outcome = c.fail(attempt, Outcome{Err: err}, c.catalog.GenericError)
	case resp.OK():
		outcome = c.succeed(attempt, Outcome{StatusCode: resp.StatusCode, Simulated: resp.Simulated})
	default:
		outcome = c.failResponse(attempt, resp)
	}
}

func (c *Controller) succeed(attempt *Attempt, outcome Outcome) Outcome {
	hide := !c.def.KeepVisible
	panel := view.Panel{
		ID:          successPrefix + attempt.ID,
		Kind:        view.PanelSuccess,
		Title:       c.catalog.SuccessTitle,
		Message:     c.catalog.SuccessFor(c.def.Category),
		Dismissible: hide,
		CloseLabel:  c.catalog.CloseLabel,
	}
	if hide {
		c.surface.SetVisible(false)
		c.surface.Reset()
	}
	c.surface.ShowPanel(panel)

	outcome.Status = model.StatusSucceeded
	outcome.Message = panel.Message
	outcome.PanelID = panel.ID
	c.logger.Info("form submitted",
		zap.String("form", c.def.ID),
		zap.String("attempt", attempt.ID),
		zap.Int("status", outcome.StatusCode),
		zap.Bool("simulated", outcome.Simulated),
	)
	return outcome
}

func (c *Controller) failResponse(attempt *Attempt, resp Response) Outcome {
	outcome := Outcome{StatusCode: resp.StatusCode}
	message := c.catalog.GenericError

	serverErr, ok := DecodeServerError(c.def, resp.Body)
	if ok {
		switch {
		case serverErr.Message != "":
			message = serverErr.Message
		case len(serverErr.Form) > 0:
			message = serverErr.Form[0]
		}
		outcome.FieldErrors = c.showFieldErrors(serverErr.Fields)
	}

	c.logger.Warn("form submission rejected",
		zap.String("form", c.def.ID),
		zap.String("attempt", attempt.ID),
		zap.Int("status", resp.StatusCode),
		zap.String("message", message),
	)
	return c.fail(attempt, outcome, message)
}

// showFieldErrors renders the first server message of each field inline.
func (c *Controller) showFieldErrors(fields map[string][]string) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(fields))
	for name, list := range fields {
		if len(list) == 0 {
			continue
		}
		c.surface.ClearFieldError(name)
		c.surface.MarkField(name, view.MarkerError)
		c.surface.ShowFieldError(name, list[0])
		out[name] = list[0]
	}
	return out
}

func (c *Controller) fail(attempt *Attempt, outcome Outcome, message string) Outcome {
	panel := view.Panel{
		ID:          errorPrefix + attempt.ID,
		Kind:        view.PanelError,
		Title:       c.catalog.ErrorTitle,
		Message:     message,
		Dismissible: true,
		CloseLabel:  c.catalog.CloseLabel,
	}
	c.surface.ShowPanel(panel)

	c.mu.Lock()
	if !c.closed && c.surface.HasPanel(panel.ID) {
		timer := c.clock.AfterFunc(c.settings.PanelLifetime, func() {
			c.Dismiss(panel.ID)
		})
		c.timers[panel.ID] = timer
	}
	c.mu.Unlock()

	outcome.Status = model.StatusFailed
	outcome.Message = message
	outcome.PanelID = panel.ID
	return outcome
}

// Dismiss removes a panel. Dismissing a success panel shows the form again;
// dismissing an error panel cancels its removal timer. It reports whether the
// panel was still attached.
func (c *Controller) Dismiss(panelID string) bool {
	c.mu.Lock()
	timer, ok := c.timers[panelID]
	delete(c.timers, panelID)
	c.mu.Unlock()
	if ok {
		timer.Stop()
	}

	removed := c.surface.RemovePanel(panelID)
	if removed && strings.HasPrefix(panelID, successPrefix) {
		c.surface.SetVisible(true)
	}
	return removed
}

// Reset clears values, inline errors and markers.
func (c *Controller) Reset() {
	c.surface.Reset()
}

// Close cancels pending panel timers. Attempts that fail after Close keep
// their error panel without scheduling its removal.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
	return nil
}

// IsValidationError reports whether err blocked a submission on validation.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
