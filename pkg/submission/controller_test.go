package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/goliatone/go-formflow/pkg/clock"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/view"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("github.com/dlclark/regexp2.runClock"),
	)
}

var epoch = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func contactForm() model.FormDefinition {
	return model.FormDefinition{
		ID:       "contact",
		Category: model.CategoryContact,
		Fields: []model.Field{
			{Name: "name", Required: true, MinLength: 2},
			{Name: "email", Type: "email", Required: true},
			{Name: "message", Control: model.ControlTextarea, MaxLength: 500},
		},
	}
}

func fillValid(t *testing.T, form *view.Form) {
	t.Helper()
	err := form.SetValues(map[string]string{
		"name":    "Ana",
		"email":   "ana@example.com",
		"message": "Hello",
	})
	if err != nil {
		t.Fatalf("set values: %v", err)
	}
}

type recordedRequest struct {
	header  http.Header
	payload map[string]string
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, <-chan recordedRequest) {
	t.Helper()
	requests := make(chan recordedRequest, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		requests <- recordedRequest{header: r.Header.Clone(), payload: payload}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, requests
}

func waitOutcome(t *testing.T, attempt *Attempt) Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	outcome, err := attempt.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	return outcome
}

func TestSubmit_InvalidFormBlocksRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	def := contactForm()
	def.Endpoint = srv.URL
	form := view.New(def, "Send")
	_ = form.SetValues(map[string]string{"name": "A", "email": "nope"})

	ctrl, err := New(def, form, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	attempt, err := ctrl.Submit(context.Background())
	if attempt != nil {
		t.Fatalf("expected no attempt")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var names []string
	for _, state := range verr.Fields {
		names = append(names, state.Name)
	}
	if diff := cmp.Diff([]string{"name", "email"}, names); diff != "" {
		t.Fatalf("invalid fields mismatch (-want +got):\n%s", diff)
	}

	snap := form.Snapshot()
	if snap.Focused != "name" {
		t.Fatalf("expected focus on first invalid field, got %q", snap.Focused)
	}
	if snap.ErrorCount() != 2 || snap.Busy {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if ctrl.Status() != model.StatusIdle {
		t.Fatalf("expected idle, got %s", ctrl.Status())
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no network call")
	}
}

func TestSubmit_SuccessHidesAndResetsForm(t *testing.T) {
	srv, requests := newServer(t, http.StatusOK, `{"ok":true}`)
	clk := clock.NewFake(epoch)

	def := contactForm()
	form := view.New(def, "Send")
	fillValid(t, form)

	ctrl, err := New(def, form,
		WithHTTPClient(srv.Client()),
		WithClock(clk),
		WithSettings(Settings{
			Endpoints: Endpoints{model.CategoryContact: srv.URL},
			PageURL:   "https://example.com/contacto",
			Hidden:    []HiddenField{CSRFToken("_csrf", "tok"), Hidden(FieldSubmitTime, "spoofed")},
		}),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	attempt, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	outcome := waitOutcome(t, attempt)
	if outcome.Status != model.StatusSucceeded || outcome.Simulated {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Message != "Thank you! Your message has been sent." {
		t.Fatalf("unexpected success copy %q", outcome.Message)
	}

	req := <-requests
	if got := req.header.Get(HeaderRequestID); got != attempt.ID {
		t.Fatalf("request id %q, want %q", got, attempt.ID)
	}
	want := map[string]string{
		"name":          "Ana",
		"email":         "ana@example.com",
		"message":       "Hello",
		"_csrf":         "tok",
		FieldSubmitTime: "2024-03-01T10:30:00.000Z",
		FieldPageURL:    "https://example.com/contacto",
	}
	if diff := cmp.Diff(want, req.payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	snap := form.Snapshot()
	if snap.Visible || snap.Busy || snap.SubmitLabel != "Send" {
		t.Fatalf("unexpected snapshot after success: %+v", snap)
	}
	if field, _ := snap.Field("name"); field.Value != "" {
		t.Fatalf("expected values reset, got %q", field.Value)
	}
	if len(snap.Panels) != 1 || !snap.Panels[0].Dismissible || snap.Panels[0].Kind != view.PanelSuccess {
		t.Fatalf("unexpected panels: %+v", snap.Panels)
	}
	if ctrl.Status() != model.StatusSucceeded {
		t.Fatalf("expected succeeded, got %s", ctrl.Status())
	}

	if !ctrl.Dismiss(outcome.PanelID) {
		t.Fatalf("expected panel to be dismissed")
	}
	if snap := form.Snapshot(); !snap.Visible || len(snap.Panels) != 0 {
		t.Fatalf("expected form shown again, got %+v", snap)
	}
}

func TestSubmit_KeepVisibleLeavesForm(t *testing.T) {
	srv, _ := newServer(t, http.StatusCreated, ``)

	def := contactForm()
	def.Category = model.CategoryNewsletter
	def.KeepVisible = true
	def.Endpoint = srv.URL
	form := view.New(def, "Send")
	fillValid(t, form)

	ctrl, err := New(def, form, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	attempt, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	outcome := waitOutcome(t, attempt)
	if outcome.Message != "Thank you for subscribing to our newsletter!" {
		t.Fatalf("unexpected copy %q", outcome.Message)
	}

	snap := form.Snapshot()
	if !snap.Visible {
		t.Fatalf("expected form to stay visible")
	}
	if field, _ := snap.Field("name"); field.Value != "Ana" {
		t.Fatalf("expected values kept, got %q", field.Value)
	}
	if snap.Panels[0].Dismissible {
		t.Fatalf("panel must not be dismissible while the form is shown")
	}
}

func TestSubmit_ServerMessageAndAutoDismiss(t *testing.T) {
	srv, _ := newServer(t, http.StatusInternalServerError, `{"message":"server busy"}`)
	clk := clock.NewFake(epoch)

	def := contactForm()
	def.Endpoint = srv.URL
	form := view.New(def, "Send")
	fillValid(t, form)

	ctrl, err := New(def, form, WithHTTPClient(srv.Client()), WithClock(clk))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	attempt, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	outcome := waitOutcome(t, attempt)
	if outcome.Status != model.StatusFailed || outcome.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Message != "server busy" {
		t.Fatalf("unexpected message %q", outcome.Message)
	}

	snap := form.Snapshot()
	if snap.Busy || snap.SubmitDisabled || snap.SubmitLabel != "Send" {
		t.Fatalf("busy state not restored: %+v", snap)
	}
	if !snap.Visible || len(snap.Panels) != 1 || snap.Panels[0].Kind != view.PanelError {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if field, _ := snap.Field("email"); field.Value != "ana@example.com" {
		t.Fatalf("values must survive a failure, got %q", field.Value)
	}

	clk.Advance(DefaultPanelLifetime - time.Millisecond)
	if !form.HasPanel(outcome.PanelID) {
		t.Fatalf("panel removed too early")
	}
	clk.Advance(time.Millisecond)
	if form.HasPanel(outcome.PanelID) {
		t.Fatalf("panel should be removed after its lifetime")
	}
}

func TestSubmit_GenericMessageForUnreadableBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	def := contactForm()
	def.Endpoint = srv.URL
	form := view.New(def, "Send")
	fillValid(t, form)

	ctrl, err := New(def, form, WithHTTPClient(srv.Client()), WithClock(clock.NewFake(epoch)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	attempt, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	outcome := waitOutcome(t, attempt)
	if outcome.Message != "An error occurred while sending the form" {
		t.Fatalf("unexpected message %q", outcome.Message)
	}
	_ = ctrl.Close()
}

func TestSubmit_ServerFieldErrorsRenderedInline(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnprocessableEntity,
		`{"message":"Check the form","errors":{"email":["already registered","second"],"unknown":"x"}}`)

	def := contactForm()
	def.Endpoint = srv.URL
	form := view.New(def, "Send")
	fillValid(t, form)

	ctrl, err := New(def, form, WithHTTPClient(srv.Client()), WithClock(clock.NewFake(epoch)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	attempt, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	outcome := waitOutcome(t, attempt)
	if diff := cmp.Diff(map[string]string{"email": "already registered"}, outcome.FieldErrors); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	field, _ := form.Snapshot().Field("email")
	if field.Marker != view.MarkerError || !cmp.Equal(field.Errors, []string{"already registered"}) {
		t.Fatalf("unexpected email state: %+v", field)
	}
	_ = ctrl.Close()
}

type failingTransport struct {
	calls atomic.Int32
	err   error
}

func (f *failingTransport) Send(context.Context, Request) (Response, error) {
	f.calls.Add(1)
	return Response{}, f.err
}

func TestSubmit_TransportErrorFails(t *testing.T) {
	transport := &failingTransport{err: errors.New("connection refused")}
	def := contactForm()
	form := view.New(def, "Send")
	fillValid(t, form)

	ctrl, err := New(def, form, WithTransport(transport), WithClock(clock.NewFake(epoch)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	attempt, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	outcome := waitOutcome(t, attempt)
	if outcome.Status != model.StatusFailed || !errors.Is(outcome.Err, transport.err) {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if attempt.Endpoint != "https://api.climadent.com/contact" {
		t.Fatalf("unexpected endpoint %q", attempt.Endpoint)
	}
	_ = ctrl.Close()
}

func TestSubmit_SimulationNeverCallsTransport(t *testing.T) {
	transport := &failingTransport{err: errors.New("must not be called")}
	clk := clock.NewFake(epoch)

	def := contactForm()
	form := view.New(def, "Send")
	fillValid(t, form)

	ctrl, err := New(def, form,
		WithTransport(transport),
		WithClock(clk),
		WithSettings(Settings{Simulation: true}),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	attempt, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap := form.Snapshot()
	if !snap.Busy || snap.SubmitLabel != "Sending..." || !snap.SubmitDisabled {
		t.Fatalf("expected busy state, got %+v", snap)
	}
	if ctrl.Status() != model.StatusSubmitting {
		t.Fatalf("expected submitting, got %s", ctrl.Status())
	}

	clk.WaitForTimers(1)
	clk.Advance(DefaultSimulatedLatency)
	outcome := waitOutcome(t, attempt)
	if outcome.Status != model.StatusSucceeded || !outcome.Simulated {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if transport.calls.Load() != 0 {
		t.Fatalf("simulation reached the transport")
	}
}

func TestSubmit_SingleFlight(t *testing.T) {
	clk := clock.NewFake(epoch)
	def := contactForm()
	form := view.New(def, "Send")
	fillValid(t, form)

	ctrl, err := New(def, form, WithClock(clk), WithSettings(Settings{Simulation: true}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	first, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := ctrl.Submit(context.Background()); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}

	clk.WaitForTimers(1)
	clk.Advance(DefaultSimulatedLatency)
	waitOutcome(t, first)

	ctrl.Dismiss(successPrefix + first.ID)
	fillValid(t, form)
	second, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("attempt ids must be unique")
	}
	clk.WaitForTimers(1)
	clk.Advance(DefaultSimulatedLatency)
	waitOutcome(t, second)
}

func TestSubmit_CancelledContextFails(t *testing.T) {
	clk := clock.NewFake(epoch)
	def := contactForm()
	form := view.New(def, "Send")
	fillValid(t, form)

	ctrl, err := New(def, form, WithClock(clk), WithSettings(Settings{Simulation: true}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	attempt, err := ctrl.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	cancel()
	outcome := waitOutcome(t, attempt)
	if outcome.Status != model.StatusFailed || !errors.Is(outcome.Err, context.Canceled) {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if form.Snapshot().Busy {
		t.Fatalf("busy state must be cleared")
	}
	_ = ctrl.Close()
}

func TestDismiss_StopsErrorTimer(t *testing.T) {
	transport := &failingTransport{err: errors.New("offline")}
	clk := clock.NewFake(epoch)
	def := contactForm()
	form := view.New(def, "Send")
	fillValid(t, form)

	ctrl, err := New(def, form, WithTransport(transport), WithClock(clk))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	attempt, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	outcome := waitOutcome(t, attempt)
	if clk.Pending() != 1 {
		t.Fatalf("expected one pending panel timer, got %d", clk.Pending())
	}
	if !ctrl.Dismiss(outcome.PanelID) {
		t.Fatalf("expected dismiss to remove the panel")
	}
	if clk.Pending() != 0 {
		t.Fatalf("expected timer stopped, got %d pending", clk.Pending())
	}
	if ctrl.Dismiss(outcome.PanelID) {
		t.Fatalf("second dismiss must be a no-op")
	}
}

func TestNew_RequiresSurface(t *testing.T) {
	if _, err := New(contactForm(), nil); !errors.Is(err, ErrSurfaceRequired) {
		t.Fatalf("expected ErrSurfaceRequired, got %v", err)
	}
}

func TestClearField(t *testing.T) {
	form := view.New(contactForm(), "Send")
	ctrl, err := New(contactForm(), form)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if state, _ := ctrl.ValidateField("name"); state.Valid {
		t.Fatal("expected empty name to be invalid")
	}
	if err := ctrl.ClearField("name"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	field, _ := form.Snapshot().Field("name")
	if len(field.Errors) != 0 || field.Marker != view.MarkerNone {
		t.Fatalf("expected cleared field, got %+v", field)
	}
	if err := ctrl.ClearField("nope"); !errors.Is(err, view.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

type blockingTransport struct {
	started chan struct{}
	release chan error
}

func (b *blockingTransport) Send(ctx context.Context, _ Request) (Response, error) {
	close(b.started)
	select {
	case err := <-b.release:
		return Response{}, err
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

func TestClose_InflightFailureSchedulesNoTimer(t *testing.T) {
	transport := &blockingTransport{started: make(chan struct{}), release: make(chan error, 1)}
	clk := clock.NewFake(epoch)
	def := contactForm()
	form := view.New(def, "Send")
	fillValid(t, form)

	ctrl, err := New(def, form, WithTransport(transport), WithClock(clk))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	attempt, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-transport.started
	_ = ctrl.Close()
	transport.release <- errors.New("offline")

	outcome := waitOutcome(t, attempt)
	if outcome.Status != model.StatusFailed {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if !form.HasPanel(outcome.PanelID) {
		t.Fatalf("expected error panel to stay attached")
	}
	if clk.Pending() != 0 {
		t.Fatalf("expected no pending timers after Close, got %d", clk.Pending())
	}
}

func TestSubmit_FormLevelServerErrorUsedAsMessage(t *testing.T) {
	srv, _ := newServer(t, http.StatusConflict, `{"errors":{"form":["Duplicate submission"]}}`)

	def := contactForm()
	def.Endpoint = srv.URL
	form := view.New(def, "Send")
	fillValid(t, form)

	ctrl, err := New(def, form, WithHTTPClient(srv.Client()), WithClock(clock.NewFake(epoch)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer ctrl.Close()
	attempt, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	outcome := waitOutcome(t, attempt)
	if outcome.Message != "Duplicate submission" {
		t.Fatalf("unexpected message %q", outcome.Message)
	}
	if len(outcome.FieldErrors) != 0 {
		t.Fatalf("expected no inline errors, got %v", outcome.FieldErrors)
	}
}
