package view

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/model"
)

// ErrUnknownField is returned when a value targets an undeclared field.
var ErrUnknownField = errors.New("view: unknown field")

// Marker is the presentation marker applied to a control after validation.
type Marker string

const (
	MarkerNone  Marker = ""
	MarkerError Marker = "error"
	MarkerValid Marker = "valid"
)

// PanelKind distinguishes terminal submission feedback.
type PanelKind string

const (
	PanelSuccess PanelKind = "success"
	PanelError   PanelKind = "error"
)

// Panel is the feedback block rendered next to the form after a submission
// settles.
type Panel struct {
	ID          string    `json:"id"`
	Kind        PanelKind `json:"kind"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Dismissible bool      `json:"dismissible"`
	CloseLabel  string    `json:"closeLabel,omitempty"`
}

type fieldState struct {
	field  model.Field
	value  string
	marker Marker
	errors []string
}

// Form is the presentation surface of one form instance.
type Form struct {
	mu sync.Mutex

	id          string
	order       []string
	fields      map[string]*fieldState
	visible     bool
	busy        bool
	submitLabel string
	savedLabel  string
	focused     string
	panels      []Panel
}

// New builds a surface for def. submitLabel is the idle label of the submit
// control; def.SubmitLabel wins when set.
func New(def model.FormDefinition, submitLabel string) *Form {
	if label := strings.TrimSpace(def.SubmitLabel); label != "" {
		submitLabel = label
	}
	form := &Form{
		id:          def.ID,
		fields:      make(map[string]*fieldState, len(def.Fields)),
		visible:     true,
		submitLabel: submitLabel,
	}
	for _, field := range def.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		if _, exists := form.fields[name]; exists {
			continue
		}
		form.order = append(form.order, name)
		form.fields[name] = &fieldState{field: field}
	}
	return form
}

// ID returns the form identifier.
func (f *Form) ID() string {
	return f.id
}

// Value returns the current value of a field.
func (f *Form) Value(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.fields[name]
	if !ok {
		return "", false
	}
	return state.value, true
}

// SetValue stores a field value without touching its validation state.
func (f *Form) SetValue(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.fields[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	state.value = value
	return nil
}

// Input stores a value typed by the user and clears the field's error state,
// mirroring the behaviour of editing a control after a failed validation.
func (f *Form) Input(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.fields[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	state.value = value
	state.errors = nil
	state.marker = MarkerNone
	return nil
}

// SetValues applies several values at once; the first unknown name aborts.
func (f *Form) SetValues(values map[string]string) error {
	for name, value := range values {
		if err := f.SetValue(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Values returns the values of every enabled field keyed by name.
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.order))
	for _, name := range f.order {
		state := f.fields[name]
		if state.field.Disabled {
			continue
		}
		out[name] = state.value
	}
	return out
}

// ClearFieldError removes the field's error nodes and markers.
func (f *Form) ClearFieldError(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, ok := f.fields[name]; ok {
		state.errors = nil
		state.marker = MarkerNone
	}
}

// MarkField sets the field marker.
func (f *Form) MarkField(name string, marker Marker) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, ok := f.fields[name]; ok {
		state.marker = marker
	}
}

// ShowFieldError appends an error node next to the field. Callers clear the
// field first; the validator always does.
func (f *Form) ShowFieldError(name, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, ok := f.fields[name]; ok {
		state.errors = append(state.errors, message)
	}
}

// Focus moves focus to the named field.
func (f *Form) Focus(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.fields[name]; ok {
		f.focused = name
	}
}

// SetBusy toggles the busy indicator. While busy the submit control is
// disabled, shows label and the form ignores pointer input; leaving the busy
// state restores the previous label.
func (f *Form) SetBusy(busy bool, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if busy == f.busy {
		return
	}
	f.busy = busy
	if busy {
		f.savedLabel = f.submitLabel
		f.submitLabel = label
		return
	}
	f.submitLabel = f.savedLabel
	f.savedLabel = ""
}

// Busy reports whether a submission is in flight.
func (f *Form) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// SetVisible shows or hides the form body. Panels stay visible.
func (f *Form) SetVisible(visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = visible
}

// ShowPanel attaches a panel after the form. A panel with an ID already
// present replaces it.
func (f *Form) ShowPanel(panel Panel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.panels {
		if f.panels[i].ID == panel.ID {
			f.panels[i] = panel
			return
		}
	}
	f.panels = append(f.panels, panel)
}

// RemovePanel detaches a panel, reporting whether it was present.
func (f *Form) RemovePanel(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.panels {
		if f.panels[i].ID == id {
			f.panels = append(f.panels[:i], f.panels[i+1:]...)
			return true
		}
	}
	return false
}

// HasPanel reports whether a panel with id is attached.
func (f *Form) HasPanel(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, panel := range f.panels {
		if panel.ID == id {
			return true
		}
	}
	return false
}

// Reset clears values, error nodes, markers and focus.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, state := range f.fields {
		state.value = ""
		state.errors = nil
		state.marker = MarkerNone
	}
	f.focused = ""
}
