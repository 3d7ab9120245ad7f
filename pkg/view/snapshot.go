package view

// FieldSnapshot is the rendered state of one control.
type FieldSnapshot struct {
	Name        string   `json:"name"`
	ControlID   string   `json:"controlId"`
	Label       string   `json:"label,omitempty"`
	Control     string   `json:"control"`
	Type        string   `json:"type,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []string `json:"options,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Disabled    bool     `json:"disabled,omitempty"`
	Value       string   `json:"value"`
	Marker      Marker   `json:"marker,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	Focused     bool     `json:"focused,omitempty"`
}

// Snapshot is an immutable copy of a Form's presentation state.
type Snapshot struct {
	FormID         string          `json:"formId"`
	Visible        bool            `json:"visible"`
	Busy           bool            `json:"busy"`
	Interactive    bool            `json:"interactive"`
	SubmitDisabled bool            `json:"submitDisabled"`
	SubmitLabel    string          `json:"submitLabel"`
	Focused        string          `json:"focused,omitempty"`
	Fields         []FieldSnapshot `json:"fields"`
	Panels         []Panel         `json:"panels,omitempty"`
}

// Field returns the snapshot of a named field.
func (s Snapshot) Field(name string) (FieldSnapshot, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldSnapshot{}, false
}

// ErrorCount returns the number of inline error nodes across all fields.
func (s Snapshot) ErrorCount() int {
	total := 0
	for _, field := range s.Fields {
		total += len(field.Errors)
	}
	return total
}

// Snapshot copies the current state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := Snapshot{
		FormID:         f.id,
		Visible:        f.visible,
		Busy:           f.busy,
		Interactive:    !f.busy,
		SubmitDisabled: f.busy,
		SubmitLabel:    f.submitLabel,
		Focused:        f.focused,
		Fields:         make([]FieldSnapshot, 0, len(f.order)),
	}
	for _, name := range f.order {
		state := f.fields[name]
		control := string(state.field.Control)
		if control == "" {
			control = "input"
		}
		field := FieldSnapshot{
			Name:        name,
			ControlID:   state.field.ControlID(),
			Label:       state.field.Label,
			Control:     control,
			Type:        state.field.Type,
			Placeholder: state.field.Placeholder,
			Required:    state.field.Required,
			Disabled:    state.field.Disabled,
			Value:       state.value,
			Marker:      state.marker,
			Focused:     f.focused == name,
		}
		if len(state.field.Options) > 0 {
			field.Options = append([]string(nil), state.field.Options...)
		}
		if len(state.errors) > 0 {
			field.Errors = append([]string(nil), state.errors...)
		}
		snap.Fields = append(snap.Fields, field)
	}
	if len(f.panels) > 0 {
		snap.Panels = append([]Panel(nil), f.panels...)
	}
	return snap
}
