package vanilla

import (
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/view"
)

type formData struct {
	ID             string `json:"id"`
	Visible        bool   `json:"visible"`
	Busy           bool   `json:"busy"`
	SubmitDisabled bool   `json:"submitDisabled"`
	SubmitLabel    string `json:"submitLabel"`
}

type fieldData struct {
	Name        string   `json:"name"`
	ControlID   string   `json:"controlId"`
	ErrorID     string   `json:"errorId"`
	Label       string   `json:"label"`
	Control     string   `json:"control"`
	Type        string   `json:"type"`
	Placeholder string   `json:"placeholder"`
	Options     []string `json:"options"`
	Required    bool     `json:"required"`
	Disabled    bool     `json:"disabled"`
	Value       string   `json:"value"`
	Invalid     bool     `json:"invalid"`
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors"`
	Focused     bool     `json:"focused"`
}

type panelData struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Icon        string `json:"icon"`
	Dismissible bool   `json:"dismissible"`
	CloseLabel  string `json:"closeLabel"`
}

type themeData struct {
	Name       string `json:"name"`
	Variant    string `json:"variant"`
	Style      string `json:"style"`
	Stylesheet string `json:"stylesheet"`
}

type pageData struct {
	Title  string                   `json:"title"`
	Action string                   `json:"action"`
	Method string                   `json:"method"`
	Form   formData                 `json:"form"`
	Fields []fieldData              `json:"fields"`
	Panels []panelData              `json:"panels"`
	Hidden []submission.HiddenField `json:"hidden"`
	Theme  themeData                `json:"theme"`
}

func buildData(snap view.Snapshot, options render.RenderOptions) pageData {
	data := pageData{
		Title:  options.Title,
		Action: options.Action,
		Method: options.MethodOrDefault(),
		Form: formData{
			ID:             snap.FormID,
			Visible:        snap.Visible,
			Busy:           snap.Busy,
			SubmitDisabled: snap.SubmitDisabled,
			SubmitLabel:    snap.SubmitLabel,
		},
		Hidden: sortedHidden(options.Hidden),
	}

	for _, field := range snap.Fields {
		data.Fields = append(data.Fields, fieldData{
			Name:        field.Name,
			ControlID:   field.ControlID,
			ErrorID:     field.ControlID + "-error",
			Label:       field.Label,
			Control:     field.Control,
			Type:        inputType(field),
			Placeholder: field.Placeholder,
			Options:     field.Options,
			Required:    field.Required,
			Disabled:    field.Disabled,
			Value:       field.Value,
			Invalid:     field.Marker == view.MarkerError,
			Valid:       field.Marker == view.MarkerValid,
			Errors:      field.Errors,
			Focused:     field.Focused,
		})
	}

	var partials map[string]string
	if cfg := options.Theme; cfg != nil {
		partials = cfg.Partials
		data.Theme = themeData{
			Name:    cfg.Theme,
			Variant: cfg.Variant,
			Style:   render.CSSVarsStyle(cfg.CSSVars),
		}
		if cfg.AssetURL != nil {
			data.Theme.Stylesheet = cfg.AssetURL(AssetStylesheet)
		}
	}

	for _, panel := range snap.Panels {
		data.Panels = append(data.Panels, panelData{
			ID:          panel.ID,
			Kind:        string(panel.Kind),
			Title:       panel.Title,
			Message:     render.SanitizeCopy(panel.Message),
			Icon:        panelIcon(panel.Kind, partials),
			Dismissible: panel.Dismissible,
			CloseLabel:  panel.CloseLabel,
		})
	}
	return data
}

func inputType(field view.FieldSnapshot) string {
	if field.Type != "" {
		return field.Type
	}
	return "text"
}

func panelIcon(kind view.PanelKind, partials map[string]string) string {
	key, fallback := PartialSuccessIcon, successIcon
	if kind == view.PanelError {
		key, fallback = PartialErrorIcon, errorIcon
	}
	if custom := render.SanitizeIcon(partials[key]); custom != "" {
		return custom
	}
	return render.SanitizeIcon(fallback)
}

func sortedHidden(fields []submission.HiddenField) []submission.HiddenField {
	if len(fields) == 0 {
		return nil
	}
	merged := submission.MergeHiddenFields(nil, fields...)
	return submission.SortedHiddenFields(merged)
}
