package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formflow/pkg/submission"
)

// RenderOptions carries per-request data that does not belong to the
// snapshot.
type RenderOptions struct {
	// Action is the form action URL; usually the resolved endpoint.
	Action string
	// Method defaults to POST.
	Method string
	// Hidden fields are rendered as hidden inputs in name order.
	Hidden []submission.HiddenField
	// Theme supplies tokens, CSS variables and asset URLs.
	Theme *theme.RendererConfig
	// Title is shown above the form when set.
	Title string
}

// MethodOrDefault returns Method or POST.
func (o RenderOptions) MethodOrDefault() string {
	if o.Method == "" {
		return "POST"
	}
	return o.Method
}
