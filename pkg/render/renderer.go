// Package render turns a presentation snapshot of a form into markup. It
// holds the renderer contract, a name based registry, theme helpers and the
// sanitiser applied to server supplied copy.
package render

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/view"
)

// Renderer converts a snapshot into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, snapshot view.Snapshot, options RenderOptions) ([]byte, error)
}
