package formflow

import (
	"io/fs"

	"github.com/goliatone/go-formflow/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// or override them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}
