package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in template bundle.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
