// Package template defines the template engine contract used by the HTML
// renderers. Implementations live in sub-packages.
package template
