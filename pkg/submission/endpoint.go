package submission

import (
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Endpoints maps form categories to submission URLs.
type Endpoints map[model.Category]string

// DefaultEndpoints returns the bundled per-category endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		model.CategoryContact:     "https://api.climadent.com/contact",
		model.CategoryNewsletter:  "https://api.climadent.com/newsletter",
		model.CategoryAppointment: "https://api.climadent.com/appointment",
	}
}

// Resolve returns the endpoint for def: an explicit per-form override wins,
// then the category endpoint, then the contact endpoint.
func (e Endpoints) Resolve(def model.FormDefinition) (string, error) {
	if override := strings.TrimSpace(def.Endpoint); override != "" {
		return override, nil
	}
	if endpoint := strings.TrimSpace(e[def.Category.Normalize()]); endpoint != "" {
		return endpoint, nil
	}
	if endpoint := strings.TrimSpace(e[model.CategoryContact]); endpoint != "" {
		return endpoint, nil
	}
	return "", ErrNoEndpoint
}
