package submission

import (
	"errors"
	"testing"

	"github.com/goliatone/go-formflow/pkg/model"
)

func TestEndpoints_Resolve(t *testing.T) {
	endpoints := Endpoints{
		model.CategoryContact:    "https://api.test/contact",
		model.CategoryNewsletter: "https://api.test/newsletter",
	}
	cases := []struct {
		name string
		def  model.FormDefinition
		want string
	}{
		{name: "override wins", def: model.FormDefinition{Category: model.CategoryNewsletter, Endpoint: " https://other.test/x "}, want: "https://other.test/x"},
		{name: "category", def: model.FormDefinition{Category: model.CategoryNewsletter}, want: "https://api.test/newsletter"},
		{name: "missing category falls back to contact", def: model.FormDefinition{Category: model.CategoryAppointment}, want: "https://api.test/contact"},
		{name: "unknown category", def: model.FormDefinition{Category: "survey"}, want: "https://api.test/contact"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := endpoints.Resolve(tc.def)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}

	if _, err := (Endpoints{}).Resolve(model.FormDefinition{}); !errors.Is(err, ErrNoEndpoint) {
		t.Fatalf("expected ErrNoEndpoint, got %v", err)
	}
}
