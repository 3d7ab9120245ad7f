package view_test

import (
	"testing"

	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/view"
)

func TestSnapshot_AfterFailedValidation(t *testing.T) {
	def := testsupport.MustDefinition(t, "testdata/forms.yaml", "contact")
	form := view.New(def, "Send")
	if err := form.SetValues(map[string]string{"email": "nope", "topic": "billing"}); err != nil {
		t.Fatalf("set values: %v", err)
	}

	result := validation.New().ValidateForm(form, def)
	if result.Valid || result.FirstInvalid != "name" {
		t.Fatalf("unexpected result %+v", result)
	}

	if diff := testsupport.CompareJSONGolden(t, "testdata/contact_invalid.golden.json", form.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
