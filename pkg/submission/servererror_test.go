package submission

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formflow/pkg/model"
)

func TestDecodeServerError(t *testing.T) {
	def := contactForm()
	cases := []struct {
		name string
		body string
		ok   bool
		want ServerError
	}{
		{name: "message", body: `{"message":"server busy"}`, ok: true, want: ServerError{Message: "server busy"}},
		{name: "blank message", body: `{"message":"   "}`, ok: true, want: ServerError{}},
		{name: "not json", body: `Internal Server Error`, ok: false},
		{name: "empty body", body: ``, ok: false},
		{
			name: "list errors",
			body: `{"errors":[{"field":"email","message":"taken"},{"path":"/body/name","message":"too short"},{"message":"try later"}]}`,
			ok:   true,
			want: ServerError{
				Fields: map[string][]string{"email": {"taken"}, "name": {"too short"}},
				Form:   []string{"try later"},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DecodeServerError(def, []byte(tc.body))
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMapErrorPayload_PathShapes(t *testing.T) {
	def := model.FormDefinition{Fields: []model.Field{{Name: "name"}, {Name: "email"}, {Name: "phone"}}}
	payload := map[string][]string{
		"/body/name":            {"Name is required", " Name is required "},
		"data.attributes.email": {"Email invalid"},
		"$.body.phone[0]":       {"Phone malformed"},
		"non_field_errors":      {"Form level error"},
		"request/body/unknown":  {"Falls back to form"},
	}

	mapped := MapErrorPayload(def, payload)
	wantFields := map[string][]string{
		"name":  {"Name is required"},
		"email": {"Email invalid"},
		"phone": {"Phone malformed"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	wantForm := []string{"Falls back to form", "Form level error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}
