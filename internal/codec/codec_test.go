package codec

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	Name  string   `json:"name" yaml:"name" toml:"name"`
	Items []string `json:"items" yaml:"items" toml:"items"`
}

func TestDecode(t *testing.T) {
	want := sample{Name: "contact", Items: []string{"a", "b"}}
	cases := map[string]string{
		"yml":         "name: contact\nitems: [a, b]\n",
		".toml":       "name = \"contact\"\nitems = [\"a\", \"b\"]\n",
		"forms.jsonc": "{\n  // comment\n  \"name\": \"contact\",\n  \"items\": [\"a\", \"b\",],\n}",
		"config.json": `{"name":"contact","items":["a","b"]}`,
	}
	for ext, data := range cases {
		t.Run(ext, func(t *testing.T) {
			var got sample
			if err := Decode(ext, []byte(data), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatOf_Unsupported(t *testing.T) {
	if _, err := FormatOf("forms.ini"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
