// Package testsupport holds fixture and golden helpers shared by package
// tests.
package testsupport

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/formdef"
	"github.com/goliatone/go-formflow/pkg/model"
)

// UpdateEnv enables rewriting golden files instead of comparing them.
const UpdateEnv = "UPDATE_GOLDENS"

// MustLoadDefinitions loads a definitions fixture.
func MustLoadDefinitions(t *testing.T, path string) *formdef.Set {
	t.Helper()

	set, err := formdef.LoadFile(path)
	if err != nil {
		t.Fatalf("load definitions: %v", err)
	}
	return set
}

// MustDefinition loads one form of a definitions fixture.
func MustDefinition(t *testing.T, path, id string) model.FormDefinition {
	t.Helper()

	def, err := MustLoadDefinitions(t, path).Lookup(id)
	if err != nil {
		t.Fatalf("lookup %q: %v", id, err)
	}
	return def
}

// CompareJSONGolden decodes the golden at path into a value of the same type
// as got and returns the cmp diff. When UPDATE_GOLDENS is set the golden is
// rewritten from got and the diff is empty.
func CompareJSONGolden[T any](t *testing.T, path string, got T) string {
	t.Helper()

	if os.Getenv(UpdateEnv) != "" {
		payload, err := json.MarshalIndent(got, "", "  ")
		if err != nil {
			t.Fatalf("marshal golden: %v", err)
		}
		writeGolden(t, path, append(payload, '\n'))
		return ""
	}

	var want T
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("unmarshal golden %s: %v", path, err)
	}
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

func writeGolden(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// AssertContains fails the test for every fragment missing from out.
func AssertContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(out, fragment) {
			t.Errorf("expected %q in output:\n%s", fragment, out)
		}
	}
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
