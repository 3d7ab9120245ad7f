// Package codec decodes the file formats accepted for configuration, message
// catalogs and form definitions.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for extensions other than YAML, TOML and
// JSON(C).
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format is a normalised file format name.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf maps a file extension or path ("yml", ".toml", "forms.jsonc") to
// its format.
func FormatOf(ext string) (Format, error) {
	trimmed := strings.TrimSpace(ext)
	if e := filepath.Ext(trimmed); e != "" {
		trimmed = e
	}
	switch strings.ToLower(strings.TrimPrefix(trimmed, ".")) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "json", "jsonc":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Decode unmarshals data into out. JSON input may carry comments and
// trailing commas.
func Decode(ext string, data []byte, out any) error {
	format, err := FormatOf(ext)
	if err != nil {
		return err
	}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode toml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), out); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	}
	return nil
}
