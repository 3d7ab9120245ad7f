package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-formflow/internal/codec"
)

// ErrUnsupportedFormat is returned for files that are not YAML, TOML or
// JSON(C).
var ErrUnsupportedFormat = codec.ErrUnsupportedFormat

// Load reads path over Default and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext over Default and validates
// the result. JSON input may carry comments and trailing commas.
func Parse(ext string, data []byte) (Config, error) {
	cfg := Default()
	if err := codec.Decode(ext, data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
