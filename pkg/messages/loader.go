package messages

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-formflow/internal/codec"
)

// LoadFile reads a catalog from a TOML, YAML or JSON(C) file and fills
// missing entries from the bundled catalog of the same locale.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("messages: read catalog: %w", err)
	}
	return Parse(filepath.Ext(path), data)
}

// Parse decodes a catalog payload. ext selects the decoder.
func Parse(ext string, data []byte) (Catalog, error) {
	var catalog Catalog
	if err := codec.Decode(ext, data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("messages: %w", err)
	}
	return catalog.WithDefaults(Resolve(catalog.Locale)), nil
}
