package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Decode decodes src with the decoder matching filename's extension:
// .hcl, .yaml, .yml or .json.
func Decode(src []byte, filename string) (*Manifest, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl":
		return DecodeHCL(src, filename)
	case ".yaml", ".yml":
		return DecodeYAML(src, filename)
	case ".json":
		return DecodeJSON(src, filename)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q (want .hcl, .yaml, .yml or .json)", filepath.Ext(filename))
	}
}

// LoadFile reads and decodes one manifest file.
func LoadFile(path string) (*Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Decode(src, path)
}

// LoadFiles loads every path and merges the results in argument order.
func LoadFiles(paths ...string) (*Manifest, error) {
	ms := make([]*Manifest, 0, len(paths))
	for _, path := range paths {
		m, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return Merge(ms...), nil
}
