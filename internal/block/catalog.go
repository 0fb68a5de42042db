package block

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk YAML form of a block registry.
type Catalog struct {
	Blocks []Definition `yaml:"blocks"`
}

// DefaultBlocks returns the built-in block catalog.
func DefaultBlocks() []Definition {
	return []Definition{
		{ID: 0, Name: "air", Model: ModelEmpty},
		{ID: 1, Name: "dirt", Model: ModelFull, Color: "#8B5A2B"},
		{ID: 2, Name: "grass", Model: ModelFull, Color: "#4C9A2A"},
		{ID: 3, Name: "wood", Model: ModelFull, Color: "#6F4E37"},
		{ID: 4, Name: "lamp_orange", Model: ModelFull, Color: "#FFA500", Emission: [3]uint8{15, 10, 5}},
		{ID: 5, Name: "stone", Model: ModelFull, Color: "#8A8A8A"},
		{ID: 6, Name: "lamp_blue", Model: ModelFull, Color: "#3F6FFF", Emission: [3]uint8{4, 8, 15}},
	}
}

// ParseCatalog decodes a YAML catalog and builds a registry from it.
func ParseCatalog(data []byte) (*Registry, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, def := range cat.Blocks {
		if def.Color != "" && !isValidHexColor(def.Color) {
			return nil, fmt.Errorf("blocks[%d].color must be a hex RGB value", i)
		}
	}
	reg, err := NewRegistry(cat.Blocks)
	if err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return reg, nil
}

// LoadCatalog reads a YAML catalog file. An empty path returns the built-in catalog.
func LoadCatalog(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(DefaultBlocks())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// WriteCatalog writes the definitions as a YAML catalog to path.
func WriteCatalog(path string, defs []Definition) error {
	data, err := yaml.Marshal(&Catalog{Blocks: defs})
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create catalog directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

func isValidHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, ch := range s[1:] {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}
