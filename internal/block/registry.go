package block

import (
	"fmt"
)

// ID identifies a block type. IDs index directly into a Registry.
type ID uint16

// Air is the empty block every registry reserves at index zero.
const Air ID = 0

// MaxEmission is the brightest value of a single emission channel.
const MaxEmission = 15

// Model describes the geometric shape of a block for lighting and visibility.
type Model string

const (
	ModelEmpty Model = "empty"
	ModelFull  Model = "full"
)

func (m Model) opaqueMask() uint8 {
	switch m {
	case ModelFull:
		return 0b111111
	default:
		return 0
	}
}

// Definition is one entry of the block catalog.
type Definition struct {
	ID       ID       `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Model    Model    `yaml:"model" json:"model"`
	Emission [3]uint8 `yaml:"emission,flow,omitempty" json:"emission,omitempty"`
	Color    string   `yaml:"color,omitempty" json:"color,omitempty"`
}

// Emits reports whether the block produces light of its own.
func (d Definition) Emits() bool {
	return d.Emission != [3]uint8{}
}

// Registry is a read-only lookup table of block definitions keyed by ID.
// It is built once and shared by every chunk, light pass and generator.
type Registry struct {
	defs   []Definition
	masks  []uint8
	byName map[string]ID
}

// NewRegistry validates the definitions and builds a registry. Definitions may
// be given in any order but their IDs must cover 0..len-1 exactly once, and
// ID 0 must be an empty block.
func NewRegistry(defs []Definition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("block registry: no definitions")
	}
	ordered := make([]Definition, len(defs))
	seen := make([]bool, len(defs))
	byName := make(map[string]ID, len(defs))
	for i, def := range defs {
		if int(def.ID) >= len(defs) {
			return nil, fmt.Errorf("blocks[%d]: id %d outside contiguous range 0..%d", i, def.ID, len(defs)-1)
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("blocks[%d]: duplicate id %d", i, def.ID)
		}
		if def.Name == "" {
			return nil, fmt.Errorf("blocks[%d]: name must be set", i)
		}
		if _, dup := byName[def.Name]; dup {
			return nil, fmt.Errorf("blocks[%d]: duplicate name %q", i, def.Name)
		}
		switch def.Model {
		case ModelEmpty, ModelFull:
		case "":
			def.Model = ModelFull
		default:
			return nil, fmt.Errorf("blocks[%d]: unknown model %q", i, def.Model)
		}
		for c, v := range def.Emission {
			if v > MaxEmission {
				return nil, fmt.Errorf("blocks[%d]: emission[%d] must be <= %d", i, c, MaxEmission)
			}
		}
		seen[def.ID] = true
		byName[def.Name] = def.ID
		ordered[def.ID] = def
	}
	if ordered[Air].Model != ModelEmpty || ordered[Air].Emits() {
		return nil, fmt.Errorf("block registry: id 0 must be an empty, non-emitting block")
	}

	masks := make([]uint8, len(ordered))
	for i, def := range ordered {
		masks[i] = def.Model.opaqueMask()
	}
	return &Registry{defs: ordered, masks: masks, byName: byName}, nil
}

// MustDefault returns a registry holding DefaultBlocks.
func MustDefault() *Registry {
	reg, err := NewRegistry(DefaultBlocks())
	if err != nil {
		panic(err)
	}
	return reg
}

func (r *Registry) Len() int {
	return len(r.defs)
}

// Get returns the definition for id. Unknown ids panic.
func (r *Registry) Get(id ID) Definition {
	return r.defs[id]
}

// Lookup resolves a block by catalog name.
func (r *Registry) Lookup(name string) (ID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Definitions returns a copy of the catalog ordered by ID.
func (r *Registry) Definitions() []Definition {
	return append([]Definition(nil), r.defs...)
}

// IsOpaque reports whether every face of the block blocks light and sight.
func (r *Registry) IsOpaque(id ID) bool {
	return r.masks[id] == 0b111111
}

// IsTransparentInDirection reports whether light may pass through the given
// face (0..5) of the block.
func (r *Registry) IsTransparentInDirection(id ID, face int) bool {
	return r.masks[id]&(1<<uint(face)) == 0
}

// Emission returns the RGB emission of the block, each channel in 0..15.
func (r *Registry) Emission(id ID) (red, green, blue uint8) {
	e := r.defs[id].Emission
	return e[0], e[1], e[2]
}

func (r *Registry) Emits(id ID) bool {
	return r.defs[id].Emits()
}
