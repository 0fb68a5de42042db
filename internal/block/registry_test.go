package block

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	reg := MustDefault()

	if !reg.IsTransparentInDirection(Air, 0) || reg.IsOpaque(Air) {
		t.Fatalf("air must be transparent")
	}
	dirt, ok := reg.Lookup("dirt")
	if !ok {
		t.Fatalf("dirt missing from default catalog")
	}
	if !reg.IsOpaque(dirt) {
		t.Errorf("dirt should be opaque")
	}
	for face := 0; face < 6; face++ {
		if reg.IsTransparentInDirection(dirt, face) {
			t.Errorf("dirt transparent through face %d", face)
		}
	}

	lamp, _ := reg.Lookup("lamp_orange")
	r, g, b := reg.Emission(lamp)
	if r != 15 || g != 10 || b != 5 {
		t.Errorf("lamp emission = (%d,%d,%d), want (15,10,5)", r, g, b)
	}
	if !reg.Emits(lamp) || reg.Emits(dirt) {
		t.Errorf("unexpected emitter classification")
	}
}

func TestNewRegistryRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]Definition) []Definition
		wantErr string
	}{
		{
			name: "duplicate id",
			mutate: func(defs []Definition) []Definition {
				defs[2].ID = 1
				return defs
			},
			wantErr: "duplicate id 1",
		},
		{
			name: "gap in ids",
			mutate: func(defs []Definition) []Definition {
				defs[1].ID = 40
				return defs
			},
			wantErr: "outside contiguous range",
		},
		{
			name: "solid air",
			mutate: func(defs []Definition) []Definition {
				defs[0].Model = ModelFull
				return defs
			},
			wantErr: "id 0 must be an empty",
		},
		{
			name: "emission too bright",
			mutate: func(defs []Definition) []Definition {
				defs[4].Emission = [3]uint8{16, 0, 0}
				return defs
			},
			wantErr: "emission[0] must be <= 15",
		},
		{
			name: "unknown model",
			mutate: func(defs []Definition) []Definition {
				defs[3].Model = "slab"
				return defs
			},
			wantErr: `unknown model "slab"`,
		},
		{
			name: "missing name",
			mutate: func(defs []Definition) []Definition {
				defs[1].Name = ""
				return defs
			},
			wantErr: "name must be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := tt.mutate(DefaultBlocks())
			_, err := NewRegistry(defs)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestCatalogRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog", "blocks.yaml")
	if err := WriteCatalog(path, DefaultBlocks()); err != nil {
		t.Fatalf("WriteCatalog: %v", err)
	}
	reg, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if reg.Len() != len(DefaultBlocks()) {
		t.Errorf("Len() = %d, want %d", reg.Len(), len(DefaultBlocks()))
	}
	blue, ok := reg.Lookup("lamp_blue")
	if !ok {
		t.Fatalf("lamp_blue missing after reload")
	}
	if got := reg.Get(blue).Emission; got != [3]uint8{4, 8, 15} {
		t.Errorf("lamp_blue emission = %v", got)
	}
}

func TestParseCatalogDefaultsModelAndChecksColor(t *testing.T) {
	reg, err := ParseCatalog([]byte(`
blocks:
  - id: 0
    name: air
    model: empty
  - id: 1
    name: glowstone
    emission: [12, 12, 9]
`))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if !reg.IsOpaque(1) {
		t.Errorf("model should default to full")
	}

	_, err = ParseCatalog([]byte(`
blocks:
  - id: 0
    name: air
    model: empty
    color: "red"
`))
	if err == nil || !strings.Contains(err.Error(), "blocks[0].color must be a hex RGB value") {
		t.Fatalf("expected color validation error, got %v", err)
	}
}

func TestLoadCatalogPropagatesReadErrors(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(os.TempDir(), "does-not-exist", "blocks.yaml")); err == nil {
		t.Fatalf("LoadCatalog() = nil, want error")
	}
}
