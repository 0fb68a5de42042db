package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "negative engine workers",
			mutate: func(cfg *Config) {
				cfg.Engine.Workers = -1
			},
			wantErr: "engine.workers cannot be negative",
		},
		{
			name: "negative light steps",
			mutate: func(cfg *Config) {
				cfg.Engine.MaxLightSteps = -3
			},
			wantErr: "engine.maxLightSteps cannot be negative",
		},
		{
			name: "no octaves",
			mutate: func(cfg *Config) {
				cfg.Terrain.Octaves = 0
			},
			wantErr: "terrain.octaves must be positive",
		},
		{
			name: "negative terrain workers",
			mutate: func(cfg *Config) {
				cfg.Terrain.Workers = -1
			},
			wantErr: "terrain.workers cannot be negative",
		},
		{
			name: "negative lamp chance",
			mutate: func(cfg *Config) {
				cfg.Terrain.LampChance = -0.1
			},
			wantErr: "terrain lamp/tree chances cannot be negative",
		},
		{
			name: "no load areas",
			mutate: func(cfg *Config) {
				cfg.LoadAreas = nil
			},
			wantErr: "loadAreas must not be empty",
		},
		{
			name: "flat load area",
			mutate: func(cfg *Config) {
				cfg.LoadAreas[0].Size.Y = 0
			},
			wantErr: "loadAreas[0].size must be positive",
		},
		{
			name: "unknown shape",
			mutate: func(cfg *Config) {
				cfg.LoadAreas = append(cfg.LoadAreas, LoadAreaConfig{Name: "odd", Shape: "conical", Size: Extent{1, 1, 1}})
			},
			wantErr: "loadAreas[1].shape must be one of cubic, spherical, cylindrical",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("unexpected error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}
	if want := Default(); !reflect.DeepEqual(cfg, want) {
		t.Fatalf("default configuration mismatch:\nwant: %#v\n got: %#v", want, cfg)
	}
}

func TestLoadReadsFileAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Engine.MaxLightSteps = 64
	cfg.Blocks = "catalog.yaml"
	cfg.LoadAreas[0].Shape = "spherical"

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("loaded configuration mismatch:\nwant: %#v\n got: %#v", cfg, got)
	}
}

func TestLoadAcceptsCommentsAndPartialFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	data := `{
	// only override what differs from the defaults
	"engine": {"workers": 2, "frameInterval": "40ms"},
	/* seed for reproducible worlds */
	"terrain": {"seed": 7, "octaves": 3}
}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if got.Engine.Workers != 2 || got.Engine.FrameInterval.Duration() != 40*time.Millisecond {
		t.Fatalf("engine section not applied: %+v", got.Engine)
	}
	if got.Terrain.Seed != 7 || got.Terrain.Octaves != 3 {
		t.Fatalf("terrain section not applied: %+v", got.Terrain)
	}
	if got.Terrain.Persistence != Default().Terrain.Persistence {
		t.Fatalf("unset terrain fields should keep defaults, got %+v", got.Terrain)
	}
	if len(got.LoadAreas) != 1 {
		t.Fatalf("default load areas should survive, got %d", len(got.LoadAreas))
	}
}

func TestLoadInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Terrain.Octaves = 0

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err = Load(path)
	if err == nil {
		t.Fatalf("expected load to fail")
	}
	if !strings.Contains(err.Error(), "validate config: terrain.octaves must be positive") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDurationAcceptsNanoseconds(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte("1500000"), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Duration() != 1500*time.Microsecond {
		t.Fatalf("got %v", d.Duration())
	}
	if err := json.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Fatalf("expected parse error")
	}
}
