package main

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"voxelterrain/internal/config"
)

func readWritten(t *testing.T, path string) *config.Config {
	t.Helper()
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	return cfg
}

func TestWriteConfigFromEnvJSON(t *testing.T) {
	t.Setenv(envConfigYAMLB64, "")

	cfg := config.Default()
	cfg.Terrain.Seed = 99
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	t.Setenv(envConfigJSON, string(data))

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	wrote, err := writeConfigFromEnv(path)
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if !wrote {
		t.Fatalf("expected config to be written")
	}
	if got := readWritten(t, path); got.Terrain.Seed != 99 {
		t.Fatalf("unexpected seed: %d", got.Terrain.Seed)
	}
}

func TestWriteConfigFromEnvYAML(t *testing.T) {
	doc := `
engine:
  workers: 3
  frameInterval: 40ms
loadAreas:
  - name: spawn
    shape: spherical
    size: {x: 4, y: 4, z: 4}
`
	t.Setenv(envConfigJSON, "")
	t.Setenv(envConfigYAMLB64, base64.StdEncoding.EncodeToString([]byte(doc)))

	path := filepath.Join(t.TempDir(), "config.json")
	wrote, err := writeConfigFromEnv(path)
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if !wrote {
		t.Fatalf("expected config to be written")
	}

	got := readWritten(t, path)
	if got.Engine.Workers != 3 || got.Engine.FrameInterval.Duration() != 40*time.Millisecond {
		t.Fatalf("unexpected engine section: %+v", got.Engine)
	}
	if len(got.LoadAreas) != 1 || got.LoadAreas[0].Name != "spawn" || got.LoadAreas[0].Shape != "spherical" {
		t.Fatalf("unexpected load areas: %+v", got.LoadAreas)
	}
	if got.Terrain.Octaves != config.Default().Terrain.Octaves {
		t.Fatalf("missing sections should keep defaults, got %+v", got.Terrain)
	}
}

func TestWriteConfigFromEnvYAMLRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Terrain.LampChance = 0.5
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	t.Setenv(envConfigJSON, "")
	t.Setenv(envConfigYAMLB64, base64.StdEncoding.EncodeToString(data))

	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := writeConfigFromEnv(path); err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if got := readWritten(t, path); got.Terrain.LampChance != 0.5 {
		t.Fatalf("unexpected lamp chance: %v", got.Terrain.LampChance)
	}
}

func TestWriteConfigFromEnvRejectsInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.LoadAreas = nil
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	t.Setenv(envConfigJSON, string(data))
	t.Setenv(envConfigYAMLB64, "")

	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := writeConfigFromEnv(path); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("invalid config should not be written, stat err: %v", err)
	}
}

func TestWriteConfigFromEnvNoPayload(t *testing.T) {
	t.Setenv(envConfigJSON, "")
	t.Setenv(envConfigYAMLB64, "")

	wrote, err := writeConfigFromEnv(filepath.Join(t.TempDir(), "unused.json"))
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if wrote {
		t.Fatalf("expected no config to be written")
	}
}

func TestWriteConfigFromEnvNeedsPath(t *testing.T) {
	t.Setenv(envConfigJSON, "{}")
	t.Setenv(envConfigYAMLB64, "")

	if _, err := writeConfigFromEnv(""); err == nil {
		t.Fatalf("expected an error without a config path")
	}
}
