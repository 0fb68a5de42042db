package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/muhammadmuzzammil1998/jsonc"
	"gopkg.in/yaml.v3"
)

// Duration is a JSON-friendly wrapper around time.Duration that accepts human
// readable strings such as "16ms" in configuration files while still
// allowing numeric representations when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null values decode
// to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		if s == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration: parse %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!int" {
		var n int64
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		*d = Duration(time.Duration(n))
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds everything the terrain simulator needs to start.
type Config struct {
	Engine    EngineConfig     `json:"engine" yaml:"engine"`
	Terrain   TerrainConfig    `json:"terrain" yaml:"terrain"`
	Blocks    string           `json:"blocks" yaml:"blocks"` // catalog path or go-getter source; empty = built-in
	LoadAreas []LoadAreaConfig `json:"loadAreas" yaml:"loadAreas"`
	Camera    CameraConfig     `json:"camera" yaml:"camera"`
}

type EngineConfig struct {
	Workers              int      `json:"workers" yaml:"workers"`             // 0 = GOMAXPROCS
	MaxLightSteps        int      `json:"maxLightSteps" yaml:"maxLightSteps"` // chunk passes per update, 0 = unbounded
	FrameInterval        Duration `json:"frameInterval" yaml:"frameInterval"`
	ChunkLoadingPriority int      `json:"chunkLoadingPriority" yaml:"chunkLoadingPriority"`
}

type TerrainConfig struct {
	Seed         int64   `json:"seed" yaml:"seed"`
	Frequency    float64 `json:"frequency" yaml:"frequency"`
	Amplitude    float64 `json:"amplitude" yaml:"amplitude"`
	Octaves      int     `json:"octaves" yaml:"octaves"`
	Persistence  float64 `json:"persistence" yaml:"persistence"`
	Lacunarity   float64 `json:"lacunarity" yaml:"lacunarity"`
	SurfaceLevel int     `json:"surfaceLevel" yaml:"surfaceLevel"` // block height of the mean surface
	LampChance   float64 `json:"lampChance" yaml:"lampChance"`     // per surface column
	TreeChance   float64 `json:"treeChance" yaml:"treeChance"`     // per surface column
	Workers      int     `json:"workers" yaml:"workers"`           // column workers per chunk, 0 = auto
}

type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

type Extent struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

type LoadAreaConfig struct {
	Name         string `json:"name" yaml:"name"`
	Shape        string `json:"shape" yaml:"shape"`
	Size         Extent `json:"size" yaml:"size"`
	Center       Vec3   `json:"center" yaml:"center"` // in chunks
	FollowCamera bool   `json:"followCamera" yaml:"followCamera"`
}

type CameraConfig struct {
	Start    Vec3 `json:"start" yaml:"start"`       // in blocks
	Velocity Vec3 `json:"velocity" yaml:"velocity"` // blocks per frame
}

// Load reads configuration from a JSON file if provided. Comments are
// allowed. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Workers:              0,
			MaxLightSteps:        0,
			FrameInterval:        Duration(16 * time.Millisecond),
			ChunkLoadingPriority: 1,
		},
		Terrain: TerrainConfig{
			Seed:         1337,
			Frequency:    0.01,
			Amplitude:    24,
			Octaves:      4,
			Persistence:  0.45,
			Lacunarity:   2.0,
			SurfaceLevel: 0,
			LampChance:   0.002,
			TreeChance:   0.01,
		},
		LoadAreas: []LoadAreaConfig{
			{
				Name:         "camera",
				Shape:        "cylindrical",
				Size:         Extent{X: 8, Y: 4, Z: 8},
				FollowCamera: true,
			},
		},
		Camera: CameraConfig{
			Start:    Vec3{X: 0, Y: 40, Z: 0},
			Velocity: Vec3{X: 2, Y: 0, Z: 0.5},
		},
	}
}

var shapeNames = []string{"cubic", "spherical", "cylindrical"}

func (c *Config) Validate() error {
	if c.Engine.Workers < 0 {
		return errors.New("engine.workers cannot be negative")
	}
	if c.Engine.MaxLightSteps < 0 {
		return errors.New("engine.maxLightSteps cannot be negative")
	}
	if c.Terrain.Octaves <= 0 {
		return errors.New("terrain.octaves must be positive")
	}
	if c.Terrain.Workers < 0 {
		return errors.New("terrain.workers cannot be negative")
	}
	if c.Terrain.LampChance < 0 || c.Terrain.TreeChance < 0 {
		return errors.New("terrain lamp/tree chances cannot be negative")
	}
	if len(c.LoadAreas) == 0 {
		return errors.New("loadAreas must not be empty")
	}
	for i, area := range c.LoadAreas {
		if area.Size.X <= 0 || area.Size.Y <= 0 || area.Size.Z <= 0 {
			return fmt.Errorf("loadAreas[%d].size must be positive", i)
		}
		if !validShape(area.Shape) {
			return fmt.Errorf("loadAreas[%d].shape must be one of %s", i, strings.Join(shapeNames, ", "))
		}
	}
	return nil
}

func validShape(name string) bool {
	for _, s := range shapeNames {
		if strings.EqualFold(s, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
