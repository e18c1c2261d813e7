package pointmorph

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type ShapeConfig struct {
	Kind   string `yaml:"kind"`
	Name   string `yaml:"name"`
	Points int    `yaml:"points"`

	// Interpreted per kind; unused params are ignored.
	Radius      float32 `yaml:"radius"`
	Size        float32 `yaml:"size"`
	MajorRadius float32 `yaml:"majorRadius"`
	MinorRadius float32 `yaml:"minorRadius"`
	Arms        int     `yaml:"arms"`
	Sigma       float32 `yaml:"sigma"`
}

type CameraConfig struct {
	Distance float32 `yaml:"distance"`
	Yaw      float32 `yaml:"yaw"`
	Pitch    float32 `yaml:"pitch"`
	Fov      float32 `yaml:"fov"`
}

type HudConfig struct {
	Enabled  bool    `yaml:"enabled"`
	FontPath string  `yaml:"fontPath"`
	FontSize float64 `yaml:"fontSize"`
}

type Config struct {
	Window         WindowConfig  `yaml:"window"`
	Seed           int64         `yaml:"seed"`
	AutoAdvance    bool          `yaml:"autoAdvance"`
	BaseSize       float32       `yaml:"baseSize"`
	ColorA         [3]float32    `yaml:"colorA"`
	ColorB         [3]float32    `yaml:"colorB"`
	Exposure       float32       `yaml:"exposure"`
	Shapes         []ShapeConfig `yaml:"shapes"`
	Camera         CameraConfig  `yaml:"camera"`
	Hud            HudConfig     `yaml:"hud"`
	ShaderOverride string        `yaml:"shaderOverride"`
}

// DefaultConfig is the built-in demo scene: four shapes with deliberately
// different point counts, so the count normalization path is always exercised.
func DefaultConfig() Config {
	return Config{
		Window:      WindowConfig{Width: 1280, Height: 720, Title: "pointmorph"},
		Seed:        42,
		AutoAdvance: true,
		BaseSize:    0.4,
		ColorA:      [3]float32{1.0, 0.4, 0.1},
		ColorB:      [3]float32{0.2, 0.5, 1.0},
		Exposure:    1.0,
		Shapes: []ShapeConfig{
			{Kind: "sphere", Points: 12000, Radius: 1.0},
			{Kind: "cube", Points: 9000, Size: 1.6},
			{Kind: "torus", Points: 14000, MajorRadius: 0.9, MinorRadius: 0.35},
			{Kind: "spiral", Points: 16000, Radius: 1.3, Arms: 2},
		},
		Camera: CameraConfig{Distance: 4, Yaw: 0, Pitch: 20, Fov: 60},
		Hud:    HudConfig{Enabled: true, FontSize: 14},
	}
}

// LoadConfig reads a yaml scene description. Absent keys keep their
// DefaultConfig values, which is why unmarshalling goes over a prefilled
// struct instead of a zero one.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d is not positive", c.Window.Width, c.Window.Height)
	}
	if c.BaseSize <= 0 {
		return fmt.Errorf("baseSize %v is not positive", c.BaseSize)
	}
	if c.Exposure <= 0 {
		return fmt.Errorf("exposure %v is not positive", c.Exposure)
	}
	if len(c.Shapes) == 0 {
		return fmt.Errorf("%w: config declares no shapes", ErrNoGeometry)
	}
	for i, s := range c.Shapes {
		if s.Points <= 0 {
			return fmt.Errorf("shape %d (%s): point count %d is not positive", i, s.Kind, s.Points)
		}
		if !knownShapeKind(s.Kind) {
			return fmt.Errorf("shape %d: unknown kind %q", i, s.Kind)
		}
	}
	return nil
}

func knownShapeKind(kind string) bool {
	switch kind {
	case "sphere", "cube", "torus", "spiral", "blob":
		return true
	}
	return false
}

// BuildShapes fills lib with one cloud per configured shape, in declaration
// order. Zero params fall back to sensible per-kind defaults.
func (c *Config) BuildShapes(lib *CloudLibrary, rng *rand.Rand) error {
	for i, s := range c.Shapes {
		name := s.Name
		if name == "" {
			name = s.Kind
		}

		switch s.Kind {
		case "sphere":
			lib.CreateSphereCloud(name, s.Points, orDefault(s.Radius, 1.0), rng)
		case "cube":
			lib.CreateCubeCloud(name, s.Points, orDefault(s.Size, 1.5), rng)
		case "torus":
			lib.CreateTorusCloud(name, s.Points, orDefault(s.MajorRadius, 0.9), orDefault(s.MinorRadius, 0.35), rng)
		case "spiral":
			arms := s.Arms
			if arms < 1 {
				arms = 2
			}
			lib.CreateSpiralCloud(name, s.Points, orDefault(s.Radius, 1.3), arms, rng)
		case "blob":
			lib.CreateBlobCloud(name, s.Points, orDefault(s.Sigma, 0.5), rng)
		default:
			return fmt.Errorf("shape %d: unknown kind %q", i, s.Kind)
		}
	}
	return nil
}

func orDefault(v, def float32) float32 {
	if v <= 0 {
		return def
	}
	return v
}
