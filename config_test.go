package pointmorph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Shapes, 4)
	counts := map[int]bool{}
	for _, s := range cfg.Shapes {
		counts[s.Points] = true
	}
	assert.Len(t, counts, 4, "demo shapes should have distinct point counts")
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	content := `
seed: 7
autoAdvance: false
colorA: [0.0, 1.0, 0.0]
shapes:
  - kind: blob
    name: fuzz
    points: 400
    sigma: 0.3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Seed)
	assert.False(t, cfg.AutoAdvance)
	assert.Equal(t, [3]float32{0, 1, 0}, cfg.ColorA)
	require.Len(t, cfg.Shapes, 1)
	assert.Equal(t, "fuzz", cfg.Shapes[0].Name)

	// Keys the file never mentions stay at their defaults.
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, float32(0.4), cfg.BaseSize)
	assert.Equal(t, [3]float32{0.2, 0.5, 1.0}, cfg.ColorB)
	assert.True(t, cfg.Hud.Enabled)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_RejectsInvalidScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	content := `
shapes:
  - kind: dodecahedron
    points: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "unknown kind")
}

func TestConfig_Validate(t *testing.T) {
	noShapes := DefaultConfig()
	noShapes.Shapes = nil
	assert.ErrorIs(t, noShapes.Validate(), ErrNoGeometry)

	zeroPoints := DefaultConfig()
	zeroPoints.Shapes[0].Points = 0
	assert.ErrorContains(t, zeroPoints.Validate(), "not positive")

	badWindow := DefaultConfig()
	badWindow.Window.Height = 0
	assert.Error(t, badWindow.Validate())

	badExposure := DefaultConfig()
	badExposure.Exposure = -1
	assert.Error(t, badExposure.Validate())
}

func TestBuildShapes_DefaultScene(t *testing.T) {
	cfg := DefaultConfig()
	lib := NewCloudLibrary()
	require.NoError(t, cfg.BuildShapes(lib, testRng()))

	require.Equal(t, 4, lib.Count())
	assert.Equal(t, []string{"sphere", "cube", "torus", "spiral"}, lib.Names())

	variants := lib.Variants()
	for i, s := range cfg.Shapes {
		assert.Equal(t, s.Points, variants[i].Count(), "shape %d", i)
	}
}

func TestBuildShapes_UnknownKind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shapes = []ShapeConfig{{Kind: "hypercube", Points: 10}}

	err := cfg.BuildShapes(NewCloudLibrary(), testRng())
	assert.ErrorContains(t, err, "unknown kind")
}
