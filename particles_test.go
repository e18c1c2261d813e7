package pointmorph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParticleSet_NormalizesVariants(t *testing.T) {
	set, err := NewParticleSet([]PointCloud{
		gridCloud(40, 0),
		gridCloud(100, 500),
		gridCloud(10, 900),
	}, testRng())
	require.NoError(t, err)

	assert.Equal(t, 3, set.VariantCount())
	assert.Equal(t, 100, set.PointCount())
	for i := 0; i < set.VariantCount(); i++ {
		assert.Equal(t, 100, set.Variant(i).Count())
	}
}

func TestNewParticleSet_SizesMatchPointCount(t *testing.T) {
	set, err := NewParticleSet([]PointCloud{gridCloud(64, 0)}, testRng())
	require.NoError(t, err)

	sizes := set.Sizes()
	require.Len(t, sizes, set.PointCount())
	for i, s := range sizes {
		if s < 0 || s >= 1 {
			t.Errorf("size %d = %v, want [0, 1)", i, s)
		}
	}
}

func TestNewParticleSet_DeterministicForSeed(t *testing.T) {
	clouds := []PointCloud{gridCloud(8, 0), gridCloud(20, 100)}

	a, err := NewParticleSet(clouds, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	b, err := NewParticleSet(clouds, rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	assert.Equal(t, a.Sizes(), b.Sizes())
	assert.Equal(t, a.Variant(0).Positions, b.Variant(0).Positions)
}

func TestNewParticleSet_NoClouds(t *testing.T) {
	_, err := NewParticleSet(nil, testRng())
	require.ErrorIs(t, err, ErrNoGeometry)
}
