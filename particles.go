package pointmorph

import (
	"math/rand"
)

// ParticleSet holds the normalized shape variants and the per-particle size
// scalars. Variants and sizes are fixed at construction; morphing only ever
// interpolates positions between two variants of this set.
type ParticleSet struct {
	variants []PointCloud
	sizes    []float32
	count    int
}

// NewParticleSet normalizes the given clouds and assigns every particle slot
// a size in [0,1) drawn from rng. The sizes stay with their slot across all
// morphs.
func NewParticleSet(clouds []PointCloud, rng *rand.Rand) (*ParticleSet, error) {
	normalized, err := NormalizeClouds(clouds, rng)
	if err != nil {
		return nil, err
	}

	count := normalized[0].Count()
	sizes := make([]float32, count)
	for i := range sizes {
		sizes[i] = rng.Float32()
	}

	return &ParticleSet{
		variants: normalized,
		sizes:    sizes,
		count:    count,
	}, nil
}

func (s *ParticleSet) VariantCount() int {
	return len(s.variants)
}

// PointCount is the shared length of all variants after normalization.
func (s *ParticleSet) PointCount() int {
	return s.count
}

func (s *ParticleSet) Variant(i int) PointCloud {
	return s.variants[i]
}

func (s *ParticleSet) Sizes() []float32 {
	return s.sizes
}
