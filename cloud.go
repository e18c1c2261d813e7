package pointmorph

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrNoGeometry is returned when normalization is asked to work with an
// empty variant set or a variant that has no points.
var ErrNoGeometry = errors.New("no geometry")

// PointCloud is one morph target shape: an ordered sequence of xyz triplets.
type PointCloud struct {
	Positions []float32
}

func (c PointCloud) Count() int {
	return len(c.Positions) / 3
}

func (c PointCloud) Point(i int) [3]float32 {
	return [3]float32{c.Positions[i*3], c.Positions[i*3+1], c.Positions[i*3+2]}
}

// NormalizeClouds pads every variant to the point count of the largest one so
// any pair can be interpolated slot by slot. Variants already at the maximum
// count are passed through with their backing array untouched. Shorter
// variants keep their original points in order and fill the remaining slots
// by sampling, with replacement, from their own points. Inputs are never
// mutated.
func NormalizeClouds(clouds []PointCloud, rng *rand.Rand) ([]PointCloud, error) {
	if len(clouds) == 0 {
		return nil, fmt.Errorf("normalize: %w: empty variant set", ErrNoGeometry)
	}

	maxCount := 0
	for i, c := range clouds {
		n := c.Count()
		if n == 0 {
			return nil, fmt.Errorf("normalize: %w: variant %d has no points", ErrNoGeometry, i)
		}
		if n > maxCount {
			maxCount = n
		}
	}

	out := make([]PointCloud, len(clouds))
	for i, c := range clouds {
		n := c.Count()
		if n == maxCount {
			out[i] = c
			continue
		}

		padded := make([]float32, maxCount*3)
		copy(padded, c.Positions[:n*3])
		for p := n; p < maxCount; p++ {
			src := rng.Intn(n) * 3
			padded[p*3+0] = c.Positions[src+0]
			padded[p*3+1] = c.Positions[src+1]
			padded[p*3+2] = c.Positions[src+2]
		}
		out[i] = PointCloud{Positions: padded}
	}
	return out, nil
}
