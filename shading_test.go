package pointmorph

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestAlphaFalloff_ZeroAtSpriteEdge(t *testing.T) {
	if a := alphaFalloff(0.5); math32.Abs(a) > 1e-6 {
		t.Errorf("alpha at d=0.5 should be 0, got %v", a)
	}
}

func TestAlphaFalloff_ReferencePoints(t *testing.T) {
	if a := alphaFalloff(0.25); math32.Abs(a-0.1) > 1e-6 {
		t.Errorf("alpha at d=0.25 should be 0.1, got %v", a)
	}
	if a := alphaFalloff(0.1); math32.Abs(a-0.4) > 1e-6 {
		t.Errorf("alpha at d=0.1 should be 0.4, got %v", a)
	}
}

func TestAlphaFalloff_UnboundedTowardCenter(t *testing.T) {
	// No upper clamp: the cloud's additive glow depends on values far
	// above 1 near the sprite center.
	if a := alphaFalloff(0.001); a < 49 {
		t.Errorf("alpha at d=0.001 should exceed 49, got %v", a)
	}
	if alphaFalloff(0.01) <= alphaFalloff(0.1) {
		t.Error("alpha must grow as d shrinks")
	}
}

func TestAlphaFalloff_NegativeBeyondEdge(t *testing.T) {
	// The raw law goes negative past d=0.5; the shader discards there.
	if a := alphaFalloff(0.7); a >= 0 {
		t.Errorf("alpha at d=0.7 should be negative, got %v", a)
	}
}

func TestPointDiameter_ShrinksWithDepth(t *testing.T) {
	near := pointDiameter(0.5, 20, 1080, 2)
	far := pointDiameter(0.5, 20, 1080, 8)

	if near <= far {
		t.Errorf("diameter must shrink with depth: near %v, far %v", near, far)
	}
	if math32.Abs(near-4*far) > 1e-3 {
		t.Errorf("diameter should scale as 1/w: near %v, far %v", near, far)
	}
}

func TestPointDiameter_ScalesWithSizeAndResolution(t *testing.T) {
	base := pointDiameter(0.5, 20, 1080, 4)

	if d := pointDiameter(1.0, 20, 1080, 4); math32.Abs(d-2*base) > 1e-3 {
		t.Errorf("doubling size should double the diameter: %v vs %v", d, base)
	}
	if d := pointDiameter(0.5, 20, 2160, 4); math32.Abs(d-2*base) > 1e-3 {
		t.Errorf("doubling vertical resolution should double the diameter: %v vs %v", d, base)
	}
}

func TestLerp(t *testing.T) {
	if v := lerp(2, 4, 0.5); v != 3 {
		t.Errorf("lerp(2,4,0.5) = %v, want 3", v)
	}
	if v := lerp(-1, 1, 0); v != -1 {
		t.Errorf("lerp at t=0 must return the start, got %v", v)
	}
	if v := lerp(-1, 1, 1); v != 1 {
		t.Errorf("lerp at t=1 must return the end, got %v", v)
	}
}
