package pointmorph

// The particle shaders live in shaders/points.wgsl. The functions here mirror
// the two laws the shader commits to, so they stay testable on the CPU side:
//
//	alpha(d)    = 0.05/d - 0.1
//	diameter(w) = size * baseSize * resolution.y / w
//
// alpha crosses zero at d = 0.5 (the sprite edge) and grows without bound
// toward the center. The peak is deliberately unclamped; the HDR target and
// the tone mapping pass absorb it.

const (
	falloffGain = 0.05
	falloffCut  = 0.1
)

func alphaFalloff(d float32) float32 {
	return falloffGain/d - falloffCut
}

func pointDiameter(size, baseSize, resolutionY, clipW float32) float32 {
	return size * baseSize * resolutionY / clipW
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
