package shaders

import (
	_ "embed"
)

//go:embed points.wgsl
var PointsWGSL string

//go:embed blit.wgsl
var BlitWGSL string

//go:embed hud.wgsl
var HudWGSL string
