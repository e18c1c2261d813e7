package pointmorph

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"reflect"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gekko3d/pointmorph/shaders"
)

type textVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

type textItem struct {
	Text     string
	Position [2]float32 // framebuffer pixels, (0,0) is top-left
	Scale    float32
	Color    [4]float32
}

type glyphInfo struct {
	UVMin [2]float32
	UVMax [2]float32
	Size  [2]float32
	Off   [2]float32
	Adv   float32
}

const fontAtlasSize = 512

// solidUV addresses the reserved opaque block at the atlas origin, so bars
// and fills go through the same pipeline as glyphs.
var solidUV = [2]float32{2.0 / fontAtlasSize, 2.0 / fontAtlasSize}

type fontAtlas struct {
	image  *image.Alpha
	glyphs map[rune]glyphInfo
	face   font.Face
}

// newFontAtlas rasterizes the printable ascii range into a single coverage
// image. An empty fontPath selects the built-in 7x13 bitmap face, which
// keeps the viewer free of asset files.
func newFontAtlas(fontPath string, fontSize float64) (*fontAtlas, error) {
	var face font.Face = basicfont.Face7x13
	if fontPath != "" {
		fontBytes, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read font file: %w", err)
		}
		f, err := opentype.Parse(fontBytes)
		if err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
		if fontSize <= 0 {
			fontSize = 14
		}
		face, err = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    fontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("create face: %w", err)
		}
	}

	atlas := image.NewAlpha(image.Rect(0, 0, fontAtlasSize, fontAtlasSize))
	glyphs := make(map[rune]glyphInfo)

	// Opaque 4x4 block at the origin for solid fills.
	draw.Draw(atlas, image.Rect(0, 0, 4, 4), image.Opaque, image.Point{}, draw.Src)

	x, y := 8, 2
	rowHeight := 0

	for r := rune(32); r < 127; r++ {
		bounds, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}

		w := bounds.Dx()
		h := bounds.Dy()

		if x+w >= fontAtlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= fontAtlasSize {
			break
		}

		// maskp, not mask.Bounds().Min: bitmap faces share one mask image
		// across all glyphs and maskp selects the slice for this rune.
		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, maskp, draw.Src)

		glyphs[r] = glyphInfo{
			UVMin: [2]float32{float32(x) / fontAtlasSize, float32(y) / fontAtlasSize},
			UVMax: [2]float32{float32(x+w) / fontAtlasSize, float32(y+h) / fontAtlasSize},
			Size:  [2]float32{float32(w), float32(h)},
			Off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			Adv:   float32(adv) / 64.0, // fixed 26.6 to float
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return &fontAtlas{
		image:  atlas,
		glyphs: glyphs,
		face:   face,
	}, nil
}

func (fa *fontAtlas) lineHeight() float32 {
	return float32(fa.face.Metrics().Height.Ceil())
}

func (fa *fontAtlas) appendText(dst []textVertex, item textItem, screenW, screenH int) []textVertex {
	sw := float32(screenW)
	sh := float32(screenH)
	metrics := fa.face.Metrics()
	ascent := float32(metrics.Ascent.Ceil())
	lineHeight := float32(metrics.Height.Ceil())

	startX := item.Position[0]
	posX := startX
	posY := item.Position[1] + ascent*item.Scale

	for _, r := range item.Text {
		if r == '\n' {
			posX = startX
			posY += lineHeight * item.Scale
			continue
		}

		g, ok := fa.glyphs[r]
		if !ok {
			continue
		}

		x0 := (posX+g.Off[0]*item.Scale)/sw*2.0 - 1.0
		y0 := 1.0 - (posY+g.Off[1]*item.Scale)/sh*2.0
		x1 := (posX+(g.Off[0]+g.Size[0])*item.Scale)/sw*2.0 - 1.0
		y1 := 1.0 - (posY+(g.Off[1]+g.Size[1])*item.Scale)/sh*2.0

		dst = append(dst,
			textVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.UVMin[0], g.UVMin[1]}, Color: item.Color},
			textVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: item.Color},
			textVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: item.Color},
			textVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: item.Color},
			textVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.UVMax[0], g.UVMax[1]}, Color: item.Color},
			textVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: item.Color},
		)

		posX += g.Adv * item.Scale
	}

	return dst
}

func appendRect(dst []textVertex, x, y, w, h float32, color [4]float32, screenW, screenH int) []textVertex {
	sw := float32(screenW)
	sh := float32(screenH)

	x0 := x/sw*2.0 - 1.0
	y0 := 1.0 - y/sh*2.0
	x1 := (x+w)/sw*2.0 - 1.0
	y1 := 1.0 - (y+h)/sh*2.0

	return append(dst,
		textVertex{Pos: [2]float32{x0, y0}, UV: solidUV, Color: color},
		textVertex{Pos: [2]float32{x1, y0}, UV: solidUV, Color: color},
		textVertex{Pos: [2]float32{x0, y1}, UV: solidUV, Color: color},
		textVertex{Pos: [2]float32{x1, y0}, UV: solidUV, Color: color},
		textVertex{Pos: [2]float32{x1, y1}, UV: solidUV, Color: color},
		textVertex{Pos: [2]float32{x0, y1}, UV: solidUV, Color: color},
	)
}

type hudState struct {
	atlas *fontAtlas

	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup

	vertexBuf   *wgpu.Buffer
	vertexCount uint32

	visible bool
	fps     float32
}

// HudModule overlays morph status on the rendered frame: variant names, a
// progress bar and the live tuning values. Requires PointsRenderModule.
// Toggle at runtime with H.
type HudModule struct {
	Enabled  bool
	FontPath string
	FontSize float64
}

func (m HudModule) Install(app *App, cmd *Commands) {
	if !m.Enabled {
		return
	}

	gpuRes, ok := app.resources[reflect.TypeOf(GpuState{})]
	if !ok {
		panic("HudModule requires PointsRenderModule")
	}
	gpu := gpuRes.(*GpuState)

	atlas, err := newFontAtlas(m.FontPath, m.FontSize)
	if err != nil {
		app.Logger().Warnf("hud disabled, font setup failed: %v", err)
		return
	}

	st := &hudState{
		atlas:   atlas,
		visible: true,
	}
	st.createResources(gpu)

	cmd.AddResources(st)
	app.UseSystem(System(hudInputSystem).InStage(PreUpdate))
	app.UseSystem(System(hudBuildSystem).InStage(PreRender))
	app.UseSystem(System(hudRenderSystem).InStage(Render))
}

func (st *hudState) createResources(gpu *GpuState) {
	w, h := st.atlas.image.Bounds().Dx(), st.atlas.image.Bounds().Dy()
	tex, err := gpu.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Hud Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		panic(err)
	}
	err = gpu.queue.WriteTexture(tex.AsImageCopy(), st.atlas.image.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})
	if err != nil {
		panic(err)
	}
	atlasView, err := tex.CreateView(nil)
	if err != nil {
		panic(err)
	}

	shader, err := createShaderModule(gpu.device, "Hud Shader", shaders.HudWGSL)
	if err != nil {
		panic(err)
	}
	defer shader.Release()

	st.pipeline, err = gpu.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Hud Pipeline",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(textVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: gpu.surfaceConfig.Format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		panic(err)
	}

	sampler, err := gpu.device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		panic(err)
	}

	st.bindGroup, err = gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: st.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: atlasView},
			{Binding: 1, Sampler: sampler},
		},
	})
	if err != nil {
		panic(err)
	}
}

func hudInputSystem(st *hudState, input *Input) {
	if input.JustPressed[KeyH] {
		st.visible = !st.visible
	}
}

func variantName(names *VariantNames, i int) string {
	if i >= 0 && i < len(names.Names) {
		return names.Names[i]
	}
	return fmt.Sprintf("variant %d", i)
}

func hudBuildSystem(st *hudState, gpu *GpuState, windowState *WindowState, ctrl *MorphController,
	names *VariantNames, settings *PointsSettings, time *Time) {

	if !st.visible {
		st.vertexCount = 0
		return
	}

	fbw, fbh := windowState.FramebufferWidth, windowState.FramebufferHeight
	if fbw <= 0 || fbh <= 0 {
		st.vertexCount = 0
		return
	}

	dt := time.DeltaSeconds()
	if dt > 0 {
		st.fps = lerp(st.fps, 1/dt, 0.1)
	}

	scale := windowState.PixelRatio()
	margin := 12 * scale
	lineH := st.atlas.lineHeight() * scale

	status := variantName(names, ctrl.CurrentIndex())
	if ctrl.Transitioning() {
		status = fmt.Sprintf("%s -> %s  %3.0f%%",
			variantName(names, ctrl.CurrentIndex()),
			variantName(names, ctrl.TargetIndex()),
			ctrl.Progress()*100)
	}
	auto := "auto off"
	if ctrl.AutoAdvance() {
		auto = "auto on"
	}

	white := [4]float32{1, 1, 1, 1}
	gray := [4]float32{0.7, 0.7, 0.7, 0.8}

	verts := make([]textVertex, 0, 512)
	verts = st.atlas.appendText(verts, textItem{
		Text:     status,
		Position: [2]float32{margin, margin},
		Scale:    scale,
		Color:    white,
	}, fbw, fbh)

	// Progress bar under the status line.
	barW := 180 * scale
	barH := 4 * scale
	barY := margin + lineH + 4*scale
	verts = appendRect(verts, margin, barY, barW, barH, [4]float32{1, 1, 1, 0.25}, fbw, fbh)
	verts = appendRect(verts, margin, barY, lerp(0, barW, ctrl.Progress()), barH, white, fbw, fbh)

	info := fmt.Sprintf("%s  %d/%d\nsize %.2f  exposure %.2f  fps %.0f",
		auto, ctrl.CurrentIndex()+1, ctrl.VariantCount(), settings.BaseSize, settings.Exposure, st.fps)
	verts = st.atlas.appendText(verts, textItem{
		Text:     info,
		Position: [2]float32{margin, barY + barH + 6*scale},
		Scale:    scale,
		Color:    gray,
	}, fbw, fbh)

	verts = st.atlas.appendText(verts, textItem{
		Text:     "1-9 morph  space next  a auto  r camera  h hud",
		Position: [2]float32{margin, float32(fbh) - margin - lineH},
		Scale:    scale,
		Color:    gray,
	}, fbw, fbh)

	st.vertexCount = uint32(len(verts))
	if len(verts) == 0 {
		return
	}

	vSize := uint64(len(verts) * int(unsafe.Sizeof(textVertex{})))
	if st.vertexBuf == nil || st.vertexBuf.GetSize() < vSize {
		if st.vertexBuf != nil {
			st.vertexBuf.Release()
		}
		var err error
		st.vertexBuf, err = gpu.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Hud VB",
			Size:  vSize,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
	}
	gpu.queue.WriteBuffer(st.vertexBuf, 0, unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), vSize))
}

func hudRenderSystem(st *hudState, frame *FrameContext) {
	if !frame.active || !st.visible || st.vertexCount == 0 {
		return
	}
	frame.pass.SetPipeline(st.pipeline)
	frame.pass.SetBindGroup(0, st.bindGroup, nil)
	frame.pass.SetVertexBuffer(0, st.vertexBuf, 0, st.vertexBuf.GetSize())
	frame.pass.Draw(st.vertexCount, 1, 0, 0)
}
