package pointmorph

import (
	"encoding/binary"
	"math"
	"reflect"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/pointmorph/shaders"
)

// PointsSettings is the live control surface of the particle renderer.
// Systems may change any field at runtime; values are re-uploaded every
// frame.
type PointsSettings struct {
	BaseSize float32
	ColorA   [3]float32
	ColorB   [3]float32
	Exposure float32
}

// ShaderWatch hands freshly edited shader source from a watcher goroutine to
// the render thread. Publish may be called from any goroutine.
type ShaderWatch struct {
	mu      sync.Mutex
	pending string
	dirty   bool
}

func (w *ShaderWatch) Publish(source string) {
	w.mu.Lock()
	w.pending = source
	w.dirty = true
	w.mu.Unlock()
}

func (w *ShaderWatch) take() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirty {
		return "", false
	}
	w.dirty = false
	return w.pending, true
}

// FrameContext carries the in-flight frame between render systems. The
// surface texture can only be acquired once per frame, so the points system
// opens the swapchain pass and later systems append to it; the present
// system closes and submits.
type FrameContext struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
	active  bool
}

const (
	pointsUniformBytes = 112
	blitUniformBytes   = 16

	hdrFormat = wgpu.TextureFormatRGBA16Float
)

type pointsState struct {
	pipeline     *wgpu.RenderPipeline
	blitPipeline *wgpu.RenderPipeline

	uniformBuf     *wgpu.Buffer
	blitUniformBuf *wgpu.Buffer

	variantBufs []*wgpu.Buffer
	sizeBuf     *wgpu.Buffer
	pointCount  uint32

	hdrTexture *wgpu.Texture
	hdrView    *wgpu.TextureView
	sampler    *wgpu.Sampler

	pointsBindGroup *wgpu.BindGroup
	blitBindGroup   *wgpu.BindGroup
}

// PointsRenderModule owns the GPU and draws the morphing cloud: an additive
// HDR pass over per-variant position buffers, then a tone mapping blit to
// the swapchain. Requires WindowModule and MorphModule to be installed
// first.
type PointsRenderModule struct {
	Settings PointsSettings

	// ShaderSource overrides the embedded points shader; empty means the
	// built-in one.
	ShaderSource string

	// Watch, when set, delivers edited shader source for live rebuilds.
	Watch *ShaderWatch
}

func (m PointsRenderModule) Install(app *App, cmd *Commands) {
	wsRes, ok := app.resources[reflect.TypeOf(WindowState{})]
	if !ok {
		panic("PointsRenderModule requires WindowModule")
	}
	windowState := wsRes.(*WindowState)

	ctrlRes, ok := app.resources[reflect.TypeOf(MorphController{})]
	if !ok {
		panic("PointsRenderModule requires MorphModule")
	}
	ctrl := ctrlRes.(*MorphController)

	settings := m.Settings
	if settings.BaseSize <= 0 {
		settings.BaseSize = 0.4
	}
	if settings.Exposure <= 0 {
		settings.Exposure = 1
	}

	source := m.ShaderSource
	if source == "" {
		source = shaders.PointsWGSL
	}
	watch := m.Watch
	if watch == nil {
		watch = &ShaderWatch{}
	}

	gpu := createGpuState(windowState)
	st := createPointsState(gpu, ctrl.Set(), source)

	cmd.AddResources(gpu, st, &settings, watch, &FrameContext{})
	app.UseSystem(System(pointsTuneSystem).InStage(PreUpdate))
	app.UseSystem(System(pointsPrepareSystem).InStage(PreRender))
	app.UseSystem(System(pointsRenderSystem).InStage(Render))
	app.UseSystem(System(presentFrameSystem).InStage(PostRender))
}

func createPointsState(gpu *GpuState, set *ParticleSet, shaderSource string) *pointsState {
	st := &pointsState{}

	var err error
	st.pipeline, err = buildPointsPipeline(gpu, shaderSource)
	if err != nil {
		panic(err)
	}
	st.blitPipeline, err = buildBlitPipeline(gpu, shaders.BlitWGSL)
	if err != nil {
		panic(err)
	}

	st.uniformBuf, err = gpu.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Points Uniforms",
		Size:  pointsUniformBytes,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	st.blitUniformBuf, err = gpu.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Blit Uniforms",
		Size:  blitUniformBytes,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}

	st.sampler, err = gpu.device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		panic(err)
	}

	// One immutable position buffer per variant; morphing rebinds buffers
	// instead of rewriting them.
	for i := 0; i < set.VariantCount(); i++ {
		buf, err := gpu.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    "Variant Positions",
			Contents: wgpu.ToBytes(set.Variant(i).Positions),
			Usage:    wgpu.BufferUsageVertex,
		})
		if err != nil {
			panic(err)
		}
		st.variantBufs = append(st.variantBufs, buf)
	}
	st.sizeBuf, err = gpu.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Particle Sizes",
		Contents: wgpu.ToBytes(set.Sizes()),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		panic(err)
	}
	st.pointCount = uint32(set.PointCount())

	st.createHdrTarget(gpu, int(gpu.surfaceConfig.Width), int(gpu.surfaceConfig.Height))
	st.createPointsBindGroup(gpu)

	return st
}

func buildPointsPipeline(gpu *GpuState, source string) (*wgpu.RenderPipeline, error) {
	shader, err := createShaderModule(gpu.device, "Points Shader", source)
	if err != nil {
		return nil, err
	}
	defer shader.Release()

	pipeline, err := gpu.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Points Pipeline",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			// All three slots step per instance; the quad corner comes from
			// the vertex index inside the shader.
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 12,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: 12,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 1},
					},
				},
				{
					ArrayStride: 4,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32, Offset: 0, ShaderLocation: 2},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: hdrFormat,
				// Additive accumulation; depth never written, draw order
				// does not matter.
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOne,
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
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: nil,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}

func buildBlitPipeline(gpu *GpuState, source string) (*wgpu.RenderPipeline, error) {
	shader, err := createShaderModule(gpu.device, "Blit Shader", source)
	if err != nil {
		return nil, err
	}
	defer shader.Release()

	pipeline, err := gpu.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Blit Pipeline",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    gpu.surfaceConfig.Format,
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
		return nil, err
	}
	return pipeline, nil
}

func (st *pointsState) createHdrTarget(gpu *GpuState, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	if st.hdrTexture != nil {
		st.hdrTexture.Release()
	}

	var err error
	st.hdrTexture, err = gpu.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "HDR Target",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        hdrFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		panic(err)
	}
	st.hdrView, err = st.hdrTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	st.blitBindGroup, err = gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: st.blitPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: st.hdrView},
			{Binding: 1, Sampler: st.sampler},
			{Binding: 2, Buffer: st.blitUniformBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		panic(err)
	}
}

func (st *pointsState) createPointsBindGroup(gpu *GpuState) {
	bindGroup, err := gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: st.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: st.uniformBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		panic(err)
	}
	st.pointsBindGroup = bindGroup
}

// pointsTuneSystem maps held keys onto the runtime settings: up/down scale
// the particle size, left/right the exposure.
func pointsTuneSystem(settings *PointsSettings, input *Input, time *Time) {
	rate := 1 + 0.9*time.DeltaSeconds()
	if input.Pressed[KeyUp] {
		settings.BaseSize *= rate
	}
	if input.Pressed[KeyDown] {
		settings.BaseSize /= rate
	}
	if input.Pressed[KeyRight] {
		settings.Exposure *= rate
	}
	if input.Pressed[KeyLeft] {
		settings.Exposure /= rate
	}
}

func pointsPrepareSystem(st *pointsState, gpu *GpuState, windowState *WindowState, camera *OrbitCamera,
	ctrl *MorphController, settings *PointsSettings, watch *ShaderWatch, logger *DefaultLogger) {

	fbw, fbh := windowState.FramebufferWidth, windowState.FramebufferHeight
	if fbw > 0 && fbh > 0 &&
		(uint32(fbw) != gpu.surfaceConfig.Width || uint32(fbh) != gpu.surfaceConfig.Height) {
		gpu.resizeSurface(fbw, fbh)
		st.createHdrTarget(gpu, fbw, fbh)
	}

	if source, ok := watch.take(); ok {
		pipeline, err := buildPointsPipeline(gpu, source)
		if err != nil {
			logger.Errorf("shader reload rejected: %v", err)
		} else {
			st.pipeline.Release()
			st.pointsBindGroup.Release()
			st.pipeline = pipeline
			st.createPointsBindGroup(gpu)
			logger.Infof("points shader reloaded")
		}
	}

	aspect := float32(gpu.surfaceConfig.Width) / float32(gpu.surfaceConfig.Height)
	viewProj := camera.ProjectionMatrix(aspect).Mul4(camera.ViewMatrix())

	// Struct Uniforms {
	//   view_proj: mat4x4<f32>; -- 64
	//   color_a: vec3<f32>;     -- 76
	//   progress: f32;          -- 80
	//   color_b: vec3<f32>;     -- 92
	//   base_size: f32;         -- 96
	//   resolution: vec2<f32>;  -- 104
	// } -> 112 bytes (padded)
	buf := make([]byte, pointsUniformBytes)
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	for i := 0; i < 16; i++ {
		put(i*4, viewProj[i])
	}
	put(64, settings.ColorA[0])
	put(68, settings.ColorA[1])
	put(72, settings.ColorA[2])
	put(76, ctrl.Progress())
	put(80, settings.ColorB[0])
	put(84, settings.ColorB[1])
	put(88, settings.ColorB[2])
	// The resolution uniform is in device pixels, which already carries the
	// high-dpi scale into the diameter law.
	put(92, settings.BaseSize)
	put(96, float32(gpu.surfaceConfig.Width))
	put(100, float32(gpu.surfaceConfig.Height))
	gpu.queue.WriteBuffer(st.uniformBuf, 0, buf)

	blit := make([]byte, blitUniformBytes)
	binary.LittleEndian.PutUint32(blit[0:], math.Float32bits(settings.Exposure))
	binary.LittleEndian.PutUint32(blit[4:], math.Float32bits(surfaceInvGamma(gpu.surfaceConfig.Format)))
	gpu.queue.WriteBuffer(st.blitUniformBuf, 0, blit)
}

func pointsRenderSystem(st *pointsState, gpu *GpuState, frame *FrameContext,
	ctrl *MorphController, logger *DefaultLogger) {

	if gpu.surfaceConfig.Width == 0 || gpu.surfaceConfig.Height == 0 {
		return
	}

	nextTexture, err := gpu.surface.GetCurrentTexture()
	if err != nil {
		logger.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		logger.Errorf("CreateView failed: %v", err)
		nextTexture.Release()
		return
	}
	encoder, err := gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		logger.Errorf("CreateCommandEncoder failed: %v", err)
		view.Release()
		nextTexture.Release()
		return
	}

	// Accumulation pass
	hdrPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       st.hdrView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	hdrPass.SetPipeline(st.pipeline)
	hdrPass.SetBindGroup(0, st.pointsBindGroup, nil)
	hdrPass.SetVertexBuffer(0, st.variantBufs[ctrl.CurrentIndex()], 0, wgpu.WholeSize)
	hdrPass.SetVertexBuffer(1, st.variantBufs[ctrl.TargetIndex()], 0, wgpu.WholeSize)
	hdrPass.SetVertexBuffer(2, st.sizeBuf, 0, wgpu.WholeSize)
	hdrPass.Draw(6, st.pointCount, 0, 0)
	if err := hdrPass.End(); err != nil {
		logger.Errorf("points pass End failed: %v", err)
	}

	// Swapchain pass; stays open so overlay systems can append, the present
	// system closes it.
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	pass.SetPipeline(st.blitPipeline)
	pass.SetBindGroup(0, st.blitBindGroup, nil)
	pass.Draw(3, 1, 0, 0)

	frame.texture = nextTexture
	frame.view = view
	frame.encoder = encoder
	frame.pass = pass
	frame.active = true
}

func presentFrameSystem(frame *FrameContext, gpu *GpuState, logger *DefaultLogger) {
	if !frame.active {
		return
	}
	frame.active = false

	if err := frame.pass.End(); err != nil {
		logger.Errorf("render pass End failed: %v", err)
	}
	cmd, err := frame.encoder.Finish(nil)
	if err != nil {
		logger.Errorf("encoder Finish failed: %v", err)
		frame.view.Release()
		frame.texture.Release()
		return
	}
	gpu.queue.Submit(cmd)
	gpu.surface.Present()

	frame.view.Release()
	frame.texture.Release()
	frame.pass = nil
	frame.encoder = nil
	frame.view = nil
	frame.texture = nil
}
