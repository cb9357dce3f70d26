package gpu

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Embedded overlay shader source.
//
//go:embed shaders/overlay.wgsl
var overlayShaderSource string

// Overlay rendering errors.
var (
	// ErrUnknownTexture is returned when a draw call or update references a
	// texture id that was never uploaded.
	ErrUnknownTexture = errors.New("gpu: unknown overlay texture")

	// ErrInvalidImage is returned when an image delta has inconsistent
	// dimensions and pixel data.
	ErrInvalidImage = errors.New("gpu: invalid image delta")

	// ErrTextureTooLarge is returned when an image exceeds the device's
	// maximum 2D texture side.
	ErrTextureTooLarge = errors.New("gpu: texture exceeds device limit")
)

// OverlayVertexStride is the byte stride of one overlay vertex.
// Layout per vertex (matches ImDrawVert):
//
//	position (vec2<f32>)   = 8 bytes  (location 0)
//	uv       (vec2<f32>)   = 8 bytes  (location 1)
//	color    (unorm8x4)    = 4 bytes  (location 2)
//
// Total = 20 bytes per vertex.
const OverlayVertexStride = 20

// OverlayIndexSize is the byte size of one index (uint16).
const OverlayIndexSize = 2

// overlayUniformSize is screen_size (vec2<f32>) plus padding to 16 bytes.
const overlayUniformSize = 16

// copyBufferAlignment is the required alignment of buffer write sizes.
const copyBufferAlignment = 4

// TextureID identifies a UI-managed texture.
type TextureID uint64

// ImageDelta is a full replacement image for a texture, RGBA8 with
// straight alpha.
type ImageDelta struct {
	Width  int
	Height int
	Pixels []byte
}

// ScissorRect is a clip rectangle in physical pixels.
type ScissorRect struct {
	X, Y          uint32
	Width, Height uint32
}

// DrawCall is one indexed draw of a paint job.
type DrawCall struct {
	Clip       ScissorRect
	Texture    TextureID
	FirstIndex uint32
	IndexCount uint32
}

// PaintJob is one tessellated draw list: raw vertex and index bytes and the
// draw calls that reference them.
type PaintJob struct {
	Vertices []byte
	Indices  []byte
	Draws    []DrawCall
}

// ScreenDescriptor describes the render target the overlay draws into.
type ScreenDescriptor struct {
	SizeInPixels   [2]uint32
	PixelsPerPoint float32
}

// SizeInPoints returns the target size in logical points.
func (s ScreenDescriptor) SizeInPoints() [2]float32 {
	ppp := s.PixelsPerPoint
	if ppp <= 0 {
		ppp = 1
	}
	return [2]float32{
		float32(s.SizeInPixels[0]) / ppp,
		float32(s.SizeInPixels[1]) / ppp,
	}
}

// overlayTexture is one uploaded UI texture with its bind group.
type overlayTexture struct {
	tex       hal.Texture
	view      hal.TextureView
	bindGroup hal.BindGroup
	width     int
	height    int
}

// overlayFrameResources holds per-frame GPU resources for the overlay pass.
type overlayFrameResources struct {
	vertBuf      hal.Buffer
	idxBuf       hal.Buffer
	uniformBuf   hal.Buffer
	uniformGroup hal.BindGroup

	// per paint job byte offsets into vertBuf / idxBuf
	vertOffsets []uint64
	idxOffsets  []uint64
}

func (r *overlayFrameResources) destroy(device hal.Device) {
	if r.uniformGroup != nil {
		device.DestroyBindGroup(r.uniformGroup)
	}
	if r.uniformBuf != nil {
		device.DestroyBuffer(r.uniformBuf)
	}
	if r.idxBuf != nil {
		device.DestroyBuffer(r.idxBuf)
	}
	if r.vertBuf != nil {
		device.DestroyBuffer(r.vertBuf)
	}
}

// OverlayRenderer draws Dear ImGui paint jobs into an existing render pass.
//
// Textures live until FreeTexture; vertex, index and uniform buffers are
// rebuilt by UpdateBuffers every frame and handed back to the caller with
// ReleaseFrame so they can be destroyed after the GPU is done with them.
//
// Architecture:
//
//	OverlayRenderer owns shader, layouts, pipeline, sampler, textures
//	Submitter (shared with the caller) defers destruction of retired
//	textures and per-frame buffers until their submission completes
type OverlayRenderer struct {
	device hal.Device
	queue  hal.Queue
	submit *Submitter

	format         gputypes.TextureFormat
	maxTextureSide uint32

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	textureLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline
	sampler       hal.Sampler

	textures map[TextureID]*overlayTexture
	frame    *overlayFrameResources
}

// NewOverlayRenderer creates the overlay pipeline for targets of the given
// format. Retired resources are released through submit.
func NewOverlayRenderer(device hal.Device, queue hal.Queue, submit *Submitter,
	format gputypes.TextureFormat, maxTextureSide uint32) (*OverlayRenderer, error) {
	r := &OverlayRenderer{
		device:         device,
		queue:          queue,
		submit:         submit,
		format:         format,
		maxTextureSide: maxTextureSide,
		textures:       make(map[TextureID]*overlayTexture),
	}
	if err := r.createPipeline(); err != nil {
		r.destroyPipeline()
		return nil, err
	}
	return r, nil
}

// FragmentEntryPoint returns the fragment entry point used for format.
// sRGB targets get colors converted to linear so the hardware encode on
// store round-trips them.
func FragmentEntryPoint(format gputypes.TextureFormat) string {
	if IsSRGB(format) {
		return "fs_main_linear"
	}
	return "fs_main_gamma"
}

// createPipeline compiles the overlay shader and creates the render
// pipeline with straight-alpha blending.
func (r *OverlayRenderer) createPipeline() error {
	shader, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "overlay_shader",
		Source: hal.ShaderSource{WGSL: overlayShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile overlay shader: %w", err)
	}
	r.shader = shader

	// Group 0: Locals (uniform buffer, vertex).
	uniformLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "overlay_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create overlay uniform layout: %w", err)
	}
	r.uniformLayout = uniformLayout

	// Group 1: texture + sampler (fragment), one bind group per texture.
	textureLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "overlay_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create overlay texture layout: %w", err)
	}
	r.textureLayout = textureLayout

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "overlay_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.uniformLayout, r.textureLayout},
	})
	if err != nil {
		return fmt.Errorf("create overlay pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	sampler, err := r.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "overlay_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create overlay sampler: %w", err)
	}
	r.sampler = sampler

	blend := alphaBlend()
	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "overlay_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: "vs_main",
			Buffers:    overlayVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: FragmentEntryPoint(r.format),
			Targets: []gputypes.ColorTargetState{
				{
					Format:    r.format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create overlay pipeline: %w", err)
	}
	r.pipeline = pipeline

	logger().Debug("gpu: overlay pipeline created", "format", r.format, "fragment", FragmentEntryPoint(r.format))
	return nil
}

// alphaBlend returns straight (non-premultiplied) alpha blending, which is
// what Dear ImGui vertex colors use.
func alphaBlend() gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

// overlayVertexLayout returns the vertex buffer layout for the overlay
// pipeline. Matches VertexInput in overlay.wgsl.
func overlayVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: OverlayVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // uv
				{Format: gputypes.VertexFormatUnorm8x4, Offset: 16, ShaderLocation: 2}, // color
			},
		},
	}
}

// HasTexture reports whether id has been uploaded and not freed.
func (r *OverlayRenderer) HasTexture(id TextureID) bool {
	_, ok := r.textures[id]
	return ok
}

// TextureCount returns the number of live textures.
func (r *OverlayRenderer) TextureCount() int {
	return len(r.textures)
}

// UpdateTexture uploads img as the full content of texture id, creating or
// recreating the GPU texture when the size changes.
func (r *OverlayRenderer) UpdateTexture(id TextureID, img ImageDelta) error {
	if img.Width <= 0 || img.Height <= 0 || len(img.Pixels) != img.Width*img.Height*4 {
		return fmt.Errorf("%w: texture %d is %dx%d with %d bytes",
			ErrInvalidImage, id, img.Width, img.Height, len(img.Pixels))
	}
	if r.maxTextureSide > 0 && (uint32(img.Width) > r.maxTextureSide || uint32(img.Height) > r.maxTextureSide) { //nolint:gosec // checked positive above
		return fmt.Errorf("%w: texture %d is %dx%d, limit %d",
			ErrTextureTooLarge, id, img.Width, img.Height, r.maxTextureSide)
	}

	t, ok := r.textures[id]
	if ok && (t.width != img.Width || t.height != img.Height) {
		r.retire(t)
		delete(r.textures, id)
		ok = false
	}
	if !ok {
		created, err := r.createTexture(id, img.Width, img.Height)
		if err != nil {
			return err
		}
		r.textures[id] = created
		t = created
	}

	w := uint32(img.Width)  //nolint:gosec // checked positive above
	h := uint32(img.Height) //nolint:gosec // checked positive above
	r.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
		},
		img.Pixels,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	logger().Debug("gpu: overlay texture uploaded", "id", id, "width", w, "height", h)
	return nil
}

func (r *OverlayRenderer) createTexture(id TextureID, width, height int) (*overlayTexture, error) {
	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("overlay_texture_%d", id),
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}, //nolint:gosec // validated by caller
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create overlay texture %d: %w", id, err)
	}

	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("overlay_texture_%d_view", id),
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create overlay texture view %d: %w", id, err)
	}

	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  fmt.Sprintf("overlay_texture_%d_bind", id),
		Layout: r.textureLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: r.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		r.device.DestroyTextureView(view)
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create overlay texture bind group %d: %w", id, err)
	}

	return &overlayTexture{tex: tex, view: view, bindGroup: bindGroup, width: width, height: height}, nil
}

// FreeTexture releases texture id once the GPU has finished every
// submission that may reference it. Unknown ids are ignored.
func (r *OverlayRenderer) FreeTexture(id TextureID) {
	t, ok := r.textures[id]
	if !ok {
		return
	}
	delete(r.textures, id)
	r.retire(t)
	logger().Debug("gpu: overlay texture freed", "id", id)
}

// retire schedules destruction of t after the latest submission.
func (r *OverlayRenderer) retire(t *overlayTexture) {
	device := r.device
	r.submit.Defer(func() {
		device.DestroyBindGroup(t.bindGroup)
		device.DestroyTextureView(t.view)
		device.DestroyTexture(t.tex)
	})
}

// UpdateBuffers uploads the vertex and index data of jobs and the screen
// uniform into fresh per-frame buffers. Call ReleaseFrame after the
// command buffer that uses them has been handed to the submitter.
func (r *OverlayRenderer) UpdateBuffers(jobs []PaintJob, screen ScreenDescriptor) error {
	if r.frame != nil {
		// Previous frame was never released; drop it now.
		r.frame.destroy(r.device)
		r.frame = nil
	}

	res := &overlayFrameResources{
		vertOffsets: make([]uint64, len(jobs)),
		idxOffsets:  make([]uint64, len(jobs)),
	}

	var vertSize, idxSize uint64
	for i := range jobs {
		res.vertOffsets[i] = vertSize
		res.idxOffsets[i] = idxSize
		vertSize += alignUp(uint64(len(jobs[i].Vertices)), copyBufferAlignment)
		idxSize += alignUp(uint64(len(jobs[i].Indices)), copyBufferAlignment)
	}

	if vertSize > 0 {
		vertData := make([]byte, vertSize)
		idxData := make([]byte, idxSize)
		for i := range jobs {
			copy(vertData[res.vertOffsets[i]:], jobs[i].Vertices)
			copy(idxData[res.idxOffsets[i]:], jobs[i].Indices)
		}

		vertBuf, err := r.createAndUploadBuffer("overlay_verts", vertData,
			gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			return fmt.Errorf("create vertex buffer: %w", err)
		}
		res.vertBuf = vertBuf

		idxBuf, err := r.createAndUploadBuffer("overlay_indices", idxData,
			gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
		if err != nil {
			res.destroy(r.device)
			return fmt.Errorf("create index buffer: %w", err)
		}
		res.idxBuf = idxBuf
	}

	uniformBuf, err := r.createAndUploadBuffer("overlay_uniform", makeOverlayUniform(screen),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		res.destroy(r.device)
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	res.uniformBuf = uniformBuf

	uniformGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "overlay_uniform_bind",
		Layout: r.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: overlayUniformSize,
			}},
		},
	})
	if err != nil {
		res.destroy(r.device)
		return fmt.Errorf("create uniform bind group: %w", err)
	}
	res.uniformGroup = uniformGroup

	r.frame = res
	return nil
}

// RecordDraws records the draw calls of jobs into rp. UpdateBuffers must
// have been called with the same jobs. Returns the number of draw calls
// issued; calls with an empty clip are skipped.
func (r *OverlayRenderer) RecordDraws(rp hal.RenderPassEncoder, jobs []PaintJob, screen ScreenDescriptor) (int, error) {
	res := r.frame
	if res == nil || res.vertBuf == nil {
		return 0, nil
	}

	rp.SetPipeline(r.pipeline)
	rp.SetBindGroup(0, res.uniformGroup, nil)

	draws := 0
	for i := range jobs {
		job := &jobs[i]
		if len(job.Draws) == 0 {
			continue
		}
		rp.SetVertexBuffer(0, res.vertBuf, res.vertOffsets[i])
		rp.SetIndexBuffer(res.idxBuf, gputypes.IndexFormatUint16, res.idxOffsets[i])

		for _, dc := range job.Draws {
			clip, ok := clampScissor(dc.Clip, screen.SizeInPixels)
			if !ok || dc.IndexCount == 0 {
				continue
			}
			t, ok := r.textures[dc.Texture]
			if !ok {
				return draws, fmt.Errorf("%w: %d", ErrUnknownTexture, dc.Texture)
			}
			rp.SetScissorRect(clip.X, clip.Y, clip.Width, clip.Height)
			rp.SetBindGroup(1, t.bindGroup, nil)
			rp.DrawIndexed(dc.IndexCount, 1, dc.FirstIndex, 0, 0)
			draws++
		}
	}
	return draws, nil
}

// ReleaseFrame detaches the current per-frame buffers and returns a
// function that destroys them. Pass it to Submitter.Submit together with
// the command buffer that references them.
func (r *OverlayRenderer) ReleaseFrame() func() {
	res := r.frame
	r.frame = nil
	device := r.device
	return func() {
		if res != nil {
			res.destroy(device)
		}
	}
}

// Destroy releases all GPU resources held by the renderer. The caller must
// have waited for outstanding submissions first.
func (r *OverlayRenderer) Destroy() {
	if r.frame != nil {
		r.frame.destroy(r.device)
		r.frame = nil
	}
	for id, t := range r.textures {
		r.device.DestroyBindGroup(t.bindGroup)
		r.device.DestroyTextureView(t.view)
		r.device.DestroyTexture(t.tex)
		delete(r.textures, id)
	}
	r.destroyPipeline()
}

// destroyPipeline releases all pipeline resources in reverse creation order.
func (r *OverlayRenderer) destroyPipeline() {
	if r.device == nil {
		return
	}
	if r.pipeline != nil {
		r.device.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.sampler != nil {
		r.device.DestroySampler(r.sampler)
		r.sampler = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.textureLayout != nil {
		r.device.DestroyBindGroupLayout(r.textureLayout)
		r.textureLayout = nil
	}
	if r.uniformLayout != nil {
		r.device.DestroyBindGroupLayout(r.uniformLayout)
		r.uniformLayout = nil
	}
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (r *OverlayRenderer) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	r.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// makeOverlayUniform creates the 16-byte Locals uniform.
func makeOverlayUniform(screen ScreenDescriptor) []byte {
	size := screen.SizeInPoints()
	buf := make([]byte, overlayUniformSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(size[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(size[1]))
	return buf
}

// clampScissor clips rect to the target size. ok is false when nothing
// remains.
func clampScissor(rect ScissorRect, size [2]uint32) (ScissorRect, bool) {
	if rect.X >= size[0] || rect.Y >= size[1] {
		return ScissorRect{}, false
	}
	rect.Width = min(rect.Width, size[0]-rect.X)
	rect.Height = min(rect.Height, size[1]-rect.Y)
	if rect.Width == 0 || rect.Height == 0 {
		return ScissorRect{}, false
	}
	return rect, true
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}
