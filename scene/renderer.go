package scene

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/trioverlay"
	"github.com/gogpu/trioverlay/internal/gpu"
	"github.com/gogpu/trioverlay/render"
)

//go:embed shaders/triangle.wgsl
var triangleShaderSource string

// Renderer draws the triangle. It owns one immutable pipeline and
// submits one command buffer per frame.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	submit *gpu.Submitter

	format     gputypes.TextureFormat
	clearColor gputypes.Color

	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	lastElapsed float32
	frames      uint64
}

// New creates the triangle pipeline for targets of the given format on
// the provider's device.
func New(provider render.DeviceHandle, format gputypes.TextureFormat, opts ...Option) (*Renderer, error) {
	device, queue, err := render.HAL(provider)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	submit, err := gpu.NewSubmitter(device, queue, o.frameLatency)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	r := &Renderer{
		device:     device,
		queue:      queue,
		submit:     submit,
		format:     format,
		clearColor: o.clearColor,
	}
	if err := r.createPipeline(); err != nil {
		r.Destroy()
		return nil, fmt.Errorf("scene: %w", err)
	}
	return r, nil
}

func (r *Renderer) createPipeline() error {
	shader, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "triangle_shader",
		Source: hal.ShaderSource{WGSL: triangleShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile triangle shader: %w", err)
	}
	r.shader = shader

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "triangle_pipe_layout",
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "triangle_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    r.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeBack,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	r.pipeline = pipeline

	trioverlay.Logger().Debug("scene: pipeline created", "format", r.format)
	return nil
}

// Render clears target and draws the triangle into it. device and queue
// must be the ones the renderer was created with. elapsed is the total
// running time in seconds; it is recorded but not bound to the shader.
func (r *Renderer) Render(device hal.Device, queue hal.Queue, target hal.TextureView, elapsed float32) error {
	if device != r.device || queue != r.queue {
		return fmt.Errorf("scene: render on a foreign device")
	}
	r.lastElapsed = elapsed

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "scene_encoder",
	})
	if err != nil {
		return fmt.Errorf("scene: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("scene_frame"); err != nil {
		return fmt.Errorf("scene: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "scene_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: r.clearColor,
		}},
	})
	rp.SetPipeline(r.pipeline)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("scene: end encoding: %w", err)
	}
	if err := r.submit.Submit(cmdBuf); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	r.frames++
	return nil
}

// Submitter returns the submitter the renderer submits through.
func (r *Renderer) Submitter() *gpu.Submitter { return r.submit }

// LastElapsed returns the elapsed time passed to the latest Render.
func (r *Renderer) LastElapsed() float32 { return r.lastElapsed }

// Frames returns the number of frames submitted.
func (r *Renderer) Frames() uint64 { return r.frames }

// Format returns the target format the pipeline was built for.
func (r *Renderer) Format() gputypes.TextureFormat { return r.format }

// Destroy waits for outstanding submissions and releases GPU resources.
func (r *Renderer) Destroy() {
	if r.submit != nil {
		r.submit.Destroy()
		r.submit = nil
	}
	if r.pipeline != nil {
		r.device.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
}
