package overlay

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/trioverlay"
	"github.com/gogpu/trioverlay/internal/gpu"
	"github.com/gogpu/trioverlay/render"
	"github.com/gogpu/trioverlay/window"
)

// ErrForeignDevice is returned when Render is called with a device or
// queue other than the one the presenter was created on.
var ErrForeignDevice = errors.New("overlay: render on a foreign device")

type options struct {
	scale        float32
	frameLatency int
}

// Option configures a Presenter.
type Option func(*options)

// WithScaleFactor fixes pixels-per-point instead of following the
// window's content scale.
func WithScaleFactor(scale float32) Option {
	return func(o *options) {
		o.scale = scale
	}
}

// WithFrameLatency sets how many overlay submissions may be in flight.
func WithFrameLatency(frames int) Option {
	return func(o *options) {
		o.frameLatency = max(frames, 1)
	}
}

// Presenter draws the UI on top of an already rendered frame.
type Presenter struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat

	ctx      *Context
	input    *InputState
	view     *View
	submit   *gpu.Submitter
	renderer *gpu.OverlayRenderer
	textures TexturesDelta

	lastJobs int
}

// New creates a presenter for targets of format on the provider's device.
// maxTextureSide bounds the font atlas.
func New(win Window, provider render.DeviceHandle, format gputypes.TextureFormat,
	maxTextureSide uint32, opts ...Option) (*Presenter, error) {
	device, queue, err := render.HAL(provider)
	if err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}
	o := options{frameLatency: trioverlay.DefaultFrameLatency}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Presenter{
		device: device,
		queue:  queue,
		format: format,
		view:   NewView(),
	}
	p.input = NewInputState(win, o.scale, maxTextureSide)

	p.submit, err = gpu.NewSubmitter(device, queue, o.frameLatency)
	if err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}
	p.renderer, err = gpu.NewOverlayRenderer(device, queue, p.submit, format, maxTextureSide)
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("overlay: %w", err)
	}
	p.ctx, err = NewContext(p.input.PixelsPerPoint(), maxTextureSide)
	if err != nil {
		p.Destroy()
		return nil, err
	}

	trioverlay.Logger().Debug("overlay: presenter created",
		"format", format, "ppp", p.input.PixelsPerPoint(), "max_texture_side", maxTextureSide)
	return p, nil
}

// HandleEvent forwards ev to the input bridge. Close and redraw requests
// belong to the frame driver and are ignored.
func (p *Presenter) HandleEvent(ev window.Event) {
	switch ev.Kind {
	case window.EventClose, window.EventRedraw:
		return
	}
	p.input.HandleEvent(ev)
}

// Render runs one UI frame and draws it onto target, keeping what is
// already there.
func (p *Presenter) Render(win Window, target hal.TextureView, device hal.Device, queue hal.Queue, fps float32) error {
	if device != p.device || queue != p.queue {
		return ErrForeignDevice
	}

	in := p.input.Take(win)
	out := p.ctx.Run(in, func(ui *UI) { p.view.Draw(ui, fps) })

	p.textures.Append(out.Textures)
	p.input.HandlePlatformOutput(win, out.Platform)

	jobs := Tessellate(out.Shapes, in.PixelsPerPoint)
	p.lastJobs = len(jobs)

	for _, s := range p.textures.Set {
		if err := p.renderer.UpdateTexture(s.ID, s.Image); err != nil {
			return fmt.Errorf("overlay: %w", err)
		}
	}

	w, h := win.FramebufferSize()
	screen := gpu.ScreenDescriptor{
		SizeInPixels:   [2]uint32{uint32(max(w, 0)), uint32(max(h, 0))}, //nolint:gosec // clamped to non-negative
		PixelsPerPoint: in.PixelsPerPoint,
	}
	if err := p.renderer.UpdateBuffers(jobs, screen); err != nil {
		return fmt.Errorf("overlay: %w", err)
	}

	if err := p.encode(target, jobs, screen); err != nil {
		return err
	}

	for _, id := range p.textures.Free {
		p.renderer.FreeTexture(id)
	}
	p.textures.Clear()
	return nil
}

func (p *Presenter) encode(target hal.TextureView, jobs []PaintJob, screen gpu.ScreenDescriptor) error {
	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "overlay_encoder",
	})
	if err != nil {
		return fmt.Errorf("overlay: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("overlay_frame"); err != nil {
		return fmt.Errorf("overlay: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "overlay_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    target,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	_, drawErr := p.renderer.RecordDraws(rp, jobs, screen)
	rp.End()
	if drawErr != nil {
		encoder.DiscardEncoding()
		p.renderer.ReleaseFrame()()
		return fmt.Errorf("overlay: %w", drawErr)
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		p.renderer.ReleaseFrame()()
		return fmt.Errorf("overlay: end encoding: %w", err)
	}
	if err := p.submit.Submit(cmdBuf, p.renderer.ReleaseFrame()); err != nil {
		return fmt.Errorf("overlay: %w", err)
	}
	return nil
}

// AboutOpen reports whether the About window is shown.
func (p *Presenter) AboutOpen() bool { return p.view.AboutOpen }

// PixelsPerPoint returns the scale the UI is laid out with.
func (p *Presenter) PixelsPerPoint() float32 { return p.input.PixelsPerPoint() }

// LastPaintJobs returns the number of paint jobs of the latest frame.
func (p *Presenter) LastPaintJobs() int { return p.lastJobs }

// Destroy waits for outstanding submissions and releases the renderer and
// the imgui context.
func (p *Presenter) Destroy() {
	if p.submit != nil {
		p.submit.Destroy()
		p.submit = nil
	}
	if p.renderer != nil {
		p.renderer.Destroy()
		p.renderer = nil
	}
	if p.ctx != nil {
		p.ctx.Destroy()
		p.ctx = nil
	}
}
