package surface

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/trioverlay"
	"github.com/gogpu/trioverlay/render"
)

// Target is a window that can back a GPU surface.
type Target interface {
	// NativeHandles returns the platform display and window handles in the
	// form hal.Instance.CreateSurface expects.
	NativeHandles() (display, window uintptr, err error)

	// FramebufferSize returns the drawable size in physical pixels.
	FramebufferSize() (width, height int)
}

// Config controls device negotiation.
type Config struct {
	// Backend overrides the registry. Nil tries every registered backend in
	// priority order.
	Backend hal.Backend

	// FrameLatency is the number of frames that may be in flight. Texture
	// views of presented frames are kept alive that many frames. Values
	// below 1 are treated as 1.
	FrameLatency int
}

// Frame is one acquired surface texture and its view. Exactly one frame
// may be outstanding; it must be passed to Present or Discard.
type Frame struct {
	texture hal.SurfaceTexture
	view    hal.TextureView

	// Suboptimal is set when the surface still works but no longer matches
	// the window exactly.
	Suboptimal bool
}

// View returns the render attachment view of the frame.
func (f *Frame) View() hal.TextureView { return f.view }

// Owner owns the instance, surface, device and queue for one window.
//
// Owner implements gpucontext.DeviceProvider and render.HalProvider by
// embedding a render.HalHandle, so it can be passed straight to the scene
// and overlay renderers.
type Owner struct {
	*render.HalHandle

	instance hal.Instance
	surface  hal.Surface
	device   hal.Device
	queue    hal.Queue

	adapterName string
	caps        *hal.SurfaceCapabilities
	limits      gputypes.Limits
	format      gputypes.TextureFormat
	width       uint32
	height      uint32

	latency  int
	acquired *Frame
	retired  []hal.TextureView
}

// New creates a surface for target, negotiates an adapter that can present
// to it, opens a device and configures the surface once at the current
// framebuffer size.
func New(target Target, cfg Config) (*Owner, error) {
	w, h := target.FramebufferSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	display, window, err := target.NativeHandles()
	if err != nil {
		return nil, fmt.Errorf("surface: native handles: %w", err)
	}

	backends := []namedBackend{{name: "custom", backend: cfg.Backend}}
	if cfg.Backend == nil {
		backends = globalRegistry.backends()
	}
	if len(backends) == 0 {
		return nil, noBackendError(globalRegistry)
	}

	var lastErr error
	for _, nb := range backends {
		o, err := open(nb, display, window)
		if err != nil {
			trioverlay.Logger().Warn("surface: backend failed", "backend", nb.name, "error", err)
			lastErr = err
			continue
		}
		o.latency = max(cfg.FrameLatency, 1)
		o.width = uint32(w)  //nolint:gosec // checked positive above
		o.height = uint32(h) //nolint:gosec // checked positive above
		if err := o.configure(); err != nil {
			o.Destroy()
			return nil, err
		}
		return o, nil
	}
	return nil, lastErr
}

// noBackendError reports which registered backends, if any, failed to
// resolve to a linked HAL backend.
func noBackendError(r *registry) error {
	names := r.names()
	trioverlay.Logger().Warn("surface: no linked backend", "registered", names)
	if len(names) == 0 {
		return fmt.Errorf("%w: none registered", ErrNoBackend)
	}
	return fmt.Errorf("%w: registered %s not linked", ErrNoBackend, strings.Join(names, ", "))
}

// open creates instance, surface and device on one backend.
func open(nb namedBackend, display, window uintptr) (*Owner, error) {
	instance, err := nb.backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", ErrNoBackend, err)
	}
	o := &Owner{instance: instance}

	surf, err := instance.CreateSurface(display, window)
	if err != nil {
		o.Destroy()
		return nil, fmt.Errorf("%w: create surface: %v", ErrNoAdapter, err)
	}
	o.surface = surf

	selected, caps := selectAdapter(instance.EnumerateAdapters(surf), surf)
	if selected == nil {
		o.Destroy()
		return nil, ErrNoAdapter
	}
	o.adapterName = selected.Info.Name
	o.caps = caps

	o.format = ChooseFormat(caps.Formats)
	if o.format == gputypes.TextureFormatUndefined {
		o.Destroy()
		return nil, ErrNoFormat
	}

	o.limits = gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), o.limits)
	if err != nil {
		o.Destroy()
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	o.device = openDev.Device
	o.queue = openDev.Queue
	o.HalHandle = render.NewHalHandle(o.device, o.queue, o.format)

	trioverlay.Logger().Info("surface: adapter selected",
		"name", selected.Info.Name,
		"type", selected.Info.DeviceType,
		"backend", nb.name,
		"format", o.format)
	return o, nil
}

// selectAdapter keeps adapters that report capabilities for surf and
// prefers discrete, then integrated GPUs.
func selectAdapter(adapters []hal.ExposedAdapter, surf hal.Surface) (*hal.ExposedAdapter, *hal.SurfaceCapabilities) {
	var (
		selected     *hal.ExposedAdapter
		selectedCaps *hal.SurfaceCapabilities
		bestRank     = -1
	)
	for i := range adapters {
		caps := adapters[i].Adapter.SurfaceCapabilities(surf)
		if caps == nil || len(caps.Formats) == 0 {
			continue
		}
		rank := adapterRank(adapters[i].Info.DeviceType)
		if rank > bestRank {
			selected, selectedCaps, bestRank = &adapters[i], caps, rank
		}
	}
	return selected, selectedCaps
}

func adapterRank(t gputypes.DeviceType) int {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return 2
	case gputypes.DeviceTypeIntegratedGPU:
		return 1
	default:
		return 0
	}
}

// configure applies the surface configuration. The window is not
// resizable, so this happens once.
func (o *Owner) configure() error {
	cfg := &hal.SurfaceConfiguration{
		Width:  o.width,
		Height: o.height,
		Format: o.format,
		Usage:  gputypes.TextureUsageRenderAttachment,
	}
	if len(o.caps.PresentModes) > 0 {
		cfg.PresentMode = o.caps.PresentModes[0]
	}
	if len(o.caps.AlphaModes) > 0 {
		cfg.AlphaMode = o.caps.AlphaModes[0]
	}
	if err := o.surface.Configure(o.device, cfg); err != nil {
		return fmt.Errorf("surface: configure %dx%d: %w", o.width, o.height, err)
	}
	trioverlay.Logger().Debug("surface: configured", "width", o.width, "height", o.height, "format", o.format)
	return nil
}

// Acquire returns the next surface texture with a view on it.
func (o *Owner) Acquire() (*Frame, error) {
	if o.surface == nil {
		return nil, ErrDestroyed
	}
	if o.acquired != nil {
		// The previous frame was neither presented nor discarded.
		o.Discard(o.acquired)
	}
	o.releaseRetired(o.latency)

	acquired, err := o.surface.AcquireTexture(nil)
	if err != nil {
		return nil, mapAcquireError(err)
	}

	view, err := o.device.CreateTextureView(acquired.Texture, &hal.TextureViewDescriptor{
		Label:         "surface_frame_view",
		Format:        o.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		o.surface.DiscardTexture(acquired.Texture)
		return nil, fmt.Errorf("surface: create frame view: %w", err)
	}

	f := &Frame{texture: acquired.Texture, view: view, Suboptimal: acquired.Suboptimal}
	if f.Suboptimal {
		trioverlay.Logger().Debug("surface: suboptimal frame")
	}
	o.acquired = f
	return f, nil
}

// Present queues f for display.
func (o *Owner) Present(f *Frame) error {
	if f == nil || f != o.acquired {
		return nil
	}
	o.acquired = nil
	o.retired = append(o.retired, f.view)
	if err := o.queue.Present(o.surface, f.texture); err != nil {
		return fmt.Errorf("surface: present: %w", mapAcquireError(err))
	}
	return nil
}

// Discard gives f back to the surface without presenting it.
func (o *Owner) Discard(f *Frame) {
	if f == nil || f != o.acquired {
		return
	}
	o.acquired = nil
	o.retired = append(o.retired, f.view)
	o.surface.DiscardTexture(f.texture)
}

// releaseRetired destroys frame views older than keep frames. Renderers
// bound their submissions to the same latency, so work from those frames
// has completed.
func (o *Owner) releaseRetired(keep int) {
	for len(o.retired) > keep {
		o.device.DestroyTextureView(o.retired[0])
		o.retired = o.retired[1:]
	}
}

func mapAcquireError(err error) error {
	switch {
	case errors.Is(err, hal.ErrSurfaceOutdated):
		return ErrOutdated
	case errors.Is(err, hal.ErrSurfaceLost):
		return ErrLost
	case errors.Is(err, hal.ErrTimeout):
		return ErrTimeout
	default:
		return fmt.Errorf("surface: acquire: %w", err)
	}
}

// HAL returns the device and queue.
func (o *Owner) HAL() (hal.Device, hal.Queue) { return o.device, o.queue }

// Format returns the negotiated surface format.
func (o *Owner) Format() gputypes.TextureFormat { return o.format }

// Size returns the configured surface size in pixels.
func (o *Owner) Size() (width, height uint32) { return o.width, o.height }

// MaxTextureSide returns the largest 2D texture side the device accepts.
func (o *Owner) MaxTextureSide() uint32 { return o.limits.MaxTextureDimension2D }

// AdapterName returns the name of the selected adapter.
func (o *Owner) AdapterName() string { return o.adapterName }

// Destroy releases surface, device and instance in reverse creation
// order. Callers must have waited for their own submissions. Safe to call
// twice.
func (o *Owner) Destroy() {
	if o.acquired != nil {
		o.Discard(o.acquired)
	}
	if o.device != nil {
		o.releaseRetired(0)
		if o.surface != nil {
			o.surface.Unconfigure(o.device)
		}
	}
	if o.surface != nil {
		o.surface.Destroy()
		o.surface = nil
	}
	if o.device != nil {
		o.device.Destroy()
		o.device = nil
		o.queue = nil
	}
	if o.instance != nil {
		o.instance.Destroy()
		o.instance = nil
	}
}
