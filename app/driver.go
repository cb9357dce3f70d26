package app

import (
	"errors"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/trioverlay"
	"github.com/gogpu/trioverlay/overlay"
	"github.com/gogpu/trioverlay/surface"
	"github.com/gogpu/trioverlay/window"
)

// State is the driver's lifecycle state.
type State int

const (
	// Running handles events and draws frames.
	Running State = iota
	// Exiting is terminal: every event is ignored.
	Exiting
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Exiting:
		return "Exiting"
	default:
		return "Unknown"
	}
}

// Host is the window the driver draws into.
type Host interface {
	overlay.Window
	ID() window.ID
	RequestRedraw()
}

// FrameSource hands out surface frames.
type FrameSource interface {
	Acquire() (*surface.Frame, error)
	Present(f *surface.Frame) error
	Discard(f *surface.Frame)
	HAL() (hal.Device, hal.Queue)
}

// SceneRenderer draws the scene, clearing the target.
type SceneRenderer interface {
	Render(device hal.Device, queue hal.Queue, target hal.TextureView, elapsed float32) error
}

// OverlayRenderer draws the UI over the scene and consumes input events.
type OverlayRenderer interface {
	HandleEvent(ev window.Event)
	Render(win overlay.Window, target hal.TextureView, device hal.Device, queue hal.Queue, fps float32) error
}

// Driver turns window events into frames.
type Driver struct {
	host    Host
	source  FrameSource
	scene   SceneRenderer
	overlay OverlayRenderer

	stats *FrameStats
	state State

	now       func() time.Time
	lastFrame time.Time
	stalled   bool
}

// NewDriver creates a driver in the Running state with a frame-time window
// of samples entries.
func NewDriver(host Host, source FrameSource, scene SceneRenderer, ov OverlayRenderer, samples int) *Driver {
	d := &Driver{
		host:    host,
		source:  source,
		scene:   scene,
		overlay: ov,
		stats:   NewFrameStats(samples),
		state:   Running,
		now:     time.Now,
	}
	d.lastFrame = d.now()
	return d
}

// State returns the current state.
func (d *Driver) State() State { return d.state }

// Stats returns the frame statistics.
func (d *Driver) Stats() *FrameStats { return d.stats }

// HandleAll handles events in order.
func (d *Driver) HandleAll(events []window.Event) {
	for _, ev := range events {
		d.Handle(ev)
	}
}

// Handle dispatches one event.
func (d *Driver) Handle(ev window.Event) {
	if d.state == Exiting {
		return
	}
	switch ev.Kind {
	case window.EventClose:
		if ev.WindowID == d.host.ID() {
			trioverlay.Logger().Info("app: close requested")
			d.state = Exiting
		}
	case window.EventRedraw:
		d.redraw()
	default:
		d.overlay.HandleEvent(ev)
	}
}

// Idle is called when the event loop found nothing to do. It retries a
// frame skipped because the surface was out of date.
func (d *Driver) Idle() {
	if d.state == Running && d.stalled {
		d.stalled = false
		d.host.RequestRedraw()
	}
}

func (d *Driver) redraw() {
	frame, err := d.source.Acquire()
	if err != nil {
		if errors.Is(err, surface.ErrOutdated) {
			d.stalled = true
			return
		}
		trioverlay.Logger().Error("dropped frame", "error", err)
		d.host.RequestRedraw()
		return
	}

	now := d.now()
	d.stats.Push(now.Sub(d.lastFrame))
	d.lastFrame = now

	device, queue := d.source.HAL()
	ok := true
	if err := d.scene.Render(device, queue, frame.View(), float32(d.stats.Elapsed().Seconds())); err != nil {
		trioverlay.Logger().Error("app: scene render failed", "error", err)
		ok = false
	}
	if ok {
		if err := d.overlay.Render(d.host, frame.View(), device, queue, d.stats.FPS()); err != nil {
			trioverlay.Logger().Error("app: overlay render failed", "error", err)
			ok = false
		}
	}

	if ok {
		if err := d.source.Present(frame); err != nil {
			trioverlay.Logger().Error("app: present failed", "error", err)
		}
	} else {
		d.source.Discard(frame)
	}
	d.host.RequestRedraw()
}
