package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/trioverlay"
	"github.com/gogpu/trioverlay/overlay"
	"github.com/gogpu/trioverlay/scene"
	"github.com/gogpu/trioverlay/surface"
	"github.com/gogpu/trioverlay/window"
)

// idleWait bounds how long Run sleeps in the window system when no
// redraw is pending.
const idleWait = 100 * time.Millisecond

// App is the window, its GPU surface, both renderers and the driver.
type App struct {
	win     *window.Window
	owner   *surface.Owner
	scene   *scene.Renderer
	overlay *overlay.Presenter
	driver  *Driver
}

// New opens the window and brings up the GPU. Any failure is fatal and
// releases what was created so far.
func New(cfg trioverlay.Config) (*App, error) {
	a := &App{}
	var err error

	a.win, err = window.New(window.Config{Title: cfg.Title, Width: cfg.Width, Height: cfg.Height})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a.owner, err = surface.New(a.win, surface.Config{FrameLatency: cfg.FrameLatency})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	format := a.owner.Format()
	a.scene, err = scene.New(a.owner, format,
		scene.WithClearColor(cfg.ClearColor),
		scene.WithFrameLatency(cfg.FrameLatency),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	a.overlay, err = overlay.New(a.win, a.owner, format, a.owner.MaxTextureSide(),
		overlay.WithScaleFactor(cfg.ScaleFactor),
		overlay.WithFrameLatency(cfg.FrameLatency),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	a.driver = NewDriver(a.win, a.owner, a.scene, a.overlay, cfg.FrameWindow)

	width, height := a.owner.Size()
	trioverlay.Logger().Info("app: ready",
		"adapter", a.owner.AdapterName(),
		"format", format,
		"width", width,
		"height", height,
	)
	return a, nil
}

// Run pumps window events into the driver until the window is closed or
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.driver == nil {
		return errors.New("app: not initialized")
	}
	a.win.RequestRedraw()
	for a.driver.State() == Running {
		if err := ctx.Err(); err != nil {
			trioverlay.Logger().Info("app: stopping", "reason", context.Cause(ctx))
			return nil
		}
		events := a.win.Poll()
		if len(events) == 0 {
			events = a.win.Wait(idleWait)
		}
		if len(events) == 0 {
			a.driver.Idle()
			continue
		}
		a.driver.HandleAll(events)
	}
	return nil
}

// Driver returns the frame driver.
func (a *App) Driver() *Driver { return a.driver }

// Close tears everything down in reverse creation order. Safe to call on
// a partially created App.
func (a *App) Close() {
	if a.overlay != nil {
		a.overlay.Destroy()
		a.overlay = nil
	}
	if a.scene != nil {
		a.scene.Destroy()
		a.scene = nil
	}
	if a.owner != nil {
		a.owner.Destroy()
		a.owner = nil
	}
	if a.win != nil {
		a.win.Destroy()
		a.win = nil
	}
}
