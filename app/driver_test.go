package app

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/trioverlay"
	"github.com/gogpu/trioverlay/overlay"
	"github.com/gogpu/trioverlay/surface"
	"github.com/gogpu/trioverlay/window"
)

type fakeHost struct {
	id       window.ID
	redraws  int
	w, h     int
	cursor   window.Cursor
	clip     string
	openURLs []string
}

func (h *fakeHost) ID() window.ID               { return h.id }
func (h *fakeHost) RequestRedraw()              { h.redraws++ }
func (h *fakeHost) FramebufferSize() (int, int) { return h.w, h.h }
func (h *fakeHost) ScaleFactor() float32        { return 1 }
func (h *fakeHost) SetCursor(c window.Cursor)   { h.cursor = c }
func (h *fakeHost) Clipboard() string           { return h.clip }
func (h *fakeHost) SetClipboard(text string)    { h.clip = text }

func (h *fakeHost) OpenURL(url string) error {
	h.openURLs = append(h.openURLs, url)
	return nil
}

type fakeSource struct {
	acquireErr error
	acquired   int
	presented  int
	discarded  int
}

func (s *fakeSource) Acquire() (*surface.Frame, error) {
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	s.acquired++
	return &surface.Frame{}, nil
}

func (s *fakeSource) Present(*surface.Frame) error {
	s.presented++
	return nil
}

func (s *fakeSource) Discard(*surface.Frame)       { s.discarded++ }
func (s *fakeSource) HAL() (hal.Device, hal.Queue) { return nil, nil }

type fakeScene struct {
	renders int
	elapsed []float32
	err     error
}

func (s *fakeScene) Render(_ hal.Device, _ hal.Queue, _ hal.TextureView, elapsed float32) error {
	s.renders++
	s.elapsed = append(s.elapsed, elapsed)
	return s.err
}

type fakeOverlay struct {
	renders int
	fps     []float32
	events  []window.Event
	err     error
}

func (o *fakeOverlay) HandleEvent(ev window.Event) { o.events = append(o.events, ev) }

func (o *fakeOverlay) Render(_ overlay.Window, _ hal.TextureView, _ hal.Device, _ hal.Queue, fps float32) error {
	o.renders++
	o.fps = append(o.fps, fps)
	return o.err
}

type driverFixture struct {
	host    *fakeHost
	source  *fakeSource
	scene   *fakeScene
	overlay *fakeOverlay
	driver  *Driver
}

// newFixture builds a driver whose clock advances 1/30 s per frame.
func newFixture() *driverFixture {
	f := &driverFixture{
		host:    &fakeHost{id: window.NewID(), w: 640, h: 480},
		source:  &fakeSource{},
		scene:   &fakeScene{},
		overlay: &fakeOverlay{},
	}
	f.driver = NewDriver(f.host, f.source, f.scene, f.overlay, 60)
	now := time.Unix(100, 0)
	f.driver.lastFrame = now
	f.driver.now = func() time.Time {
		now = now.Add(time.Second / 30)
		return now
	}
	return f
}

func (f *driverFixture) redraw() {
	f.driver.Handle(window.Event{Kind: window.EventRedraw, WindowID: f.host.id})
}

// captureLogs routes the package logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	trioverlay.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { trioverlay.SetLogger(nil) })
	return &buf
}

func TestDriverFrame(t *testing.T) {
	f := newFixture()
	for i := 0; i < 3; i++ {
		f.redraw()
	}

	if f.scene.renders != 3 || f.overlay.renders != 3 || f.source.presented != 3 {
		t.Fatalf("renders scene=%d overlay=%d presents=%d, want 3 each",
			f.scene.renders, f.overlay.renders, f.source.presented)
	}
	if f.host.redraws != 3 {
		t.Errorf("redraw requests = %d, want 3", f.host.redraws)
	}
	if f.source.discarded != 0 {
		t.Errorf("discarded = %d, want 0", f.source.discarded)
	}

	last := f.scene.elapsed[len(f.scene.elapsed)-1]
	if last < 0.099 || last > 0.101 {
		t.Errorf("elapsed passed to scene = %v, want 0.1", last)
	}
	fps := f.overlay.fps[len(f.overlay.fps)-1]
	if fps < 29.9 || fps > 30.1 {
		t.Errorf("fps passed to overlay = %v, want 30", fps)
	}
	if f.driver.Stats().Len() != 60 {
		t.Errorf("stats window = %d, want 60", f.driver.Stats().Len())
	}
}

func TestDriverOutdatedSkipsFrame(t *testing.T) {
	f := newFixture()
	f.source.acquireErr = surface.ErrOutdated
	before := f.driver.Stats().Samples()

	f.redraw()

	if f.scene.renders != 0 || f.overlay.renders != 0 || f.source.presented != 0 {
		t.Errorf("renders scene=%d overlay=%d presents=%d, want 0",
			f.scene.renders, f.overlay.renders, f.source.presented)
	}
	after := f.driver.Stats().Samples()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("stats changed at %d: %v -> %v", i, before[i], after[i])
		}
	}
	if f.driver.Stats().Elapsed() != 0 {
		t.Errorf("Elapsed = %v, want 0", f.driver.Stats().Elapsed())
	}
	if f.host.redraws != 0 {
		t.Errorf("redraw requests = %d, want 0", f.host.redraws)
	}

	f.driver.Idle()
	if f.host.redraws != 1 {
		t.Errorf("Idle after an outdated frame requested %d redraws, want 1", f.host.redraws)
	}
	f.driver.Idle()
	if f.host.redraws != 1 {
		t.Error("Idle should retry only once per stalled frame")
	}
}

func TestDriverAcquireErrorLogged(t *testing.T) {
	logs := captureLogs(t)
	f := newFixture()
	f.source.acquireErr = surface.ErrLost

	f.redraw()

	if f.scene.renders != 0 || f.source.presented != 0 {
		t.Error("no frame should be drawn after a failed acquire")
	}
	if !strings.Contains(logs.String(), "dropped frame") {
		t.Errorf("log = %q, want dropped frame", logs.String())
	}
	if f.driver.State() != Running {
		t.Errorf("State = %v, want Running", f.driver.State())
	}
}

func TestDriverRendererErrorReleasesFrame(t *testing.T) {
	tests := []struct {
		name          string
		sceneErr      error
		overlayErr    error
		wantOverlay   int
		wantDiscarded int
	}{
		{"scene fails", errors.New("scene boom"), nil, 0, 1},
		{"overlay fails", nil, errors.New("overlay boom"), 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captureLogs(t)
			f := newFixture()
			f.scene.err = tt.sceneErr
			f.overlay.err = tt.overlayErr

			f.redraw()

			if f.overlay.renders != tt.wantOverlay {
				t.Errorf("overlay renders = %d, want %d", f.overlay.renders, tt.wantOverlay)
			}
			if f.source.discarded != tt.wantDiscarded || f.source.presented != 0 {
				t.Errorf("discarded=%d presented=%d, want %d, 0", f.source.discarded, f.source.presented, tt.wantDiscarded)
			}
			if f.host.redraws != 1 {
				t.Errorf("redraw requests = %d, want 1", f.host.redraws)
			}
		})
	}
}

func TestDriverClose(t *testing.T) {
	f := newFixture()

	f.driver.Handle(window.Event{Kind: window.EventClose, WindowID: window.NewID()})
	if f.driver.State() != Running {
		t.Fatal("close of a foreign window should be ignored")
	}

	f.driver.HandleAll([]window.Event{
		{Kind: window.EventClose, WindowID: f.host.id},
		{Kind: window.EventCursorMoved, WindowID: f.host.id, X: 1, Y: 1},
		{Kind: window.EventRedraw, WindowID: f.host.id},
	})
	if f.driver.State() != Exiting {
		t.Fatalf("State = %v, want Exiting", f.driver.State())
	}
	if f.source.acquired != 0 || f.scene.renders != 0 {
		t.Error("pending redraw after close should not run")
	}
	if len(f.overlay.events) != 0 {
		t.Errorf("events after close forwarded: %v", f.overlay.events)
	}

	f.driver.Idle()
	if f.host.redraws != 0 {
		t.Error("Idle should do nothing once exiting")
	}
}

func TestDriverForwardsInput(t *testing.T) {
	f := newFixture()
	events := []window.Event{
		{Kind: window.EventCursorMoved, X: 3, Y: 4},
		{Kind: window.EventMouseButton, Button: window.MouseLeft, Pressed: true},
		{Kind: window.EventKey, Key: window.KeyA, Pressed: true},
		{Kind: window.EventChar, Char: 'a'},
		{Kind: window.EventFocus, Focused: true},
		{Kind: window.EventScaleChanged, Scale: 2},
	}
	f.driver.HandleAll(events)

	if len(f.overlay.events) != len(events) {
		t.Fatalf("forwarded %d events, want %d", len(f.overlay.events), len(events))
	}
	for i := range events {
		if f.overlay.events[i].Kind != events[i].Kind {
			t.Errorf("event %d kind = %v, want %v", i, f.overlay.events[i].Kind, events[i].Kind)
		}
	}
	if f.scene.renders != 0 {
		t.Error("input events should not draw")
	}
}

func TestStateString(t *testing.T) {
	if Running.String() != "Running" || Exiting.String() != "Exiting" || State(9).String() != "Unknown" {
		t.Error("unexpected State strings")
	}
}
