package overlay

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/trioverlay/window"
)

// fakeWindow records platform side effects.
type fakeWindow struct {
	w, h    int
	scale   float32
	clip    string
	cursors []window.Cursor
	copied  []string
	opened  []string
	openErr error
}

func (f *fakeWindow) FramebufferSize() (int, int) { return f.w, f.h }
func (f *fakeWindow) ScaleFactor() float32        { return f.scale }
func (f *fakeWindow) SetCursor(c window.Cursor)   { f.cursors = append(f.cursors, c) }
func (f *fakeWindow) Clipboard() string           { return f.clip }
func (f *fakeWindow) SetClipboard(text string)    { f.copied = append(f.copied, text) }

func (f *fakeWindow) OpenURL(url string) error {
	f.opened = append(f.opened, url)
	return f.openErr
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{w: 1600, h: 1200, scale: 2, clip: "pasted"}
}

// stepClock returns a clock advancing by step on each call.
func stepClock(step time.Duration) func() time.Time {
	now := time.Unix(1000, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestInputStateScale(t *testing.T) {
	win := newFakeWindow()

	s := NewInputState(win, 0, 4096)
	if got := s.PixelsPerPoint(); got != 2 {
		t.Errorf("PixelsPerPoint() = %v, want window scale 2", got)
	}
	s.HandleEvent(window.Event{Kind: window.EventScaleChanged, Scale: 1.5})
	if got := s.PixelsPerPoint(); got != 1.5 {
		t.Errorf("PixelsPerPoint() after change = %v, want 1.5", got)
	}

	fixed := NewInputState(win, 3, 4096)
	fixed.HandleEvent(window.Event{Kind: window.EventScaleChanged, Scale: 1})
	if got := fixed.PixelsPerPoint(); got != 3 {
		t.Errorf("fixed PixelsPerPoint() = %v, want 3", got)
	}

	win.scale = 0
	if got := NewInputState(win, 0, 0).PixelsPerPoint(); got != 1 {
		t.Errorf("PixelsPerPoint() with unknown scale = %v, want 1", got)
	}
}

func TestInputStateTake(t *testing.T) {
	win := newFakeWindow()
	s := NewInputState(win, 0, 4096)
	s.now = stepClock(20 * time.Millisecond)

	s.HandleEvent(window.Event{Kind: window.EventCursorMoved, X: 200, Y: 100})
	s.HandleEvent(window.Event{Kind: window.EventScroll, X: 0, Y: 1})
	s.HandleEvent(window.Event{Kind: window.EventScroll, X: 0, Y: 2})
	s.HandleEvent(window.Event{Kind: window.EventKey, Key: window.KeyC, Pressed: true, Mods: window.ModCtrl})
	s.HandleEvent(window.Event{Kind: window.EventKey, Key: window.KeyUnknown, Pressed: true})
	s.HandleEvent(window.Event{Kind: window.EventChar, Char: 'h'})
	s.HandleEvent(window.Event{Kind: window.EventChar, Char: '\t'})
	s.HandleEvent(window.Event{Kind: window.EventChar, Char: 'é'})

	in := s.Take(win)
	if in.ScreenSize != [2]float32{800, 600} {
		t.Errorf("ScreenSize = %v, want [800 600]", in.ScreenSize)
	}
	if in.DeltaTime != defaultDeltaTime {
		t.Errorf("first DeltaTime = %v, want %v", in.DeltaTime, defaultDeltaTime)
	}
	if !in.PointerValid || in.Pointer != [2]float32{100, 50} {
		t.Errorf("Pointer = %v valid %v, want [100 50] valid", in.Pointer, in.PointerValid)
	}
	if in.Wheel != [2]float32{0, 3} {
		t.Errorf("Wheel = %v, want [0 3]", in.Wheel)
	}
	if len(in.Keys) != 1 || in.Keys[0] != (KeyEvent{Key: window.KeyC, Pressed: true}) {
		t.Errorf("Keys = %v, want [C down]", in.Keys)
	}
	if in.Mods != window.ModCtrl {
		t.Errorf("Mods = %v, want ModCtrl", in.Mods)
	}
	if in.Text != "hé" {
		t.Errorf("Text = %q, want %q", in.Text, "hé")
	}
	if in.MaxTextureSide != 4096 {
		t.Errorf("MaxTextureSide = %d, want 4096", in.MaxTextureSide)
	}
	if in.Clipboard == nil || in.Clipboard() != "pasted" {
		t.Error("Clipboard should read from the window")
	}

	next := s.Take(win)
	if next.Wheel != [2]float32{} || len(next.Keys) != 0 || next.Text != "" {
		t.Errorf("per-frame input not reset: wheel %v keys %v text %q", next.Wheel, next.Keys, next.Text)
	}
	if !next.PointerValid || next.Pointer != in.Pointer {
		t.Error("pointer should persist between frames")
	}
	if next.DeltaTime < 0.019 || next.DeltaTime > 0.021 {
		t.Errorf("DeltaTime = %v, want 0.02", next.DeltaTime)
	}
	if next.Mods != window.ModCtrl {
		t.Error("modifiers should persist between frames")
	}
}

func TestInputStateClickLatch(t *testing.T) {
	win := newFakeWindow()
	s := NewInputState(win, 1, 0)

	s.HandleEvent(window.Event{Kind: window.EventMouseButton, Button: window.MouseLeft, Pressed: true})
	s.HandleEvent(window.Event{Kind: window.EventMouseButton, Button: window.MouseLeft, Pressed: false})

	if in := s.Take(win); !in.Buttons[0] {
		t.Error("a click inside one frame should report the button down")
	}
	if in := s.Take(win); in.Buttons[0] {
		t.Error("button should be up on the following frame")
	}

	s.HandleEvent(window.Event{Kind: window.EventMouseButton, Button: window.MouseRight, Pressed: true})
	s.Take(win)
	if in := s.Take(win); !in.Buttons[1] {
		t.Error("held button should stay down")
	}
}

func TestInputStateFocusLossReleases(t *testing.T) {
	win := newFakeWindow()
	s := NewInputState(win, 1, 0)

	s.HandleEvent(window.Event{Kind: window.EventMouseButton, Button: window.MouseLeft, Pressed: true})
	s.HandleEvent(window.Event{Kind: window.EventKey, Key: window.KeyA, Pressed: true, Mods: window.ModShift})
	s.Take(win)

	s.HandleEvent(window.Event{Kind: window.EventFocus, Focused: false})
	in := s.Take(win)
	if in.Focused {
		t.Error("Focused = true after focus loss")
	}
	if in.Buttons[0] {
		t.Error("buttons should be released on focus loss")
	}
	if in.Mods != 0 {
		t.Errorf("Mods = %v, want none", in.Mods)
	}
	if want := int(window.KeyCount) - 1; len(in.Keys) != want {
		t.Fatalf("len(Keys) = %d, want %d releases", len(in.Keys), want)
	}
	for _, k := range in.Keys {
		if k.Pressed {
			t.Errorf("key %v pressed, want released", k.Key)
		}
	}
}

func TestInputStateCursorLeft(t *testing.T) {
	win := newFakeWindow()
	s := NewInputState(win, 1, 0)
	s.HandleEvent(window.Event{Kind: window.EventCursorMoved, X: 5, Y: 5})
	s.HandleEvent(window.Event{Kind: window.EventCursorLeft})
	if in := s.Take(win); in.PointerValid {
		t.Error("PointerValid = true after the cursor left")
	}
}

func TestHandlePlatformOutput(t *testing.T) {
	win := newFakeWindow()
	win.openErr = errors.New("no opener")
	s := NewInputState(win, 1, 0)

	s.HandlePlatformOutput(win, PlatformOutput{Cursor: window.CursorArrow})
	if len(win.cursors) != 0 {
		t.Errorf("cursor set %v times for an unchanged shape", len(win.cursors))
	}

	s.HandlePlatformOutput(win, PlatformOutput{
		Cursor:     window.CursorHand,
		CopiedText: "copied",
		OpenURL:    "https://github.com/gogpu/wgpu",
	})
	s.HandlePlatformOutput(win, PlatformOutput{Cursor: window.CursorHand})

	if len(win.cursors) != 1 || win.cursors[0] != window.CursorHand {
		t.Errorf("cursors = %v, want [Hand]", win.cursors)
	}
	if len(win.copied) != 1 || win.copied[0] != "copied" {
		t.Errorf("copied = %v, want [copied]", win.copied)
	}
	if len(win.opened) != 1 || win.opened[0] != "https://github.com/gogpu/wgpu" {
		t.Errorf("opened = %v", win.opened)
	}
}
