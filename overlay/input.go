package overlay

import (
	"time"

	"github.com/gogpu/trioverlay"
	"github.com/gogpu/trioverlay/window"
)

// Window is what the overlay needs from the host window.
type Window interface {
	FramebufferSize() (width, height int)
	ScaleFactor() float32
	SetCursor(c window.Cursor)
	Clipboard() string
	SetClipboard(text string)
	OpenURL(url string) error
}

// defaultDeltaTime is reported for the first frame.
const defaultDeltaTime = float32(1.0 / 60.0)

// mouseButtons is the number of tracked mouse buttons.
const mouseButtons = 3

// KeyEvent is one key transition.
type KeyEvent struct {
	Key     window.Key
	Pressed bool
}

// RawInput is the input snapshot for one UI frame.
type RawInput struct {
	// ScreenSize is the display size in points.
	ScreenSize     [2]float32
	PixelsPerPoint float32
	DeltaTime      float32
	MaxTextureSide uint32

	// Pointer is the cursor position in points; PointerValid is false
	// while the cursor is outside the window.
	Pointer      [2]float32
	PointerValid bool
	Buttons      [mouseButtons]bool

	// Wheel is the scroll delta in lines since the previous frame.
	Wheel [2]float32

	Keys    []KeyEvent
	Mods    window.Modifiers
	Text    string
	Focused bool

	// Clipboard provides the text to paste.
	Clipboard func() string
}

// PlatformOutput is what the UI asks the platform to do after a frame.
type PlatformOutput struct {
	Cursor     window.Cursor
	CopiedText string
	OpenURL    string
}

// InputState collects window events between frames and turns them into
// RawInput snapshots.
type InputState struct {
	pixelsPerPoint float32
	fixedScale     bool
	maxTextureSide uint32

	pointer      [2]float32
	pointerValid bool
	buttons      [mouseButtons]bool
	clicked      [mouseButtons]bool
	wheel        [2]float32
	keys         []KeyEvent
	mods         window.Modifiers
	text         []rune
	focused      bool

	now      func() time.Time
	lastTake time.Time
	cursor   window.Cursor
}

// NewInputState creates an input bridge. A positive scale overrides the
// window's content scale for the lifetime of the state.
func NewInputState(win Window, scale float32, maxTextureSide uint32) *InputState {
	s := &InputState{
		pixelsPerPoint: win.ScaleFactor(),
		maxTextureSide: maxTextureSide,
		focused:        true,
		now:            time.Now,
		cursor:         window.CursorArrow,
	}
	if scale > 0 {
		s.pixelsPerPoint = scale
		s.fixedScale = true
	}
	if s.pixelsPerPoint <= 0 {
		s.pixelsPerPoint = 1
	}
	return s
}

// PixelsPerPoint returns the current scale.
func (s *InputState) PixelsPerPoint() float32 { return s.pixelsPerPoint }

// HandleEvent records ev. Close and redraw events are ignored.
func (s *InputState) HandleEvent(ev window.Event) {
	switch ev.Kind {
	case window.EventCursorMoved:
		s.pointer = [2]float32{float32(ev.X) / s.pixelsPerPoint, float32(ev.Y) / s.pixelsPerPoint}
		s.pointerValid = true
	case window.EventCursorLeft:
		s.pointerValid = false
	case window.EventMouseButton:
		if ev.Button >= 0 && int(ev.Button) < mouseButtons {
			s.buttons[ev.Button] = ev.Pressed
			if ev.Pressed {
				s.clicked[ev.Button] = true
			}
		}
		s.mods = ev.Mods
	case window.EventScroll:
		s.wheel[0] += float32(ev.X)
		s.wheel[1] += float32(ev.Y)
	case window.EventKey:
		s.mods = ev.Mods
		if ev.Key != window.KeyUnknown {
			s.keys = append(s.keys, KeyEvent{Key: ev.Key, Pressed: ev.Pressed})
		}
	case window.EventChar:
		if ev.Char >= 0x20 && ev.Char != 0x7f {
			s.text = append(s.text, ev.Char)
		}
	case window.EventFocus:
		s.focused = ev.Focused
		if !ev.Focused {
			// Keys released while unfocused never arrive.
			s.releaseAll()
		}
	case window.EventScaleChanged:
		if !s.fixedScale && ev.Scale > 0 {
			s.pixelsPerPoint = ev.Scale
		}
	}
}

func (s *InputState) releaseAll() {
	for i := range s.buttons {
		s.buttons[i] = false
	}
	for k := window.KeyUnknown + 1; k < window.KeyCount; k++ {
		s.keys = append(s.keys, KeyEvent{Key: k, Pressed: false})
	}
	s.mods = 0
}

// Take returns the input gathered since the previous call and resets the
// per-frame parts (wheel, keys, text, clicks).
func (s *InputState) Take(win Window) RawInput {
	now := s.now()
	dt := defaultDeltaTime
	if !s.lastTake.IsZero() {
		if d := float32(now.Sub(s.lastTake).Seconds()); d > 0 {
			dt = d
		}
	}
	s.lastTake = now

	w, h := win.FramebufferSize()
	in := RawInput{
		ScreenSize:     [2]float32{float32(w) / s.pixelsPerPoint, float32(h) / s.pixelsPerPoint},
		PixelsPerPoint: s.pixelsPerPoint,
		DeltaTime:      dt,
		MaxTextureSide: s.maxTextureSide,
		Pointer:        s.pointer,
		PointerValid:   s.pointerValid,
		Wheel:          s.wheel,
		Keys:           s.keys,
		Mods:           s.mods,
		Text:           string(s.text),
		Focused:        s.focused,
		Clipboard:      win.Clipboard,
	}
	for i := range s.buttons {
		// A press and release inside one frame still registers as a click.
		in.Buttons[i] = s.buttons[i] || s.clicked[i]
		s.clicked[i] = false
	}

	s.wheel = [2]float32{}
	s.keys = nil
	s.text = s.text[:0]
	return in
}

// HandlePlatformOutput applies cursor shape, copied text and URL requests
// to the window.
func (s *InputState) HandlePlatformOutput(win Window, out PlatformOutput) {
	if out.Cursor != s.cursor {
		s.cursor = out.Cursor
		win.SetCursor(out.Cursor)
	}
	if out.CopiedText != "" {
		win.SetClipboard(out.CopiedText)
	}
	if out.OpenURL != "" {
		if err := win.OpenURL(out.OpenURL); err != nil {
			trioverlay.Logger().Warn("overlay: open url", "url", out.OpenURL, "error", err)
		}
	}
}
