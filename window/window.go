package window

import (
	"errors"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/trioverlay"
)

// ErrInvalidSize is returned for windows with a non-positive side.
var ErrInvalidSize = errors.New("window: invalid size")

// Config describes the window to create.
type Config struct {
	Title         string
	Width, Height int
}

// Window is a fixed-size GLFW window without a client API, ready for a GPU
// surface. All methods must be called from the main OS thread.
type Window struct {
	glw   *glfw.Window
	id    ID
	queue *Queue

	cursors map[Cursor]*glfw.Cursor
	cursor  Cursor
}

// New initializes GLFW and opens the window.
func New(cfg Config) (*Window, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, cfg.Width, cfg.Height)
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: init glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Decorated, glfw.True)
	// Sizes are in screen coordinates, which are points where the
	// platform scales windows. Width and Height are framebuffer pixels.
	glw, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window: create: %w", err)
	}
	ww, wh := glw.GetSize()
	fw, fh := glw.GetFramebufferSize()
	if sw, sh := screenSize(cfg.Width, cfg.Height, ww, wh, fw, fh); sw != ww || sh != wh {
		glw.SetSize(sw, sh)
	}

	w := &Window{
		glw:     glw,
		id:      NewID(),
		cursors: make(map[Cursor]*glfw.Cursor),
	}
	w.queue = NewQueue(w.id)

	glw.SetCloseCallback(w.closeEvent)
	glw.SetFocusCallback(w.focusEvent)
	glw.SetKeyCallback(w.keyEvent)
	glw.SetCharCallback(w.charEvent)
	glw.SetMouseButtonCallback(w.mouseButtonEvent)
	glw.SetScrollCallback(w.scrollEvent)
	glw.SetCursorPosCallback(w.cursorPosEvent)
	glw.SetCursorEnterCallback(w.cursorEnterEvent)
	glw.SetContentScaleCallback(w.contentScaleEvent)

	fw, fh = glw.GetFramebufferSize()
	trioverlay.Logger().Info("window: created",
		"title", cfg.Title,
		"width", fw, "height", fh,
		"scale", w.ScaleFactor())
	return w, nil
}

// screenSize returns the window size in screen coordinates that yields a
// framebuffer of width x height pixels, given a window of winW x winH
// whose framebuffer came out fbW x fbH.
func screenSize(width, height, winW, winH, fbW, fbH int) (int, int) {
	scale := func(want, win, fb int) int {
		if win <= 0 || fb <= 0 || win == fb {
			return want
		}
		return max(int(math32.Round(float32(want)*float32(win)/float32(fb))), 1)
	}
	return scale(width, winW, fbW), scale(height, winH, fbH)
}

// ID returns the window id carried by its events.
func (w *Window) ID() ID { return w.id }

// Poll processes pending window-system events and returns them, followed
// by a redraw event if one was requested.
func (w *Window) Poll() []Event {
	glfw.PollEvents()
	return w.queue.Drain()
}

// Wait blocks until a window-system event arrives or timeout passes,
// then behaves like Poll. A pending redraw request returns immediately.
func (w *Window) Wait(timeout time.Duration) []Event {
	if w.queue.Len() == 0 {
		glfw.WaitEventsTimeout(timeout.Seconds())
	} else {
		glfw.PollEvents()
	}
	return w.queue.Drain()
}

// RequestRedraw schedules an EventRedraw for the next Poll.
func (w *Window) RequestRedraw() {
	w.queue.RequestRedraw()
}

// ScaleFactor returns the content scale (physical pixels per point).
func (w *Window) ScaleFactor() float32 {
	sx, _ := w.glw.GetContentScale()
	if sx <= 0 {
		return 1
	}
	return sx
}

// FramebufferSize returns the drawable size in physical pixels.
func (w *Window) FramebufferSize() (width, height int) {
	return w.glw.GetFramebufferSize()
}

// SetCursor changes the cursor shape. Repeated calls with the same shape
// are cheap.
func (w *Window) SetCursor(c Cursor) {
	if c == w.cursor {
		return
	}
	prev := w.cursor
	w.cursor = c
	if c == CursorHidden {
		w.glw.SetInputMode(glfw.CursorMode, glfw.CursorHidden)
		return
	}
	if prev == CursorHidden {
		w.glw.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
	if c == CursorArrow {
		w.glw.SetCursor(nil)
		return
	}
	gc, ok := w.cursors[c]
	if !ok {
		gc = glfw.CreateStandardCursor(standardCursor(c))
		w.cursors[c] = gc
	}
	w.glw.SetCursor(gc)
}

// Clipboard returns the clipboard text.
func (w *Window) Clipboard() string {
	return glfw.GetClipboardString()
}

// SetClipboard replaces the clipboard text.
func (w *Window) SetClipboard(text string) {
	glfw.SetClipboardString(text)
}

// OpenURL opens url with the desktop's default handler.
func (w *Window) OpenURL(url string) error {
	return OpenURL(url)
}

// Destroy closes the window and terminates GLFW.
func (w *Window) Destroy() {
	if w.glw == nil {
		return
	}
	for _, c := range w.cursors {
		c.Destroy()
	}
	w.cursors = nil
	w.glw.Destroy()
	w.glw = nil
	glfw.Terminate()
}

func (w *Window) closeEvent(_ *glfw.Window) {
	// Keep the window open; the frame driver decides when to exit.
	w.glw.SetShouldClose(false)
	w.queue.Push(Event{Kind: EventClose})
}

func (w *Window) focusEvent(_ *glfw.Window, focused bool) {
	w.queue.Push(Event{Kind: EventFocus, Focused: focused})
}

func (w *Window) keyEvent(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
	w.queue.Push(Event{
		Kind:    EventKey,
		Key:     translateKey(key),
		Pressed: action != glfw.Release,
		Mods:    translateMods(mods),
	})
}

func (w *Window) charEvent(_ *glfw.Window, char rune) {
	w.queue.Push(Event{Kind: EventChar, Char: char})
}

func (w *Window) mouseButtonEvent(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	b, ok := translateButton(button)
	if !ok {
		return
	}
	w.queue.Push(Event{
		Kind:    EventMouseButton,
		Button:  b,
		Pressed: action == glfw.Press,
		Mods:    translateMods(mods),
	})
}

func (w *Window) scrollEvent(_ *glfw.Window, xoff, yoff float64) {
	w.queue.Push(Event{Kind: EventScroll, X: xoff, Y: yoff})
}

func (w *Window) cursorPosEvent(gw *glfw.Window, x, y float64) {
	// GLFW reports screen coordinates; scale them to framebuffer pixels.
	ww, wh := gw.GetSize()
	fw, fh := gw.GetFramebufferSize()
	if ww > 0 && wh > 0 {
		x *= float64(fw) / float64(ww)
		y *= float64(fh) / float64(wh)
	}
	w.queue.Push(Event{Kind: EventCursorMoved, X: x, Y: y})
}

func (w *Window) cursorEnterEvent(_ *glfw.Window, entered bool) {
	if !entered {
		w.queue.Push(Event{Kind: EventCursorLeft})
	}
}

func (w *Window) contentScaleEvent(_ *glfw.Window, x, _ float32) {
	w.queue.Push(Event{Kind: EventScaleChanged, Scale: x})
}

func standardCursor(c Cursor) glfw.StandardCursor {
	switch c {
	case CursorText:
		return glfw.IBeamCursor
	case CursorHand:
		return glfw.HandCursor
	case CursorResizeNS:
		return glfw.VResizeCursor
	case CursorResizeEW:
		return glfw.HResizeCursor
	case CursorCrosshair:
		return glfw.CrosshairCursor
	default:
		return glfw.ArrowCursor
	}
}

func translateMods(m glfw.ModifierKey) Modifiers {
	var out Modifiers
	if m&glfw.ModShift != 0 {
		out |= ModShift
	}
	if m&glfw.ModControl != 0 {
		out |= ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		out |= ModAlt
	}
	if m&glfw.ModSuper != 0 {
		out |= ModSuper
	}
	return out
}

func translateButton(b glfw.MouseButton) (MouseButton, bool) {
	switch b {
	case glfw.MouseButtonLeft:
		return MouseLeft, true
	case glfw.MouseButtonRight:
		return MouseRight, true
	case glfw.MouseButtonMiddle:
		return MouseMiddle, true
	default:
		return 0, false
	}
}

var keyMap = map[glfw.Key]Key{
	glfw.KeyTab:       KeyTab,
	glfw.KeyLeft:      KeyLeft,
	glfw.KeyRight:     KeyRight,
	glfw.KeyUp:        KeyUp,
	glfw.KeyDown:      KeyDown,
	glfw.KeyPageUp:    KeyPageUp,
	glfw.KeyPageDown:  KeyPageDown,
	glfw.KeyHome:      KeyHome,
	glfw.KeyEnd:       KeyEnd,
	glfw.KeyInsert:    KeyInsert,
	glfw.KeyDelete:    KeyDelete,
	glfw.KeyBackspace: KeyBackspace,
	glfw.KeySpace:     KeySpace,
	glfw.KeyEnter:     KeyEnter,
	glfw.KeyKPEnter:   KeyEnter,
	glfw.KeyEscape:    KeyEscape,
	glfw.KeyA:         KeyA,
	glfw.KeyC:         KeyC,
	glfw.KeyV:         KeyV,
	glfw.KeyX:         KeyX,
	glfw.KeyY:         KeyY,
	glfw.KeyZ:         KeyZ,
}

func translateKey(k glfw.Key) Key {
	if key, ok := keyMap[k]; ok {
		return key
	}
	return KeyUnknown
}
