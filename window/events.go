package window

import "sync/atomic"

// ID identifies a window. IDs are unique within the process.
type ID uint64

var lastID atomic.Uint64

// NewID returns a fresh window id.
func NewID() ID {
	return ID(lastID.Add(1))
}

// EventKind is the type of an Event.
type EventKind int

// Event kinds.
const (
	// EventClose is a request to close the window.
	EventClose EventKind = iota
	// EventRedraw asks for the next frame.
	EventRedraw
	// EventCursorMoved carries the pointer position in X, Y.
	EventCursorMoved
	// EventCursorLeft is sent when the pointer leaves the window.
	EventCursorLeft
	// EventMouseButton carries Button, Pressed and Mods.
	EventMouseButton
	// EventScroll carries wheel offsets in X, Y (lines).
	EventScroll
	// EventKey carries Key, Pressed and Mods.
	EventKey
	// EventChar carries one typed character in Char.
	EventChar
	// EventFocus carries the new focus state in Focused.
	EventFocus
	// EventScaleChanged carries the new content scale in Scale.
	EventScaleChanged
)

var eventKindNames = [...]string{
	EventClose:        "Close",
	EventRedraw:       "Redraw",
	EventCursorMoved:  "CursorMoved",
	EventCursorLeft:   "CursorLeft",
	EventMouseButton:  "MouseButton",
	EventScroll:       "Scroll",
	EventKey:          "Key",
	EventChar:         "Char",
	EventFocus:        "Focus",
	EventScaleChanged: "ScaleChanged",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "Unknown"
}

// MouseButton identifies a mouse button.
type MouseButton int

// Mouse buttons.
const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// Modifiers is a set of held modifier keys.
type Modifiers uint8

// Modifier bits.
const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// Key identifies the keys the overlay reacts to. Other keys arrive as
// KeyUnknown.
type Key int

// Keys.
const (
	KeyUnknown Key = iota
	KeyTab
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyBackspace
	KeySpace
	KeyEnter
	KeyEscape
	KeyA
	KeyC
	KeyV
	KeyX
	KeyY
	KeyZ

	// KeyCount is the number of keys above.
	KeyCount
)

// Event is one window-system event.
//
// Positions are in physical pixels relative to the top-left corner of the
// framebuffer.
type Event struct {
	Kind     EventKind
	WindowID ID

	X, Y    float64
	Button  MouseButton
	Key     Key
	Pressed bool
	Mods    Modifiers
	Char    rune
	Focused bool
	Scale   float32
}

// Queue collects events from window callbacks until they are drained.
// Redraw requests are coalesced into a single EventRedraw appended after
// the input events of the same drain.
type Queue struct {
	id     ID
	events []Event
	redraw bool
}

// NewQueue creates a queue stamping events with id.
func NewQueue(id ID) *Queue {
	return &Queue{id: id}
}

// Push appends ev, stamped with the queue's window id.
func (q *Queue) Push(ev Event) {
	ev.WindowID = q.id
	q.events = append(q.events, ev)
}

// RequestRedraw schedules one EventRedraw for the next Drain.
func (q *Queue) RequestRedraw() {
	q.redraw = true
}

// Len returns the number of pending events, counting a pending redraw.
func (q *Queue) Len() int {
	n := len(q.events)
	if q.redraw {
		n++
	}
	return n
}

// Drain returns the pending events and empties the queue.
func (q *Queue) Drain() []Event {
	if q.redraw {
		q.events = append(q.events, Event{Kind: EventRedraw, WindowID: q.id})
		q.redraw = false
	}
	out := q.events
	q.events = nil
	return out
}
