package window

// Cursor is a mouse cursor shape.
type Cursor int

// Cursor shapes.
const (
	CursorArrow Cursor = iota
	CursorText
	CursorHand
	CursorResizeNS
	CursorResizeEW
	CursorCrosshair
	// CursorHidden hides the cursor while it is over the window.
	CursorHidden
)

func (c Cursor) String() string {
	switch c {
	case CursorArrow:
		return "Arrow"
	case CursorText:
		return "Text"
	case CursorHand:
		return "Hand"
	case CursorResizeNS:
		return "ResizeNS"
	case CursorResizeEW:
		return "ResizeEW"
	case CursorCrosshair:
		return "Crosshair"
	case CursorHidden:
		return "Hidden"
	default:
		return "Unknown"
	}
}
