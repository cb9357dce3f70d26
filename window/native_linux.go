//go:build linux && !wayland

package window

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// NativeHandles returns the X11 Display pointer and Window id.
func (w *Window) NativeHandles() (display, window uintptr, err error) {
	d := glfw.GetX11Display()
	if d == nil {
		return 0, 0, ErrUnsupportedPlatform
	}
	return uintptr(unsafe.Pointer(d)), uintptr(w.glw.GetX11Window()), nil
}
