//go:build !windows && !(linux && !wayland)

package window

// NativeHandles is not implemented on this platform.
func (w *Window) NativeHandles() (display, window uintptr, err error) {
	return 0, 0, ErrUnsupportedPlatform
}
