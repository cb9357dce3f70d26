//go:build !windows && !(linux && !wayland)

package window

import (
	"errors"
	"testing"
)

func TestNativeHandlesUnsupported(t *testing.T) {
	display, win, err := (&Window{}).NativeHandles()
	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Fatalf("err = %v, want ErrUnsupportedPlatform", err)
	}
	if display != 0 || win != 0 {
		t.Errorf("handles = %#x, %#x, want zero", display, win)
	}
}
