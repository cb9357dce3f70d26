package window

import "errors"

// ErrUnsupportedPlatform is returned by NativeHandles where no surface can
// be created from a GLFW window.
var ErrUnsupportedPlatform = errors.New("window: native handles not supported on this platform")
