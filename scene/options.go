package scene

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/trioverlay"
)

// options holds renderer configuration.
type options struct {
	clearColor   gputypes.Color
	frameLatency int
}

func defaultOptions() options {
	return options{
		clearColor:   trioverlay.DefaultClearColor,
		frameLatency: trioverlay.DefaultFrameLatency,
	}
}

// Option configures a Renderer.
type Option func(*options)

// WithClearColor sets the color the pass clears the target to.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithFrameLatency sets how many submissions may be in flight before
// Render waits for the oldest one.
func WithFrameLatency(frames int) Option {
	return func(o *options) {
		o.frameLatency = max(frames, 1)
	}
}
