package trioverlay

import "github.com/gogpu/gputypes"

// Default application constants.
const (
	DefaultTitle        = "trioverlay"
	DefaultWidth        = 1600
	DefaultHeight       = 1200
	DefaultFrameLatency = 2
	DefaultFrameWindow  = 60
)

// DefaultClearColor is the color the scene pass clears the frame to.
var DefaultClearColor = gputypes.Color{R: 1.0, G: 0.0, B: 0.03, A: 1.0}

// Config holds the startup parameters of the application.
// The zero value is not useful; start from DefaultConfig or NewConfig.
type Config struct {
	// Title is the window title.
	Title string

	// Width and Height are the window size in physical pixels.
	Width, Height int

	// ClearColor is used by the scene pass.
	ClearColor gputypes.Color

	// FrameLatency bounds the number of submitted frames the GPU may lag
	// behind the CPU.
	FrameLatency int

	// FrameWindow is the number of frame-time samples averaged for FPS.
	FrameWindow int

	// ScaleFactor overrides the window content scale when non-zero.
	ScaleFactor float32
}

// Option configures a Config.
//
// Example:
//
//	cfg := trioverlay.NewConfig(
//	    trioverlay.WithSize(800, 600),
//	    trioverlay.WithScaleFactor(2),
//	)
type Option func(*Config)

// DefaultConfig returns the configuration used by cmd/trioverlay.
func DefaultConfig() Config {
	return Config{
		Title:        DefaultTitle,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		ClearColor:   DefaultClearColor,
		FrameLatency: DefaultFrameLatency,
		FrameWindow:  DefaultFrameWindow,
	}
}

// NewConfig returns DefaultConfig with opts applied in order.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithSize sets the window size in physical pixels.
// Non-positive dimensions are ignored.
func WithSize(width, height int) Option {
	return func(c *Config) {
		if width > 0 && height > 0 {
			c.Width = width
			c.Height = height
		}
	}
}

// WithClearColor sets the scene clear color.
func WithClearColor(color gputypes.Color) Option {
	return func(c *Config) {
		c.ClearColor = color
	}
}

// WithFrameLatency sets the maximum number of frames in flight.
// Values below 1 are clamped to 1.
func WithFrameLatency(frames int) Option {
	return func(c *Config) {
		c.FrameLatency = max(frames, 1)
	}
}

// WithFrameWindow sets the number of samples in the rolling frame-time
// window. Values below 1 are clamped to 1.
func WithFrameWindow(samples int) Option {
	return func(c *Config) {
		c.FrameWindow = max(samples, 1)
	}
}

// WithScaleFactor overrides the pixels-per-point ratio used by the overlay.
// Zero restores the window's content scale.
func WithScaleFactor(scale float32) Option {
	return func(c *Config) {
		if scale >= 0 {
			c.ScaleFactor = scale
		}
	}
}
