package surface

import "errors"

// Initialization errors. These are fatal for the application.
var (
	// ErrNoBackend is returned when no registered HAL backend is linked in
	// or none can create an instance.
	ErrNoBackend = errors.New("surface: no GPU backend available")

	// ErrNoAdapter is returned when no adapter can present to the surface.
	ErrNoAdapter = errors.New("surface: no compatible adapter")

	// ErrNoDevice is returned when the chosen adapter fails to open a device.
	ErrNoDevice = errors.New("surface: device request failed")

	// ErrNoFormat is returned when the surface reports no texture formats.
	ErrNoFormat = errors.New("surface: no supported surface format")

	// ErrInvalidSize is returned when the framebuffer has a zero side.
	ErrInvalidSize = errors.New("surface: invalid framebuffer size")
)

// Per-frame errors.
var (
	// ErrOutdated means the surface no longer matches the window. The frame
	// is skipped without logging.
	ErrOutdated = errors.New("surface: outdated")

	// ErrLost means the surface must be recreated.
	ErrLost = errors.New("surface: lost")

	// ErrTimeout means no texture became available in time.
	ErrTimeout = errors.New("surface: acquire timed out")

	// ErrDestroyed is returned by Acquire after Destroy.
	ErrDestroyed = errors.New("surface: owner destroyed")
)
