package trioverlay

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/trioverlay/internal/gpu"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for trioverlay and all its sub-packages.
// By default, trioverlay produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by trioverlay:
//   - [slog.LevelDebug]: GPU object lifecycle, texture uploads, buffer sizes
//   - [slog.LevelInfo]: startup events (adapter selected, surface configured)
//   - [slog.LevelWarn]: recoverable platform issues (URL opener failure)
//   - [slog.LevelError]: dropped frames
//
// Example:
//
//	trioverlay.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// internal/gpu keeps its own pointer so it does not import this package.
	gpu.SetLogger(l)
}

// Logger returns the current logger used by trioverlay.
// Sub-packages (surface/, scene/, overlay/, app/) call this to share the
// same logger configuration.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
