package gpu

import (
	"log/slog"
	"sync/atomic"
)

// current is the logger for pipeline, texture and submission events.
// The root package forwards its logger here; until then nothing is logged.
var current atomic.Pointer[slog.Logger]

func init() { current.Store(slog.New(slog.DiscardHandler)) }

func logger() *slog.Logger { return current.Load() }

// SetLogger replaces the package logger. nil silences it again.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	current.Store(l)
}
