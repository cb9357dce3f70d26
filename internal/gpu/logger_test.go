package gpu

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	if logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be silent")
	}

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logger().Debug("gpu: overlay texture freed", "id", 7)
	if !strings.Contains(buf.String(), "id=7") {
		t.Errorf("log output = %q, want the record", buf.String())
	}

	SetLogger(nil)
	if logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should silence the package")
	}
}
