package surface

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/trioverlay/render"
)

// fakeTarget is a window stand-in with fixed handles.
type fakeTarget struct {
	w, h      int
	handleErr error
}

func (f fakeTarget) NativeHandles() (uintptr, uintptr, error) { return 1, 1, f.handleErr }
func (f fakeTarget) FramebufferSize() (int, int)              { return f.w, f.h }

func TestNewRejectsBadTarget(t *testing.T) {
	tests := []struct {
		name   string
		target fakeTarget
		want   error
	}{
		{"zero size", fakeTarget{w: 0, h: 600}, ErrInvalidSize},
		{"negative size", fakeTarget{w: 800, h: -1}, ErrInvalidSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.target, Config{Backend: noop.API{}})
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}

	errHandles := errors.New("no display")
	_, err := New(fakeTarget{w: 800, h: 600, handleErr: errHandles}, Config{Backend: noop.API{}})
	if !errors.Is(err, errHandles) {
		t.Errorf("New() error = %v, want wrapped %v", err, errHandles)
	}
}

func TestOwnerNoop(t *testing.T) {
	o, err := New(fakeTarget{w: 320, h: 240}, Config{Backend: noop.API{}, FrameLatency: 2})
	if err != nil {
		// The noop backend is not required to support surfaces.
		t.Skipf("noop backend cannot present: %v", err)
	}
	defer o.Destroy()

	if w, h := o.Size(); w != 320 || h != 240 {
		t.Errorf("Size() = %dx%d, want 320x240", w, h)
	}
	if o.Format() == gputypes.TextureFormatUndefined {
		t.Error("Format() is undefined")
	}
	if o.MaxTextureSide() == 0 {
		t.Error("MaxTextureSide() = 0")
	}

	var h render.DeviceHandle = o
	device, queue, err := render.HAL(h)
	if err != nil {
		t.Fatalf("render.HAL(owner) failed: %v", err)
	}
	if d, q := o.HAL(); d != device || q != queue {
		t.Error("HAL() and render.HAL disagree")
	}

	for i := 0; i < 4; i++ {
		frame, err := o.Acquire()
		if err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
		if frame.View() == nil {
			t.Fatal("frame view is nil")
		}
		if err := o.Present(frame); err != nil {
			t.Fatalf("Present %d failed: %v", i, err)
		}
		if len(o.retired) > o.latency+1 {
			t.Errorf("retired views = %d, want <= %d", len(o.retired), o.latency+1)
		}
	}

	o.Destroy()
	o.Destroy() // idempotent
	if _, err := o.Acquire(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Acquire after Destroy: got %v, want ErrDestroyed", err)
	}
}

func TestMapAcquireError(t *testing.T) {
	other := errors.New("device removed")
	tests := []struct {
		in   error
		want error
	}{
		{hal.ErrSurfaceOutdated, ErrOutdated},
		{fmt.Errorf("vk: %w", hal.ErrSurfaceOutdated), ErrOutdated},
		{hal.ErrSurfaceLost, ErrLost},
		{hal.ErrTimeout, ErrTimeout},
		{other, other},
	}
	for _, tt := range tests {
		if got := mapAcquireError(tt.in); !errors.Is(got, tt.want) {
			t.Errorf("mapAcquireError(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAdapterRank(t *testing.T) {
	if adapterRank(gputypes.DeviceTypeDiscreteGPU) <= adapterRank(gputypes.DeviceTypeIntegratedGPU) {
		t.Error("discrete GPU should rank above integrated")
	}
	if adapterRank(gputypes.DeviceTypeIntegratedGPU) != 1 {
		t.Error("integrated GPU should rank above everything but discrete")
	}
}
