package scene

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/trioverlay"
	"github.com/gogpu/trioverlay/internal/gpu"
	"github.com/gogpu/trioverlay/render"
)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	return openDev.Device, openDev.Queue, func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
}

func TestTriangleShaderCompiles(t *testing.T) {
	spirv, err := naga.Compile(triangleShaderSource)
	if err != nil {
		t.Fatalf("triangle shader failed to compile: %v", err)
	}
	if len(spirv) == 0 {
		t.Fatal("triangle shader produced empty SPIR-V")
	}
}

func TestNewRejectsProviderWithoutHAL(t *testing.T) {
	_, err := New(render.NullDeviceHandle{}, gputypes.TextureFormatBGRA8UnormSrgb)
	if !errors.Is(err, render.ErrNoHalDevice) {
		t.Errorf("New(NullDeviceHandle) error = %v, want ErrNoHalDevice", err)
	}
}

func TestRendererNoop(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	format := gputypes.TextureFormatRGBA8Unorm
	r, err := New(render.NewHalHandle(device, queue, format), format)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer r.Destroy()

	if r.pipeline == nil {
		t.Fatal("pipeline not created")
	}
	if r.clearColor != trioverlay.DefaultClearColor {
		t.Errorf("clear color = %+v, want default", r.clearColor)
	}

	target, err := gpu.NewTarget(device, queue, 32, 32, format)
	if err != nil {
		t.Fatalf("NewTarget failed: %v", err)
	}
	defer target.Destroy()

	for i, elapsed := range []float32{0.016, 0.033, 0.05} {
		if err := r.Render(device, queue, target.View(), elapsed); err != nil {
			t.Fatalf("Render %d failed: %v", i, err)
		}
		if r.LastElapsed() != elapsed {
			t.Errorf("LastElapsed = %v, want %v", r.LastElapsed(), elapsed)
		}
	}
	if r.Frames() != 3 {
		t.Errorf("Frames = %d, want 3", r.Frames())
	}
	if r.Submitter().InFlight() > trioverlay.DefaultFrameLatency {
		t.Errorf("InFlight = %d, want <= %d", r.Submitter().InFlight(), trioverlay.DefaultFrameLatency)
	}
}

func TestRendererForeignDevice(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	format := gputypes.TextureFormatRGBA8Unorm
	r, err := New(render.NewHalHandle(device, queue, format), format)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer r.Destroy()

	if err := r.Render(nil, queue, nil, 0); err == nil {
		t.Error("Render on a foreign device should fail")
	}
	if r.Frames() != 0 {
		t.Errorf("Frames = %d, want 0", r.Frames())
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want options
	}{
		{
			name: "defaults",
			want: defaultOptions(),
		},
		{
			name: "clear color",
			opts: []Option{WithClearColor(gputypes.Color{R: 0, G: 0, B: 1, A: 1})},
			want: options{clearColor: gputypes.Color{B: 1, A: 1}, frameLatency: trioverlay.DefaultFrameLatency},
		},
		{
			name: "latency floor",
			opts: []Option{WithFrameLatency(0)},
			want: options{clearColor: trioverlay.DefaultClearColor, frameLatency: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			for _, opt := range tt.opts {
				opt(&o)
			}
			if o != tt.want {
				t.Errorf("options = %+v, want %+v", o, tt.want)
			}
		})
	}
}
