// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device plumbing errors.
var (
	// ErrNilProvider is returned when a nil DeviceHandle is passed.
	ErrNilProvider = errors.New("render: nil device provider")

	// ErrNoHalDevice is returned when a provider does not expose a HAL
	// device and queue.
	ErrNoHalDevice = errors.New("render: provider does not expose HAL device")
)

// DeviceHandle provides GPU device access from the host application.
//
// The surface owner creates the device once and hands it to the scene and
// overlay renderers through this interface. Renderers never create a
// device of their own.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider so any gpucontext
// provider can drive the renderers.
type DeviceHandle = gpucontext.DeviceProvider

// HalProvider is implemented by providers that expose the underlying HAL
// objects. The values must be a hal.Device and a hal.Queue.
type HalProvider interface {
	HalDevice() any
	HalQueue() any
}

// HAL returns the HAL device and queue behind h.
func HAL(h DeviceHandle) (hal.Device, hal.Queue, error) {
	if h == nil {
		return nil, nil, ErrNilProvider
	}
	hp, ok := h.(HalProvider)
	if !ok {
		return nil, nil, ErrNoHalDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, ErrNoHalDevice
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, ErrNoHalDevice
	}
	return device, queue, nil
}

// HalHandle is a DeviceHandle over an existing HAL device and queue.
// It does not own them: Device().Destroy is a no-op, the creator stays
// responsible for teardown.
type HalHandle struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
}

// NewHalHandle wraps device and queue. format is reported as the surface
// format.
func NewHalHandle(device hal.Device, queue hal.Queue, format gputypes.TextureFormat) *HalHandle {
	return &HalHandle{device: device, queue: queue, format: format}
}

// Device returns a non-owning gpucontext view of the device.
func (h *HalHandle) Device() gpucontext.Device { return borrowedDevice{} }

// Queue returns the HAL queue.
func (h *HalHandle) Queue() gpucontext.Queue { return h.queue }

// Adapter returns nil; the adapter is not retained after device creation.
func (h *HalHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns the format given at construction.
func (h *HalHandle) SurfaceFormat() gputypes.TextureFormat { return h.format }

// HalDevice returns the hal.Device.
func (h *HalHandle) HalDevice() any { return h.device }

// HalQueue returns the hal.Queue.
func (h *HalHandle) HalQueue() any { return h.queue }

// borrowedDevice satisfies gpucontext.Device without owning anything.
// HAL work completes through fences, so there is nothing to poll.
type borrowedDevice struct{}

func (borrowedDevice) Poll(bool) {}
func (borrowedDevice) Destroy()  {}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Renderers reject it with ErrNoHalDevice.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var (
	_ DeviceHandle = NullDeviceHandle{}
	_ DeviceHandle = (*HalHandle)(nil)
	_ HalProvider  = (*HalHandle)(nil)
)
