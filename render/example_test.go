// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render_test

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/trioverlay/render"
)

// ExampleHAL shows how renderers reach the HAL device behind a provider.
func ExampleHAL() {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		fmt.Println("create instance:", err)
		return
	}
	defer instance.Destroy()

	openDev, err := instance.EnumerateAdapters(nil)[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		fmt.Println("open device:", err)
		return
	}
	defer openDev.Device.Destroy()

	handle := render.NewHalHandle(openDev.Device, openDev.Queue, gputypes.TextureFormatBGRA8UnormSrgb)
	device, queue, err := render.HAL(handle)
	fmt.Println(err == nil, device == openDev.Device, queue == openDev.Queue)
	fmt.Println(handle.SurfaceFormat() == gputypes.TextureFormatBGRA8UnormSrgb)
	// Output:
	// true true true
	// true
}

// ExampleNullDeviceHandle shows that a provider without a HAL device is
// rejected.
func ExampleNullDeviceHandle() {
	_, _, err := render.HAL(render.NullDeviceHandle{})
	fmt.Println(errors.Is(err, render.ErrNoHalDevice))
	// Output: true
}
