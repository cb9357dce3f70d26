// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface owns the GPU device and the window surface it presents
// to.
//
// # Initialization
//
// New walks the backend registry in priority order (Vulkan is registered
// by default), creates a surface from the window's native handles and
// keeps only adapters that report capabilities for it. Discrete GPUs
// are preferred over integrated ones. The device is opened with no
// optional features and default limits, and the surface is configured
// once at the framebuffer size with the format ChooseFormat picks.
//
// # Frames
//
//	frame, err := owner.Acquire()
//	if errors.Is(err, surface.ErrOutdated) {
//	    return // skip silently
//	}
//	// render into frame.View()
//	owner.Present(frame)
//
// One frame may be outstanding at a time.
//
// # Device Sharing
//
// Owner implements gpucontext.DeviceProvider and exposes the HAL device
// and queue through HalDevice and HalQueue, so renderers take it as a
// render.DeviceHandle.
package surface
