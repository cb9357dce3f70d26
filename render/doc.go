// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the device plumbing shared by the scene and overlay
// renderers.
//
// # Key Principle
//
// Renderers RECEIVE a GPU device, they do NOT create their own. The
// surface owner negotiates the device once and passes it as a
// DeviceHandle (a gpucontext.DeviceProvider). Renderers reach the HAL
// objects through HAL, which requires the provider to implement
// HalProvider.
//
// HalHandle adapts a bare hal.Device and hal.Queue, which is how tests
// and offscreen rendering drive the renderers without a window.
package render
