// Package gpu holds the HAL-level pieces shared by the scene and overlay
// renderers.
//
// Key components:
//
//   - Submitter: fence-tracked queue submission that bounds the number of
//     frames in flight and releases command buffers and deferred resources
//     once the GPU has passed them
//   - OverlayRenderer: textured, vertex-colored triangle renderer for
//     Dear ImGui draw lists (font atlas textures, per-frame vertex/index
//     buffers, scissored indexed draws)
//   - Target: offscreen color target with CPU readback
//
// All types expect to be used from a single goroutine that also owns the
// device and queue.
package gpu
