// Package scene renders the triangle that sits under the overlay.
//
// The pipeline is built once: a procedural vertex shader with no vertex
// buffers, an empty pipeline layout, back-face culling and a single color
// target in the surface format. Each Render records one pass that clears
// the target and issues Draw(3, 1, 0, 0).
package scene
