// Package window wraps a single GLFW window for GPU rendering.
//
// GLFW callbacks are translated into Event values and buffered in a Queue;
// Poll pumps GLFW and drains it. A redraw request becomes one EventRedraw
// after the input events of the same poll, which is what drives the frame
// loop.
//
// The window also carries the platform side effects the overlay needs:
// cursor shape, clipboard access and opening URLs.
//
// GLFW must be used from the main OS thread. Programs lock it in init:
//
//	func init() { runtime.LockOSThread() }
package window
