// Package trioverlay draws a triangle with gogpu/wgpu and a Dear ImGui
// debug overlay on top of it, in a GLFW window.
//
// # Overview
//
// The application is split into three collaborating components driven by
// one event loop:
//
//   - surface: owns the window surface, adapter, device and queue
//   - scene: one fixed pipeline that clears the frame and draws a triangle
//   - overlay: an immediate-mode UI (FPS menu bar, About window) rendered
//     over the scene with a load-preserving render pass
//
// The app package wires them together and runs the frame loop; this
// package holds the shared configuration and logger.
//
// # Quick Start
//
//	cfg := trioverlay.NewConfig(trioverlay.WithTitle("demo"))
//	a, err := app.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//	_ = a.Run(context.Background())
//
// # Threading
//
// GLFW and the GPU handles are used from the main OS thread only.
// Programs must call runtime.LockOSThread before app.New.
package trioverlay
