// Package overlay draws a Dear ImGui interface on top of a rendered frame.
//
// A Presenter owns one imgui Context, the InputState that turns window
// events into per-frame RawInput, and a GPU overlay renderer. Each Render
// call runs the UI once and draws it with a load-and-store pass so the
// scene underneath is kept:
//
//	in := input.Take(win)
//	out := ctx.Run(in, view.Draw)
//	textures.Append(out.Textures)
//	jobs := Tessellate(out.Shapes, in.PixelsPerPoint)
//	// upload textures, then buffers, draw, submit, free
//
// Texture changes are accumulated in a TexturesDelta: new images are
// uploaded before the frame that uses them and freed textures are
// released only after that frame has been submitted.
package overlay
