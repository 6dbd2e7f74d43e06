// Package debugdraw renders batched debug text and lines on top of a
// real-time 3D scene.
//
// # Overview
//
// Debug overlays are drawn in immediate mode: every frame the application
// queues strings and line segments, uploads the accumulated geometry once,
// and issues a single draw call per primitive kind. Text comes in two
// flavors:
//
//   - World-anchored text follows a point in 3D space. Its anchor is
//     projected with the frame's model-view-projection matrix while the
//     glyph quads keep a constant on-screen pixel size.
//   - Screen-anchored text is placed at a pixel position and ignores the
//     projection entirely (FPS counters, help overlays).
//
// # Quick Start
//
//	dev := headless.New()
//	r, err := renderer.New(dev, renderer.WithFrameSize(1280, 720))
//	if err != nil {
//	    return err
//	}
//	defer r.Destroy()
//
//	r.DrawLine(debugdraw.Vec3{0, 0, 0}, debugdraw.Vec3{1, 0, 0}, debugdraw.Red)
//	r.DrawTextAtPosition("X", debugdraw.Vec3{1, 0, 0}, debugdraw.White)
//	r.DrawTextOnScreen("60 fps", [2]int32{8, 8}, debugdraw.Yellow)
//	if err := r.Frame(proj); err != nil {
//	    return err
//	}
//
// # Architecture
//
// The module is organized into:
//   - gpucore: the device port (buffers, textures, programs, draw commands)
//   - font: bitmap font catalogs, BMFont parsers and atlas baking
//   - shader: embedded shader variants per shading-language tier
//   - text, line: batch builders and per-frame renderers
//   - renderer: the DebugRenderer facade combining text and lines
//   - backend/headless, backend/wgpu, backend/gl: device implementations
//
// # Coordinate System
//
// Screen positions are in pixels with the origin at the top-left corner,
// X increasing right and Y increasing down. Matrices are column-major
// [16]float32 values as consumed by the shaders.
//
// # Logging
//
// debugdraw is silent by default. Use [SetLogger] to route diagnostics to a
// [log/slog] handler.
package debugdraw
