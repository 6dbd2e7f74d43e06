// Package text batches and renders debug text from a bitmap font atlas.
//
// Strings are laid out glyph by glyph into textured quads. Each quad has
// four vertices (top-left, bottom-left, bottom-right, top-right) and six
// indices forming two counter-clockwise triangles. A frame's worth of quads
// is uploaded once by [Renderer.Update] and drawn with a single indexed
// draw call by [Renderer.Render], which then empties the batch.
//
// # Anchoring
//
// [Renderer.DrawTextAtPosition] anchors a string to a world-space point.
// The anchor is projected by the frame's matrix and the glyphs are laid out
// from it in screen pixels, so labels keep a constant size regardless of
// distance. [Renderer.DrawTextOnScreen] places a string at a pixel position
// and ignores the projection.
//
// Runes missing from the font produce a degenerate quad with zero advance;
// they never fail.
package text
