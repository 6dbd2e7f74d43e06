package shader

import (
	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/gpucore"
)

// TextVertexPosition evaluates the text vertex stage on the CPU and returns
// the clip-space x, y of a vertex (z is always 0, w always 1).
//
// The glyph corner in pixels maps to
//
//	screen = (2*px/sw - 1, 1 - 2*py/sh)
//
// and world-anchored vertices add the projected anchor
//
//	clip  = MVP * (world, 1)
//	world = (clip.x/clip.z + 1, clip.y/clip.z - 1)
//
// Screen-relative vertices use a zero world offset.
func TextVertexPosition(position [2]float32, world [3]float32, screenRelative uint32, u gpucore.Uniforms) [2]float32 {
	screen := [2]float32{
		2*position[0]/u.ScreenSize[0] - 1,
		1 - 2*position[1]/u.ScreenSize[1],
	}
	if screenRelative != 0 {
		return screen
	}
	clip := debugdraw.Mat4(u.ModelViewProjection).Transform([4]float32{world[0], world[1], world[2], 1})
	return [2]float32{
		clip[0]/clip[2] + 1 + screen[0],
		clip[1]/clip[2] - 1 + screen[1],
	}
}

// TextFragmentColor evaluates the text fragment stage: the vertex color's
// RGB with alpha scaled by the atlas alpha.
func TextFragmentColor(color [4]float32, atlasAlpha float32) [4]float32 {
	return [4]float32{color[0], color[1], color[2], atlasAlpha * color[3]}
}
