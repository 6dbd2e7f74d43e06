// Package shader holds the embedded shader sources of the debug renderers
// and selects the variant matching a device's shading-language tier.
package shader

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/debugdraw/gpucore"
)

//go:embed shaders/text.wgsl
var textWGSL string

//go:embed shaders/text_120.vert
var text120Vert string

//go:embed shaders/text_120.frag
var text120Frag string

//go:embed shaders/text_150.vert
var text150Vert string

//go:embed shaders/text_150.frag
var text150Frag string

//go:embed shaders/line.wgsl
var lineWGSL string

//go:embed shaders/line_120.vert
var line120Vert string

//go:embed shaders/line_120.frag
var line120Frag string

//go:embed shaders/line_150.vert
var line150Vert string

//go:embed shaders/line_150.frag
var line150Frag string

// WGSL entry points shared by all modules.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// ErrNoCompatibleVariant is returned when no variant in a set runs on the
// device's shader model.
var ErrNoCompatibleVariant = errors.New("shader: no compatible variant")

// Variant is a vertex/fragment source pair for one tier. WGSL variants
// carry the same module in both fields.
type Variant struct {
	Vertex   string
	Fragment string
}

// Set maps tiers to variants.
type Set map[gpucore.ShaderModel]Variant

// preference lists tiers from most to least preferred.
var preference = []gpucore.ShaderModel{
	gpucore.ShaderModelWGSL,
	gpucore.ShaderModelGLSL150,
	gpucore.ShaderModelGLSL120,
}

// Choose returns the most capable tier in s that model supports, with its
// variant.
func (s Set) Choose(model gpucore.ShaderModel) (gpucore.ShaderModel, Variant, error) {
	for _, tier := range preference {
		v, ok := s[tier]
		if ok && model.Supports(tier) {
			return tier, v, nil
		}
	}
	return gpucore.ShaderModelUnsupported, Variant{}, fmt.Errorf("%w for %s", ErrNoCompatibleVariant, model)
}

// Text returns the text renderer variants.
func Text() Set {
	return Set{
		gpucore.ShaderModelWGSL:    {Vertex: textWGSL, Fragment: textWGSL},
		gpucore.ShaderModelGLSL150: {Vertex: text150Vert, Fragment: text150Frag},
		gpucore.ShaderModelGLSL120: {Vertex: text120Vert, Fragment: text120Frag},
	}
}

// Line returns the line renderer variants.
func Line() Set {
	return Set{
		gpucore.ShaderModelWGSL:    {Vertex: lineWGSL, Fragment: lineWGSL},
		gpucore.ShaderModelGLSL150: {Vertex: line150Vert, Fragment: line150Frag},
		gpucore.ShaderModelGLSL120: {Vertex: line120Vert, Fragment: line120Frag},
	}
}
