// Package renderer provides DebugRenderer, the entry point combining the
// text and line renderers behind a single per-frame API.
package renderer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/debugdraw/line"
	"github.com/gogpu/debugdraw/text"
)

// ErrNilDevice is returned when a renderer is created without a device.
var ErrNilDevice = errors.New("renderer: nil device")

// DebugRenderer draws debug lines and text. Each frame, queue primitives
// with DrawLine, DrawTextAtPosition and DrawTextOnScreen, then call Frame
// (or Update followed by Render).
//
// A DebugRenderer is not safe for concurrent use.
type DebugRenderer struct {
	device gpucore.Device
	text   *text.Renderer
	lines  *line.Renderer
}

// New creates a DebugRenderer on device. When no font is configured the
// built-in 7x13 font is baked and uploaded.
func New(device gpucore.Device, opts ...Option) (*DebugRenderer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	lines, err := line.New(device, line.Config{
		Capabilities:    o.caps,
		InitialCapacity: o.capacity,
		DepthTest:       o.depthTest,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	lines.Resize(o.width, o.height)

	tr, err := text.New(device, text.Config{
		Capabilities:    o.caps,
		FrameWidth:      o.width,
		FrameHeight:     o.height,
		InitialCapacity: o.capacity,
		Font:            o.font,
		FontTexture:     o.fontTexture,
		NormalizeText:   o.normalize,
		DepthTest:       o.depthTest,
	})
	if err != nil {
		lines.Destroy()
		return nil, fmt.Errorf("renderer: %w", err)
	}

	debugdraw.Logger().Info("renderer: created",
		"backend", device.Capabilities().Backend,
		"shader_model", tr.ShaderModel(),
		"frame_width", o.width,
		"frame_height", o.height)
	return &DebugRenderer{device: device, text: tr, lines: lines}, nil
}

// Resize responds to a change of the window size.
func (r *DebugRenderer) Resize(width, height uint32) {
	r.text.Resize(width, height)
	r.lines.Resize(width, height)
}

// DrawLine queues a world-space segment.
func (r *DebugRenderer) DrawLine(start, end debugdraw.Vec3, color debugdraw.Color) {
	r.lines.DrawLine(start, end, color)
}

// DrawTextAtPosition queues text anchored at a world-space point.
func (r *DebugRenderer) DrawTextAtPosition(s string, world debugdraw.Vec3, color debugdraw.Color) {
	r.text.DrawTextAtPosition(s, world, color)
}

// DrawTextOnScreen queues text at a pixel position, top-left origin.
func (r *DebugRenderer) DrawTextOnScreen(s string, screen [2]int32, color debugdraw.Color) {
	r.text.DrawTextOnScreen(s, screen, color)
}

// Update uploads the queued geometry to the device.
func (r *DebugRenderer) Update() error {
	if err := r.lines.Update(); err != nil {
		return err
	}
	return r.text.Update()
}

// Render draws lines, then text, and empties both batches. Both batches are
// emptied even when a draw fails.
func (r *DebugRenderer) Render(projection [16]float32) error {
	lineErr := r.lines.Render(projection)
	textErr := r.text.Render(projection)
	if err := errors.Join(lineErr, textErr); err != nil {
		return err
	}
	debugdraw.Logger().Debug("renderer: frame", "stats", r.Stats())
	return nil
}

// Frame is Update followed by Render. On an Update error nothing is drawn
// and the batches are emptied.
func (r *DebugRenderer) Frame(projection [16]float32) error {
	if err := r.Update(); err != nil {
		r.text.Batch().Reset()
		r.lines.Discard()
		return err
	}
	return r.Render(projection)
}

// Stats returns the counters of the last frame.
func (r *DebugRenderer) Stats() Stats {
	ts, ls := r.text.Stats(), r.lines.Stats()
	return Stats{
		Frames:         ts.Frames,
		DrawCalls:      ts.Draws + ls.Draws,
		Lines:          ls.Lines,
		Glyphs:         ts.Quads,
		TextVertices:   ts.Vertices,
		TextIndices:    ts.Indices,
		VertexCapacity: ts.VertexCapacity + ls.VertexCapacity,
		IndexCapacity:  ts.IndexCapacity,
		Grows:          ts.Grows + ls.Grows,
		ShaderModel:    ts.ShaderModel,
	}
}

// Destroy releases all device resources owned by the renderer.
func (r *DebugRenderer) Destroy() {
	r.text.Destroy()
	r.lines.Destroy()
}

// Stats summarizes a frame. It implements slog.LogValuer.
type Stats struct {
	Frames         uint64
	DrawCalls      uint64
	Lines          int
	Glyphs         int
	TextVertices   int
	TextIndices    int
	VertexCapacity int
	IndexCapacity  int
	Grows          int
	ShaderModel    gpucore.ShaderModel
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("frames", s.Frames),
		slog.Uint64("draw_calls", s.DrawCalls),
		slog.Int("lines", s.Lines),
		slog.Int("glyphs", s.Glyphs),
		slog.Int("text_vertices", s.TextVertices),
		slog.Int("text_indices", s.TextIndices),
		slog.Int("vertex_capacity", s.VertexCapacity),
		slog.Int("index_capacity", s.IndexCapacity),
		slog.Int("grows", s.Grows),
		slog.String("shader_model", s.ShaderModel.String()),
	)
}
