package main

import (
	"fmt"
	"path/filepath"

	"github.com/chewxy/math32"

	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/font"
	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/debugdraw/renderer"
	"github.com/gogpu/debugdraw/text"
)

const (
	minDistance = 1
	maxPitch    = 89
)

var hud = debugdraw.Color{1, 0.4, 0.4, 0.7}

// orbitCamera circles a target point.
type orbitCamera struct {
	target     debugdraw.Vec3
	yaw, pitch float32 // degrees
	distance   float32
}

func deg2rad(d float32) float32 { return d * math32.Pi / 180 }

func (c *orbitCamera) eye() debugdraw.Vec3 {
	yaw, pitch := deg2rad(c.yaw), deg2rad(c.pitch)
	return debugdraw.Vec3{
		c.target[0] + c.distance*math32.Cos(pitch)*math32.Sin(yaw),
		c.target[1] + c.distance*math32.Sin(pitch),
		c.target[2] + c.distance*math32.Cos(pitch)*math32.Cos(yaw),
	}
}

func (c *orbitCamera) view() debugdraw.Mat4 {
	return debugdraw.LookAt(c.eye(), c.target, debugdraw.Vec3{0, 1, 0})
}

// rotate turns the camera by dyaw and dpitch degrees. Pitch stays short of
// the poles.
func (c *orbitCamera) rotate(dyaw, dpitch float32) {
	c.yaw = math32.Mod(c.yaw+dyaw, 360)
	c.pitch = max(-maxPitch, min(maxPitch, c.pitch+dpitch))
}

// zoom scales the distance by factor.
func (c *orbitCamera) zoom(factor float32) {
	c.distance = max(minDistance, c.distance*factor)
}

type scene struct {
	cam           orbitCamera
	fov           float32
	near, far     float32
	width, height uint32
}

func newScene(cfg *Config) *scene {
	return &scene{
		cam: orbitCamera{
			yaw:      cfg.Camera.Yaw,
			pitch:    cfg.Camera.Pitch,
			distance: cfg.Camera.Distance,
		},
		fov:    cfg.Camera.FOV,
		near:   cfg.Camera.Near,
		far:    cfg.Camera.Far,
		width:  cfg.Width,
		height: cfg.Height,
	}
}

func (s *scene) resize(width, height uint32) {
	s.width, s.height = width, height
}

// projection returns the model-view-projection matrix of the current frame.
func (s *scene) projection() [16]float32 {
	aspect := float32(s.width) / float32(max(s.height, 1))
	proj := debugdraw.Perspective(deg2rad(s.fov), aspect, s.near, s.far)
	return proj.Mul(s.cam.view())
}

// draw queues the axes, their labels and the frame-rate overlay.
func (s *scene) draw(r *renderer.DebugRenderer, fps float64) {
	origin := debugdraw.Vec3{}
	r.DrawLine(origin, debugdraw.Vec3{5, 0, 0}, debugdraw.Red)
	r.DrawLine(origin, debugdraw.Vec3{0, 5, 0}, debugdraw.Green)
	r.DrawLine(origin, debugdraw.Vec3{0, 0, 5}, debugdraw.Blue)

	r.DrawTextOnScreen(fmt.Sprintf("FPS: %.1f", fps), [2]int32{10, 10}, hud)

	r.DrawTextAtPosition("X", debugdraw.Vec3{6, 0, 0}, debugdraw.Red)
	r.DrawTextAtPosition("Y", debugdraw.Vec3{0, 6, 0}, debugdraw.Green)
	r.DrawTextAtPosition("Z", debugdraw.Vec3{0, 0, 6}, debugdraw.Blue)
}

// loadFont uploads the BMFont at path and returns the renderer option using
// it. The returned texture is owned by the caller. An empty path selects
// the built-in font.
func loadFont(dev gpucore.Device, path string) ([]renderer.Option, gpucore.TextureID, error) {
	if path == "" {
		return nil, gpucore.InvalidID, nil
	}
	desc, err := font.Load(path)
	if err != nil {
		return nil, gpucore.InvalidID, err
	}
	if len(desc.Pages) == 0 || desc.Pages[0] == "" {
		return nil, gpucore.InvalidID, fmt.Errorf("debugdemo: %s has no atlas page", path)
	}
	atlas, err := font.LoadAtlas(filepath.Join(filepath.Dir(path), desc.Pages[0]))
	if err != nil {
		return nil, gpucore.InvalidID, err
	}
	tex, err := text.UploadAtlas(dev, atlas)
	if err != nil {
		return nil, gpucore.InvalidID, err
	}
	return []renderer.Option{renderer.WithFont(desc.Font(), tex)}, tex, nil
}

// newRenderer creates the debug renderer for cfg on dev. release frees the
// renderer and any font texture.
func newRenderer(dev gpucore.Device, cfg *Config, width, height uint32) (r *renderer.DebugRenderer, release func(), err error) {
	opts, tex, err := loadFont(dev, cfg.Font)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts,
		renderer.WithFrameSize(width, height),
		renderer.WithDepthTest(cfg.DepthTest),
	)
	r, err = renderer.New(dev, opts...)
	if err != nil {
		if tex != gpucore.InvalidID {
			dev.DestroyTexture(tex)
		}
		return nil, nil, err
	}
	return r, func() {
		r.Destroy()
		if tex != gpucore.InvalidID {
			dev.DestroyTexture(tex)
		}
	}, nil
}
