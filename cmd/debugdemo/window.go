//go:build !nogpu

package main

import (
	"fmt"
	"runtime"

	opengl "github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/backend/gl"
)

const (
	orbitDegreesPerPixel = 0.4
	zoomStep             = 0.9
)

func init() {
	// GL calls must come from the thread that owns the context.
	runtime.LockOSThread()
}

// runWindow renders into a glfw window until it is closed, or for
// cfg.Frames frames when positive.
func runWindow(cfg *Config) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("debugdemo: glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	win, err := glfw.CreateWindow(int(cfg.Width), int(cfg.Height), "Debug Render Test", nil, nil)
	if err != nil {
		return fmt.Errorf("debugdemo: create window: %w", err)
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	dev, err := gl.New()
	if err != nil {
		return err
	}
	defer dev.Destroy()
	debugdraw.Logger().Info("debugdemo: window device",
		"glsl", dev.GLSLVersion(), "shader_model", dev.Capabilities().ShaderModel.String())

	fbw, fbh := win.GetFramebufferSize()
	r, release, err := newRenderer(dev, cfg, uint32(fbw), uint32(fbh)) //nolint:gosec // framebuffer sizes are positive
	if err != nil {
		return err
	}
	defer release()

	sc := newScene(cfg)
	sc.resize(uint32(fbw), uint32(fbh)) //nolint:gosec // framebuffer sizes are positive
	opengl.Viewport(0, 0, int32(fbw), int32(fbh))

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		if w == 0 || h == 0 {
			return
		}
		opengl.Viewport(0, 0, int32(w), int32(h)) //nolint:gosec // framebuffer sizes fit
		r.Resize(uint32(w), uint32(h))            //nolint:gosec // framebuffer sizes are positive
		sc.resize(uint32(w), uint32(h))           //nolint:gosec // framebuffer sizes are positive
		debugdraw.Logger().Debug("debugdemo: resized", "width", w, "height", h)
	})
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	var lastX, lastY float64
	win.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		if w.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press {
			sc.cam.rotate(float32(lastX-x)*orbitDegreesPerPixel, float32(y-lastY)*orbitDegreesPerPixel)
		}
		lastX, lastY = x, y
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, dy float64) {
		switch {
		case dy > 0:
			sc.cam.zoom(zoomStep)
		case dy < 0:
			sc.cam.zoom(1 / zoomStep)
		}
	})

	bg := cfg.Background
	last := glfw.GetTime()
	for frame := 0; !win.ShouldClose(); frame++ {
		if cfg.Frames > 0 && frame >= cfg.Frames {
			break
		}
		now := glfw.GetTime()
		fps := 0.0
		if dt := now - last; dt > 0 {
			fps = 1 / dt
		}
		last = now

		opengl.ClearColor(bg[0], bg[1], bg[2], bg[3])
		opengl.Clear(opengl.COLOR_BUFFER_BIT | opengl.DEPTH_BUFFER_BIT)
		sc.draw(r, fps)
		if err := r.Frame(sc.projection()); err != nil {
			return err
		}
		win.SwapBuffers()
		glfw.PollEvents()
	}
	debugdraw.Logger().Debug("debugdemo: closing", "stats", r.Stats())
	return nil
}
