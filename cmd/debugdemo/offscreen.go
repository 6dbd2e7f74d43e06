package main

import (
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/gogpu/gputypes"
	_ "github.com/gogpu/wgpu/hal/allbackends" // register HAL backends

	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/backend/wgpu"
)

func clearColor(c [4]float32) gputypes.Color {
	return gputypes.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}

// runOffscreen renders cfg.Frames frames into an offscreen target and
// writes the last one to cfg.Out.
func runOffscreen(cfg *Config) error {
	dev, err := wgpu.NewStandalone()
	if err != nil {
		return err
	}
	defer dev.Destroy()

	info := dev.AdapterInfo()
	debugdraw.Logger().Info("debugdemo: offscreen device",
		"adapter", info.Name, "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))

	if err := dev.SetOffscreenTarget(cfg.Width, cfg.Height); err != nil {
		return err
	}
	r, release, err := newRenderer(dev, cfg, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	defer release()

	sc := newScene(cfg)
	frames := max(cfg.Frames, 1)
	fps := 0.0
	for i := 0; i < frames; i++ {
		start := time.Now()
		if err := dev.Clear(clearColor(cfg.Background)); err != nil {
			return err
		}
		sc.draw(r, fps)
		if err := r.Frame(sc.projection()); err != nil {
			return err
		}
		sc.cam.rotate(360/float32(frames), 0)
		if elapsed := time.Since(start).Seconds(); elapsed > 0 {
			fps = 1 / elapsed
		}
	}
	debugdraw.Logger().Debug("debugdemo: rendered", "stats", r.Stats())

	img, err := dev.ReadPixels()
	if err != nil {
		return err
	}
	f, err := os.Create(cfg.Out)
	if err != nil {
		return fmt.Errorf("debugdemo: create output: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("debugdemo: encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("debugdemo: write output: %w", err)
	}
	debugdraw.Logger().Info("debugdemo: wrote image", "path", cfg.Out)
	return nil
}
