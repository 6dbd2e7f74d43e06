// Command debugdemo draws coordinate axes, world-space labels and a
// frame-rate overlay with the debug renderer.
//
// In window mode it opens a glfw window and renders through OpenGL; the
// left mouse button orbits the camera and the scroll wheel zooms. In
// offscreen mode it renders through the wgpu HAL and writes a PNG.
//
//	debugdemo -mode offscreen -width 800 -height 600 -out axes.png
//	debugdemo -config debugdemo.toml
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/gogpu/debugdraw"
)

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("debugdemo: configuration", "err", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	debugdraw.SetLogger(logger)

	switch cfg.Mode {
	case modeOffscreen:
		err = runOffscreen(&cfg)
	default:
		err = runWindow(&cfg)
	}
	if err != nil {
		logger.Error("debugdemo: failed", "mode", cfg.Mode, "err", err)
		os.Exit(1)
	}
}
