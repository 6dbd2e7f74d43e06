package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	modeWindow    = "window"
	modeOffscreen = "offscreen"
)

var errBadMode = errors.New("debugdemo: mode must be window or offscreen")

// Config is the demo configuration. Values come from defaults, then the
// optional TOML file, then explicitly set flags.
type Config struct {
	Mode       string       `toml:"mode"`
	Width      uint32       `toml:"width"`
	Height     uint32       `toml:"height"`
	Out        string       `toml:"out"`
	Frames     int          `toml:"frames"`
	Font       string       `toml:"font"`
	Verbose    bool         `toml:"verbose"`
	DepthTest  bool         `toml:"depth_test"`
	Background [4]float32   `toml:"background"`
	Camera     CameraConfig `toml:"camera"`
}

// CameraConfig places the orbit camera. Angles are in degrees.
type CameraConfig struct {
	FOV      float32 `toml:"fov"`
	Near     float32 `toml:"near"`
	Far      float32 `toml:"far"`
	Distance float32 `toml:"distance"`
	Yaw      float32 `toml:"yaw"`
	Pitch    float32 `toml:"pitch"`
}

func defaultConfig() Config {
	return Config{
		Mode:       modeWindow,
		Width:      640,
		Height:     480,
		Out:        "debugdemo.png",
		Frames:     1,
		Background: [4]float32{0.3, 0.3, 0.3, 1},
		Camera: CameraConfig{
			FOV:      90,
			Near:     0.1,
			Far:      1000,
			Distance: 12,
			Yaw:      45,
			Pitch:    30,
		},
	}
}

// loadConfig overlays the TOML file at path onto cfg.
func loadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("debugdemo: read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("debugdemo: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Mode != modeWindow && c.Mode != modeOffscreen {
		return fmt.Errorf("%w, got %q", errBadMode, c.Mode)
	}
	if c.Width == 0 || c.Height == 0 {
		return fmt.Errorf("debugdemo: invalid size %dx%d", c.Width, c.Height)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("debugdemo: invalid clip range [%g, %g]", c.Camera.Near, c.Camera.Far)
	}
	return nil
}

// parseArgs builds the configuration from command-line args.
func parseArgs(args []string) (Config, error) {
	fs := flag.NewFlagSet("debugdemo", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "TOML configuration file")
		mode       = fs.String("mode", modeWindow, "window or offscreen")
		width      = fs.Uint("width", 640, "frame width in pixels")
		height     = fs.Uint("height", 480, "frame height in pixels")
		out        = fs.String("out", "debugdemo.png", "offscreen PNG output")
		frames     = fs.Int("frames", 1, "frames to render; 0 runs the window until closed")
		fontPath   = fs.String("font", "", "BMFont descriptor (.fnt); built-in font when empty")
		verbose    = fs.Bool("verbose", false, "debug logging")
		depth      = fs.Bool("depth", false, "depth-test lines and text")
	)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := defaultConfig()
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *mode
		case "width":
			cfg.Width = uint32(*width) //nolint:gosec // window sizes fit
		case "height":
			cfg.Height = uint32(*height) //nolint:gosec // window sizes fit
		case "out":
			cfg.Out = *out
		case "frames":
			cfg.Frames = *frames
		case "font":
			cfg.Font = *fontPath
		case "verbose":
			cfg.Verbose = *verbose
		case "depth":
			cfg.DepthTest = *depth
		}
	})
	return cfg, cfg.validate()
}
