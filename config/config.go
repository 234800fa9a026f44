// Package config loads the scene setup (camera, lights and background)
// used by the render command. Files override the built-in defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ms-elk/rtcamp11/types"
)

var (
	ErrUnsupportedFormat = errors.New("config: unsupported config file format")
)

type Camera struct {
	Eye    types.Vec3
	Target types.Vec3
	Up     types.Vec3

	// Vertical field of view in radians.
	FovY float32
}

type Light struct {
	Power    float32
	Color    types.Vec3
	Position types.Vec3
	Target   types.Vec3
	Radius   float32
}

type Config struct {
	Camera     Camera
	Lights     []Light
	Background types.Vec3
}

// Get the default scene setup.
func Default() *Config {
	return &Config{
		Camera: Camera{
			Eye:    types.XYZ(0, 1.5, -6.3),
			Target: types.XYZ(0, -0.5, -0.2),
			Up:     types.XYZ(0, 1, 0),
			FovY:   math.Pi / 2,
		},
		Lights: []Light{
			{
				Power:    150,
				Color:    types.XYZ(1, 1, 1),
				Position: types.XYZ(0, 2.5, 0),
				Target:   types.XYZ(0, 0, 0),
				Radius:   0.1,
			},
		},
		Background: types.XYZ(0, 0, 0),
	}
}

// Load a config file and apply it on top of the defaults. The decoder is
// selected by the file extension: .hcl, .yaml/.yml or .toml.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		err = decodeHCL(path, data, &fc)
	case ".yaml", ".yml":
		err = decodeYAML(data, &fc)
	case ".toml":
		err = decodeTOML(data, &fc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("config: could not parse %s: %w", path, err)
	}

	cfg := Default()
	if err = fc.apply(cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// The on-disk representation. Unset fields keep their default values; a
// file that lists lights replaces the default light set.
type fileConfig struct {
	Camera     *fileCamera `hcl:"camera,block" yaml:"camera" toml:"camera"`
	Lights     []fileLight `hcl:"light,block" yaml:"lights" toml:"lights"`
	Background []float64   `hcl:"background,optional" yaml:"background" toml:"background"`
}

type fileCamera struct {
	Eye    []float64 `hcl:"eye,optional" yaml:"eye" toml:"eye"`
	Target []float64 `hcl:"target,optional" yaml:"target" toml:"target"`
	Up     []float64 `hcl:"up,optional" yaml:"up" toml:"up"`
	FovY   *float64  `hcl:"fovy,optional" yaml:"fovy" toml:"fovy"`
}

type fileLight struct {
	Power    *float64  `hcl:"power,optional" yaml:"power" toml:"power"`
	Color    []float64 `hcl:"color,optional" yaml:"color" toml:"color"`
	Position []float64 `hcl:"position,optional" yaml:"position" toml:"position"`
	Target   []float64 `hcl:"target,optional" yaml:"target" toml:"target"`
	Radius   *float64  `hcl:"radius,optional" yaml:"radius" toml:"radius"`
}

func (fc *fileConfig) apply(cfg *Config) error {
	var err error
	if fc.Camera != nil {
		if err = setVec3(&cfg.Camera.Eye, fc.Camera.Eye, "camera.eye"); err != nil {
			return err
		}
		if err = setVec3(&cfg.Camera.Target, fc.Camera.Target, "camera.target"); err != nil {
			return err
		}
		if err = setVec3(&cfg.Camera.Up, fc.Camera.Up, "camera.up"); err != nil {
			return err
		}
		if fc.Camera.FovY != nil {
			cfg.Camera.FovY = float32(*fc.Camera.FovY)
		}
	}

	if fc.Lights != nil {
		defaultLight := Default().Lights[0]
		cfg.Lights = make([]Light, len(fc.Lights))
		for i, fl := range fc.Lights {
			l := defaultLight
			name := fmt.Sprintf("light[%d]", i)
			if fl.Power != nil {
				l.Power = float32(*fl.Power)
			}
			if fl.Radius != nil {
				l.Radius = float32(*fl.Radius)
			}
			if err = setVec3(&l.Color, fl.Color, name+".color"); err != nil {
				return err
			}
			if err = setVec3(&l.Position, fl.Position, name+".position"); err != nil {
				return err
			}
			if err = setVec3(&l.Target, fl.Target, name+".target"); err != nil {
				return err
			}
			cfg.Lights[i] = l
		}
	}

	if err = setVec3(&cfg.Background, fc.Background, "background"); err != nil {
		return err
	}

	return cfg.Validate()
}

func setVec3(dst *types.Vec3, src []float64, name string) error {
	if src == nil {
		return nil
	}
	if len(src) != 3 {
		return fmt.Errorf("%s: expected 3 components; got %d", name, len(src))
	}
	*dst = types.XYZ(float32(src[0]), float32(src[1]), float32(src[2]))
	return nil
}

// Check that the scene setup can be rendered.
func (cfg *Config) Validate() error {
	if !(cfg.Camera.FovY > 0 && cfg.Camera.FovY < math.Pi) {
		return fmt.Errorf("camera.fovy must be in (0, pi); got %f", cfg.Camera.FovY)
	}
	if cfg.Camera.Eye == cfg.Camera.Target {
		return errors.New("camera.eye and camera.target must differ")
	}
	if cfg.Camera.Up.Len() == 0 {
		return errors.New("camera.up must not be a zero vector")
	}
	for i, l := range cfg.Lights {
		if l.Power < 0 {
			return fmt.Errorf("light[%d].power must not be negative", i)
		}
		if l.Radius <= 0 {
			return fmt.Errorf("light[%d].radius must be positive", i)
		}
		if l.Position == l.Target {
			return fmt.Errorf("light[%d].position and light[%d].target must differ", i, i)
		}
	}
	return nil
}
