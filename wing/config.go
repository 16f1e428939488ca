// Package wing animates a row of feathers along a flapping spine curve.
//
// The spine is a Catmull-Rom curve fitted each frame through control points
// blended between a "down" and an "up" pose. Every feather is placed at a
// non-uniform arc-length fraction of that curve, aligned to the local tangent
// and fanned outward towards the tip.
package wing

import (
	"fmt"
	stdmath "math"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/math"
)

// ControlPointSet is one static wing pose. It is never modified after load.
type ControlPointSet []math.Vec3

// Config is the immutable wing configuration.
type Config struct {
	Up          ControlPointSet
	Down        ControlPointSet
	NumFeathers int
	// PeriodMS is the duration of one full down-up-down flap.
	PeriodMS float64
	// FeatherMesh is the asset path of the feather model.
	FeatherMesh string
}

// DefaultConfig returns a three point wing flapping every two seconds.
func DefaultConfig() Config {
	return Config{
		Up: ControlPointSet{
			math.NewVec3(-10, 0, 0),
			math.NewVec3(-5, 2, 0),
			math.NewVec3(0, 0, 0),
		},
		Down: ControlPointSet{
			math.NewVec3(-10, 0, 0),
			math.NewVec3(-5, -2, 0),
			math.NewVec3(0, 0, 0),
		},
		NumFeathers: 30,
		PeriodMS:    2000,
		FeatherMesh: "models/feather.obj",
	}
}

// Validate reports a malformed configuration. It is meant to run once before
// the frame loop starts; per-frame code assumes a valid Config.
func (c Config) Validate() error {
	if len(c.Up) != len(c.Down) {
		return fmt.Errorf("%w: up has %d control points, down has %d", core.ErrInvalidConfig, len(c.Up), len(c.Down))
	}
	if len(c.Up) < 2 {
		return fmt.Errorf("%w: at least 2 control points are required, got %d", core.ErrInvalidConfig, len(c.Up))
	}
	if c.NumFeathers < 2 {
		return fmt.Errorf("%w: num_feathers must be at least 2, got %d", core.ErrInvalidConfig, c.NumFeathers)
	}
	if c.PeriodMS <= 0 || stdmath.IsNaN(c.PeriodMS) || stdmath.IsInf(c.PeriodMS, 0) {
		return fmt.Errorf("%w: period_ms must be positive and finite, got %v", core.ErrInvalidConfig, c.PeriodMS)
	}
	if err := c.Up.validateFinite("up"); err != nil {
		return err
	}
	return c.Down.validateFinite("down")
}

func (s ControlPointSet) validateFinite(name string) error {
	for i, p := range s {
		for _, v := range [3]float32{p.X, p.Y, p.Z} {
			f := float64(v)
			if stdmath.IsNaN(f) || stdmath.IsInf(f, 0) {
				return fmt.Errorf("%w: %s[%d] = %v is not finite", core.ErrInvalidConfig, name, i, p)
			}
		}
	}
	return nil
}

type wingSection struct {
	Up          [][]float32 `toml:"up"`
	Down        [][]float32 `toml:"down"`
	NumFeathers *int        `toml:"num_feathers"`
	PeriodMS    *float64    `toml:"period_ms"`
	FeatherMesh string      `toml:"feather_mesh"`
}

type configFile struct {
	Wing *wingSection `toml:"wing"`
}

// ParseConfig decodes the [wing] table of a TOML document on top of
// DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	var file configFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("%w: %v", core.ErrInvalidConfig, err)
	}
	if w := file.Wing; w != nil {
		if w.Up != nil {
			up, err := toControlPoints("up", w.Up)
			if err != nil {
				return Config{}, err
			}
			cfg.Up = up
		}
		if w.Down != nil {
			down, err := toControlPoints("down", w.Down)
			if err != nil {
				return Config{}, err
			}
			cfg.Down = down
		}
		if w.NumFeathers != nil {
			cfg.NumFeathers = *w.NumFeathers
		}
		if w.PeriodMS != nil {
			cfg.PeriodMS = *w.PeriodMS
		}
		if w.FeatherMesh != "" {
			cfg.FeatherMesh = w.FeatherMesh
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the wing configuration at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading wing config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func toControlPoints(name string, raw [][]float32) (ControlPointSet, error) {
	out := make(ControlPointSet, len(raw))
	for i, values := range raw {
		v, ok := math.NewVec3FromSlice(values)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] has %d components, want 3", core.ErrInvalidConfig, name, i, len(values))
		}
		out[i] = v
	}
	return out, nil
}
