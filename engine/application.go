package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/math"
	"github.com/spaghettifunk/featherwing/engine/renderer/snapshot"
)

type ApplicationSection struct {
	// The application name used in log lines.
	Name     string        `toml:"name"`
	LogLevel core.LogLevel `toml:"log_level"`
	// Frames per second. Zero runs the loop unthrottled.
	FrameRate float64 `toml:"frame_rate"`
	// Stop after this many frames. Zero runs until interrupted.
	MaxFrames uint64 `toml:"max_frames"`
	// Output surface size.
	Width      uint32 `toml:"width"`
	Height     uint32 `toml:"height"`
	AssetsDir  string `toml:"assets_dir"`
	JobWorkers int    `toml:"job_workers"`
}

type CameraSection struct {
	Position []float32 `toml:"position"`
	Target   []float32 `toml:"target"`
	// Vertical field of view in degrees.
	FOV  float32 `toml:"fov"`
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`
}

type LightSection struct {
	// Colour as hue, saturation and lightness, each in [0,1].
	Hue        float32   `toml:"hue"`
	Saturation float32   `toml:"saturation"`
	Lightness  float32   `toml:"lightness"`
	Intensity  float32   `toml:"intensity"`
	Position   []float32 `toml:"position"`
	Target     []float32 `toml:"target"`
	Background []float32 `toml:"background"`
}

type SnapshotSection struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	// Write one snapshot every EveryNFrames frames.
	EveryNFrames uint64          `toml:"every_n_frames"`
	Format       snapshot.Format `toml:"format"`
	Supersample  int             `toml:"supersample"`
	Ambient      float32         `toml:"ambient"`
}

type PanelSection struct {
	// Values file re-read whenever it changes on disk. Empty disables the panel file.
	File   string  `toml:"file"`
	FOVMin float64 `toml:"fov_min"`
	FOVMax float64 `toml:"fov_max"`
}

type ApplicationConfig struct {
	Application ApplicationSection `toml:"application"`
	Camera      CameraSection      `toml:"camera"`
	Light       LightSection       `toml:"light"`
	Snapshot    SnapshotSection    `toml:"snapshot"`
	Panel       PanelSection       `toml:"panel"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Application: ApplicationSection{
			Name:       "Feather Wing",
			LogLevel:   core.InfoLevel,
			FrameRate:  60,
			Width:      1280,
			Height:     720,
			AssetsDir:  "assets",
			JobWorkers: 2,
		},
		Camera: CameraSection{
			Position: []float32{0, 1, 5},
			Target:   []float32{0, 0, 0},
			FOV:      45,
			Near:     0.1,
			Far:      1000,
		},
		Light: LightSection{
			Hue:        0.1,
			Saturation: 1,
			Lightness:  0.95,
			Intensity:  1,
			Position:   []float32{10, 30, 20},
			Target:     []float32{0, 0, 0},
			Background: []float32{0, 0, 0},
		},
		Snapshot: SnapshotSection{
			Dir:          "snapshots",
			EveryNFrames: 30,
			Format:       snapshot.FormatPNG,
			Supersample:  2,
			Ambient:      0.25,
		},
		Panel: PanelSection{
			FOVMin: 0,
			FOVMax: 180,
		},
	}
}

// ParseApplicationConfig decodes data on top of DefaultApplicationConfig.
// Tables it does not know, such as [wing], are ignored.
func ParseApplicationConfig(data []byte) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading application config: %w", err)
	}
	cfg, err := ParseApplicationConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	a := c.Application
	if a.FrameRate < 0 {
		return fmt.Errorf("%w: frame_rate must not be negative, got %v", core.ErrInvalidConfig, a.FrameRate)
	}
	if a.Width == 0 || a.Height == 0 {
		return fmt.Errorf("%w: output size %dx%d", core.ErrInvalidConfig, a.Width, a.Height)
	}
	if a.AssetsDir == "" {
		return fmt.Errorf("%w: assets_dir is empty", core.ErrInvalidConfig)
	}

	vectors := map[string][]float32{
		"camera.position":  c.Camera.Position,
		"camera.target":    c.Camera.Target,
		"light.position":   c.Light.Position,
		"light.target":     c.Light.Target,
		"light.background": c.Light.Background,
	}
	for name, v := range vectors {
		if _, ok := math.NewVec3FromSlice(v); !ok {
			return fmt.Errorf("%w: %s has %d components, want 3", core.ErrInvalidConfig, name, len(v))
		}
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: camera.fov %v not in (0,180)", core.ErrInvalidConfig, c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera clip range [%v, %v]", core.ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	}
	if c.Panel.FOVMin > c.Panel.FOVMax {
		return fmt.Errorf("%w: panel fov range [%v, %v]", core.ErrInvalidConfig, c.Panel.FOVMin, c.Panel.FOVMax)
	}
	if c.Snapshot.Enabled && c.Snapshot.EveryNFrames == 0 {
		return fmt.Errorf("%w: snapshot.every_n_frames must be positive", core.ErrInvalidConfig)
	}
	return nil
}

// vec3 converts a validated three component slice.
func vec3(v []float32) math.Vec3 {
	out, _ := math.NewVec3FromSlice(v)
	return out
}

func (c CameraSection) PositionVec() math.Vec3 { return vec3(c.Position) }
func (c CameraSection) TargetVec() math.Vec3   { return vec3(c.Target) }
func (l LightSection) PositionVec() math.Vec3  { return vec3(l.Position) }
func (l LightSection) TargetVec() math.Vec3    { return vec3(l.Target) }

func (l LightSection) BackgroundColour() math.Vec4 {
	return vec3(l.Background).ToVec4(1)
}

// SnapshotOptions turns the snapshot section into renderer options sized
// to the output surface.
func (c *ApplicationConfig) SnapshotOptions() snapshot.Options {
	opts := snapshot.DefaultOptions()
	opts.Width = int(c.Application.Width)
	opts.Height = int(c.Application.Height)
	if c.Snapshot.Supersample > 0 {
		opts.Supersample = c.Snapshot.Supersample
	}
	opts.Ambient = c.Snapshot.Ambient
	return opts
}
