package meadow

import (
	"errors"
	"fmt"
	"os"

	"github.com/gekko3d/meadow/grassrt/app"
	"github.com/gekko3d/meadow/grassrt/chunk"
	"github.com/gekko3d/meadow/grassrt/noise"
	"github.com/gekko3d/meadow/grassrt/placement"
	"github.com/gekko3d/meadow/grassrt/render"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk description of a grass field. It is read once and
// stays fixed for the lifetime of the grid.
type Config struct {
	Grid      GridConfig    `yaml:"grid"`
	Grass     GrassConfig   `yaml:"grass"`
	Terrain   TerrainConfig `yaml:"terrain"`
	SizeNoise noise.Params  `yaml:"size_noise"`
	Render    RenderConfig  `yaml:"render"`
	Workers   WorkerConfig  `yaml:"workers"`
	Log       LogConfig     `yaml:"log"`
}

type GridConfig struct {
	Origin    mgl32.Vec2 `yaml:"origin,flow"`
	ChunkSize mgl32.Vec2 `yaml:"chunk_size,flow"`
	Dims      [2]int     `yaml:"dims,flow"`
	// Follow keeps the window centred on the camera.
	Follow bool `yaml:"follow"`
}

type GrassConfig struct {
	Resolution int        `yaml:"resolution"`
	MinHeight  float32    `yaml:"min_height"`
	MaxHeight  float32    `yaml:"max_height"`
	MeshHeight float32    `yaml:"mesh_height"`
	MeshCenter float32    `yaml:"mesh_center"`
	UpAxis     int        `yaml:"up_axis"`
	BaseScale  mgl32.Vec3 `yaml:"base_scale,flow"`
	// Tilt is the fixed blade orientation as XYZ euler angles in degrees.
	Tilt mgl32.Vec3 `yaml:"tilt,flow"`
	Seed uint64     `yaml:"seed"`
}

type TerrainConfig struct {
	Noise noise.Params `yaml:",inline"`
	// Heightmap, when set, is loaded instead of generating noise.
	Heightmap string `yaml:"heightmap,omitempty"`
	// WorldMin and WorldMax span the area the height and size fields cover.
	// Left zero, the initial grid window is used.
	WorldMin mgl32.Vec2 `yaml:"world_min,flow"`
	WorldMax mgl32.Vec2 `yaml:"world_max,flow"`
}

type RenderConfig struct {
	LODThreshold float32 `yaml:"lod_threshold"`
	Culling      bool    `yaml:"culling"`
	BaseHeight   float32 `yaml:"base_height"`
	Height       float32 `yaml:"height"`
	HighMesh     string  `yaml:"high_mesh"`
	LowMesh      string  `yaml:"low_mesh"`
	Material     string  `yaml:"material"`
}

type WorkerConfig struct {
	Placement int `yaml:"placement"`
	Cull      int `yaml:"cull"`
}

type LogConfig struct {
	Prefix string `yaml:"prefix"`
	Debug  bool   `yaml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			ChunkSize: mgl32.Vec2{16, 16},
			Dims:      [2]int{9, 9},
			Follow:    true,
		},
		Grass: GrassConfig{
			Resolution: 32,
			MinHeight:  0.6,
			MaxHeight:  1.4,
			MeshHeight: 1,
			MeshCenter: 0.5,
			UpAxis:     1,
			BaseScale:  mgl32.Vec3{1, 1, 1},
			Seed:       1,
		},
		Terrain: TerrainConfig{
			Noise: noise.Params{
				Size:      256,
				Scale:     1,
				Amplitude: 1,
				Frequency: 3,
				Height:    4,
				Seed:      7,
			},
		},
		SizeNoise: noise.Params{
			Size:      128,
			Scale:     1,
			Amplitude: 1,
			Frequency: 8,
			Height:    1,
			Seed:      11,
		},
		Render: RenderConfig{
			LODThreshold: 48,
			Culling:      true,
			BaseHeight:   -1,
			Height:       8,
			HighMesh:     "blade_high",
			LowMesh:      "blade_low",
			Material:     "grass",
		},
		Workers: WorkerConfig{
			Placement: 4,
			Cull:      2,
		},
		Log: LogConfig{
			Prefix: "meadow",
		},
	}
}

// Validate fills unset optional fields and checks every section.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Log.Prefix == "" {
		c.Log.Prefix = "meadow"
	}
	if c.Workers.Placement < 0 {
		return errors.New("workers.placement cannot be negative")
	}
	if c.Workers.Cull < 0 {
		return errors.New("workers.cull cannot be negative")
	}
	if c.Workers.Placement == 0 {
		c.Workers.Placement = 1
	}
	if c.Workers.Cull == 0 {
		c.Workers.Cull = 1
	}

	if _, err := chunk.NewGrid(c.Grid.Origin, c.Grid.ChunkSize, c.dims()); err != nil {
		return fmt.Errorf("grid invalid: %w", err)
	}
	if err := c.PlacementParams().Validate(); err != nil {
		return fmt.Errorf("grass invalid: %w", err)
	}
	if c.Terrain.Heightmap == "" {
		if err := c.Terrain.Noise.Validate(); err != nil {
			return fmt.Errorf("terrain invalid: %w", err)
		}
	}
	if !c.Terrain.WorldMin.ApproxEqual(c.Terrain.WorldMax) {
		if c.Terrain.WorldMax.X() <= c.Terrain.WorldMin.X() || c.Terrain.WorldMax.Y() <= c.Terrain.WorldMin.Y() {
			return errors.New("terrain.world_max must exceed terrain.world_min")
		}
	}
	if err := c.SizeNoise.Validate(); err != nil {
		return fmt.Errorf("size_noise invalid: %w", err)
	}
	if err := c.SchedulerConfig().Validate(); err != nil {
		return fmt.Errorf("render invalid: %w", err)
	}
	return nil
}

func (c *Config) dims() chunk.Coord {
	return chunk.Coord{X: c.Grid.Dims[0], Y: c.Grid.Dims[1]}
}

func (c *Config) PlacementParams() placement.Params {
	g := c.Grass
	tilt := mgl32.AnglesToQuat(
		mgl32.DegToRad(g.Tilt.X()),
		mgl32.DegToRad(g.Tilt.Y()),
		mgl32.DegToRad(g.Tilt.Z()),
		mgl32.XYZ,
	)
	return placement.Params{
		Resolution: g.Resolution,
		MinHeight:  g.MinHeight,
		MaxHeight:  g.MaxHeight,
		MeshHeight: g.MeshHeight,
		MeshCenter: g.MeshCenter,
		UpAxis:     g.UpAxis,
		BaseScale:  g.BaseScale,
		BaseTilt:   tilt,
		Seed:       g.Seed,
	}
}

func (c *Config) SchedulerConfig() render.Config {
	return render.Config{
		Resolution:   c.Grass.Resolution,
		LODThreshold: c.Render.LODThreshold,
		Culling:      c.Render.Culling,
		BaseHeight:   c.Render.BaseHeight,
		Height:       c.Render.Height,
		CullWorkers:  c.Workers.Cull,
	}
}

// Settings converts the config into runtime settings.
func (c *Config) Settings() app.Settings {
	return app.Settings{
		Origin:    c.Grid.Origin,
		ChunkSize: c.Grid.ChunkSize,
		Dims:      c.dims(),
		Placement: c.PlacementParams(),
		Render:    c.SchedulerConfig(),
		Workers:   c.Workers.Placement,
		Follow:    c.Grid.Follow,
	}
}

// FieldRect is the world XZ area the noise fields are baked over.
func (c *Config) FieldRect() (mgl32.Vec2, mgl32.Vec2) {
	if !c.Terrain.WorldMin.ApproxEqual(c.Terrain.WorldMax) {
		return c.Terrain.WorldMin, c.Terrain.WorldMax
	}
	d := c.dims()
	span := mgl32.Vec2{c.Grid.ChunkSize.X() * float32(d.X), c.Grid.ChunkSize.Y() * float32(d.Y)}
	return c.Grid.Origin, c.Grid.Origin.Add(span)
}

// LoadConfig reads a YAML config on top of the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
