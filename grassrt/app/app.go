package app

import (
	"github.com/gekko3d/meadow/grassrt/chunk"
	"github.com/gekko3d/meadow/grassrt/core"
	"github.com/gekko3d/meadow/grassrt/field"
	"github.com/gekko3d/meadow/grassrt/noise"
	"github.com/gekko3d/meadow/grassrt/placement"
	"github.com/gekko3d/meadow/grassrt/render"
	"github.com/go-gl/mathgl/mgl32"
)

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}

// Settings is everything needed to build the grass runtime.
type Settings struct {
	Origin    mgl32.Vec2
	ChunkSize mgl32.Vec2
	Dims      chunk.Coord
	Placement placement.Params
	Render    render.Config
	// Workers sizes the placement pool.
	Workers int
	// Follow recenters the grid window on the camera every update.
	Follow bool
}

type Option func(*options)

type options struct {
	log      Logger
	high     *render.Handle[render.Mesh]
	low      *render.Handle[render.Mesh]
	material *render.Handle[render.Material]
}

func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func WithMeshes(high, low *render.Handle[render.Mesh]) Option {
	return func(o *options) { o.high, o.low = high, low }
}

func WithMaterial(m *render.Handle[render.Material]) Option {
	return func(o *options) { o.material = m }
}

// App bundles the grid, the chunk store and the scheduler.
type App struct {
	Grid      *chunk.Grid
	Field     *field.Store
	Generator *placement.Generator
	Scheduler *render.Scheduler
	Profiler  *Profiler
	Camera    core.CameraState
	Follow    bool

	LastStats render.FrameStats
	log       Logger

	FrameCount int
	FPS        float64
	FPSTime    float64
}

func NewApp(s Settings, height, size noise.Sampler, opts ...Option) (*App, error) {
	o := options{log: nopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}

	grid, err := chunk.NewGrid(s.Origin, s.ChunkSize, s.Dims)
	if err != nil {
		return nil, err
	}
	gen, err := placement.NewGenerator(s.Placement, height, size,
		placement.WithWorkers(s.Workers), placement.WithLogger(o.log))
	if err != nil {
		return nil, err
	}
	store, err := field.New(grid, gen, field.WithLogger(o.log))
	if err != nil {
		gen.Close()
		return nil, err
	}

	// Draws are checked against the buffers the generator produces.
	s.Render.Resolution = s.Placement.Resolution
	if b, ok := height.(noise.Bounded); ok {
		lo, hi := b.Bounds()
		if r, widened := encloseBlades(s.Render, s.Placement, lo, hi); widened {
			o.log.Debugf("grass: chunk span widened to [%g, %g] for terrain [%g, %g]", r.BaseHeight, r.BaseHeight+r.Height, lo, hi)
			s.Render = r
		}
	} else {
		o.log.Debugf("grass: height sampler reports no bounds, chunk span stays [%g, %g]", s.Render.BaseHeight, s.Render.BaseHeight+s.Render.Height)
	}

	prof := NewProfiler()
	schedOpts := []render.Option{render.WithLogger(o.log), render.WithProfiler(prof)}
	if o.high != nil {
		schedOpts = append(schedOpts, render.WithMeshes(o.high, o.low))
	}
	if o.material != nil {
		schedOpts = append(schedOpts, render.WithMaterial(o.material))
	}
	sched, err := render.NewScheduler(store, s.Render, schedOpts...)
	if err != nil {
		store.Close()
		return nil, err
	}

	o.log.Infof("grass: %dx%d chunks of %v, %d instances each", s.Dims.X, s.Dims.Y, s.ChunkSize, s.Placement.Count())
	return &App{
		Grid:      grid,
		Field:     store,
		Generator: gen,
		Scheduler: sched,
		Profiler:  prof,
		Follow:    s.Follow,
		log:       o.log,
	}, nil
}

// encloseBlades grows the vertical span of the chunk boxes so it holds every
// blade rooted on terrain in [lo, hi]. Blades reach k*BaseScale[up]*MeshHeight
// above their root; a tilted or flipped blade may reach as far below it.
func encloseBlades(r render.Config, p placement.Params, lo, hi float32) (render.Config, bool) {
	k := max(abs32(p.MinHeight), abs32(p.MaxHeight))
	reach := k * abs32(p.BaseScale[p.UpAxis]) * p.MeshHeight
	below := float32(0)
	if !p.BaseTilt.ApproxEqual(mgl32.QuatIdent()) || p.BaseScale[p.UpAxis] < 0 || p.MinHeight < 0 {
		below = reach
	}

	bottom := min(r.BaseHeight, lo-below)
	top := max(r.BaseHeight+r.Height, hi+reach)
	if bottom == r.BaseHeight && top == r.BaseHeight+r.Height {
		return r, false
	}
	r.BaseHeight = bottom
	r.Height = top - bottom
	return r, true
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Update moves the window with the camera when following and builds every
// pending chunk. It must not overlap Render.
func (a *App) Update() {
	if a.Follow {
		pos := a.Camera.Position
		a.Field.Follow(mgl32.Vec2{pos.X(), pos.Z()})
	}
	if a.Field.Pending() == 0 {
		return
	}
	a.Profiler.BeginScope("Placement")
	built := a.Field.BuildPending()
	a.Profiler.EndScope("Placement")
	a.Profiler.SetCount("Built", built)
}

// Render runs the scheduler for the current camera. dt is the time since the
// previous frame in seconds.
func (a *App) Render(sub render.Submitter, dt float64) (render.FrameStats, error) {
	stats, err := a.Scheduler.Frame(a.Camera, sub)
	if err != nil {
		a.log.Warnf("grass: frame skipped: %v", err)
		return stats, err
	}
	a.LastStats = stats

	a.FrameCount++
	a.FPSTime += dt
	if a.FPSTime >= 1.0 {
		a.FPS = float64(a.FrameCount) / a.FPSTime
		a.FrameCount = 0
		a.FPSTime = 0
	}
	return stats, nil
}

func (a *App) Close() {
	a.Scheduler.Close()
	a.Field.Close()
}
