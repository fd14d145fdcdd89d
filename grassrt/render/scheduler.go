package render

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/gekko3d/meadow/grassrt/chunk"
	"github.com/gekko3d/meadow/grassrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidConfig = errors.New("invalid scheduler config")
	ErrNoSubmitter   = errors.New("no submitter")
)

// BufferSource hands out cached instance buffers for chunks of a grid.
type BufferSource interface {
	Grid() *chunk.Grid
	Buffer(c chunk.Coord) ([]mgl32.Mat4, bool)
}

type Config struct {
	// Resolution is the placement resolution; buffers hold (Resolution+1)^2
	// instances.
	Resolution   int
	LODThreshold float32
	Culling      bool
	// BaseHeight and Height give the vertical span of every chunk box. It
	// must enclose the terrain and the tallest blade.
	BaseHeight  float32
	Height      float32
	CullWorkers int
}

func (c Config) Validate() error {
	if c.Resolution < 1 {
		return fmt.Errorf("resolution %d must be at least 1: %w", c.Resolution, ErrInvalidConfig)
	}
	if !(c.LODThreshold > 0) {
		return fmt.Errorf("lod threshold %g must be positive: %w", c.LODThreshold, ErrInvalidConfig)
	}
	if !(c.Height > 0) {
		return fmt.Errorf("chunk height %g must be positive: %w", c.Height, ErrInvalidConfig)
	}
	return nil
}

func (c Config) InstanceCount() int {
	return (c.Resolution + 1) * (c.Resolution + 1)
}

type FrameStats struct {
	Chunks    int
	Visible   int
	Culled    int
	Draws     int
	Skipped   int
	High      int
	Low       int
	Instances int
}

type Logger interface {
	Warnf(format string, args ...any)
}

type Profiler interface {
	BeginScope(name string)
	EndScope(name string)
	SetCount(name string, count int)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

type nopProfiler struct{}

func (nopProfiler) BeginScope(string)    {}
func (nopProfiler) EndScope(string)      {}
func (nopProfiler) SetCount(string, int) {}

type Option func(*Scheduler)

func WithLogger(l Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

func WithProfiler(p Profiler) Option {
	return func(s *Scheduler) {
		if p != nil {
			s.prof = p
		}
	}
}

// WithMeshes binds the two LOD meshes. A nil low mesh reuses high.
func WithMeshes(high, low *Handle[Mesh]) Option {
	return func(s *Scheduler) {
		s.meshes[LODHigh] = high
		s.meshes[LODLow] = low
		if low == nil {
			s.meshes[LODLow] = high
		}
	}
}

func WithMaterial(m *Handle[Material]) Option {
	return func(s *Scheduler) { s.material = m }
}

type visibleChunk struct {
	coord    chunk.Coord
	box      core.AABB
	distance float32
	lod      LOD
}

// cullPart is one contiguous index range of the grid window with its own
// scratch box.
type cullPart struct {
	lo, hi  int
	scratch core.AABB
	visible []visibleChunk
}

// Scheduler decides each frame which chunks are drawn and with which mesh.
type Scheduler struct {
	src      BufferSource
	cfg      Config
	meshes   [2]*Handle[Mesh]
	material *Handle[Material]
	log      Logger
	prof     Profiler

	pool    worker.DynamicWorkerPool
	parts   []cullPart
	visible []visibleChunk
}

func NewScheduler(src BufferSource, cfg Config, opts ...Option) (*Scheduler, error) {
	if src == nil || src.Grid() == nil {
		return nil, fmt.Errorf("buffer source with a grid is required: %w", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{
		src:  src,
		cfg:  cfg,
		log:  nopLogger{},
		prof: nopProfiler{},
	}
	for _, opt := range opts {
		opt(s)
	}
	workers := max(cfg.CullWorkers, 1)
	s.parts = make([]cullPart, workers)
	if workers > 1 {
		s.pool = worker.NewDynamicWorkerPool(workers, workers, time.Second)
	}
	return s, nil
}

func (s *Scheduler) Config() Config {
	return s.cfg
}

// Frame culls the grid window against cam and submits one draw per visible
// chunk in grid index order.
func (s *Scheduler) Frame(cam core.CameraState, sub Submitter) (FrameStats, error) {
	var stats FrameStats
	if sub == nil {
		return stats, ErrNoSubmitter
	}
	grid := s.src.Grid()
	stats.Chunks = grid.Count()

	var frustum *core.Frustum
	if s.cfg.Culling {
		s.prof.BeginScope("Frustum")
		f, err := core.NewFrustum(cam)
		s.prof.EndScope("Frustum")
		if err != nil {
			return stats, err
		}
		frustum = &f
	}

	s.prof.BeginScope("Cull")
	s.cull(grid, cam.Position, frustum)
	s.prof.EndScope("Cull")

	stats.Visible = len(s.visible)
	stats.Culled = stats.Chunks - stats.Visible

	s.prof.BeginScope("Draw")
	want := s.cfg.InstanceCount()
	offset := 0
	for i := range s.visible {
		v := &s.visible[i]

		buf, ok := s.src.Buffer(v.coord)
		if !ok || len(buf) != want {
			s.log.Warnf("grass: chunk %v buffer has %d instances, want %d; skipping", v.coord, len(buf), want)
			stats.Skipped++
			continue
		}

		dc := DrawCall{
			Chunk:         v.coord,
			LOD:           v.lod,
			Instances:     buf,
			FirstInstance: offset,
			Bounds:        v.box,
			Distance:      v.distance,
		}
		if h := s.meshes[v.lod]; h != nil {
			mesh, err := h.Get()
			if err != nil {
				s.log.Warnf("grass: chunk %v %s mesh unavailable: %v", v.coord, v.lod, err)
				stats.Skipped++
				continue
			}
			dc.Mesh = mesh
		}
		if s.material != nil {
			mat, err := s.material.Get()
			if err != nil {
				s.log.Warnf("grass: chunk %v material unavailable: %v", v.coord, err)
				stats.Skipped++
				continue
			}
			dc.Material = mat
		}

		if err := sub.Submit(dc); err != nil {
			s.log.Warnf("grass: submit chunk %v: %v", v.coord, err)
			stats.Skipped++
			continue
		}

		offset += len(buf)
		stats.Draws++
		stats.Instances += len(buf)
		if v.lod == LODLow {
			stats.Low++
		} else {
			stats.High++
		}
	}
	s.prof.EndScope("Draw")

	s.prof.SetCount("Chunks", stats.Chunks)
	s.prof.SetCount("Visible", stats.Visible)
	s.prof.SetCount("Draws", stats.Draws)
	s.prof.SetCount("Instances", stats.Instances)
	return stats, nil
}

// cull fills s.visible in index order. With more than one part each part
// runs on the pool and the results are concatenated afterwards.
func (s *Scheduler) cull(grid *chunk.Grid, eye mgl32.Vec3, frustum *core.Frustum) {
	n := grid.Count()
	parts := len(s.parts)
	if s.pool == nil || n < parts*2 {
		parts = 1
	}

	size := (n + parts - 1) / parts
	for i := 0; i < parts; i++ {
		p := &s.parts[i]
		p.lo = min(i*size, n)
		p.hi = min(p.lo+size, n)
		p.visible = p.visible[:0]
		p.scratch.Extents = mgl32.Vec3{grid.ChunkSize[0] / 2, s.cfg.Height / 2, grid.ChunkSize[1] / 2}
	}

	if parts == 1 {
		s.cullRange(grid, eye, frustum, &s.parts[0])
	} else {
		var wg sync.WaitGroup
		wg.Add(parts)
		for i := 0; i < parts; i++ {
			p := &s.parts[i]
			s.pool.SubmitTask(worker.Task{
				ID: i,
				Do: func() (any, error) {
					defer wg.Done()
					s.cullRange(grid, eye, frustum, p)
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	s.visible = s.visible[:0]
	for i := 0; i < parts; i++ {
		s.visible = append(s.visible, s.parts[i].visible...)
	}
}

func (s *Scheduler) cullRange(grid *chunk.Grid, eye mgl32.Vec3, frustum *core.Frustum, p *cullPart) {
	centerY := s.cfg.BaseHeight + s.cfg.Height/2
	for i := p.lo; i < p.hi; i++ {
		c := grid.At(i)
		xz := grid.ChunkToWorld(c)
		p.scratch.Relocate(mgl32.Vec3{xz[0], centerY, xz[1]})

		if frustum != nil && !frustum.AABBTest(&p.scratch) {
			continue
		}
		d := eye.Sub(p.scratch.Center).Len()
		p.visible = append(p.visible, visibleChunk{
			coord:    c,
			box:      p.scratch,
			distance: d,
			lod:      SelectLOD(d, s.cfg.LODThreshold),
		})
	}
}

// Close stops the cull workers.
func (s *Scheduler) Close() {
	if s.pool != nil {
		s.pool.Stop()
		s.pool = nil
	}
}
