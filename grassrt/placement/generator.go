package placement

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/gekko3d/meadow/grassrt/chunk"
	"github.com/gekko3d/meadow/grassrt/core"
	"github.com/gekko3d/meadow/grassrt/noise"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidParams = errors.New("invalid placement params")

// Params controls how blades are scattered inside a chunk.
type Params struct {
	// Resolution is the number of cells per chunk side. Each chunk holds
	// (Resolution+1)^2 instances.
	Resolution int
	MinHeight  float32
	MaxHeight  float32
	// MeshHeight and MeshCenter are the blade mesh extent and bounds center
	// along UpAxis, in mesh space.
	MeshHeight float32
	MeshCenter float32
	UpAxis     int
	BaseScale  mgl32.Vec3
	BaseTilt   mgl32.Quat
	Seed       uint64
}

func (p Params) Validate() error {
	if p.Resolution < 1 {
		return fmt.Errorf("resolution %d must be at least 1: %w", p.Resolution, ErrInvalidParams)
	}
	if p.MinHeight > p.MaxHeight {
		return fmt.Errorf("min height %g exceeds max height %g: %w", p.MinHeight, p.MaxHeight, ErrInvalidParams)
	}
	if !(p.MeshHeight > 0) {
		return fmt.Errorf("mesh height %g must be positive: %w", p.MeshHeight, ErrInvalidParams)
	}
	if p.UpAxis < 0 || p.UpAxis > 2 {
		return fmt.Errorf("up axis %d must be 0, 1 or 2: %w", p.UpAxis, ErrInvalidParams)
	}
	return nil
}

// Count is the buffer length every chunk must have.
func (p Params) Count() int {
	return (p.Resolution + 1) * (p.Resolution + 1)
}

type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

type Option func(*Generator)

// WithWorkers sets the pool size. One worker fills chunks on the caller's
// goroutine.
func WithWorkers(n int) Option {
	return func(g *Generator) { g.workers = n }
}

func WithLogger(l Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// Generator fills per-chunk instance buffers. Rows of a chunk are filled in
// parallel; every row writes its own slots.
type Generator struct {
	params  Params
	height  noise.Sampler
	size    noise.Sampler
	workers int
	pool    worker.DynamicWorkerPool
	log     Logger
}

func NewGenerator(params Params, height, size noise.Sampler, opts ...Option) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if height == nil || size == nil {
		return nil, fmt.Errorf("height and size samplers are required: %w", ErrInvalidParams)
	}
	g := &Generator{
		params:  params,
		height:  height,
		size:    size,
		workers: 1,
		log:     nopLogger{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.workers > 1 {
		g.pool = worker.NewDynamicWorkerPool(g.workers, params.Resolution+1, time.Second)
	}
	return g, nil
}

func (g *Generator) Params() Params {
	return g.params
}

func (g *Generator) Count() int {
	return g.params.Count()
}

// Generate allocates and fills a new buffer for the chunk spanning [min, max].
func (g *Generator) Generate(c chunk.Coord, min, max mgl32.Vec2) []mgl32.Mat4 {
	return g.Fill(nil, c, min, max)
}

// Fill writes the chunk's instances into dst, reallocating it when its
// length does not match Count.
func (g *Generator) Fill(dst []mgl32.Mat4, c chunk.Coord, min, max mgl32.Vec2) []mgl32.Mat4 {
	n := g.Count()
	if len(dst) != n {
		if dst != nil {
			g.log.Debugf("placement: chunk %v buffer length %d, want %d; reallocating", c, len(dst), n)
		}
		dst = make([]mgl32.Mat4, n)
	}

	res := g.params.Resolution
	cell := max.Sub(min).Mul(1 / float32(res))
	seed := chunkSeed(g.params.Seed, c)

	if g.pool == nil {
		for i := 0; i <= res; i++ {
			g.fillRow(dst, seed, i, min, cell)
		}
		return dst
	}

	var wg sync.WaitGroup
	wg.Add(res + 1)
	for i := 0; i <= res; i++ {
		row := i
		g.pool.SubmitTask(worker.Task{
			ID: row,
			Do: func() (any, error) {
				defer wg.Done()
				g.fillRow(dst, seed, row, min, cell)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return dst
}

func (g *Generator) fillRow(dst []mgl32.Mat4, seed uint64, i int, min, cell mgl32.Vec2) {
	p := &g.params
	stride := p.Resolution + 1
	up := p.UpAxis
	tilt := p.BaseTilt
	if tilt == (mgl32.Quat{}) {
		tilt = mgl32.QuatIdent()
	}

	var src randSource
	for j := 0; j <= p.Resolution; j++ {
		idx := i*stride + j
		src.Seed(seed, uint64(idx))

		x := min[0] + float32(i)*cell[0] + src.unit()*cell[0]/2
		z := min[1] + float32(j)*cell[1] + src.unit()*cell[1]/2
		yaw := (src.unit()*2 - 1) * math.Pi

		s := mgl32.Clamp(g.size.Sample(x, z), 0, 1)
		k := p.MinHeight + s*(p.MaxHeight-p.MinHeight)

		scale := p.BaseScale
		scale[up] *= k

		t := core.Transform{
			Position: mgl32.Vec3{x, g.height.Sample(x, z) + scale[up]*(p.MeshHeight/2-p.MeshCenter), z},
			Rotation: mgl32.QuatRotate(yaw, mgl32.Vec3{0, 1, 0}).Mul(tilt),
			Scale:    scale,
		}
		dst[idx] = t.Matrix()
	}
}

// Close stops the worker pool. The generator must not be used afterwards.
func (g *Generator) Close() {
	if g.pool != nil {
		g.pool.Stop()
		g.pool = nil
	}
}
