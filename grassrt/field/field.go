package field

import (
	"errors"

	"github.com/gekko3d/meadow/grassrt/chunk"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrMissingGrid = errors.New("field: grid and generator are required")

// Generator produces instance buffers for chunk rectangles.
type Generator interface {
	Fill(dst []mgl32.Mat4, c chunk.Coord, min, max mgl32.Vec2) []mgl32.Mat4
	Count() int
	Close()
}

type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}

type Option func(*Store)

func WithLogger(l Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Chunk is one cached buffer. Buffers are never modified after generation;
// a dirty chunk is rebuilt on next use.
type Chunk struct {
	Coord  chunk.Coord
	Buffer []mgl32.Mat4
	dirty  bool
}

// Store owns the instance buffer of every chunk in the grid window.
type Store struct {
	grid    *chunk.Grid
	gen     Generator
	chunks  map[chunk.Coord]*Chunk
	pending []chunk.Coord
	queued  map[chunk.Coord]bool
	log     Logger
}

// New queues every chunk of the current window for generation.
func New(grid *chunk.Grid, gen Generator, opts ...Option) (*Store, error) {
	if grid == nil || gen == nil {
		return nil, ErrMissingGrid
	}
	s := &Store{
		grid:   grid,
		gen:    gen,
		chunks: make(map[chunk.Coord]*Chunk, grid.Count()),
		queued: make(map[chunk.Coord]bool),
		log:    nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, c := range grid.Coords() {
		s.enqueue(c)
	}
	return s, nil
}

func (s *Store) Grid() *chunk.Grid {
	return s.grid
}

// Len is the number of chunks holding a buffer.
func (s *Store) Len() int {
	return len(s.chunks)
}

func (s *Store) Pending() int {
	return len(s.pending)
}

func (s *Store) enqueue(c chunk.Coord) {
	if s.queued[c] {
		return
	}
	s.queued[c] = true
	s.pending = append(s.pending, c)
}

// BuildPending generates every queued chunk still inside the window and
// returns how many were built.
func (s *Store) BuildPending() int {
	built := 0
	for _, c := range s.pending {
		delete(s.queued, c)
		if !s.grid.Contains(c) {
			continue
		}
		s.build(c)
		built++
	}
	s.pending = s.pending[:0]
	if built > 0 {
		s.log.Debugf("field: built %d chunks", built)
	}
	return built
}

func (s *Store) build(c chunk.Coord) *Chunk {
	ch := s.chunks[c]
	if ch == nil {
		ch = &Chunk{Coord: c}
		s.chunks[c] = ch
	}
	min, max := s.grid.Bounds(c)
	// A fresh slice keeps buffers already handed out unchanged.
	ch.Buffer = s.gen.Fill(nil, c, min, max)
	ch.dirty = false
	return ch
}

// Buffer returns the chunk's instances. Missing, invalidated or wrongly
// sized buffers are regenerated before returning.
func (s *Store) Buffer(c chunk.Coord) ([]mgl32.Mat4, bool) {
	if !s.grid.Contains(c) {
		return nil, false
	}
	ch := s.chunks[c]
	switch {
	case ch == nil:
		s.log.Debugf("field: chunk %v not built yet, generating", c)
		ch = s.build(c)
	case ch.dirty:
		ch = s.build(c)
	case len(ch.Buffer) != s.gen.Count():
		s.log.Warnf("field: chunk %v has %d instances, want %d; regenerating", c, len(ch.Buffer), s.gen.Count())
		ch = s.build(c)
	}
	return ch.Buffer, true
}

// Invalidate marks a chunk for regeneration, e.g. after the terrain under it
// changed.
func (s *Store) Invalidate(c chunk.Coord) {
	if !s.grid.Contains(c) {
		return
	}
	if ch := s.chunks[c]; ch != nil {
		ch.dirty = true
	}
	s.enqueue(c)
}

func (s *Store) InvalidateAll() {
	for _, c := range s.grid.Coords() {
		s.Invalidate(c)
	}
}

// Follow recenters the window on the chunk under xz. Buffers of chunks that
// left the window are released and entering chunks are queued. It reports
// whether the window moved.
func (s *Store) Follow(xz mgl32.Vec2) bool {
	if !s.grid.CenterOn(s.grid.WorldToChunk(xz)) {
		return false
	}
	dropped := 0
	for c := range s.chunks {
		if !s.grid.Contains(c) {
			delete(s.chunks, c)
			dropped++
		}
	}
	entered := 0
	for _, c := range s.grid.Coords() {
		if _, ok := s.chunks[c]; !ok && !s.queued[c] {
			s.enqueue(c)
			entered++
		}
	}
	s.log.Debugf("field: window moved to %v, dropped %d chunks, queued %d", s.grid.Min, dropped, entered)
	return true
}

// Close releases all buffers and stops the generator.
func (s *Store) Close() {
	s.chunks = map[chunk.Coord]*Chunk{}
	s.pending = nil
	s.queued = map[chunk.Coord]bool{}
	s.gen.Close()
}
