package chunk

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidGrid = errors.New("invalid chunk grid")

// Coord addresses a chunk. X runs along world X, Y along world Z.
type Coord struct {
	X, Y int
}

func (c Coord) Add(o Coord) Coord { return Coord{X: c.X + o.X, Y: c.Y + o.Y} }
func (c Coord) Sub(o Coord) Coord { return Coord{X: c.X - o.X, Y: c.Y - o.Y} }

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Grid maps world XZ positions to fixed-size chunks. Chunk (0,0) starts at
// Origin; chunk rectangles never move. The grid covers the window
// Min <= c < Min+Dims, which can be shifted to follow the camera.
type Grid struct {
	Origin    mgl32.Vec2
	ChunkSize mgl32.Vec2
	Dims      Coord
	Min       Coord
}

func NewGrid(origin, chunkSize mgl32.Vec2, dims Coord) (*Grid, error) {
	if !(chunkSize[0] > 0) || !(chunkSize[1] > 0) {
		return nil, fmt.Errorf("chunk size %v must be positive: %w", chunkSize, ErrInvalidGrid)
	}
	if dims.X < 1 || dims.Y < 1 {
		return nil, fmt.Errorf("dims %v must be at least 1x1: %w", dims, ErrInvalidGrid)
	}
	return &Grid{Origin: origin, ChunkSize: chunkSize, Dims: dims}, nil
}

// WorldToChunk floors toward negative infinity, so points just below the
// origin land in chunk -1.
func (g *Grid) WorldToChunk(xz mgl32.Vec2) Coord {
	return Coord{
		X: int(math.Floor(float64((xz[0] - g.Origin[0]) / g.ChunkSize[0]))),
		Y: int(math.Floor(float64((xz[1] - g.Origin[1]) / g.ChunkSize[1]))),
	}
}

// ChunkToWorld returns the center of chunk c.
func (g *Grid) ChunkToWorld(c Coord) mgl32.Vec2 {
	return mgl32.Vec2{
		g.Origin[0] + float32(c.X)*g.ChunkSize[0] + g.ChunkSize[0]/2,
		g.Origin[1] + float32(c.Y)*g.ChunkSize[1] + g.ChunkSize[1]/2,
	}
}

// Bounds returns the world XZ rectangle of chunk c.
func (g *Grid) Bounds(c Coord) (min, max mgl32.Vec2) {
	min = mgl32.Vec2{
		g.Origin[0] + float32(c.X)*g.ChunkSize[0],
		g.Origin[1] + float32(c.Y)*g.ChunkSize[1],
	}
	max = mgl32.Vec2{
		g.Origin[0] + float32(c.X+1)*g.ChunkSize[0],
		g.Origin[1] + float32(c.Y+1)*g.ChunkSize[1],
	}
	return min, max
}

func (g *Grid) Contains(c Coord) bool {
	return c.X >= g.Min.X && c.X < g.Min.X+g.Dims.X &&
		c.Y >= g.Min.Y && c.Y < g.Min.Y+g.Dims.Y
}

func (g *Grid) Count() int {
	return g.Dims.X * g.Dims.Y
}

// Index returns the row-major position of c inside the window (X fastest),
// or -1 when c is outside.
func (g *Grid) Index(c Coord) int {
	if !g.Contains(c) {
		return -1
	}
	return (c.Y-g.Min.Y)*g.Dims.X + (c.X - g.Min.X)
}

func (g *Grid) At(i int) Coord {
	return Coord{X: g.Min.X + i%g.Dims.X, Y: g.Min.Y + i/g.Dims.X}
}

// Coords lists the window in index order.
func (g *Grid) Coords() []Coord {
	out := make([]Coord, g.Count())
	for i := range out {
		out[i] = g.At(i)
	}
	return out
}

func (g *Grid) SetWindow(min Coord) {
	g.Min = min
}

// CenterOn moves the window so c sits in its middle. It reports whether the
// window changed.
func (g *Grid) CenterOn(c Coord) bool {
	min := Coord{X: c.X - g.Dims.X/2, Y: c.Y - g.Dims.Y/2}
	if min == g.Min {
		return false
	}
	g.Min = min
	return true
}
