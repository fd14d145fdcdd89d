package chunk

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    mgl32.Vec2
		dims    Coord
		wantErr string
	}{
		{"valid", mgl32.Vec2{10, 10}, Coord{X: 2, Y: 2}, ""},
		{"zero size", mgl32.Vec2{0, 10}, Coord{X: 2, Y: 2}, "chunk size"},
		{"negative size", mgl32.Vec2{10, -1}, Coord{X: 2, Y: 2}, "chunk size"},
		{"zero dims", mgl32.Vec2{10, 10}, Coord{X: 0, Y: 2}, "dims"},
		{"negative dims", mgl32.Vec2{10, 10}, Coord{X: 2, Y: -3}, "dims"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGrid(mgl32.Vec2{}, tc.size, tc.dims)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, g)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidGrid)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestChunkRoundTrip(t *testing.T) {
	grids := []*Grid{
		{Origin: mgl32.Vec2{0, 0}, ChunkSize: mgl32.Vec2{10, 10}, Dims: Coord{X: 1, Y: 1}},
		{Origin: mgl32.Vec2{-250, 37.5}, ChunkSize: mgl32.Vec2{16, 24}, Dims: Coord{X: 1, Y: 1}},
		{Origin: mgl32.Vec2{3.25, -9}, ChunkSize: mgl32.Vec2{0.5, 7}, Dims: Coord{X: 1, Y: 1}},
	}
	for _, g := range grids {
		for x := -40; x <= 40; x += 3 {
			for y := -40; y <= 40; y += 7 {
				c := Coord{X: x, Y: y}
				require.Equal(t, c, g.WorldToChunk(g.ChunkToWorld(c)), "grid origin %v size %v", g.Origin, g.ChunkSize)
			}
		}
	}
}

func TestWorldToChunkFloorsTowardNegativeInfinity(t *testing.T) {
	g, err := NewGrid(mgl32.Vec2{0, 0}, mgl32.Vec2{10, 10}, Coord{X: 2, Y: 2})
	require.NoError(t, err)

	assert.Equal(t, Coord{X: 0, Y: 0}, g.WorldToChunk(mgl32.Vec2{0, 0}))
	assert.Equal(t, Coord{X: 0, Y: 0}, g.WorldToChunk(mgl32.Vec2{9.99, 9.99}))
	assert.Equal(t, Coord{X: 1, Y: 0}, g.WorldToChunk(mgl32.Vec2{10, 0}))
	assert.Equal(t, Coord{X: -1, Y: -1}, g.WorldToChunk(mgl32.Vec2{-0.01, -5}))
	assert.Equal(t, Coord{X: -2, Y: 3}, g.WorldToChunk(mgl32.Vec2{-10.5, 35}))
}

func TestChunkCentersAndBounds(t *testing.T) {
	g, err := NewGrid(mgl32.Vec2{0, 0}, mgl32.Vec2{10, 10}, Coord{X: 2, Y: 2})
	require.NoError(t, err)

	assert.Equal(t, mgl32.Vec2{5, 5}, g.ChunkToWorld(Coord{X: 0, Y: 0}))
	assert.Equal(t, mgl32.Vec2{15, 5}, g.ChunkToWorld(Coord{X: 1, Y: 0}))
	assert.Equal(t, mgl32.Vec2{15, 15}, g.ChunkToWorld(Coord{X: 1, Y: 1}))

	min, max := g.Bounds(Coord{X: 1, Y: 0})
	assert.Equal(t, mgl32.Vec2{10, 0}, min)
	assert.Equal(t, mgl32.Vec2{20, 10}, max)
}

func TestWindowIndexing(t *testing.T) {
	g, err := NewGrid(mgl32.Vec2{0, 0}, mgl32.Vec2{10, 10}, Coord{X: 3, Y: 2})
	require.NoError(t, err)

	assert.Equal(t, 6, g.Count())
	assert.Equal(t, []Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}, g.Coords())
	for i := 0; i < g.Count(); i++ {
		assert.Equal(t, i, g.Index(g.At(i)))
	}
	assert.Equal(t, -1, g.Index(Coord{X: 3, Y: 0}))
	assert.Equal(t, -1, g.Index(Coord{X: 0, Y: -1}))

	g.SetWindow(Coord{X: -1, Y: 5})
	assert.True(t, g.Contains(Coord{X: -1, Y: 5}))
	assert.True(t, g.Contains(Coord{X: 1, Y: 6}))
	assert.False(t, g.Contains(Coord{X: 0, Y: 0}))
	assert.Equal(t, Coord{X: -1, Y: 5}, g.At(0))
}

func TestCenterOnShiftsOnlyTheWindow(t *testing.T) {
	g, err := NewGrid(mgl32.Vec2{0, 0}, mgl32.Vec2{10, 10}, Coord{X: 4, Y: 4})
	require.NoError(t, err)
	before := g.ChunkToWorld(Coord{X: 7, Y: 7})

	assert.True(t, g.CenterOn(Coord{X: 7, Y: 7}))
	assert.Equal(t, Coord{X: 5, Y: 5}, g.Min)
	assert.True(t, g.Contains(Coord{X: 7, Y: 7}))
	assert.False(t, g.CenterOn(Coord{X: 7, Y: 7}))

	// Rectangles are anchored on the origin, not on the window.
	assert.Equal(t, before, g.ChunkToWorld(Coord{X: 7, Y: 7}))
	assert.Equal(t, mgl32.Vec2{0, 0}, g.Origin)
}
