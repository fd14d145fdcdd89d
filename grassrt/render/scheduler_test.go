package render

import (
	"errors"
	"testing"

	"github.com/gekko3d/meadow/grassrt/chunk"
	"github.com/gekko3d/meadow/grassrt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapSource serves fixed-size buffers, optionally with overrides per chunk.
type mapSource struct {
	grid     *chunk.Grid
	count    int
	override map[chunk.Coord][]mgl32.Mat4
	reads    int
}

func newMapSource(t *testing.T, dims chunk.Coord, resolution int) *mapSource {
	t.Helper()
	grid, err := chunk.NewGrid(mgl32.Vec2{0, 0}, mgl32.Vec2{10, 10}, dims)
	require.NoError(t, err)
	return &mapSource{
		grid:     grid,
		count:    (resolution + 1) * (resolution + 1),
		override: map[chunk.Coord][]mgl32.Mat4{},
	}
}

func (m *mapSource) Grid() *chunk.Grid { return m.grid }

func (m *mapSource) Buffer(c chunk.Coord) ([]mgl32.Mat4, bool) {
	m.reads++
	if !m.grid.Contains(c) {
		return nil, false
	}
	if buf, ok := m.override[c]; ok {
		return buf, true
	}
	return make([]mgl32.Mat4, m.count), true
}

type warnLog struct {
	n int
}

func (w *warnLog) Warnf(string, ...any) { w.n++ }

func scenarioCamera() core.CameraState {
	// Near plane lands at z = 9.5, so only the z in [0,10] row survives.
	return core.LookAt(
		mgl32.Vec3{10, 2, 40},
		mgl32.Vec3{10, 2, 0},
		mgl32.Vec3{0, 1, 0},
		mgl32.DegToRad(60), 1, 30.5, 45,
	)
}

func scenarioConfig() Config {
	return Config{
		Resolution:   2,
		LODThreshold: 50,
		Culling:      true,
		BaseHeight:   0,
		Height:       2,
	}
}

func newTestScheduler(t *testing.T, src BufferSource, cfg Config, opts ...Option) *Scheduler {
	t.Helper()
	s, err := NewScheduler(src, cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestTwoChunksVisible(t *testing.T) {
	src := newMapSource(t, chunk.Coord{X: 2, Y: 2}, 2)
	s := newTestScheduler(t, src, scenarioConfig())

	rec := &Recorder{}
	stats, err := s.Frame(scenarioCamera(), rec)
	require.NoError(t, err)

	require.Len(t, rec.Calls, 2)
	assert.Equal(t, chunk.Coord{X: 0, Y: 0}, rec.Calls[0].Chunk)
	assert.Equal(t, chunk.Coord{X: 1, Y: 0}, rec.Calls[1].Chunk)
	assert.Equal(t, mgl32.Vec3{5, 1, 5}, rec.Calls[0].Bounds.Center)
	assert.Equal(t, mgl32.Vec3{15, 1, 5}, rec.Calls[1].Bounds.Center)
	assert.Equal(t, mgl32.Vec3{5, 1, 5}, rec.Calls[0].Bounds.Extents)

	assert.Equal(t, 0, rec.Calls[0].FirstInstance)
	assert.Equal(t, 9, rec.Calls[1].FirstInstance)
	assert.Equal(t, LODHigh, rec.Calls[0].LOD)

	assert.Equal(t, FrameStats{Chunks: 4, Visible: 2, Culled: 2, Draws: 2, High: 2, Instances: 18}, stats)
}

func TestCullingDisabledDrawsEverything(t *testing.T) {
	src := newMapSource(t, chunk.Coord{X: 2, Y: 2}, 2)
	cfg := scenarioConfig()
	cfg.Culling = false
	s := newTestScheduler(t, src, cfg)

	rec := &Recorder{}
	// An invalid camera is fine when no frustum is built.
	cam := scenarioCamera()
	cam.Near = 0
	stats, err := s.Frame(cam, rec)
	require.NoError(t, err)

	require.Len(t, rec.Calls, 4)
	assert.Equal(t, []chunk.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}},
		[]chunk.Coord{rec.Calls[0].Chunk, rec.Calls[1].Chunk, rec.Calls[2].Chunk, rec.Calls[3].Chunk})
	assert.Equal(t, 0, stats.Culled)
	assert.Equal(t, 36, rec.Instances())
}

func TestFrameRejectsInvalidCamera(t *testing.T) {
	s := newTestScheduler(t, newMapSource(t, chunk.Coord{X: 2, Y: 2}, 2), scenarioConfig())
	cam := scenarioCamera()
	cam.FovY = 0
	_, err := s.Frame(cam, &Recorder{})
	assert.ErrorIs(t, err, core.ErrInvalidCamera)

	_, err = s.Frame(scenarioCamera(), nil)
	assert.ErrorIs(t, err, ErrNoSubmitter)
}

func TestLODSelection(t *testing.T) {
	tests := []struct {
		name      string
		threshold float32
		want      LOD
	}{
		{"far threshold keeps high", 50, LODHigh},
		{"near threshold switches to low", 30, LODLow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := scenarioConfig()
			cfg.LODThreshold = tc.threshold
			s := newTestScheduler(t, newMapSource(t, chunk.Coord{X: 2, Y: 2}, 2), cfg)
			rec := &Recorder{}
			_, err := s.Frame(scenarioCamera(), rec)
			require.NoError(t, err)
			for _, dc := range rec.Calls {
				assert.Equal(t, tc.want, dc.LOD)
			}
		})
	}
}

func TestLODIsMonotonicInDistance(t *testing.T) {
	const threshold = 25
	prev := LODHigh
	for d := float32(0); d < 100; d += 0.5 {
		lod := SelectLOD(d, threshold)
		require.GreaterOrEqual(t, lod, prev, "distance %g", d)
		prev = lod
	}
	assert.Equal(t, LODHigh, SelectLOD(threshold, threshold))
	assert.Equal(t, LODLow, SelectLOD(threshold+0.01, threshold))
}

func TestWrongSizedBufferIsSkipped(t *testing.T) {
	src := newMapSource(t, chunk.Coord{X: 2, Y: 2}, 2)
	src.override[chunk.Coord{X: 0, Y: 0}] = make([]mgl32.Mat4, 4)
	log := &warnLog{}
	s := newTestScheduler(t, src, scenarioConfig(), WithLogger(log))

	rec := &Recorder{}
	stats, err := s.Frame(scenarioCamera(), rec)
	require.NoError(t, err)

	require.Len(t, rec.Calls, 1)
	assert.Equal(t, chunk.Coord{X: 1, Y: 0}, rec.Calls[0].Chunk)
	assert.Equal(t, 0, rec.Calls[0].FirstInstance)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, log.n)
}

func TestUnresolvedMeshRetriesNextFrame(t *testing.T) {
	attempts := 0
	high := NewHandle(func() (Mesh, error) {
		attempts++
		if attempts == 1 {
			return Mesh{}, errors.New("not uploaded")
		}
		return Mesh{ID: "blade-high", Name: "blade"}, nil
	})
	mat := Resolved(Material{ID: "grass"})
	log := &warnLog{}
	s := newTestScheduler(t, newMapSource(t, chunk.Coord{X: 2, Y: 2}, 2), scenarioConfig(),
		WithMeshes(high, nil), WithMaterial(mat), WithLogger(log))

	rec := &Recorder{}
	stats, err := s.Frame(scenarioCamera(), rec)
	require.NoError(t, err)
	// The first chunk fails and is skipped; the second resolves on retry.
	assert.Equal(t, 1, stats.Skipped)
	require.Len(t, rec.Calls, 1)
	assert.Equal(t, "blade-high", rec.Calls[0].Mesh.ID)
	assert.Equal(t, "grass", rec.Calls[0].Material.ID)

	rec.Reset()
	stats, err = s.Frame(scenarioCamera(), rec)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Skipped)
	assert.Len(t, rec.Calls, 2)
	assert.Equal(t, 2, attempts, "resolved handles are cached")
	assert.Equal(t, 1, log.n)
}

func TestSubmitErrorsAreSkipped(t *testing.T) {
	s := newTestScheduler(t, newMapSource(t, chunk.Coord{X: 2, Y: 2}, 2), scenarioConfig())
	calls := 0
	stats, err := s.Frame(scenarioCamera(), SubmitterFunc(func(dc DrawCall) error {
		calls++
		if dc.Chunk == (chunk.Coord{X: 0, Y: 0}) {
			return errors.New("device lost")
		}
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, 1, stats.Skipped)
}

func TestPartitionedCullMatchesSerial(t *testing.T) {
	cam := core.LookAt(
		mgl32.Vec3{40, 15, 120},
		mgl32.Vec3{60, 0, 40},
		mgl32.Vec3{0, 1, 0},
		mgl32.DegToRad(50), 1.6, 0.5, 150,
	)
	cfg := scenarioConfig()
	cfg.LODThreshold = 60

	serial := newTestScheduler(t, newMapSource(t, chunk.Coord{X: 12, Y: 12}, 2), cfg)
	cfg.CullWorkers = 4
	parallel := newTestScheduler(t, newMapSource(t, chunk.Coord{X: 12, Y: 12}, 2), cfg)

	for frame := 0; frame < 3; frame++ {
		a, b := &Recorder{}, &Recorder{}
		sa, err := serial.Frame(cam, a)
		require.NoError(t, err)
		sb, err := parallel.Frame(cam, b)
		require.NoError(t, err)

		assert.Equal(t, sa, sb)
		require.Equal(t, len(a.Calls), len(b.Calls))
		for i := range a.Calls {
			assert.Equal(t, a.Calls[i].Chunk, b.Calls[i].Chunk)
			assert.Equal(t, a.Calls[i].LOD, b.Calls[i].LOD)
			assert.Equal(t, a.Calls[i].FirstInstance, b.Calls[i].FirstInstance)
		}
		assert.Greater(t, sa.Visible, 0)
		assert.Greater(t, sa.Culled, 0)
		assert.Greater(t, sa.Low, 0)
	}
}

func TestNewSchedulerValidation(t *testing.T) {
	src := newMapSource(t, chunk.Coord{X: 1, Y: 1}, 1)
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"zero resolution", func(c *Config) { c.Resolution = 0 }, "resolution"},
		{"zero threshold", func(c *Config) { c.LODThreshold = 0 }, "lod threshold"},
		{"zero height", func(c *Config) { c.Height = 0 }, "height"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := scenarioConfig()
			tc.mutate(&cfg)
			_, err := NewScheduler(src, cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	_, err := NewScheduler(nil, scenarioConfig())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
