package meadow

import (
	"fmt"

	grass "github.com/gekko3d/meadow/grassrt/app"
	"github.com/gekko3d/meadow/grassrt/noise"
	"github.com/gekko3d/meadow/grassrt/render"
)

// GrassModule builds the chunked grass field from a Config and drives it
// every frame: the Update stage follows the camera and builds pending
// chunks, the Render stage culls and submits draws.
type GrassModule struct {
	Config *Config
	// Height and Size override the samplers the config would build.
	Height noise.Sampler
	Size   noise.Sampler
	// Submitter receives draw calls. Nil discards them.
	Submitter render.Submitter
	// Backend names the submitter for the single renderer check.
	Backend string
}

// GrassState is the resource the grass systems run on.
type GrassState struct {
	Runtime   *grass.App
	Submitter render.Submitter
	Config    *Config

	// Height and Size are the baked fields, nil when samplers were injected.
	Height   *noise.Field
	Size     *noise.Field
	HeightId AssetId
	SizeId   AssetId

	LastStats render.FrameStats
	LastErr   error
}

func (s *GrassState) Close() {
	if s.Runtime != nil {
		s.Runtime.Close()
	}
}

func (m GrassModule) Install(app *App, cmd *Commands) {
	log := app.Logger()
	fail := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		log.Errorf("grass: %s", msg)
		panic(msg)
	}

	cfg := m.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		fail("invalid config: %v", err)
	}

	backend := m.Backend
	if backend == "" {
		backend = "grass"
	}
	ensureSingleRenderer(app, backend)

	if _, ok := Resource[AssetServer](app); !ok {
		AssetServerModule{}.Install(app, cmd)
	}
	if _, ok := Resource[Time](app); !ok {
		TimeModule{}.Install(app, cmd)
	}
	if _, ok := Resource[CameraComponent](app); !ok {
		CameraModule{}.Install(app, cmd)
	}
	assets, _ := Resource[AssetServer](app)

	state := &GrassState{Config: cfg, Submitter: m.Submitter}
	if state.Submitter == nil {
		state.Submitter = render.SubmitterFunc(func(render.DrawCall) error { return nil })
	}

	worldMin, worldMax := cfg.FieldRect()
	height := m.Height
	if height == nil {
		var err error
		if cfg.Terrain.Heightmap != "" {
			state.HeightId, err = assets.LoadHeightmap(cfg.Terrain.Heightmap, worldMin, worldMax, cfg.Terrain.Noise.Height)
			if err == nil {
				state.Height, _ = assets.Heightmap(state.HeightId)
			}
		} else {
			state.Height, err = noise.Generate(cfg.Terrain.Noise, worldMin, worldMax)
			if err == nil {
				state.HeightId = assets.AddHeightmap("terrain", state.Height)
			}
		}
		if err != nil {
			fail("terrain: %v", err)
		}
		height = state.Height
	}
	size := m.Size
	if size == nil {
		var err error
		state.Size, err = noise.Generate(cfg.SizeNoise, worldMin, worldMax)
		if err != nil {
			fail("size noise: %v", err)
		}
		state.SizeId = assets.AddHeightmap("size", state.Size)
		size = state.Size
	}

	opts := []grass.Option{grass.WithLogger(log)}
	if cfg.Render.HighMesh != "" {
		var low *render.Handle[render.Mesh]
		if cfg.Render.LowMesh != "" {
			low = assets.MeshHandle(cfg.Render.LowMesh)
		}
		opts = append(opts, grass.WithMeshes(assets.MeshHandle(cfg.Render.HighMesh), low))
	}
	if cfg.Render.Material != "" {
		opts = append(opts, grass.WithMaterial(assets.MaterialHandle(cfg.Render.Material)))
	}

	rt, err := grass.NewApp(cfg.Settings(), height, size, opts...)
	if err != nil {
		fail("runtime: %v", err)
	}
	state.Runtime = rt

	cmd.AddResources(state)
	cmd.UseSystem(System(grassUpdateSystem).InStage(Update))
	cmd.UseSystem(System(grassRenderSystem).InStage(Render))
}

func grassUpdateSystem(state *GrassState, cam *CameraComponent) {
	state.Runtime.Camera = cam.State()
	state.Runtime.Update()
}

func grassRenderSystem(state *GrassState, t *Time) {
	stats, err := state.Runtime.Render(state.Submitter, t.Dt.Seconds())
	state.LastErr = err
	if err == nil {
		state.LastStats = stats
	}
}
