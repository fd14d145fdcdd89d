package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gekko3d/meadow"
	"github.com/gekko3d/meadow/grassrt/core"
	"github.com/gekko3d/meadow/grassrt/render"
	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	var (
		cfgPath   string
		frames    int
		exportDir string
		writeCfg  string
		debug     bool
		dt        time.Duration
	)
	flag.StringVar(&cfgPath, "config", "", "path to grass field configuration (YAML)")
	flag.IntVar(&frames, "frames", 600, "frames to run, 0 runs until interrupted")
	flag.StringVar(&exportDir, "export", "", "directory to write the baked height and size fields to")
	flag.StringVar(&writeCfg, "write-config", "", "write the effective configuration to this path and exit")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.DurationVar(&dt, "dt", 16*time.Millisecond, "fixed frame step, 0 uses the wall clock")
	flag.Parse()

	cfg, err := meadow.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if writeCfg != "" {
		if err := meadow.SaveConfig(cfg, writeCfg); err != nil {
			log.Fatalf("write config: %v", err)
		}
		return
	}

	lo, hi := cfg.FieldRect()
	center := lo.Add(hi).Mul(0.5)
	radius := hi.Sub(lo).Len() / 4

	counter := &drawCounter{}
	app := meadow.NewAppBuilder().
		UseModule(meadow.LoggingModule{Prefix: cfg.Log.Prefix, Debug: cfg.Log.Debug || debug}).
		UseModule(meadow.TimeModule{FixedDt: dt}).
		UseModule(meadow.AssetServerModule{}).
		UseModule(meadow.CameraModule{Camera: meadow.CameraComponent{Near: 0.1, Far: 2 * radius}}).
		UseModule(meadow.OrbitCameraModule{
			Center: mgl32.Vec3{center.X(), 0, center.Y()},
			Radius: radius,
			Height: 6,
			Speed:  0.2,
		}).
		UseModule(meadow.GrassModule{Config: cfg, Submitter: counter, Backend: "headless"}).
		Build()

	assets, _ := meadow.Resource[meadow.AssetServer](app)
	half := mgl32.Vec3{0.05, cfg.Grass.MeshHeight / 2, 0.05}
	bladeCenter := mgl32.Vec3{0, cfg.Grass.MeshCenter, 0}
	assets.LoadMesh(cfg.Render.HighMesh, *core.NewAABB(bladeCenter, half))
	if cfg.Render.LowMesh != "" {
		assets.LoadMesh(cfg.Render.LowMesh, *core.NewAABB(bladeCenter, half))
	}
	assets.LoadMaterial(cfg.Render.Material)

	state, _ := meadow.Resource[meadow.GrassState](app)
	defer state.Close()

	if exportDir != "" {
		if err := export(state, exportDir); err != nil {
			log.Fatalf("export fields: %v", err)
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	app.UseSystem(meadow.System(func(cmd *meadow.Commands) {
		select {
		case <-signals:
			cmd.Logger().Infof("interrupted")
			cmd.Stop()
		default:
		}
	}).InStage(meadow.Finale))

	started := time.Now()
	app.Run(frames)
	elapsed := time.Since(started)

	fmt.Printf("%d frames in %v, %d draws, %d instances submitted\n",
		app.Frame(), elapsed.Round(time.Millisecond), counter.draws, counter.instances)
	fmt.Print(state.Runtime.Profiler.GetStatsString())
}

type drawCounter struct {
	draws     int
	instances int
}

func (c *drawCounter) Submit(dc render.DrawCall) error {
	c.draws++
	c.instances += len(dc.Instances)
	return nil
}

func export(state *meadow.GrassState, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if state.Height != nil {
		if err := state.Height.Save(filepath.Join(dir, "height.tiff")); err != nil {
			return err
		}
	}
	if state.Size != nil {
		if err := state.Size.Save(filepath.Join(dir, "size.bmp")); err != nil {
			return err
		}
	}
	return nil
}
