package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fsnotify/fsnotify"

	"github.com/gekko3d/pointmorph"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a yaml scene config")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg := pointmorph.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = pointmorph.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	lib := pointmorph.NewCloudLibrary()
	if err := cfg.BuildShapes(lib, rng); err != nil {
		fmt.Fprintf(os.Stderr, "build shapes: %v\n", err)
		os.Exit(1)
	}

	set, err := pointmorph.NewParticleSet(lib.Variants(), rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build particle set: %v\n", err)
		os.Exit(1)
	}

	ctrl := pointmorph.NewMorphController(set)
	ctrl.SetAutoAdvance(cfg.AutoAdvance)

	var shaderSource string
	watch := &pointmorph.ShaderWatch{}
	if cfg.ShaderOverride != "" {
		data, err := os.ReadFile(cfg.ShaderOverride)
		if err != nil {
			fmt.Fprintf(os.Stderr, "shader override: %v\n", err)
			os.Exit(1)
		}
		shaderSource = string(data)
		go watchShader(cfg.ShaderOverride, watch)
	}

	pointmorph.NewApp().
		UseModules(
			pointmorph.LoggingModule{Prefix: "pointmorph", Debug: *debug},
			pointmorph.TimeModule{},
			pointmorph.WindowModule{
				Width:  cfg.Window.Width,
				Height: cfg.Window.Height,
				Title:  cfg.Window.Title,
			},
			pointmorph.InputModule{},
			pointmorph.OrbitCameraModule{
				Distance: cfg.Camera.Distance,
				Yaw:      cfg.Camera.Yaw,
				Pitch:    cfg.Camera.Pitch,
				Fov:      cfg.Camera.Fov,
			},
			pointmorph.MorphModule{
				Controller: ctrl,
				Names:      lib.Names(),
			},
			pointmorph.PointsRenderModule{
				Settings: pointmorph.PointsSettings{
					BaseSize: cfg.BaseSize,
					ColorA:   cfg.ColorA,
					ColorB:   cfg.ColorB,
					Exposure: cfg.Exposure,
				},
				ShaderSource: shaderSource,
				Watch:        watch,
			},
			pointmorph.HudModule{
				Enabled:  cfg.Hud.Enabled,
				FontPath: cfg.Hud.FontPath,
				FontSize: cfg.Hud.FontSize,
			},
		).
		Run()
}

// watchShader republishes the override file on every write so the render
// module can rebuild its pipeline without restarting.
func watchShader(path string, watch *pointmorph.ShaderWatch) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "shader watch: %v\n", err)
		return
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		fmt.Fprintf(os.Stderr, "shader watch: %v\n", err)
		return
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			watch.Publish(string(data))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "shader watch: %v\n", err)
		}
	}
}
