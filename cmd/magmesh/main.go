// Command magmesh renders a spring-mesh that hands pull and music colors, in the terminal
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/lixenwraith/magnetic-mesh/audio"
	"github.com/lixenwraith/magnetic-mesh/config"
	"github.com/lixenwraith/magnetic-mesh/core"
	"github.com/lixenwraith/magnetic-mesh/engine"
	"github.com/lixenwraith/magnetic-mesh/hand"
	"github.com/lixenwraith/magnetic-mesh/mesh"
	"github.com/lixenwraith/magnetic-mesh/render"
	"github.com/lixenwraith/magnetic-mesh/service"
	"github.com/lixenwraith/magnetic-mesh/status"
	"github.com/lixenwraith/magnetic-mesh/vmath"
)

var (
	configFlag  = flag.String("config", "", "INI config file")
	debugFlag   = flag.Bool("debug", false, "write logs to "+logDir+"/"+logFileName)
	trackerFlag = flag.String("tracker", "", "hand source: mouse, orbit, leap, none")
	audioFlag   = flag.String("audio", "", "audio mode: speaker, silent, off")
	widthFlag   = flag.Int("width", 0, "particles across")
	heightFlag  = flag.Int("height", 0, "particles down")
	fpsFlag     = flag.Int("fps", 0, "frames per second")
	exampleFlag = flag.Bool("example-config", false, "print an example config file and exit")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "magmesh: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *exampleFlag {
		fmt.Print(config.ExampleFile)
		return nil
	}

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal")
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	grid, err := mesh.New(cfg.MeshParams())
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()
	core.SetCrashReset(screen.Fini)

	registry := status.NewRegistry()
	scene := render.NewScene(cfg.RenderOptions(), registry)
	renderer := render.NewTerminalRenderer(screen, scene)

	hub := service.NewHub()
	deps := engine.Deps{
		Grid:     grid,
		Renderer: renderer,
		Registry: registry,
		Spectrum: audio.Silent{},
	}

	var muter engine.Muter
	ac := cfg.AudioConfig()
	if *audioFlag != "" {
		ac.Mode, _ = audio.ParseMode(*audioFlag)
	}
	deps.Audio = ac.Mode.String()
	if ae, err := audio.NewEngine(ac); err != nil {
		log.Printf("audio: %v (continuing without audio)", err)
	} else if err := hub.Register(ae); err == nil {
		deps.Spectrum = ae.Spectrum()
		muter = ae
	}

	input, mouse, err := buildInput(cfg, scene, hub)
	if err != nil {
		return err
	}
	if input.Tracker != nil {
		deps.Inputs = []engine.Input{input}
	}

	if err := hub.StartAll(); err != nil {
		return err
	}
	defer hub.StopAll()

	vis, err := engine.NewVisualizer(deps)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("magmesh: %dx%d grid, tracker=%s audio=%s", grid.Width(), grid.Height(), cfg.Hand.Tracker, deps.Audio)
	return engine.NewLoop(vis, screen, cfg.FrameInterval(), mouse, muter).Run(ctx)
}

// applyFlags lets explicit command-line values win over file and environment
func applyFlags(cfg *config.Config) {
	if *trackerFlag != "" {
		cfg.Hand.Tracker = *trackerFlag
	}
	if *audioFlag != "" {
		cfg.Audio.Mode = *audioFlag
	}
	if *widthFlag > 0 {
		cfg.Grid.Width = *widthFlag
	}
	if *heightFlag > 0 {
		cfg.Grid.Height = *heightFlag
	}
	if *fpsFlag > 0 {
		cfg.Render.FPS = *fpsFlag
	}
}

// buildInput creates the configured hand source
// Network-backed sources are registered with hub for lifecycle management
func buildInput(cfg *config.Config, scene *render.Scene, hub *service.Hub) (engine.Input, *hand.MouseTracker, error) {
	switch cfg.Hand.Tracker {
	case config.TrackerMouse:
		planeZ := cfg.Grid.PlaneZ
		mouse := hand.NewMouseTracker(func(col, row int) (vmath.Vec3F, bool) {
			return scene.Camera().Unproject(col, row, planeZ)
		}, cfg.Hand.MouseDepth)
		return engine.Input{Tracker: mouse, Mapper: hand.Identity()}, mouse, nil

	case config.TrackerOrbit:
		return engine.Input{Tracker: hand.NewOrbitTracker(cfg.OrbitConfig(), nil), Mapper: cfg.Mapper()}, nil, nil

	case config.TrackerLeap:
		leap := hand.NewLeapTracker(cfg.LeapConfig())
		if err := hub.Register(leap); err != nil {
			return engine.Input{}, nil, err
		}
		return engine.Input{Tracker: leap, Mapper: cfg.Mapper()}, nil, nil
	}
	return engine.Input{Tracker: hand.NoTracker{}, Mapper: hand.Identity()}, nil, nil
}
