// Command helloxr runs the hello scene in a desktop window. The window shows a front
// orthographic view; the XR session is emulated.
package main

import (
	"context"
	"log/slog"
	"os"
	ossignal "os/signal"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/helloxr/audio"
	"github.com/plus3/helloxr/debugui"
	debugui_ebiten "github.com/plus3/helloxr/debugui/ebiten"
	"github.com/plus3/helloxr/internal/config"
	"github.com/plus3/helloxr/internal/hello"
	"github.com/plus3/helloxr/internal/xr"
	"github.com/plus3/helloxr/scene"
)

func main() {
	if err := run(); err != nil {
		slog.Error("helloxr failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	layout, err := config.LoadLayout(cfg.LayoutPath)
	if err != nil {
		return err
	}
	mode, err := xr.ParseSessionMode(cfg.SessionMode)
	if err != nil {
		return err
	}
	runtime, err := xr.EmulatorFromNames(250*time.Millisecond, cfg.SupportedModes)
	if err != nil {
		return err
	}

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	imguiBackend := debugui_ebiten.NewImguiBackend("Hello XR", cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(max(1, int(time.Second/cfg.TickInterval)))

	registry := scene.NewDefaultRegistry()
	debugui.RegisterComponents(registry)
	storage := scene.NewStorage(registry)
	scene.NewSingleton[debugui.ImguiInputState](storage)
	sched := scene.NewScheduler(storage, scene.WithLogger(logger))

	opts := hello.Options{
		Logger:        logger,
		Runtime:       runtime,
		Session:       xr.SessionConfig{Mode: mode, UIOptions: xr.UIOptions{SessionMode: mode}},
		InspectorKeys: cfg.InspectorKeys,
		ResetKey:      cfg.ResetKey,
		AssetDir:      cfg.AssetDir,
		ParticleSeed:  uint64(time.Now().UnixNano()),
	}
	if cfg.Audio {
		mixer := audio.NewMixer(audio.DefaultSampleRate, audio.WithLogger(logger))
		if err := mixer.Start(cfg.AudioBuffer); err != nil {
			logger.Warn("audio device unavailable, sounds are muted", "err", err)
		}
		opts.Mixer = mixer
		opts.Library = audio.NewDefaultLibrary(audio.DefaultSampleRate, logger)
	}

	s, err := hello.Build(ctx, sched, layout, opts)
	if err != nil {
		return err
	}
	defer s.Dispose()

	sched.Register(&debugui.ImguiSystem{})
	sched.Register(&debugui.InspectorSystem{
		Inspector: debugui.NewInspector(debugui.Sources{Scheduler: sched, Registry: s.Registry, Bridge: s.Bridge}),
	})

	game := &Game{
		ctx:    ctx,
		scene:  s,
		imgui:  imguiBackend,
		input:  scene.NewSingleton[debugui.ImguiInputState](storage),
		view:   newView(cfg.WindowWidth, cfg.WindowHeight),
		dt:     cfg.TickInterval.Seconds(),
		logger: logger,
	}
	if err := ebiten.RunGame(game); err != nil {
		return err
	}
	logger.Info("helloxr stopped", "frames", sched.Frame())
	return nil
}
