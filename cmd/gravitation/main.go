package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Versifine/gravitation/internal/clock"
	"github.com/Versifine/gravitation/internal/config"
	"github.com/Versifine/gravitation/internal/event"
	"github.com/Versifine/gravitation/internal/game"
	"github.com/Versifine/gravitation/internal/gravity"
	"github.com/Versifine/gravitation/internal/input"
	"github.com/Versifine/gravitation/internal/input/terminal"
	"github.com/Versifine/gravitation/internal/level"
	"github.com/Versifine/gravitation/internal/logger"
	"github.com/Versifine/gravitation/internal/observer"
	"github.com/Versifine/gravitation/internal/persistence/scores"
	"github.com/Versifine/gravitation/internal/schedule"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "YAML config file; empty for defaults")
	headless := flag.Bool("headless", false, "do not read keys from the terminal")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	closer, err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
		File:   cfg.Logging.File,
	})
	if err != nil {
		slog.Error("Failed to init logger", "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *headless); err != nil {
		logger.L().Error("Game failed", "error", err)
		stop()
		_ = closer.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, headless bool) error {
	log := logger.L()
	clk := clock.System{}

	var source input.Source = input.NewQueue()
	if !headless {
		reader := terminal.NewReader(clk, cfg.Controls.KeyPulse, log.With("component", "terminal"))
		source = reader
		go func() {
			if err := reader.Start(ctx); err != nil {
				log.Error("terminal input stopped", "error", err)
			}
		}()
	}

	hub := event.NewHub(source, event.DefaultKeymap(), log.With("component", "hub"))
	sched := schedule.New(clk, log.With("component", "scheduler"))
	slot := gravity.NewSlot(hub, log.With("component", "gravity"))
	if err := slot.Install(newController(cfg, clk, sched)); err != nil {
		return err
	}
	defer slot.Uninstall()

	lvl := level.New(level.Deps{
		Clock:     clk,
		Hub:       hub,
		Scheduler: sched,
		Gravity:   slot,
		Logger:    log.With("component", "level"),
	}, cfg.LevelSettings())
	if err := lvl.ConstructWorld(); err != nil {
		return err
	}
	defer lvl.Close()
	if err := lvl.Populate(level.FirstLevel(lvl.Settings())); err != nil {
		return err
	}

	board, err := scores.Open(cfg.Storage.Scores)
	if err != nil {
		return fmt.Errorf("open score board: %w", err)
	}
	defer board.Close()

	deps := game.Deps{
		Clock:  clk,
		Hub:    hub,
		Level:  lvl,
		Scores: board,
		Logger: log.With("component", "game"),
	}
	if cfg.Observer.Enabled {
		srv := observer.NewServer(cfg.Observer.Buffer, log.With("component", "observer"))
		defer srv.Close()
		stopHTTP := serveObserver(cfg.Observer.Addr, srv, log)
		defer stopHTTP()
		deps.Sink = srv
	}

	g := game.New(deps, game.Options{
		Name:         cfg.Level.Name,
		Hz:           cfg.Physics.Hz,
		SnapshotPath: cfg.Storage.Snapshot,
	})
	res, err := g.Run(ctx)
	if err != nil {
		return err
	}

	best, err := board.Best(context.WithoutCancel(ctx), cfg.Level.Name, 5)
	if err != nil {
		log.Warn("read best runs failed", "error", err)
	}
	fmt.Printf("\r\n%s: score %d in %s (%s)\r\n", res.Level, res.Score, res.Played.Round(time.Second), res.Reason)
	for i, r := range best {
		fmt.Printf("  %d. %d points in %s\r\n", i+1, r.Score, r.Duration.Round(time.Second))
	}
	return nil
}

func newController(cfg *config.Config, clk clock.Clock, sched *schedule.Scheduler) gravity.Controller {
	switch cfg.Controls.Gravity {
	case config.GravityContinuous:
		return gravity.NewContinuous(sched, cfg.Controls.TurnInterval, cfg.Controls.TurnDelta, logger.L().With("component", "gravity"))
	case config.GravityConstant:
		return gravity.NewConstant(0)
	default:
		return gravity.NewStepped(clk, 0, cfg.Controls.TurnDuration)
	}
}

func serveObserver(addr string, srv *observer.Server, log *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/observe", srv.Handler())
	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("observer listening", "addr", addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("observer server failed", "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = hs.Shutdown(ctx)
	}
}
