// Package game drives a level at a fixed rate: dispatch input, update the
// world, publish a frame.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Versifine/gravitation/internal/clock"
	"github.com/Versifine/gravitation/internal/event"
	"github.com/Versifine/gravitation/internal/level"
	"github.com/Versifine/gravitation/internal/observer"
	"github.com/Versifine/gravitation/internal/persistence/scores"
	"github.com/Versifine/gravitation/internal/persistence/snapshot"
)

var (
	ErrRunning       = errors.New("game already running")
	ErrLevelMismatch = errors.New("snapshot is for another level")
)

type FrameSink interface {
	Publish(f observer.Frame)
}

type Recorder interface {
	Record(ctx context.Context, r scores.Run) error
}

type StopReason string

const (
	StopQuit     StopReason = "quit"
	StopTimeUp   StopReason = "time up"
	StopCanceled StopReason = "canceled"
)

type Result struct {
	Level  string
	Score  int
	Played time.Duration
	Reason StopReason
}

type Deps struct {
	Clock  clock.Clock
	Hub    *event.Hub
	Level  *level.Level
	Sink   FrameSink
	Scores Recorder
	Logger *slog.Logger
}

type Options struct {
	Name         string
	Hz           int
	SnapshotPath string
}

type Game struct {
	clk      clock.Clock
	hub      *event.Hub
	level    *level.Level
	sink     FrameSink
	scores   Recorder
	logger   *slog.Logger
	opts     Options
	controls *event.Capsule

	running bool
	stop    StopReason
}

func New(deps Deps, opts Options) *Game {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if opts.Hz <= 0 {
		opts.Hz = 50
	}
	g := &Game{
		clk:    deps.Clock,
		hub:    deps.Hub,
		level:  deps.Level,
		sink:   deps.Sink,
		scores: deps.Scores,
		logger: deps.Logger,
		opts:   opts,
	}
	g.controls = event.NewCapsule(deps.Hub,
		event.Bind(event.Press(event.Quit), event.Plain(func() { g.Stop(StopQuit) })),
		event.Bind(event.Press(event.Dump), event.Plain(g.dump)),
		event.Bind(event.Press(event.Load), event.Plain(g.load)),
	)
	return g
}

// Run ticks until a quit event, the level's time limit or ctx ends the
// game. The finished run is recorded on the score board when one is set.
func (g *Game) Run(ctx context.Context) (Result, error) {
	if g.running {
		return Result{}, ErrRunning
	}
	if err := g.controls.Subscribe(); err != nil {
		return Result{}, fmt.Errorf("subscribe game controls: %w", err)
	}
	g.running = true
	g.stop = ""
	defer func() {
		g.running = false
		if err := g.controls.Unsubscribe(); err != nil {
			g.logger.Warn("unsubscribe game controls failed", "error", err)
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(g.opts.Hz))
	defer ticker.Stop()

	g.logger.Info("game started", "level", g.opts.Name, "hz", g.opts.Hz)
	for g.stop == "" {
		select {
		case <-ctx.Done():
			g.Stop(StopCanceled)
		case <-ticker.C:
			if err := g.Tick(g.clk.Now()); err != nil {
				return g.Result(g.clk.Now()), err
			}
		}
	}

	res := g.Result(g.clk.Now())
	g.logger.Info("game over", "reason", string(res.Reason), "score", res.Score, "played", res.Played.Round(time.Millisecond))
	if g.scores != nil && res.Reason != StopCanceled {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := g.scores.Record(rctx, scores.Run{
			Level:      res.Level,
			Score:      res.Score,
			Duration:   res.Played,
			FinishedAt: g.clk.Now(),
		}); err != nil {
			g.logger.Error("record score failed", "error", err)
		}
	}
	return res, nil
}

// Tick runs one frame at now.
func (g *Game) Tick(now time.Time) error {
	g.hub.DispatchExternal()
	if g.stop != "" {
		return nil
	}
	if err := g.level.UpdateWorld(now); err != nil {
		return fmt.Errorf("update world: %w", err)
	}
	if g.sink != nil {
		g.sink.Publish(observer.Capture(g.level, now))
	}
	if g.level.Over(now) {
		g.Stop(StopTimeUp)
	}
	return nil
}

// Stop ends the game after the current tick. The first reason wins.
func (g *Game) Stop(reason StopReason) {
	if g.stop == "" {
		g.stop = reason
	}
}

func (g *Game) Result(now time.Time) Result {
	return Result{
		Level:  g.opts.Name,
		Score:  g.level.Score(),
		Played: g.level.Elapsed(now),
		Reason: g.stop,
	}
}

func (g *Game) dump() {
	if err := g.Save(); err != nil {
		g.logger.Error("snapshot save failed", "path", g.opts.SnapshotPath, "error", err)
	}
}

func (g *Game) load() {
	if err := g.Restore(); err != nil {
		g.logger.Error("snapshot load failed", "path", g.opts.SnapshotPath, "error", err)
	}
}

// Save writes the level to the snapshot path.
func (g *Game) Save() error {
	now := g.clk.Now()
	snap := snapshot.Snapshot{
		Header: snapshot.Header{
			Level:     g.opts.Name,
			SavedAt:   now,
			Score:     g.level.Score(),
			ElapsedMS: g.level.Elapsed(now).Milliseconds(),
		},
		Body: snapshot.Body{Actors: g.level.Descriptors()},
	}
	if err := snapshot.Write(g.opts.SnapshotPath, snap); err != nil {
		return err
	}
	g.logger.Info("snapshot saved", "path", g.opts.SnapshotPath, "actors", len(snap.Body.Actors))
	return nil
}

// Restore replaces the level's actors and score with the saved ones. A
// snapshot of another level is refused.
func (g *Game) Restore() error {
	snap, err := snapshot.Read(g.opts.SnapshotPath)
	if err != nil {
		return err
	}
	if snap.Header.Level != g.opts.Name {
		return fmt.Errorf("%w: %q, playing %q", ErrLevelMismatch, snap.Header.Level, g.opts.Name)
	}
	if err := g.level.Restore(snap.Body.Actors); err != nil {
		return err
	}
	g.level.RestoreScore(snap.Header.Score)
	g.logger.Info("snapshot loaded", "path", g.opts.SnapshotPath, "actors", len(snap.Body.Actors), "score", snap.Header.Score)
	return nil
}
