package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Versifine/gravitation/internal/actor"
	"github.com/Versifine/gravitation/internal/clock"
	"github.com/Versifine/gravitation/internal/event"
	"github.com/Versifine/gravitation/internal/geom"
	"github.com/Versifine/gravitation/internal/gravity"
	"github.com/Versifine/gravitation/internal/input"
	"github.com/Versifine/gravitation/internal/level"
	"github.com/Versifine/gravitation/internal/observer"
	"github.com/Versifine/gravitation/internal/persistence/scores"
	"github.com/Versifine/gravitation/internal/schedule"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type frameSink struct {
	frames []observer.Frame
}

func (s *frameSink) Publish(f observer.Frame) { s.frames = append(s.frames, f) }

type runRecorder struct {
	mu   sync.Mutex
	runs []scores.Run
}

func (r *runRecorder) Record(_ context.Context, run scores.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

type fixture struct {
	clk    *clock.Manual
	queue  *input.Queue
	hub    *event.Hub
	level  *level.Level
	sink   *frameSink
	scores *runRecorder
	game   *Game
}

func newFixture(t *testing.T, settings level.Settings) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewManual(epoch)
	queue := input.NewQueue()
	hub := event.NewHub(queue, event.DefaultKeymap(), logger)
	lvl := level.New(level.Deps{
		Clock:     clk,
		Hub:       hub,
		Scheduler: schedule.New(clk, logger),
		Gravity:   gravity.NewSlot(hub, logger),
		Logger:    logger,
	}, settings)
	if err := lvl.ConstructWorld(); err != nil {
		t.Fatalf("ConstructWorld() error = %v", err)
	}
	f := &fixture{clk: clk, queue: queue, hub: hub, level: lvl, sink: &frameSink{}, scores: &runRecorder{}}
	f.game = New(Deps{
		Clock:  clk,
		Hub:    hub,
		Level:  lvl,
		Sink:   f.sink,
		Scores: f.scores,
		Logger: logger,
	}, Options{
		Name:         "first",
		Hz:           500,
		SnapshotPath: filepath.Join(t.TempDir(), "snapshot.json.zst"),
	})
	return f
}

func TestTickPublishesFrames(t *testing.T) {
	f := newFixture(t, level.DefaultSettings())
	for i := 0; i < 3; i++ {
		if err := f.game.Tick(f.clk.Advance(20 * time.Millisecond)); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	if len(f.sink.frames) != 3 {
		t.Fatalf("published %d frames, want 3", len(f.sink.frames))
	}
	if n := len(f.sink.frames[0].Shapes); n != 4 {
		t.Fatalf("frame has %d shapes, want the 4 walls", n)
	}
}

func TestQuitEndsRun(t *testing.T) {
	f := newFixture(t, level.DefaultSettings())
	f.queue.Push(input.KeyDown(input.KeyQ))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := f.game.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Reason != StopQuit || res.Level != "first" {
		t.Fatalf("Result = %+v, want quit on level first", res)
	}
	if len(f.scores.runs) != 1 || f.scores.runs[0].Level != "first" {
		t.Fatalf("recorded runs = %+v, want one", f.scores.runs)
	}
	if f.hub.Len() != 7 {
		t.Fatalf("hub holds %d subscriptions, want only the 7 level controls", f.hub.Len())
	}
}

func TestTimeLimitEndsRun(t *testing.T) {
	settings := level.DefaultSettings()
	settings.TimeLimit = time.Second
	f := newFixture(t, settings)

	if err := f.game.Tick(f.clk.Advance(500 * time.Millisecond)); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if f.game.Result(f.clk.Now()).Reason != "" {
		t.Fatal("game stopped before the limit")
	}
	if err := f.game.Tick(f.clk.Advance(600 * time.Millisecond)); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	res := f.game.Result(f.clk.Now())
	if res.Reason != StopTimeUp || res.Played != 1100*time.Millisecond {
		t.Fatalf("Result = %+v, want time up after 1.1s", res)
	}
}

func TestCanceledRunIsNotRecorded(t *testing.T) {
	f := newFixture(t, level.DefaultSettings())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := f.game.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Reason != StopCanceled {
		t.Fatalf("Reason = %q, want %q", res.Reason, StopCanceled)
	}
	if len(f.scores.runs) != 0 {
		t.Fatalf("recorded %d runs, want none", len(f.scores.runs))
	}
}

func TestSaveAndRestore(t *testing.T) {
	f := newFixture(t, level.DefaultSettings())
	ball, err := f.level.Spawn(actor.BallAt(geom.V(10, 10), 1, 0.5))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	f.level.RestoreScore(4)
	if err := f.game.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := f.level.RemoveActor(ball.ID()); err != nil {
		t.Fatalf("RemoveActor() error = %v", err)
	}
	f.level.RestoreScore(0)

	if err := f.game.controls.Subscribe(); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	f.hub.Dispatch(event.Press(event.Load))

	if f.level.Len() != 5 || f.level.Score() != 4 {
		t.Fatalf("after load Len() = %d, Score() = %d, want 5 and 4", f.level.Len(), f.level.Score())
	}
	restored, ok := f.level.Actor(ball.ID())
	if !ok || restored.Kind() != actor.KindBall {
		t.Fatalf("Actor(%d) = %v, %v, want the ball", ball.ID(), restored, ok)
	}
}

func TestRestoreRefusesOtherLevel(t *testing.T) {
	f := newFixture(t, level.DefaultSettings())
	if err := f.game.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	f.game.opts.Name = "tower"
	err := f.game.Restore()
	if !errors.Is(err, ErrLevelMismatch) {
		t.Fatalf("Restore() error = %v, want a level mismatch", err)
	}
}
