package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/spaghettifunk/featherwing/engine/core"
)

type countingGame struct {
	*Game
	initialized int
	updates     int
	renders     []uint64
	resizes     [][2]uint32
	shutdowns   int
	onUpdate    func(n int) error
}

func newCountingGame(t *testing.T, maxFrames uint64) *countingGame {
	t.Helper()
	cfg := DefaultApplicationConfig()
	cfg.Application.FrameRate = 0
	cfg.Application.MaxFrames = maxFrames
	cfg.Application.AssetsDir = t.TempDir()
	cfg.Application.LogLevel = core.ErrorLevel

	g := &countingGame{Game: &Game{ApplicationConfig: cfg}}
	g.FnInitialize = func() error { g.initialized++; return nil }
	g.FnUpdate = func(float64) error {
		g.updates++
		if g.onUpdate != nil {
			return g.onUpdate(g.updates)
		}
		return nil
	}
	g.FnRender = func(frame uint64, _ float64) error { g.renders = append(g.renders, frame); return nil }
	g.FnOnResize = func(w, h uint32) error { g.resizes = append(g.resizes, [2]uint32{w, h}); return nil }
	g.FnShutdown = func() error { g.shutdowns++; return nil }
	return g
}

func startEngine(t *testing.T, g *countingGame) *Engine {
	t.Helper()
	e, err := New(g.Game)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return e
}

func TestEngineRunsFrameBudget(t *testing.T) {
	g := newCountingGame(t, 5)
	e := startEngine(t, g)
	if g.SystemManager == nil || g.Assets == nil || g.Events == nil {
		t.Fatal("Expected the engine to hand its systems to the game")
	}

	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if g.initialized != 1 || g.updates != 5 || len(g.renders) != 5 {
		t.Errorf("Expected 1 init and 5 frames, got %d, %d, %d", g.initialized, g.updates, len(g.renders))
	}
	if g.renders[0] != 0 || g.renders[4] != 4 {
		t.Errorf("Expected frames numbered from 0, got %v", g.renders)
	}
	if len(g.resizes) != 1 || g.resizes[0] != [2]uint32{1280, 720} {
		t.Errorf("Expected the initial size to be announced, got %v", g.resizes)
	}

	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if g.shutdowns != 1 || e.Stage() != EngineStageShutdown {
		t.Errorf("Expected a clean shutdown, got %d calls in stage %d", g.shutdowns, e.Stage())
	}
	if err := e.Shutdown(); !errors.Is(err, core.ErrAlreadyShutdown) {
		t.Errorf("Expected ErrAlreadyShutdown, got %v", err)
	}
}

func TestEngineQuitEvent(t *testing.T) {
	g := newCountingGame(t, 0)
	e := startEngine(t, g)
	defer e.Shutdown()
	g.onUpdate = func(n int) error {
		if n == 3 {
			e.Quit()
		}
		return nil
	}

	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if g.updates != 3 {
		t.Errorf("Expected the loop to stop after the quitting frame, got %d updates", g.updates)
	}
}

func TestEngineStopsOnContextCancel(t *testing.T) {
	g := newCountingGame(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	e, err := New(g.Game)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()
	if err := e.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	g.onUpdate = func(n int) error {
		if n == 2 {
			cancel()
		}
		return nil
	}
	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if g.updates != 2 {
		t.Errorf("Expected 2 updates before cancellation, got %d", g.updates)
	}
}

func TestEngineUpdateErrorStopsLoop(t *testing.T) {
	g := newCountingGame(t, 0)
	e := startEngine(t, g)
	defer e.Shutdown()
	boom := errors.New("boom")
	g.onUpdate = func(int) error { return boom }

	if err := e.Run(); !errors.Is(err, boom) {
		t.Errorf("Expected the update error, got %v", err)
	}
	if len(g.renders) != 0 {
		t.Errorf("Expected no render after a failed update, got %d", len(g.renders))
	}
}

func TestEngineResize(t *testing.T) {
	g := newCountingGame(t, 1)
	e := startEngine(t, g)
	defer e.Shutdown()

	e.Resize(640, 480)
	if w, h := e.GetFramebufferSize(); w != 640 || h != 480 {
		t.Errorf("Expected 640x480, got %dx%d", w, h)
	}
	if last := g.resizes[len(g.resizes)-1]; last != [2]uint32{640, 480} {
		t.Errorf("Expected the game to see the resize, got %v", g.resizes)
	}
}

func TestEngineRequiresCallbacks(t *testing.T) {
	if _, err := New(&Game{ApplicationConfig: DefaultApplicationConfig()}); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	g := newCountingGame(t, 1)
	e, err := New(g.Game)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()
	if err := e.Run(); !errors.Is(err, core.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}
