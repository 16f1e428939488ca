package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/spaghettifunk/featherwing/engine/assets"
	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/platform"
	"github.com/spaghettifunk/featherwing/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine has shut down and cannot be restarted
	EngineStageShutdown
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     bool
	isSuspended   bool
	platform      *platform.Platform
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	events        *core.EventSystem
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      time.Duration
	frameCount    uint64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("engine: game without application config: %w", core.ErrInvalidConfig)
	}
	if g.FnInitialize == nil || g.FnUpdate == nil || g.FnRender == nil {
		return nil, fmt.Errorf("engine: game is missing a required callback: %w", core.ErrInvalidConfig)
	}
	cfg := g.ApplicationConfig
	core.SetLogLevel(cfg.Application.LogLevel)

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		JobWorkers:   cfg.Application.JobWorkers,
		JobQueueSize: 16,
		FrameRate:    int(cfg.Application.FrameRate),
	}, am)
	if err != nil {
		am.Shutdown()
		core.LogError(err.Error())
		return nil, err
	}

	events := core.NewEventSystem()
	g.SystemManager = sm
	g.Assets = am
	g.Events = events

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		clock:         core.NewClock(nil),
		metrics:       core.NewMetrics(),
		platform:      platform.New(nil),
		assetManager:  am,
		systemManager: sm,
		events:        events,
		width:         cfg.Application.Width,
		height:        cfg.Application.Height,
	}, nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Events() *core.EventSystem {
	return e.events
}

// FrameCount returns the number of frames completed by Run.
func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

// Initialize starts the subsystems and the game. ctx bounds the lifetime of
// the frame loop started by Run.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine: initialize called in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageInitializing
	cfg := e.gameInstance.ApplicationConfig

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.platform.Startup(ctx, cfg.Application.Name, e.width, e.height, cfg.Application.FrameRate); err != nil {
		return err
	}
	e.platform.SetFramebufferSizeCallback(func(width, height uint32) {
		data := core.EventContext{}
		data.Data.U32[0] = width
		data.Data.U32[1] = height
		e.events.Fire(core.EVENT_CODE_RESIZED, e.platform, data)
	})

	// initialize subsystems
	if err := e.assetManager.Initialize(cfg.Application.AssetsDir); err != nil {
		return err
	}

	if err := e.gameInstance.FnInitialize(); err != nil {
		return err
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// Run drives the frame loop until the context given to Initialize is done,
// a quit event fires, the configured frame budget is spent or a game
// callback fails.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine: run called in stage %d: %w", e.currentStage, core.ErrNotInitialized)
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true
	maxFrames := e.gameInstance.ApplicationConfig.Application.MaxFrames
	logEvery := uint64(e.gameInstance.ApplicationConfig.Application.FrameRate)
	if logEvery == 0 {
		logEvery = 60
	}

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
			break
		}
		if e.isSuspended {
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := (currentTime - e.lastTime).Seconds()
		frameStartTime := e.platform.GetAbsoluteTime()

		// deliver file changes and finished jobs on this goroutine
		e.assetManager.Poll(e.fireAssetChanged)
		e.systemManager.Update()

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("Game update failed, shutting down: %s", err.Error())
			e.isRunning = false
			return err
		}

		// Call the game's render routine.
		if err := e.gameInstance.FnRender(e.frameCount, delta); err != nil {
			core.LogError("Game render failed, shutting down: %s", err.Error())
			e.isRunning = false
			return err
		}

		frameElapsed := e.platform.GetAbsoluteTime() - frameStartTime
		e.metrics.Update(time.Duration(frameElapsed * float64(time.Second)))
		e.frameCount++
		if e.frameCount%logEvery == 0 {
			core.LogDebug("frame %d: %.1f fps, %.3f ms per frame", e.frameCount, e.metrics.FPS(), e.metrics.FrameTime())
		}

		// Update last time
		e.lastTime = currentTime

		if maxFrames > 0 && e.frameCount >= maxFrames {
			core.LogInfo("Frame budget of %d reached, stopping.", maxFrames)
			e.isRunning = false
		}
	}
	return nil
}

// Quit asks the frame loop to stop after the current frame.
func (e *Engine) Quit() {
	e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
}

// Resize changes the output size and notifies the game.
func (e *Engine) Resize(width, height uint32) {
	e.platform.SetFramebufferSize(width, height)
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return core.ErrAlreadyShutdown
	}
	e.currentStage = EngineStageShuttingDown

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if e.gameInstance.FnShutdown != nil {
		keep(e.gameInstance.FnShutdown())
	}
	keep(e.systemManager.Shutdown())
	keep(e.assetManager.Shutdown())
	e.events.Shutdown()
	keep(e.platform.Shutdown())

	e.currentStage = EngineStageShutdown
	core.LogInfo("Engine shut down after %d frames.", e.frameCount)
	return firstErr
}

// GetFramebufferSize returns the width and height (in this order) of the
// output surface.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) fireAssetChanged(ev assets.AssetEvent) {
	data := core.EventContext{}
	data.Data.C[0] = ev.Path
	data.Data.C[1] = ev.Op.String()
	data.Data.U32[0] = uint32(ev.Type)
	e.events.Fire(core.EVENT_CODE_ASSET_CHANGED, e.assetManager, data)
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	width := data.Data.U32[0]
	height := data.Data.U32[1]

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Output resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Output minimized, suspending application.")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		core.LogInfo("Output restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	// other listeners may care too
	return false
}
