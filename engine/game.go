package engine

import (
	"github.com/spaghettifunk/featherwing/engine/assets"
	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/systems"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	// Set by the engine before FnInitialize is called.
	SystemManager *systems.SystemManager
	Assets        *assets.AssetManager
	Events        *core.EventSystem
	State         interface{}
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	FnShutdown    Shutdown
}

type Initialize func() error

// deltaTime is in seconds.
type Update func(deltaTime float64) error
type Render func(frame uint64, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
