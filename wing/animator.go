package wing

import (
	"fmt"

	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/math"
	"github.com/spaghettifunk/featherwing/engine/scene"
)

// SceneGraph resolves feather ids to scene nodes.
type SceneGraph interface {
	FindByID(id uint32) (*scene.Node, bool)
}

// Frame summarizes one Update.
type Frame struct {
	ElapsedMS float64
	Phase     float32
	Spline    *math.CatmullRomCurve
	Placed    int
	Skipped   int
}

// Animator drives the wing once per frame. It must only be used from the
// frame loop goroutine.
type Animator struct {
	config Config
	state  *AnimationState
	graph  SceneGraph
	clock  *core.Clock
}

// NewAnimator validates cfg and starts the animation clock.
func NewAnimator(cfg Config, state *AnimationState, graph SceneGraph, tp core.TimeProvider) (*Animator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if state == nil || graph == nil {
		return nil, fmt.Errorf("animator requires a state and a scene graph")
	}
	clock := core.NewClock(tp)
	clock.Start()
	return &Animator{
		config: cfg,
		state:  state,
		graph:  graph,
		clock:  clock,
	}, nil
}

func (a *Animator) Config() Config {
	return a.config
}

// Update reads the clock once and places every resolvable feather.
func (a *Animator) Update() (Frame, error) {
	a.clock.Update()
	return a.UpdateAt(a.clock.ElapsedMS())
}

// UpdateAt places every resolvable feather as if elapsedMS had passed since
// the animation started.
func (a *Animator) UpdateAt(elapsedMS float64) (Frame, error) {
	phase := Phase(elapsedMS, a.config.PeriodMS)
	spline, err := Interpolate(a.config.Up, a.config.Down, phase)
	if err != nil {
		return Frame{}, fmt.Errorf("interpolating wing curve: %w", err)
	}

	frame := Frame{
		ElapsedMS: elapsedMS,
		Phase:     phase,
		Spline:    spline,
	}
	for _, fi := range a.state.Instances {
		node, ok := a.graph.FindByID(fi.ID)
		if !ok {
			frame.Skipped++
			continue
		}
		Place(spline, fi.Index, a.config.NumFeathers).Apply(node.Transform)
		frame.Placed++
	}
	return frame, nil
}
