package testbed

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/featherwing/engine"
	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/panel"
	"github.com/spaghettifunk/featherwing/engine/renderer/components"
	"github.com/spaghettifunk/featherwing/engine/renderer/metadata"
	"github.com/spaghettifunk/featherwing/engine/renderer/snapshot"
	"github.com/spaghettifunk/featherwing/engine/scene"
	"github.com/spaghettifunk/featherwing/wing"
)

const (
	fallbackMaterialName = "feather"

	paramFOV            = "fov"
	paramLightIntensity = "light_intensity"
)

// WingGame animates a wing of feathers and optionally writes snapshots of it.
type WingGame struct {
	*engine.Game

	// TimeProvider drives the animation clock; nil uses the wall clock.
	TimeProvider core.TimeProvider

	wingConfig wing.Config
	state      *gameState
}

type gameState struct {
	width  uint32
	height uint32

	scene      *scene.Scene
	camera     *components.Camera
	panel      *panel.Panel
	panelPath  string
	feathers   *wing.AnimationState
	animator   *wing.Animator
	lastFrame  wing.Frame
	mesh       *metadata.Mesh
	meshFailed error

	renderer *snapshot.Renderer
	writer   *snapshot.Writer
}

func NewWingGame(config *engine.ApplicationConfig, wingConfig wing.Config) (*WingGame, error) {
	if config == nil {
		return nil, fmt.Errorf("wing game: %w", core.ErrInvalidConfig)
	}
	if err := wingConfig.Validate(); err != nil {
		return nil, err
	}
	state := &gameState{}
	g := &WingGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             state,
		},
		wingConfig: wingConfig,
		state:      state,
	}

	g.FnInitialize = g.Initialize
	g.FnUpdate = g.Update
	g.FnRender = g.Render
	g.FnOnResize = g.OnResize
	g.FnShutdown = g.Shutdown

	return g, nil
}

func (g *WingGame) Initialize() error {
	core.LogDebug("WingGame Initialize fn....")

	if g.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}
	config := g.ApplicationConfig
	state := g.state

	state.scene = scene.New()
	state.scene.Background = config.Light.BackgroundColour()
	state.scene.Light = metadata.NewDirectionalLightHSL(
		config.Light.Hue, config.Light.Saturation, config.Light.Lightness, config.Light.Intensity,
		config.Light.PositionVec(), config.Light.TargetVec())

	state.camera = g.SystemManager.Cameras().GetDefault()
	state.camera.SetPosition(config.Camera.PositionVec())
	state.camera.LookAt(config.Camera.TargetVec())
	state.camera.SetFOV(config.Camera.FOV)
	state.camera.SetClipPlanes(config.Camera.Near, config.Camera.Far)

	if err := g.setupPanel(); err != nil {
		return err
	}

	state.feathers = wing.NewAnimationState(g.wingConfig.NumFeathers)
	animator, err := wing.NewAnimator(g.wingConfig, state.feathers, state.scene, g.TimeProvider)
	if err != nil {
		return err
	}
	state.animator = animator

	if config.Snapshot.Enabled {
		r, err := snapshot.NewRenderer(config.SnapshotOptions())
		if err != nil {
			return err
		}
		w, err := snapshot.NewWriter(config.Snapshot.Dir, config.Snapshot.Format)
		if err != nil {
			return err
		}
		state.renderer = r
		state.writer = w
		core.LogInfo("writing %s snapshots to '%s' (session %s)", config.Snapshot.Format, config.Snapshot.Dir, w.Session())
	}

	// feathers appear once the mesh job completes
	meshes := g.SystemManager.Meshes()
	meshes.FallbackMaterial = fallbackMaterialName
	return meshes.LoadAsync(g.wingConfig.FeatherMesh, g.onFeatherMeshLoaded, g.onFeatherMeshFailed)
}

func (g *WingGame) setupPanel() error {
	config := g.ApplicationConfig
	state := g.state
	state.panel = panel.New()

	if err := state.panel.Bind(paramFOV, config.Panel.FOVMin, config.Panel.FOVMax, float64(config.Camera.FOV), func(v float64) {
		state.camera.SetTargetFOV(float32(v))
		g.fireParameterChanged(paramFOV, v)
	}); err != nil {
		return err
	}
	if err := state.panel.Bind(paramLightIntensity, 0, 4, float64(config.Light.Intensity), func(v float64) {
		state.scene.Light.Intensity = float32(v)
		g.fireParameterChanged(paramLightIntensity, v)
	}); err != nil {
		return err
	}

	if config.Panel.File == "" {
		return nil
	}
	path, err := filepath.Abs(config.Panel.File)
	if err != nil {
		return err
	}
	state.panelPath = path
	if err := g.Assets.WatchFile(path, metadata.ResourceTypePanel); err != nil {
		core.LogWarn("cannot watch panel file '%s': %s", path, err.Error())
	}
	g.Events.Register(core.EVENT_CODE_ASSET_CHANGED, g, g.onAssetChanged)
	g.reloadPanel()
	return nil
}

func (g *WingGame) reloadPanel() {
	n, err := g.state.panel.Load(g.Assets, g.state.panelPath)
	if err != nil {
		core.LogWarn("panel file '%s' not applied: %s", g.state.panelPath, err.Error())
		return
	}
	core.LogDebug("panel file '%s' changed %d parameters", g.state.panelPath, n)
}

func (g *WingGame) fireParameterChanged(name string, value float64) {
	if g.Events == nil {
		return
	}
	data := core.EventContext{}
	data.Data.C[0] = name
	data.Data.F64[0] = value
	g.Events.Fire(core.EVENT_CODE_PARAMETER_CHANGED, g, data)
}

func (g *WingGame) onAssetChanged(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	if data.Data.C[0] != g.state.panelPath || metadata.ResourceType(data.Data.U32[0]) != metadata.ResourceTypePanel {
		return false
	}
	g.reloadPanel()
	return true
}

func (g *WingGame) onFeatherMeshLoaded(mesh *metadata.Mesh) {
	state := g.state
	if len(mesh.Geometries) == 0 {
		g.onFeatherMeshFailed(fmt.Errorf("feather mesh '%s' has no geometry", mesh.Name))
		return
	}
	state.mesh = mesh

	for i := 0; i < g.wingConfig.NumFeathers; i++ {
		feather := scene.NewNode("", mesh.Geometries[0])
		id := state.scene.Add(feather)
		feather.Name = fmt.Sprintf("feather%d", id)

		// extra geometries ride along with the first one
		for j, geometry := range mesh.Geometries[1:] {
			part := scene.NewNode(fmt.Sprintf("feather%d.%d", id, j+1), geometry)
			part.Transform.Parent = feather.Transform
			state.scene.Add(part)
		}

		state.feathers.Append(id)

		data := core.EventContext{}
		data.Data.U32[0] = id
		data.Data.C[0] = feather.UUID.String()
		g.Events.Fire(core.EVENT_CODE_MESH_LOADED, g, data)
	}
	core.LogInfo("feather mesh '%s' loaded, %d feathers placed in the scene", mesh.Name, g.wingConfig.NumFeathers)
}

func (g *WingGame) onFeatherMeshFailed(err error) {
	g.state.meshFailed = err
	core.LogWarn("feather mesh not loaded, the wing stays empty: %s", err.Error())
}

func (g *WingGame) Update(deltaTime float64) error {
	frame, err := g.state.animator.Update()
	if err != nil {
		return err
	}
	g.state.lastFrame = frame
	return nil
}

func (g *WingGame) Render(frame uint64, deltaTime float64) error {
	state := g.state
	if state.renderer == nil {
		return nil
	}
	every := g.ApplicationConfig.Snapshot.EveryNFrames
	if every == 0 || frame%every != 0 {
		return nil
	}

	f := snapshot.Frame{
		Scene:   state.scene,
		Camera:  state.camera,
		Caption: g.caption(frame),
	}
	if state.lastFrame.Spline != nil {
		f.Curve = state.lastFrame.Spline
	}
	img := state.renderer.Render(f)
	path, err := state.writer.Write(img)
	if err != nil {
		return err
	}
	core.LogDebug("snapshot %s: %d triangles", path, state.renderer.LastTriangleCount)
	return nil
}

func (g *WingGame) caption(frame uint64) []string {
	state := g.state
	return []string{
		fmt.Sprintf("frame %d  phase %.2f", frame, state.lastFrame.Phase),
		fmt.Sprintf("feathers %d/%d  fov %.1f", state.lastFrame.Placed, g.wingConfig.NumFeathers, state.camera.FOV),
	}
}

func (g *WingGame) OnResize(width uint32, height uint32) error {
	state := g.state

	state.width = width
	state.height = height
	if width == 0 || height == 0 {
		return nil
	}
	if state.camera != nil {
		state.camera.SetAspectRatio(float32(width) / float32(height))
	}
	if state.renderer != nil {
		state.renderer.Resize(int(width), int(height))
	}
	return nil
}

func (g *WingGame) Shutdown() error {
	state := g.state
	if g.Events != nil {
		g.Events.Unregister(core.EVENT_CODE_ASSET_CHANGED, g)
	}
	if state.mesh != nil {
		g.SystemManager.Meshes().Unload(state.mesh)
		state.mesh = nil
	}
	if state.writer != nil {
		core.LogInfo("%d snapshots written", state.writer.Count())
	}
	return nil
}
