package systems

import (
	"fmt"

	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/renderer/components"
)

type cameraReference struct {
	camera         *components.Camera
	referenceCount uint16
}

type CameraSystem struct {
	Config  *CameraSystemConfig
	cameras map[string]*cameraReference
	// A default, non-registered camera that always exists as a fallback.
	DefaultCamera *components.Camera
}

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/**
	 * @brief NOTE: The maximum number of named cameras that can be
	 * managed by the system.
	 */
	MaxCameraCount uint16
	/** @brief Frame rate the fov springs are tuned for. */
	FrameRate int
}

func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	cs := &CameraSystem{
		Config:  config,
		cameras: make(map[string]*cameraReference, config.MaxCameraCount),
	}
	// Setup default camera.
	cs.DefaultCamera = cs.newCamera()
	return cs, nil
}

func (cs *CameraSystem) Shutdown() error {
	for name := range cs.cameras {
		delete(cs.cameras, name)
	}
	return nil
}

func (cs *CameraSystem) newCamera() *components.Camera {
	c := components.NewCamera()
	c.SetFrameRate(cs.Config.FrameRate)
	return c
}

/**
 * @brief Acquires a camera by name. If one is not found, a new one is
 * created. Internal reference counter is incremented.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}
	if ref, ok := cs.cameras[name]; ok {
		ref.referenceCount++
		return ref.camera, nil
	}
	if len(cs.cameras) >= int(cs.Config.MaxCameraCount) {
		err := fmt.Errorf("camera system full, cannot create '%s'. Adjust camera system config to allow more", name)
		core.LogError(err.Error())
		return nil, err
	}

	core.LogDebug("Creating new camera named '%s'...", name)
	ref := &cameraReference{camera: cs.newCamera(), referenceCount: 1}
	cs.cameras[name] = ref
	return ref.camera, nil
}

/**
 * @brief Releases a camera with the given name. If the reference count
 * reaches 0 the camera is dropped.
 */
func (cs *CameraSystem) Release(name string) {
	if name == components.DEFAULT_CAMERA_NAME {
		core.LogDebug("Cannot release default camera. Nothing was done.")
		return
	}
	ref, ok := cs.cameras[name]
	if !ok {
		core.LogWarn("CameraSystem.Release failed lookup for '%s'. Nothing was done.", name)
		return
	}
	ref.referenceCount--
	if ref.referenceCount < 1 {
		ref.camera.Reset()
		delete(cs.cameras, name)
	}
}

// Update steps every camera's fov spring once.
func (cs *CameraSystem) Update() {
	cs.DefaultCamera.Update()
	for _, ref := range cs.cameras {
		ref.camera.Update()
	}
}

func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.DefaultCamera
}
