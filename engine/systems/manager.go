package systems

type SystemManagerConfig struct {
	JobWorkers       int
	JobQueueSize     int
	MaxCameraCount   uint16
	FrameRate        int
	FallbackMaterial string
}

type SystemManager struct {
	cameraSystem     *CameraSystem
	geometrySystem   *GeometrySystem
	jobSystem        *JobSystem
	materialSystem   *MaterialSystem
	meshLoaderSystem *MeshLoaderSystem
}

func NewSystemManager(config SystemManagerConfig, assets AssetSource) (*SystemManager, error) {
	if config.JobWorkers <= 0 {
		config.JobWorkers = 1
	}
	if config.MaxCameraCount == 0 {
		config.MaxCameraCount = 8
	}

	js, err := NewJobSystem(config.JobWorkers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}
	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: config.MaxCameraCount,
		FrameRate:      config.FrameRate,
	})
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	ms := NewMaterialSystem(assets)
	gs, err := NewGeometrySystem(ms)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	mls, err := NewMeshLoaderSystem(js, assets, gs, ms)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	mls.FallbackMaterial = config.FallbackMaterial

	return &SystemManager{
		cameraSystem:     cs,
		jobSystem:        js,
		materialSystem:   ms,
		geometrySystem:   gs,
		meshLoaderSystem: mls,
	}, nil
}

// Update delivers finished job results and steps the cameras. It must be
// called once per frame from the frame loop.
func (sm *SystemManager) Update() {
	sm.jobSystem.Update()
	sm.cameraSystem.Update()
}

func (sm *SystemManager) Shutdown() error {
	// stop the workers first so no callback touches a dead system
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.meshLoaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.geometrySystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.materialSystem.Shutdown(); err != nil {
		return err
	}
	return sm.cameraSystem.Shutdown()
}

func (sm *SystemManager) Cameras() *CameraSystem      { return sm.cameraSystem }
func (sm *SystemManager) Geometries() *GeometrySystem { return sm.geometrySystem }
func (sm *SystemManager) Jobs() *JobSystem            { return sm.jobSystem }
func (sm *SystemManager) Materials() *MaterialSystem  { return sm.materialSystem }
func (sm *SystemManager) Meshes() *MeshLoaderSystem   { return sm.meshLoaderSystem }
