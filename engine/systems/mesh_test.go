package systems

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/spaghettifunk/featherwing/engine/assets/loaders"
	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/math"
	"github.com/spaghettifunk/featherwing/engine/renderer/components"
	"github.com/spaghettifunk/featherwing/engine/renderer/metadata"
)

const testOBJ = `
o feather
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

const testAMT = `
name = quill
diffuse_colour = 0xff0000
`

// memorySource serves parsed assets from memory.
type memorySource struct {
	mu       sync.Mutex
	files    map[string]string
	unloaded int
}

func (m *memorySource) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	m.mu.Lock()
	src, ok := m.files[name]
	m.mu.Unlock()
	if !ok {
		return nil, core.ErrUnknownAsset
	}
	switch resourceType {
	case metadata.ResourceTypeMesh:
		configs, err := loaders.ParseOBJ(strings.NewReader(src), "feather")
		if err != nil {
			return nil, err
		}
		return &metadata.Resource{Type: resourceType, Name: "feather", Data: configs}, nil
	case metadata.ResourceTypeMaterial:
		cfg, err := loaders.ParseAMT(strings.NewReader(src))
		if err != nil {
			return nil, err
		}
		return &metadata.Resource{Type: resourceType, Name: cfg.Name, Data: cfg}, nil
	}
	return nil, core.ErrNoLoader
}

func (m *memorySource) UnloadAsset(res *metadata.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloaded++
	res.Data = nil
	return nil
}

func newTestManager(t *testing.T, src *memorySource, fallback string) *SystemManager {
	t.Helper()
	sm, err := NewSystemManager(SystemManagerConfig{JobWorkers: 1, JobQueueSize: 4, FallbackMaterial: fallback}, src)
	if err != nil {
		t.Fatalf("NewSystemManager: %v", err)
	}
	t.Cleanup(func() { sm.Shutdown() })
	return sm
}

func TestMeshLoaderLoadAsync(t *testing.T) {
	src := &memorySource{files: map[string]string{
		"models/feather.obj":  testOBJ,
		"materials/quill.amt": testAMT,
	}}
	sm := newTestManager(t, src, "quill")

	var loaded *metadata.Mesh
	err := sm.Meshes().LoadAsync("models/feather.obj",
		func(m *metadata.Mesh) { loaded = m },
		func(err error) { t.Errorf("unexpected failure: %v", err) },
	)
	if err != nil {
		t.Fatalf("LoadAsync: %v", err)
	}
	if loaded != nil {
		t.Fatal("Expected the mesh to arrive on Update only")
	}
	drain(t, sm.Jobs(), 1)

	if loaded == nil {
		t.Fatal("Expected a loaded mesh")
	}
	if len(loaded.Geometries) != 1 || loaded.Geometries[0].TriangleCount() != 2 {
		t.Fatalf("Expected one quad geometry, got %+v", loaded.Geometries)
	}
	mat := loaded.Geometries[0].Material
	if mat == nil || mat.Name != "quill" || mat.DiffuseColour.X != 1 {
		t.Errorf("Expected the fallback material 'quill', got %+v", mat)
	}
	if src.unloaded != 2 {
		t.Errorf("Expected both resources to be unloaded, got %d", src.unloaded)
	}
	// default geometry + feather
	if sm.Geometries().Count() != 2 {
		t.Errorf("Expected 2 registered geometries, got %d", sm.Geometries().Count())
	}

	sm.Meshes().Unload(loaded)
	if sm.Geometries().Count() != 1 {
		t.Errorf("Expected the feather geometry to be released, got %d", sm.Geometries().Count())
	}
}

func TestMeshLoaderLoadAsyncFailure(t *testing.T) {
	sm := newTestManager(t, &memorySource{files: map[string]string{}}, "")

	var failure error
	sm.Meshes().LoadAsync("models/missing.obj",
		func(*metadata.Mesh) { t.Error("unexpected success") },
		func(err error) { failure = err },
	)
	drain(t, sm.Jobs(), 1)
	if !errors.Is(failure, core.ErrUnknownAsset) {
		t.Errorf("Expected ErrUnknownAsset, got %v", failure)
	}
}

func TestMeshLoaderMissingMaterialFallsBackToDefault(t *testing.T) {
	src := &memorySource{files: map[string]string{"models/feather.obj": testOBJ}}
	sm := newTestManager(t, src, "absent")

	mesh, err := sm.Meshes().Load("models/feather.obj")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mesh.Geometries[0].Material != sm.Materials().GetDefault() {
		t.Errorf("Expected the default material, got %+v", mesh.Geometries[0].Material)
	}
}

func TestMaterialSystemSharesByName(t *testing.T) {
	src := &memorySource{files: map[string]string{"materials/quill.amt": testAMT}}
	ms := NewMaterialSystem(src)

	a, err := ms.Acquire("quill")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := ms.Acquire("quill")
	if a != b {
		t.Error("Expected one shared material")
	}
	ms.Release("quill")
	ms.Release("quill")
	c, _ := ms.Acquire("quill")
	if c == a {
		t.Error("Expected a fresh material after the last release")
	}
	if d, err := ms.Acquire(metadata.DefaultMaterialName); err != nil || d != ms.GetDefault() {
		t.Errorf("Expected the default material, got %v %v", d, err)
	}
}

func TestGeometrySystemValidatesConfig(t *testing.T) {
	gs, err := NewGeometrySystem(NewMaterialSystem(nil))
	if err != nil {
		t.Fatal(err)
	}
	bad := &metadata.GeometryConfig{
		Vertices: []math.Vertex3D{{}, {}, {}},
		Indices:  []uint32{0, 1, 5},
	}
	if _, err := gs.AcquireFromConfig(bad, nil, true); err == nil {
		t.Error("Expected an out of range index to be rejected")
	}
	if gs.GetDefault().TriangleCount() != 2 {
		t.Errorf("Expected a two triangle default plane, got %d", gs.GetDefault().TriangleCount())
	}
}

func TestGeneratePlaneConfig(t *testing.T) {
	cfg := GeneratePlaneConfig(2, 4, 2, 1, "", "")
	if len(cfg.Vertices) != 8 || len(cfg.Indices) != 12 {
		t.Fatalf("Expected 8 vertices and 12 indices, got %d and %d", len(cfg.Vertices), len(cfg.Indices))
	}
	if cfg.MinExtents != math.NewVec3(-1, -2, 0) || cfg.MaxExtents != math.NewVec3(1, 2, 0) {
		t.Errorf("Unexpected extents %v %v", cfg.MinExtents, cfg.MaxExtents)
	}
	if cfg.Name != DefaultGeometryName || cfg.MaterialName != metadata.DefaultMaterialName {
		t.Errorf("Expected default names, got %q %q", cfg.Name, cfg.MaterialName)
	}
}

func TestCameraSystemAcquireRelease(t *testing.T) {
	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: 1, FrameRate: 30})
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := cs.Acquire(components.DEFAULT_CAMERA_NAME); c != cs.GetDefault() {
		t.Error("Expected the default camera")
	}
	a, err := cs.Acquire("world")
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := cs.Acquire("world"); a != b {
		t.Error("Expected the same named camera")
	}
	if _, err := cs.Acquire("other"); err == nil {
		t.Error("Expected the system to be full")
	}
	cs.Release("world")
	cs.Release("world")
	if _, err := cs.Acquire("other"); err != nil {
		t.Errorf("Expected a free slot after release, got %v", err)
	}

	if _, err := NewCameraSystem(&CameraSystemConfig{}); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
