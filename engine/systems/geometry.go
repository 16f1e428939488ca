package systems

import (
	"fmt"

	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/math"
	"github.com/spaghettifunk/featherwing/engine/renderer/metadata"
)

const DefaultGeometryName string = "default"

type geometryReference struct {
	geometry       *metadata.Geometry
	referenceCount uint32
	autoRelease    bool
}

/**
 * @brief Keeps track of every geometry in use. Geometries are shared by
 * reference between scene nodes; instancing a mesh does not copy it.
 * Must only be used from the frame loop.
 */
type GeometrySystem struct {
	ids        *core.IdentifierPool
	registered map[uint32]*geometryReference
	// A 1x1 plane in the XY plane facing +Z.
	defaultGeometry *metadata.Geometry
}

func NewGeometrySystem(materials *MaterialSystem) (*GeometrySystem, error) {
	gs := &GeometrySystem{
		ids:        core.NewIdentifierPool(),
		registered: make(map[uint32]*geometryReference),
	}

	cfg := GeneratePlaneConfig(1, 1, 1, 1, DefaultGeometryName, metadata.DefaultMaterialName)
	g, err := gs.AcquireFromConfig(cfg, materials.GetDefault(), false)
	if err != nil {
		return nil, fmt.Errorf("failed to create default geometry: %w", err)
	}
	gs.defaultGeometry = g
	return gs, nil
}

func (gs *GeometrySystem) Shutdown() error {
	for id := range gs.registered {
		delete(gs.registered, id)
	}
	return nil
}

/**
 * @brief Registers and acquires a new geometry using the given config.
 *
 * @param autoRelease Indicates if the geometry should be unloaded when its reference count reaches 0.
 */
func (gs *GeometrySystem) AcquireFromConfig(cfg *metadata.GeometryConfig, material *metadata.Material, autoRelease bool) (*metadata.Geometry, error) {
	if cfg == nil || len(cfg.Vertices) == 0 {
		return nil, fmt.Errorf("geometry config has no vertices")
	}
	if len(cfg.Indices)%3 != 0 {
		return nil, fmt.Errorf("geometry '%s' has %d indices, not a multiple of 3", cfg.Name, len(cfg.Indices))
	}
	for _, idx := range cfg.Indices {
		if int(idx) >= len(cfg.Vertices) {
			return nil, fmt.Errorf("geometry '%s' references vertex %d of %d", cfg.Name, idx, len(cfg.Vertices))
		}
	}

	ref := &geometryReference{referenceCount: 1, autoRelease: autoRelease}
	id := gs.ids.Acquire(ref)
	ref.geometry = metadata.NewGeometryFromConfig(id, cfg, material)
	gs.registered[id] = ref
	return ref.geometry, nil
}

// AcquireByID takes another reference to an existing geometry.
func (gs *GeometrySystem) AcquireByID(id uint32) (*metadata.Geometry, error) {
	ref, ok := gs.registered[id]
	if !ok {
		return nil, fmt.Errorf("%w: geometry id %d", core.ErrUnknownAsset, id)
	}
	ref.referenceCount++
	return ref.geometry, nil
}

/**
 * @brief Releases a reference to the provided geometry.
 */
func (gs *GeometrySystem) Release(geometry *metadata.Geometry) {
	if geometry == nil {
		return
	}
	ref, ok := gs.registered[geometry.ID]
	if !ok || ref.geometry != geometry {
		core.LogWarn("cannot release unregistered geometry '%s'. Nothing was done.", geometry.Name)
		return
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount == 0 && ref.autoRelease {
		delete(gs.registered, geometry.ID)
		if err := gs.ids.Release(geometry.ID); err != nil {
			core.LogError(err.Error())
		}
		geometry.Generation++
	}
}

// Count returns the number of registered geometries, the default one included.
func (gs *GeometrySystem) Count() int {
	return len(gs.registered)
}

func (gs *GeometrySystem) GetDefault() *metadata.Geometry {
	return gs.defaultGeometry
}

/**
 * @brief Generates configuration for a plane in the XY plane facing +Z,
 * centered on the origin.
 *
 * @param width The overall width of the plane. Zero defaults to one.
 * @param height The overall height of the plane. Zero defaults to one.
 * @param xSegmentCount The number of segments along the x-axis.
 * @param ySegmentCount The number of segments along the y-axis.
 */
func GeneratePlaneConfig(width, height float32, xSegmentCount, ySegmentCount uint32, name, materialName string) *metadata.GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if xSegmentCount < 1 {
		xSegmentCount = 1
	}
	if ySegmentCount < 1 {
		ySegmentCount = 1
	}

	cfg := &metadata.GeometryConfig{
		Vertices: make([]math.Vertex3D, xSegmentCount*ySegmentCount*4), // 4 verts per segment
		Indices:  make([]uint32, 0, xSegmentCount*ySegmentCount*6),     // 6 indices per segment
		Name:     name,
	}
	if cfg.Name == "" {
		cfg.Name = DefaultGeometryName
	}
	cfg.MaterialName = materialName
	if cfg.MaterialName == "" {
		cfg.MaterialName = metadata.DefaultMaterialName
	}

	segWidth := width / float32(xSegmentCount)
	segHeight := height / float32(ySegmentCount)
	normal := math.NewVec3Back()
	for y := uint32(0); y < ySegmentCount; y++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			minX := float32(x)*segWidth - width*0.5
			minY := float32(y)*segHeight - height*0.5
			maxX := minX + segWidth
			maxY := minY + segHeight
			minU := float32(x) / float32(xSegmentCount)
			minV := float32(y) / float32(ySegmentCount)
			maxU := float32(x+1) / float32(xSegmentCount)
			maxV := float32(y+1) / float32(ySegmentCount)

			offset := (y*xSegmentCount + x) * 4
			cfg.Vertices[offset+0] = math.Vertex3D{Position: math.NewVec3(minX, minY, 0), Normal: normal, Texcoord: math.NewVec2(minU, minV)}
			cfg.Vertices[offset+1] = math.Vertex3D{Position: math.NewVec3(maxX, maxY, 0), Normal: normal, Texcoord: math.NewVec2(maxU, maxV)}
			cfg.Vertices[offset+2] = math.Vertex3D{Position: math.NewVec3(minX, maxY, 0), Normal: normal, Texcoord: math.NewVec2(minU, maxV)}
			cfg.Vertices[offset+3] = math.Vertex3D{Position: math.NewVec3(maxX, minY, 0), Normal: normal, Texcoord: math.NewVec2(maxU, minV)}

			// counter-clockwise seen from +Z
			cfg.Indices = append(cfg.Indices,
				offset+0, offset+1, offset+2,
				offset+0, offset+3, offset+1,
			)
		}
	}

	ext, center := math.GeometryExtents(cfg.Vertices)
	cfg.MinExtents, cfg.MaxExtents, cfg.Center = ext.Min, ext.Max, center
	return cfg
}
