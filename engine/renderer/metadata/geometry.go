package metadata

import (
	"github.com/spaghettifunk/featherwing/engine/math"
)

/**
 * @brief Represents the configuration for a geometry, as produced by
 * the model loader.
 */
type GeometryConfig struct {
	/** @brief An array of Vertices. */
	Vertices []math.Vertex3D
	/** @brief An array of Indices, three per triangle. */
	Indices []uint32

	Center     math.Vec3
	MinExtents math.Vec3
	MaxExtents math.Vec3

	/** @brief The Name of the geometry. */
	Name string
	/** @brief The name of the material used by the geometry. */
	MaterialName string
}

/**
 * @brief Represents actual geometry in the world.
 * Typically paired with a material. Instances share one Geometry.
 */
type Geometry struct {
	/** @brief The geometry identifier. */
	ID uint32
	/** @brief The geometry generation. Incremented every time the geometry changes. */
	Generation uint16
	/** @brief The center of the geometry in local coordinates. */
	Center math.Vec3
	/** @brief The extents of the geometry in local coordinates. */
	Extents math.Extents3D
	/** @brief The geometry name. */
	Name     string
	Vertices []math.Vertex3D
	Indices  []uint32
	/** @brief The material associated with this geometry. */
	Material *Material
}

// NewGeometryFromConfig copies the vertex and index data of cfg into a Geometry.
func NewGeometryFromConfig(id uint32, cfg *GeometryConfig, material *Material) *Geometry {
	g := &Geometry{
		ID:       id,
		Name:     cfg.Name,
		Center:   cfg.Center,
		Extents:  math.Extents3D{Min: cfg.MinExtents, Max: cfg.MaxExtents},
		Vertices: make([]math.Vertex3D, len(cfg.Vertices)),
		Indices:  make([]uint32, len(cfg.Indices)),
		Material: material,
	}
	copy(g.Vertices, cfg.Vertices)
	copy(g.Indices, cfg.Indices)
	return g
}

// TriangleCount returns the number of indexed triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}
