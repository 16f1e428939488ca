package metadata

import (
	"github.com/spaghettifunk/featherwing/engine/math"
)

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/** @brief How a material reacts to light. */
type ShadingModel int

const (
	/** @brief Diffuse only, no specular term. */
	ShadingLambert ShadingModel = iota
	/** @brief No lighting, the diffuse colour is used as is. */
	ShadingUnlit
)

/**
 * @brief Material configuration typically loaded from
 * a file or created in code to load a material from.
 */
type MaterialConfig struct {
	/** @brief The name of the material. */
	Name string
	/** @brief The shading model. */
	Shading ShadingModel
	/** @brief The diffuse colour of the material. */
	DiffuseColour math.Vec4
	/** @brief Indicates that back faces are lit and drawn as well. */
	DoubleSided bool
}

/**
 * @brief A material, which represents the properties of a surface
 * in the world.
 */
type Material struct {
	/** @brief The material id. */
	ID uint32
	/** @brief The material generation. Incremented every time the material is changed. */
	Generation uint32
	/** @brief The material name. */
	Name    string
	Shading ShadingModel
	/** @brief The diffuse colour. */
	DiffuseColour math.Vec4
	DoubleSided   bool
}

func NewMaterialFromConfig(id uint32, cfg *MaterialConfig) *Material {
	return &Material{
		ID:            id,
		Name:          cfg.Name,
		Shading:       cfg.Shading,
		DiffuseColour: cfg.DiffuseColour,
		DoubleSided:   cfg.DoubleSided,
	}
}

// DefaultMaterial is the grey double-sided Lambert surface used for feathers.
func DefaultMaterial() *Material {
	return &Material{
		Name:          DefaultMaterialName,
		Shading:       ShadingLambert,
		DiffuseColour: math.NewVec4(0xaa/255.0, 0xaa/255.0, 0xaa/255.0, 1),
		DoubleSided:   true,
	}
}
