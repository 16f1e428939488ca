package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Unknown resource type, ignored by the asset manager. */
	ResourceTypeNone ResourceType = iota
	/** @brief Material resource type. */
	ResourceTypeMaterial
	/** @brief Mesh resource type (collection of geometry configs). */
	ResourceTypeMesh
	/** @brief Panel values resource type. */
	ResourceTypePanel
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeMaterial:
		return "material"
	case ResourceTypeMesh:
		return "mesh"
	case ResourceTypePanel:
		return "panel"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The type of the loader which handled this resource. */
	Type ResourceType
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The number of items held in Data (geometries, values, ...). */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
