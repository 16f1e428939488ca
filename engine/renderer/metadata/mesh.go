package metadata

// Also used as result data from the mesh load job.
type MeshLoadParams struct {
	ResourceName string
	MeshResource *Resource
}

// Mesh is the set of geometries loaded from one model file.
type Mesh struct {
	UniqueID   uint32
	Name       string
	Generation uint8
	Geometries []*Geometry
}
