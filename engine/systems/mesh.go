package systems

import (
	"context"
	"fmt"

	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/renderer/metadata"
)

/**
 * @brief Loads model files into meshes. Parsing runs on a job system
 * worker; geometry and material registration happens in the completion
 * callback, on the goroutine that calls JobSystem.Update.
 */
type MeshLoaderSystem struct {
	jobSystem      *JobSystem
	assets         AssetSource
	geometrySystem *GeometrySystem
	materialSystem *MaterialSystem
	ids            *core.IdentifierPool
	// Used for geometries that do not name a material.
	FallbackMaterial string
}

func NewMeshLoaderSystem(js *JobSystem, assets AssetSource, gs *GeometrySystem, ms *MaterialSystem) (*MeshLoaderSystem, error) {
	if js == nil || assets == nil || gs == nil || ms == nil {
		return nil, fmt.Errorf("mesh loader system: %w", core.ErrNotInitialized)
	}
	return &MeshLoaderSystem{
		jobSystem:      js,
		assets:         assets,
		geometrySystem: gs,
		materialSystem: ms,
		ids:            core.NewIdentifierPool(),
	}, nil
}

func (mls *MeshLoaderSystem) Shutdown() error {
	return nil
}

/**
 * @brief Loads the model at resourceName (relative to the assets
 * directory) in the background. Exactly one of the callbacks is invoked,
 * from JobSystem.Update.
 */
func (mls *MeshLoaderSystem) LoadAsync(resourceName string, onLoaded func(*metadata.Mesh), onFailed func(error)) error {
	return mls.jobSystem.Submit(JobTask{
		Name: "load mesh " + resourceName,
		OnStart: func(ctx context.Context) (interface{}, error) {
			return mls.meshLoadJobStart(ctx, resourceName)
		},
		OnComplete: func(result interface{}) {
			mesh, err := mls.meshLoadJobSuccess(result)
			if err != nil {
				if onFailed != nil {
					onFailed(err)
				}
				return
			}
			if onLoaded != nil {
				onLoaded(mesh)
			}
		},
		OnFailure: func(err error) {
			core.LogError("Failed to load mesh '%s'.", resourceName)
			if onFailed != nil {
				onFailed(err)
			}
		},
	})
}

// Load reads and registers a mesh on the calling goroutine.
func (mls *MeshLoaderSystem) Load(resourceName string) (*metadata.Mesh, error) {
	params, err := mls.meshLoadJobStart(context.Background(), resourceName)
	if err != nil {
		return nil, err
	}
	return mls.meshLoadJobSuccess(params)
}

// Unload releases the geometries and materials of mesh.
func (mls *MeshLoaderSystem) Unload(mesh *metadata.Mesh) {
	if mesh == nil {
		return
	}
	for _, g := range mesh.Geometries {
		if g.Material != nil && g.Material != mls.materialSystem.GetDefault() {
			mls.materialSystem.Release(g.Material.Name)
		}
		mls.geometrySystem.Release(g)
	}
	mesh.Geometries = nil
	mesh.Generation++
	if err := mls.ids.Release(mesh.UniqueID); err != nil {
		core.LogWarn(err.Error())
	}
}

func (mls *MeshLoaderSystem) meshLoadJobStart(ctx context.Context, resourceName string) (metadata.MeshLoadParams, error) {
	if err := ctx.Err(); err != nil {
		return metadata.MeshLoadParams{}, err
	}
	res, err := mls.assets.LoadAsset(resourceName, metadata.ResourceTypeMesh, nil)
	if err != nil {
		return metadata.MeshLoadParams{}, err
	}
	return metadata.MeshLoadParams{ResourceName: resourceName, MeshResource: res}, nil
}

func (mls *MeshLoaderSystem) meshLoadJobSuccess(result interface{}) (*metadata.Mesh, error) {
	params, ok := result.(metadata.MeshLoadParams)
	if !ok {
		err := fmt.Errorf("failed to cast params to metadata.MeshLoadParams")
		core.LogError(err.Error())
		return nil, err
	}
	defer func() {
		if err := mls.assets.UnloadAsset(params.MeshResource); err != nil {
			core.LogError(err.Error())
		}
	}()

	configs, ok := params.MeshResource.Data.([]*metadata.GeometryConfig)
	if !ok || len(configs) == 0 {
		return nil, fmt.Errorf("mesh '%s' has no geometry", params.ResourceName)
	}

	mesh := &metadata.Mesh{
		Name:       params.MeshResource.Name,
		Geometries: make([]*metadata.Geometry, 0, len(configs)),
	}
	for _, cfg := range configs {
		materialName := cfg.MaterialName
		if materialName == "" {
			materialName = mls.FallbackMaterial
		}
		material, err := mls.materialSystem.Acquire(materialName)
		if err != nil {
			core.LogWarn("%s, using the default material", err.Error())
		}
		g, err := mls.geometrySystem.AcquireFromConfig(cfg, material, true)
		if err != nil {
			for _, acquired := range mesh.Geometries {
				mls.geometrySystem.Release(acquired)
			}
			return nil, fmt.Errorf("mesh '%s': %w", params.ResourceName, err)
		}
		mesh.Geometries = append(mesh.Geometries, g)
	}
	mesh.UniqueID = mls.ids.Acquire(mesh)
	mesh.Generation++

	core.LogDebug("Successfully loaded mesh '%s' (%d geometries).", params.ResourceName, len(mesh.Geometries))
	return mesh, nil
}
