package systems

import (
	"fmt"
	"path"

	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/renderer/metadata"
)

// AssetSource is the part of the asset manager the systems load through.
type AssetSource interface {
	LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error)
	UnloadAsset(res *metadata.Resource) error
}

type materialReference struct {
	material       *metadata.Material
	referenceCount uint32
}

/**
 * @brief Loads materials from "materials/<name>.amt" and shares them by
 * name. Must only be used from the frame loop.
 */
type MaterialSystem struct {
	assets          AssetSource
	ids             *core.IdentifierPool
	registered      map[string]*materialReference
	defaultMaterial *metadata.Material
}

func NewMaterialSystem(assets AssetSource) *MaterialSystem {
	ms := &MaterialSystem{
		assets:     assets,
		ids:        core.NewIdentifierPool(),
		registered: make(map[string]*materialReference),
	}
	ms.defaultMaterial = metadata.DefaultMaterial()
	ms.defaultMaterial.ID = ms.ids.Acquire(ms.defaultMaterial)
	return ms
}

func (ms *MaterialSystem) Shutdown() error {
	for name := range ms.registered {
		delete(ms.registered, name)
	}
	return nil
}

/**
 * @brief Acquires a material by name, loading it on first use. If the
 * material cannot be loaded the default material is returned alongside
 * the error.
 */
func (ms *MaterialSystem) Acquire(name string) (*metadata.Material, error) {
	if name == "" || name == metadata.DefaultMaterialName {
		return ms.defaultMaterial, nil
	}
	if ref, ok := ms.registered[name]; ok {
		ref.referenceCount++
		return ref.material, nil
	}
	if ms.assets == nil {
		return ms.defaultMaterial, fmt.Errorf("material '%s': %w", name, core.ErrNotInitialized)
	}

	res, err := ms.assets.LoadAsset(path.Join("materials", name+".amt"), metadata.ResourceTypeMaterial, nil)
	if err != nil {
		return ms.defaultMaterial, fmt.Errorf("failed to load material '%s': %w", name, err)
	}
	defer func() {
		if err := ms.assets.UnloadAsset(res); err != nil {
			core.LogWarn(err.Error())
		}
	}()

	cfg, ok := res.Data.(*metadata.MaterialConfig)
	if !ok {
		return ms.defaultMaterial, fmt.Errorf("material '%s' resource holds %T", name, res.Data)
	}
	return ms.AcquireFromConfig(cfg), nil
}

// AcquireFromConfig registers cfg under its name, or takes a reference to
// the material already registered under that name.
func (ms *MaterialSystem) AcquireFromConfig(cfg *metadata.MaterialConfig) *metadata.Material {
	if ref, ok := ms.registered[cfg.Name]; ok {
		ref.referenceCount++
		return ref.material
	}
	ref := &materialReference{referenceCount: 1}
	ref.material = metadata.NewMaterialFromConfig(ms.ids.Acquire(ref), cfg)
	ms.registered[cfg.Name] = ref
	core.LogDebug("Material '%s' registered.", cfg.Name)
	return ref.material
}

// Release drops one reference. The material is forgotten at zero.
func (ms *MaterialSystem) Release(name string) {
	ref, ok := ms.registered[name]
	if !ok {
		return
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount == 0 {
		delete(ms.registered, name)
		if err := ms.ids.Release(ref.material.ID); err != nil {
			core.LogError(err.Error())
		}
		ref.material.Generation++
	}
}

func (ms *MaterialSystem) GetDefault() *metadata.Material {
	return ms.defaultMaterial
}
