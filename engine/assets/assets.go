package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/featherwing/engine/assets/loaders"
	"github.com/spaghettifunk/featherwing/engine/containers"
	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/renderer/metadata"
)

// The max number of file events waiting for Poll.
const maxPendingEvents = 256

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetEvent is a change to a watched file, delivered by Poll.
type AssetEvent struct {
	Path string
	Type metadata.ResourceType
	Op   fsnotify.Op
}

// AssetManager indexes the files below an assets directory, loads them with
// the loader registered for their type and reports changes on disk.
type AssetManager struct {
	baseDir string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader
	// extra files watched outside baseDir, by absolute path
	watchedFiles map[string]metadata.ResourceType

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	// set once the watch goroutine runs; Shutdown only waits for it then
	started bool

	pendingMu sync.Mutex
	pending   *containers.RingQueue[AssetEvent]
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:       make(map[string]AssetInfo),
		loaders:      make(map[metadata.ResourceType]Loader),
		watchedFiles: make(map[string]metadata.ResourceType),
		fsnotify:     fsWatch,
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
		pending:      containers.NewRingQueue[AssetEvent](maxPendingEvents),
	}

	// Register loaders
	am.RegisterLoader(metadata.ResourceTypeMesh, &loaders.ModelLoader{})
	am.RegisterLoader(metadata.ResourceTypeMaterial, &loaders.MaterialLoader{})
	am.RegisterLoader(metadata.ResourceTypePanel, &loaders.PanelLoader{})

	return am, nil
}

// Initialize indexes and watches assetsDir recursively.
func (am *AssetManager) Initialize(assetsDir string) error {
	abs, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	am.baseDir = abs

	if err := am.watchRecursive(abs, false); err != nil {
		return fmt.Errorf("watching assets directory: %w", err)
	}
	am.mutex.Lock()
	am.started = true
	am.mutex.Unlock()
	go am.start()

	core.LogInfo("Asset manager watching '%s' (%d assets indexed).", abs, am.Count())
	return nil
}

// Shutdown stops watching. It is safe to call more than once.
func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	started := am.started
	am.mutex.Unlock()

	close(am.done)
	if started {
		<-am.stopped
	}
	return am.fsnotify.Close()
}

// RegisterLoader replaces the loader used for assetType.
func (am *AssetManager) RegisterLoader(assetType metadata.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// WatchFile reports changes to a single file that lives outside the assets
// directory. Its parent directory is watched so editors that replace files
// on save are still seen.
func (am *AssetManager) WatchFile(path string, assetType metadata.ResourceType) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return core.ErrAlreadyShutdown
	}
	am.watchedFiles[abs] = assetType
	am.mutex.Unlock()
	return am.fsnotify.Add(filepath.Dir(abs))
}

// Count returns the number of indexed assets.
func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// LoadAsset loads name, relative to the assets directory, with the loader
// registered for resourceType.
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	path := filepath.Join(am.baseDir, filepath.FromSlash(name))

	am.mutex.Lock()
	asset, exists := am.assets[path]
	if exists {
		// Update the loaded time
		asset.LastLoaded = time.Now()
		am.assets[path] = asset
	}
	loader, loaderExists := am.loaders[resourceType]
	am.mutex.Unlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownAsset, name)
	}
	if asset.Type != resourceType {
		return nil, fmt.Errorf("asset %s is a %s, not a %s", name, asset.Type, resourceType)
	}
	if !loaderExists {
		return nil, fmt.Errorf("%w: %s", core.ErrNoLoader, resourceType)
	}
	return loader.Load(path, params)
}

// LoadFile loads an arbitrary file with the loader registered for resourceType.
func (am *AssetManager) LoadFile(path string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	am.mutex.RLock()
	loader, ok := am.loaders[resourceType]
	am.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNoLoader, resourceType)
	}
	return loader.Load(path, params)
}

func (am *AssetManager) UnloadAsset(res *metadata.Resource) error {
	if res == nil {
		return errors.New("cannot unload a nil resource")
	}
	am.mutex.RLock()
	loader, ok := am.loaders[res.Type]
	am.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrNoLoader, res.Type)
	}
	return loader.Unload(res)
}

// Poll hands every file event queued since the last call to fn, in order.
// It is meant to be called from the frame loop.
func (am *AssetManager) Poll(fn func(AssetEvent)) int {
	n := 0
	for {
		am.pendingMu.Lock()
		e, err := am.pending.Dequeue()
		am.pendingMu.Unlock()
		if err != nil {
			return n
		}
		fn(e)
		n++
	}
}

func (am *AssetManager) enqueue(e AssetEvent) {
	am.pendingMu.Lock()
	defer am.pendingMu.Unlock()
	if err := am.pending.Enqueue(e); err != nil {
		core.LogWarn("dropping asset event for '%s': %s", e.Path, err.Error())
	}
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 && am.isBelowBase(e.Name) {
			if err := am.watchRecursive(e.Name, false); err != nil {
				core.LogWarn("cannot watch '%s': %s", e.Name, err.Error())
			}
		}
		return
	}

	am.mutex.RLock()
	extraType, isExtra := am.watchedFiles[e.Name]
	am.mutex.RUnlock()

	assetType := determineAssetType(e.Name)
	switch {
	case isExtra:
		assetType = extraType
	case !am.isBelowBase(e.Name):
		// sibling of a watched file
		return
	}

	// Handle create or modify events
	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 && !isExtra {
		am.handleFileEvent(e.Name)
	}
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && !isExtra {
		am.removeAsset(e.Name)
	}
	if assetType == metadata.ResourceTypeNone {
		return
	}
	if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
		am.enqueue(AssetEvent{Path: e.Name, Type: assetType, Op: e.Op})
	}
}

func (am *AssetManager) isBelowBase(path string) bool {
	if am.baseDir == "" {
		return false
	}
	rel, err := filepath.Rel(am.baseDir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files it finds.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path: path,
		Type: assetType,
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".amt":
		return metadata.ResourceTypeMaterial
	case ".obj":
		return metadata.ResourceTypeMesh
	default:
		return metadata.ResourceTypeNone
	}
}
