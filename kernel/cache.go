package kernel

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/edge-ai-lab/go-dpuinfer/frames"
	"github.com/edge-ai-lab/go-dpuinfer/labels"
	"github.com/edge-ai-lab/go-dpuinfer/models/model"
)

// cacheKey identifies a loaded model by exact (class, name) match.
type cacheKey struct {
	class model.Class
	name  string
}

// cacheEntry owns a constructed model and its label table for the life of
// the kernel context.
type cacheEntry struct {
	class  model.Class
	name   string
	model  model.Model
	labels *labels.Table
}

// modelCache is the runtime selection mode store of constructed models.
// Entries are never evicted: the accelerator's model set is bounded by
// deployment, not request volume, so growth is capped by the number of
// distinct (class, name) pairs seen.
type modelCache struct {
	entries map[cacheKey]*cacheEntry
}

func newModelCache() *modelCache {
	return &modelCache{entries: make(map[cacheKey]*cacheEntry)}
}

func (c *modelCache) get(class model.Class, name string) (*cacheEntry, bool) {
	ent, ok := c.entries[cacheKey{class: class, name: name}]
	return ent, ok
}

func (c *modelCache) put(class model.Class, name string, m model.Model, tbl *labels.Table) *cacheEntry {
	ent := &cacheEntry{class: class, name: name, model: m, labels: tbl}
	c.entries[cacheKey{class: class, name: name}] = ent
	return ent
}

func (c *modelCache) len() int {
	return len(c.entries)
}

func (c *modelCache) closeAll(log *zap.Logger) {
	for key, ent := range c.entries {
		if err := ent.model.Close(); err != nil && log != nil {
			log.Warn("closing cached model", zap.String("model", key.name), zap.Error(err))
		}
	}
	c.entries = make(map[cacheKey]*cacheEntry)
}

// lookupRuntimeModel resolves the model for a frame from its attached
// selection metadata. Hits reuse the cached model and label table as-is;
// a miss resolves the artifact, builds the model and inserts a new entry.
// Failures are scoped to the frame and leave the cache untouched.
func (k *Kernel) lookupRuntimeModel(frame *frames.Image) (*cacheEntry, error) {
	if frame.Input == nil {
		return nil, errors.Wrap(ErrMetadataMissing, "frame carries no selection metadata")
	}
	class := model.Class(frame.Input.Class)
	name := frame.Input.Name
	if name == "" {
		return nil, errors.Wrap(ErrMetadataMissing, "empty model name in selection metadata")
	}

	if ent, ok := k.cache.get(class, name); ok {
		k.log.Debug("model already loaded",
			zap.Stringer("class", class), zap.String("model", name))
		k.activeClass = class
		k.activeName = name
		return ent, nil
	}

	m, tbl, err := k.buildModel(class, name)
	if err != nil {
		return nil, err
	}
	ent := k.cache.put(class, name, m, tbl)
	k.activeClass = class
	k.activeName = name
	k.log.Info("runtime model loaded",
		zap.Stringer("class", class), zap.String("model", name))
	return ent, nil
}
