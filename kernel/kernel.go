// Package kernel - Lifecycle controller for the DPU inference adapter.
//
// The host pipeline drives a kernel through four entry points: Init,
// Start (once per frame), Done and Deinit. A kernel is single-threaded by
// contract; the host serializes calls into one instance.
package kernel

import (
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/edge-ai-lab/go-dpuinfer/config"
	"github.com/edge-ai-lab/go-dpuinfer/frames"
	"github.com/edge-ai-lab/go-dpuinfer/labels"
	"github.com/edge-ai-lab/go-dpuinfer/meta"
	"github.com/edge-ai-lab/go-dpuinfer/models"
	"github.com/edge-ai-lab/go-dpuinfer/models/model"
)

var (
	// ErrMetadataMissing is returned when a frame in runtime selection
	// mode carries no usable model selection metadata.
	ErrMetadataMissing = errors.New("runtime model selection metadata missing")
	// ErrNotInitialized is returned by entry points called outside the
	// Initialized state.
	ErrNotInitialized = errors.New("kernel not initialized")
)

type state int

const (
	stateUninitialized state = iota
	stateInitialized
	stateDeinitialized
	stateErrored
)

// Kernel is the per-instance adapter state. It owns the active model, its
// label table, every runtime cache entry and the telemetry block.
type Kernel struct {
	id    string
	cfg   *config.Config
	log   *zap.Logger
	state state

	model  model.Model
	labels *labels.Table
	// cache is non-nil in runtime selection mode only.
	cache *modelCache
	caps  []Cap
	perf  *perfMonitor

	activeClass model.Class
	activeName  string
}

// Init validates the configuration and, in static mode, resolves and
// builds the configured model and negotiates its capabilities. Any
// failure releases partial allocations through a single cleanup path and
// returns an error; the failed kernel must not be used.
func Init(raw []byte) (*Kernel, error) {
	cfg, err := config.Parse(raw)
	if err != nil {
		return nil, err
	}

	k := &Kernel{
		id:    uuid.NewString(),
		cfg:   cfg,
		perf:  newPerfMonitor(os.Stdout),
		state: stateUninitialized,
	}
	k.log = newLogger(cfg.Level()).With(zap.String("kernel", k.id))

	if cfg.RunTimeModel {
		k.log.Info("runtime model load is set")
		k.cache = newModelCache()
		k.state = stateInitialized
		return k, nil
	}

	class, err := model.ClassFromString(cfg.ModelClass)
	if err != nil {
		k.fail()
		return nil, err
	}
	m, tbl, err := k.buildModel(class, cfg.ModelName)
	if err != nil {
		k.fail()
		return nil, err
	}
	k.model = m
	k.labels = tbl
	k.activeClass = class
	k.activeName = cfg.ModelName
	k.caps = negotiateCaps(m, cfg.Format)
	k.log.Info("model initialized",
		zap.String("model", cfg.ModelName),
		zap.Stringer("class", class),
		zap.Int("width", m.RequiredWidth()),
		zap.Int("height", m.RequiredHeight()))
	k.state = stateInitialized
	return k, nil
}

// buildModel resolves the artifact and optional label table for
// (class, name) and constructs the model through the factory. This is the
// one init-model path shared by static startup and runtime cache misses.
func (k *Kernel) buildModel(class model.Class, name string) (model.Model, *labels.Table, error) {
	artifact, err := config.ResolveArtifact(k.cfg.ModelPath, name)
	if err != nil {
		return nil, nil, err
	}
	k.log.Debug("resolved model artifact", zap.String("artifact", artifact))

	var tbl *labels.Table
	labelPath := config.LabelFile(k.cfg.ModelPath, name)
	if _, statErr := os.Stat(labelPath); statErr == nil {
		tbl, err = labels.Load(labelPath)
		if err != nil {
			// Non-fatal unless the model turns out to require labels:
			// the factory rejects label-required models with a nil table.
			k.log.Warn("label file rejected", zap.String("path", labelPath), zap.Error(err))
			tbl = nil
		}
	}

	m, err := models.New(class, model.Args{
		ArtifactPath:   artifact,
		NeedPreprocess: k.cfg.NeedPreprocess,
		Labels:         tbl,
		Log:            k.log,
	})
	if err != nil {
		return nil, nil, err
	}
	return m, tbl, nil
}

// Start processes one frame. In runtime selection mode the model is
// resolved from the frame's attached metadata first, reusing the cache.
// Per-frame failures are returned to the host; the kernel never changes
// state on a frame failure and stays usable for subsequent frames.
func (k *Kernel) Start(frame *frames.Image) error {
	if k == nil || k.state != stateInitialized {
		return errors.WithStack(ErrNotInitialized)
	}
	if frame == nil {
		return errors.New("no input frame")
	}

	active := k.model
	if k.cfg.RunTimeModel {
		ent, err := k.lookupRuntimeModel(frame)
		if err != nil {
			return err
		}
		active = ent.model
		k.model = ent.model
		k.labels = ent.labels
	}

	if !frames.Supported(frame.Format) {
		return errors.Wrapf(frames.ErrUnsupportedFormat, "frame format %q", frame.Format)
	}

	if k.cfg.PerformanceTest {
		k.perf.begin()
	}

	if frame.Width != active.RequiredWidth() || frame.Height != active.RequiredHeight() {
		k.log.Warn("input size does not match model requirement",
			zap.Int("frame_width", frame.Width),
			zap.Int("frame_height", frame.Height),
			zap.Int("model_width", active.RequiredWidth()),
			zap.Int("model_height", active.RequiredHeight()))
	}

	inf := &meta.Inference{
		ModelClass: k.activeClass.String(),
		ModelName:  k.activeName,
	}
	if err := active.Run(frame, inf); err != nil {
		if errors.Is(err, frames.ErrUnsupportedFormat) {
			return err
		}
		return errors.Wrapf(model.ErrRun, "model %s: %v", k.activeName, err)
	}
	frame.Inference = inf

	if k.cfg.PerformanceTest {
		k.perf.frameDone()
	}
	return nil
}

// Done is a liveness probe; it has no work to do.
func (k *Kernel) Done() error {
	if k == nil || k.state != stateInitialized {
		return errors.WithStack(ErrNotInitialized)
	}
	return nil
}

// Deinit releases every cache entry or the single static model, drops
// label tables and prints the final throughput report when telemetry was
// active. It is idempotent and safe on a nil kernel or one whose Init
// never completed.
func (k *Kernel) Deinit() error {
	if k == nil || k.state == stateDeinitialized {
		return nil
	}

	if k.perf != nil {
		if k.cfg != nil && k.cfg.PerformanceTest {
			k.perf.finish()
		}
		k.perf.reset()
	}

	k.releaseAll()
	k.caps = nil
	k.state = stateDeinitialized
	if k.log != nil {
		k.log.Debug("kernel deinitialized")
		_ = k.log.Sync()
	}
	return nil
}

// fail is the single cleanup funnel for init failures.
func (k *Kernel) fail() {
	k.releaseAll()
	k.state = stateErrored
}

// releaseAll tears down owned models: every cache entry in runtime mode,
// the single active model otherwise. The active reference points into the
// cache in runtime mode and must not be closed twice.
func (k *Kernel) releaseAll() {
	if k.cache != nil {
		k.cache.closeAll(k.log)
		k.cache = nil
	} else if k.model != nil {
		if err := k.model.Close(); err != nil && k.log != nil {
			k.log.Warn("closing model", zap.String("model", k.activeName), zap.Error(err))
		}
	}
	k.model = nil
	k.labels = nil
	k.activeClass = model.ClassNotFound
	k.activeName = ""
}
