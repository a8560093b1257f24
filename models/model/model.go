// Package model - Capability surface every DPU model family implements.
package model

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/edge-ai-lab/go-dpuinfer/frames"
	"github.com/edge-ai-lab/go-dpuinfer/labels"
	"github.com/edge-ai-lab/go-dpuinfer/meta"
)

var (
	// ErrUnsupportedClass is returned for a model class with no registered
	// family.
	ErrUnsupportedClass = errors.New("unsupported model class")
	// ErrRun is returned when a model's run operation reports failure.
	ErrRun = errors.New("model run failed")
)

// Class identifies a family of inference behavior and postprocessing.
// Values match the order of the original DPU class table, so the integers
// in per-frame selection metadata map directly.
type Class int

const (
	ClassClassification Class = iota
	ClassYOLOV3
	ClassFaceDetect
	ClassReID
	ClassSSD
	ClassRefineDet
	ClassTFSSD
	ClassYOLOV2
)

// ClassNotFound is returned for names outside the class table.
const ClassNotFound Class = -1

var classNames = map[Class]string{
	ClassClassification: "CLASSIFICATION",
	ClassYOLOV3:         "YOLOV3",
	ClassFaceDetect:     "FACEDETECT",
	ClassReID:           "REID",
	ClassSSD:            "SSD",
	ClassRefineDet:      "REFINEDET",
	ClassTFSSD:          "TFSSD",
	ClassYOLOV2:         "YOLOV2",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CLASS(%d)", int(c))
}

// ClassFromString resolves a configured class name.
func ClassFromString(name string) (Class, error) {
	for c, n := range classNames {
		if n == name {
			return c, nil
		}
	}
	return ClassNotFound, errors.Wrapf(ErrUnsupportedClass, "model-class %q", name)
}

// Args carries everything a family constructor needs.
type Args struct {
	// ArtifactPath is the resolved compiled model file.
	ArtifactPath string
	// NeedPreprocess selects whether the family normalizes input itself.
	NeedPreprocess bool
	// Labels is the table loaded from the model directory, nil when absent.
	Labels *labels.Table
	// Log is the owning kernel's logger.
	Log *zap.Logger
}

// Model is the capability set the kernel negotiates against. Instances do
// not know about the runtime cache; the cache wraps and owns them.
type Model interface {
	// RequiredWidth and RequiredHeight report the input shape the model
	// expects, used for capability negotiation with the host.
	RequiredWidth() int
	RequiredHeight() int
	// LabelsRequired reports whether the family cannot run without a
	// label table.
	LabelsRequired() bool
	// Run executes inference on a frame and appends predictions to inf.
	Run(frame *frames.Image, inf *meta.Inference) error
	// Close releases the compiled network. A model must never be used
	// after Close.
	Close() error
}
