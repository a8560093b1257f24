// Package models - Class-keyed factory for DPU model families.
package models

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/edge-ai-lab/go-dpuinfer/labels"
	"github.com/edge-ai-lab/go-dpuinfer/models/classification"
	"github.com/edge-ai-lab/go-dpuinfer/models/facedetect"
	"github.com/edge-ai-lab/go-dpuinfer/models/model"
	"github.com/edge-ai-lab/go-dpuinfer/models/ssd"
	"github.com/edge-ai-lab/go-dpuinfer/models/yolov3"
)

// Constructor builds a model family instance from a resolved artifact.
type Constructor func(args model.Args) (model.Model, error)

// registry maps enabled model classes to their constructors. Classes
// without an entry behave like families compiled out of the accelerator
// build: requesting them fails with ErrUnsupportedClass.
var registry = map[model.Class]Constructor{
	model.ClassClassification: func(args model.Args) (model.Model, error) { return classification.NewModel(args) },
	model.ClassYOLOV3:         func(args model.Args) (model.Model, error) { return yolov3.NewModel(args) },
	model.ClassSSD:            func(args model.Args) (model.Model, error) { return ssd.NewModel(args) },
	model.ClassFaceDetect:     func(args model.Args) (model.Model, error) { return facedetect.NewModel(args) },
}

// Register installs a constructor for class, replacing any existing entry.
// Intended for init-time use only; the registry is not synchronized.
func Register(class model.Class, ctor Constructor) {
	registry[class] = ctor
}

// Unregister removes the constructor for class, if any.
func Unregister(class model.Class) {
	delete(registry, class)
}

// New constructs the model variant for class.
//
// After construction, a model declaring labels required is rolled back and
// the operation fails when no valid label table was supplied: a model
// cannot run without its labels once it has declared the requirement.
func New(class model.Class, args model.Args) (model.Model, error) {
	ctor, ok := registry[class]
	if !ok {
		return nil, errors.Wrapf(model.ErrUnsupportedClass, "model-class %s", class)
	}

	m, err := ctor(args)
	if err != nil {
		return nil, err
	}

	if m.LabelsRequired() && args.Labels == nil {
		if cerr := m.Close(); cerr != nil && args.Log != nil {
			args.Log.Warn("closing model after label rollback", zap.Error(cerr))
		}
		return nil, errors.Wrapf(labels.ErrParse,
			"model class %s requires a label table and none was loaded", class)
	}
	return m, nil
}
