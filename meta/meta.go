// Package meta - Metadata carried on frames into and out of the inference kernel.
package meta

// BoundingBox is a detection region in pixel coordinates of the source frame.
type BoundingBox struct {
	XMin float32
	YMin float32
	XMax float32
	YMax float32
}

// Clamp bounds the box to the frame dimensions.
func (b BoundingBox) Clamp(width, height float32) BoundingBox {
	if b.XMin < 0 {
		b.XMin = 0
	}
	if b.YMin < 0 {
		b.YMin = 0
	}
	if b.XMax > width {
		b.XMax = width
	}
	if b.YMax > height {
		b.YMax = height
	}
	return b
}

// Prediction is a single inference result.
type Prediction struct {
	// Label is the class index predicted by the model.
	Label int
	// Name is the machine name for the label. Empty when the model has no
	// label table.
	Name string
	// DisplayName is the human readable name for the label.
	DisplayName string
	// Score is the confidence reported by the model.
	Score float32
	// Box is the detection region. Zero for classification results.
	Box BoundingBox
}

// Inference is the annotation object the kernel attaches to a processed frame.
type Inference struct {
	ModelClass  string
	ModelName   string
	Predictions []Prediction
}

// Input is the per-frame model selection metadata attached by an upstream
// stage when the kernel runs in runtime selection mode.
type Input struct {
	// Class is the integer model class identifier.
	Class int
	// Name is the model name used to resolve the artifact on disk.
	Name string
}
