// Package ssd - SSD detection model family.
package ssd

import (
	"image"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/edge-ai-lab/go-dpuinfer/frames"
	"github.com/edge-ai-lab/go-dpuinfer/labels"
	"github.com/edge-ai-lab/go-dpuinfer/meta"
	"github.com/edge-ai-lab/go-dpuinfer/models/model"
)

const (
	inputWidth          = 300
	inputHeight         = 300
	confidenceThreshold = 0.5
	// detectionFields is the per-detection tuple width:
	// [image id, class, score, x1, y1, x2, y2].
	detectionFields = 7
)

// SSD runs single-shot detection over a compiled model.
type SSD struct {
	net            gocv.Net
	labels         *labels.Table
	needPreprocess bool
	log            *zap.Logger
}

// NewModel loads the compiled artifact into the DNN backend.
func NewModel(args model.Args) (*SSD, error) {
	net := gocv.ReadNet(args.ArtifactPath, "")
	if net.Empty() {
		return nil, errors.Errorf("failed to load model %s", args.ArtifactPath)
	}
	return &SSD{
		net:            net,
		labels:         args.Labels,
		needPreprocess: args.NeedPreprocess,
		log:            args.Log,
	}, nil
}

func (m *SSD) RequiredWidth() int   { return inputWidth }
func (m *SSD) RequiredHeight() int  { return inputHeight }
func (m *SSD) LabelsRequired() bool { return true }

// Run detects objects in one frame and appends predictions above the
// confidence threshold. SSD output is already suppressed, no NMS pass.
func (m *SSD) Run(frame *frames.Image, inf *meta.Inference) error {
	img, err := model.MatFromFrame(frame)
	if err != nil {
		return err
	}
	defer img.Close()

	scale := 1.0
	if m.needPreprocess {
		scale = 1.0 / 255.0
	}
	blob := gocv.BlobFromImage(img, scale, image.Pt(inputWidth, inputHeight),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	m.net.SetInput(blob, "")
	out := m.net.Forward("")
	defer out.Close()

	detections := out.Reshape(1, int(out.Total())/detectionFields)
	defer detections.Close()

	frameW := float32(frame.Width)
	frameH := float32(frame.Height)
	for i := 0; i < detections.Rows(); i++ {
		score := detections.GetFloatAt(i, 2)
		if score < confidenceThreshold {
			continue
		}
		class := int(detections.GetFloatAt(i, 1))
		box := meta.BoundingBox{
			XMin: detections.GetFloatAt(i, 3) * frameW,
			YMin: detections.GetFloatAt(i, 4) * frameH,
			XMax: detections.GetFloatAt(i, 5) * frameW,
			YMax: detections.GetFloatAt(i, 6) * frameH,
		}.Clamp(frameW, frameH)

		p := meta.Prediction{Label: class, Score: score, Box: box}
		if m.labels != nil {
			if l, ok := m.labels.At(class); ok {
				p.Name = l.Name
				p.DisplayName = l.DisplayName
			}
		}
		inf.Predictions = append(inf.Predictions, p)
	}
	return nil
}

// Close releases the compiled network.
func (m *SSD) Close() error {
	if m.net.Empty() {
		return nil
	}
	return m.net.Close()
}
