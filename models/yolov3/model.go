// Package yolov3 - YOLOv3 detection model family.
package yolov3

import (
	"image"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/edge-ai-lab/go-dpuinfer/frames"
	"github.com/edge-ai-lab/go-dpuinfer/labels"
	"github.com/edge-ai-lab/go-dpuinfer/meta"
	"github.com/edge-ai-lab/go-dpuinfer/models/model"
	"github.com/edge-ai-lab/go-dpuinfer/models/postprocess"
)

const (
	inputWidth          = 416
	inputHeight         = 416
	confidenceThreshold = 0.5
	iouThreshold        = 0.45
)

// YOLOv3 runs grid-based object detection over a compiled model.
type YOLOv3 struct {
	net            gocv.Net
	labels         *labels.Table
	needPreprocess bool
	log            *zap.Logger
}

// NewModel loads the compiled artifact into the DNN backend.
func NewModel(args model.Args) (*YOLOv3, error) {
	net := gocv.ReadNet(args.ArtifactPath, "")
	if net.Empty() {
		return nil, errors.Errorf("failed to load model %s", args.ArtifactPath)
	}
	return &YOLOv3{
		net:            net,
		labels:         args.Labels,
		needPreprocess: args.NeedPreprocess,
		log:            args.Log,
	}, nil
}

func (m *YOLOv3) RequiredWidth() int   { return inputWidth }
func (m *YOLOv3) RequiredHeight() int  { return inputHeight }
func (m *YOLOv3) LabelsRequired() bool { return true }

// Run detects objects in one frame and appends the surviving predictions.
func (m *YOLOv3) Run(frame *frames.Image, inf *meta.Inference) error {
	img, err := model.MatFromFrame(frame)
	if err != nil {
		return err
	}
	defer img.Close()

	scale := 1.0
	if m.needPreprocess {
		scale = 1.0 / 255.0
	}
	// YOLO networks take RGB input; MatFromFrame yields BGR.
	blob := gocv.BlobFromImage(img, scale, image.Pt(inputWidth, inputHeight),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	m.net.SetInput(blob, "")
	out := m.net.Forward("")
	defer out.Close()

	preds := m.decode(out, float32(frame.Width), float32(frame.Height))
	postprocess.SortByScore(preds)
	preds = postprocess.ApplyGreedyNMS(preds, &postprocess.NMSConfig{
		IoUThreshold: iouThreshold,
		ClassAware:   true,
	})
	inf.Predictions = append(inf.Predictions, preds...)
	return nil
}

// decode turns raw grid rows [cx, cy, w, h, obj, class scores...] with
// normalized coordinates into frame-space predictions.
func (m *YOLOv3) decode(out gocv.Mat, frameW, frameH float32) []meta.Prediction {
	var preds []meta.Prediction
	rows := out.Rows()
	cols := out.Cols()

	for i := 0; i < rows; i++ {
		objectness := out.GetFloatAt(i, 4)
		if objectness < confidenceThreshold {
			continue
		}

		best := 0
		var bestScore float32
		for j := 5; j < cols; j++ {
			if s := out.GetFloatAt(i, j); s > bestScore {
				best = j - 5
				bestScore = s
			}
		}
		score := objectness * bestScore
		if score < confidenceThreshold {
			continue
		}

		cx := out.GetFloatAt(i, 0)
		cy := out.GetFloatAt(i, 1)
		w := out.GetFloatAt(i, 2)
		h := out.GetFloatAt(i, 3)

		box := meta.BoundingBox{
			XMin: (cx - w/2) * frameW,
			YMin: (cy - h/2) * frameH,
			XMax: (cx + w/2) * frameW,
			YMax: (cy + h/2) * frameH,
		}.Clamp(frameW, frameH)

		p := meta.Prediction{Label: best, Score: score, Box: box}
		if m.labels != nil {
			if l, ok := m.labels.At(best); ok {
				p.Name = l.Name
				p.DisplayName = l.DisplayName
			}
		}
		preds = append(preds, p)
	}
	return preds
}

// Close releases the compiled network.
func (m *YOLOv3) Close() error {
	if m.net.Empty() {
		return nil
	}
	return m.net.Close()
}
