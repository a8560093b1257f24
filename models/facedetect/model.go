// Package facedetect - DenseBox-style face detection model family.
package facedetect

import (
	"image"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/edge-ai-lab/go-dpuinfer/frames"
	"github.com/edge-ai-lab/go-dpuinfer/meta"
	"github.com/edge-ai-lab/go-dpuinfer/models/model"
)

const (
	inputWidth          = 320
	inputHeight         = 320
	confidenceThreshold = 0.9
	detectionFields     = 7
	faceLabel           = "face"
)

// FaceDetect runs face detection over a compiled model. Faces carry a
// fixed label, so no label table is required.
type FaceDetect struct {
	net            gocv.Net
	needPreprocess bool
	log            *zap.Logger
}

// NewModel loads the compiled artifact into the DNN backend.
func NewModel(args model.Args) (*FaceDetect, error) {
	net := gocv.ReadNet(args.ArtifactPath, "")
	if net.Empty() {
		return nil, errors.Errorf("failed to load model %s", args.ArtifactPath)
	}
	return &FaceDetect{
		net:            net,
		needPreprocess: args.NeedPreprocess,
		log:            args.Log,
	}, nil
}

func (m *FaceDetect) RequiredWidth() int   { return inputWidth }
func (m *FaceDetect) RequiredHeight() int  { return inputHeight }
func (m *FaceDetect) LabelsRequired() bool { return false }

// Run detects faces in one frame and appends predictions above the
// confidence threshold.
func (m *FaceDetect) Run(frame *frames.Image, inf *meta.Inference) error {
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
		box := meta.BoundingBox{
			XMin: detections.GetFloatAt(i, 3) * frameW,
			YMin: detections.GetFloatAt(i, 4) * frameH,
			XMax: detections.GetFloatAt(i, 5) * frameW,
			YMax: detections.GetFloatAt(i, 6) * frameH,
		}.Clamp(frameW, frameH)

		inf.Predictions = append(inf.Predictions, meta.Prediction{
			Label:       0,
			Name:        faceLabel,
			DisplayName: faceLabel,
			Score:       score,
			Box:         box,
		})
	}
	return nil
}

// Close releases the compiled network.
func (m *FaceDetect) Close() error {
	if m.net.Empty() {
		return nil
	}
	return m.net.Close()
}
