// Package classification - Image classification model family.
package classification

import (
	"image"
	"sort"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/edge-ai-lab/go-dpuinfer/frames"
	"github.com/edge-ai-lab/go-dpuinfer/labels"
	"github.com/edge-ai-lab/go-dpuinfer/meta"
	"github.com/edge-ai-lab/go-dpuinfer/models/model"
)

const (
	inputWidth  = 224
	inputHeight = 224
	// topK is how many predictions are attached per frame.
	topK = 5
)

// Classification runs softmax classification over a compiled model.
type Classification struct {
	net            gocv.Net
	labels         *labels.Table
	needPreprocess bool
	log            *zap.Logger
}

// NewModel loads the compiled artifact into the DNN backend.
func NewModel(args model.Args) (*Classification, error) {
	net := gocv.ReadNet(args.ArtifactPath, "")
	if net.Empty() {
		return nil, errors.Errorf("failed to load model %s", args.ArtifactPath)
	}
	return &Classification{
		net:            net,
		labels:         args.Labels,
		needPreprocess: args.NeedPreprocess,
		log:            args.Log,
	}, nil
}

func (m *Classification) RequiredWidth() int  { return inputWidth }
func (m *Classification) RequiredHeight() int { return inputHeight }

// LabelsRequired is false: without a table the predictions carry bare
// class indices.
func (m *Classification) LabelsRequired() bool { return false }

// Run classifies one frame and appends the top scoring predictions.
func (m *Classification) Run(frame *frames.Image, inf *meta.Inference) error {
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

	scores := make([]float32, out.Cols())
	for j := range scores {
		scores[j] = out.GetFloatAt(0, j)
	}
	probs := softmax(scores)

	for _, idx := range topIndices(probs, topK) {
		p := meta.Prediction{Label: idx, Score: probs[idx]}
		if m.labels != nil {
			if l, ok := m.labels.At(idx); ok {
				p.Name = l.Name
				p.DisplayName = l.DisplayName
			}
		}
		inf.Predictions = append(inf.Predictions, p)
	}
	return nil
}

// Close releases the compiled network.
func (m *Classification) Close() error {
	if m.net.Empty() {
		return nil
	}
	return m.net.Close()
}

// softmax converts raw scores into probabilities, shifted by the max score
// for numeric stability.
func softmax(v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}
	max := v[0]
	for _, x := range v[1:] {
		if x > max {
			max = x
		}
	}
	out := make([]float32, len(v))
	var sum float32
	for i, x := range v {
		e := math32.Exp(x - max)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// topIndices returns the indices of the k largest values, highest first.
func topIndices(v []float32, k int) []int {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return v[idx[i]] > v[idx[j]]
	})
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}
