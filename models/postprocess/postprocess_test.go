package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edge-ai-lab/go-dpuinfer/meta"
)

func box(x1, y1, x2, y2 float32) meta.BoundingBox {
	return meta.BoundingBox{XMin: x1, YMin: y1, XMax: x2, YMax: y2}
}

func TestIoU(t *testing.T) {
	a := box(0, 0, 10, 10)

	assert.InDelta(t, 1.0, IoU(a, a), 1e-6)
	assert.Equal(t, float32(0), IoU(a, box(20, 20, 30, 30)))
	// Boxes sharing only an edge do not intersect.
	assert.Equal(t, float32(0), IoU(a, box(10, 0, 20, 10)))
	// Half overlap: intersection 50, union 150.
	assert.InDelta(t, 1.0/3.0, IoU(a, box(5, 0, 15, 10)), 1e-6)
}

func TestIoUDegenerateBoxes(t *testing.T) {
	zero := box(5, 5, 5, 5)
	assert.Equal(t, float32(0), IoU(zero, zero))
	assert.Equal(t, float32(0), IoU(zero, box(0, 0, 10, 10)))
}

func TestSortByScore(t *testing.T) {
	preds := []meta.Prediction{
		{Name: "low", Score: 0.1},
		{Name: "high", Score: 0.9},
		{Name: "mid", Score: 0.5},
	}
	SortByScore(preds)

	assert.Equal(t, "high", preds[0].Name)
	assert.Equal(t, "mid", preds[1].Name)
	assert.Equal(t, "low", preds[2].Name)
}

func TestApplyGreedyNMSSuppressesOverlaps(t *testing.T) {
	preds := []meta.Prediction{
		{Label: 0, Score: 0.9, Box: box(0, 0, 10, 10)},
		{Label: 0, Score: 0.8, Box: box(1, 1, 11, 11)},
		{Label: 0, Score: 0.7, Box: box(50, 50, 60, 60)},
	}

	kept := ApplyGreedyNMS(preds, &NMSConfig{IoUThreshold: 0.5})
	assert.Len(t, kept, 2)
	assert.Equal(t, float32(0.9), kept[0].Score)
	assert.Equal(t, float32(0.7), kept[1].Score)
}

func TestApplyGreedyNMSClassAware(t *testing.T) {
	preds := []meta.Prediction{
		{Label: 0, Score: 0.9, Box: box(0, 0, 10, 10)},
		{Label: 1, Score: 0.8, Box: box(0, 0, 10, 10)},
	}

	// Different classes survive when suppression is class aware.
	kept := ApplyGreedyNMS(preds, &NMSConfig{IoUThreshold: 0.5, ClassAware: true})
	assert.Len(t, kept, 2)

	kept = ApplyGreedyNMS(preds, &NMSConfig{IoUThreshold: 0.5})
	assert.Len(t, kept, 1)
	assert.Equal(t, 0, kept[0].Label)
}

func TestApplyGreedyNMSEmpty(t *testing.T) {
	assert.Nil(t, ApplyGreedyNMS(nil, &NMSConfig{IoUThreshold: 0.5}))
}
