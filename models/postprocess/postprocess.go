// Package postprocess - Shared detection filtering for model families.
package postprocess

import (
	"sort"

	"github.com/edge-ai-lab/go-dpuinfer/meta"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	// IoUThreshold is the overlap above which a box is suppressed.
	IoUThreshold float32
	// ClassAware suppresses only within the same class when true.
	ClassAware bool
}

// IoU returns the intersection over union of two boxes.
func IoU(a, b meta.BoundingBox) float32 {
	x1 := maxf(a.XMin, b.XMin)
	y1 := maxf(a.YMin, b.YMin)
	x2 := minf(a.XMax, b.XMax)
	y2 := minf(a.YMax, b.YMax)

	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	intersection := (x2 - x1) * (y2 - y1)
	areaA := (a.XMax - a.XMin) * (a.YMax - a.YMin)
	areaB := (b.XMax - b.XMin) * (b.YMax - b.YMin)
	union := areaA + areaB - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// SortByScore orders predictions by descending confidence in place.
func SortByScore(preds []meta.Prediction) {
	sort.Slice(preds, func(i, j int) bool {
		return preds[i].Score > preds[j].Score
	})
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression over
// predictions sorted by descending confidence.
func ApplyGreedyNMS(preds []meta.Prediction, config *NMSConfig) []meta.Prediction {
	n := len(preds)
	if n == 0 {
		return nil
	}

	filtered := make([]meta.Prediction, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		anchor := preds[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if config.ClassAware && anchor.Label != preds[j].Label {
				continue
			}
			if IoU(anchor.Box, preds[j].Box) > config.IoUThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
