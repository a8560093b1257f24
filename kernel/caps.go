package kernel

import (
	"github.com/edge-ai-lab/go-dpuinfer/frames"
	"github.com/edge-ai-lab/go-dpuinfer/models/model"
)

// The accelerator's scaler covers inputs up to this range; anything inside
// it can be scaled to the model's required shape.
const (
	maxScaleWidth  = 1920
	maxScaleHeight = 1024
)

// Cap is one sink capability advertised to the upstream stage.
type Cap struct {
	MinWidth  int
	MaxWidth  int
	MinHeight int
	MaxHeight int
	Formats   []frames.Format
}

// Fixed reports whether the capability pins an exact shape.
func (c Cap) Fixed() bool {
	return c.MinWidth == c.MaxWidth && c.MinHeight == c.MaxHeight
}

// negotiateCaps builds the sink capability list: the model's exact
// required shape with the configured format comes first, as the first
// preference in negotiation, followed by the range the scaler can cover.
func negotiateCaps(m model.Model, f frames.Format) []Cap {
	return []Cap{
		{
			MinWidth:  m.RequiredWidth(),
			MaxWidth:  m.RequiredWidth(),
			MinHeight: m.RequiredHeight(),
			MaxHeight: m.RequiredHeight(),
			Formats:   []frames.Format{f},
		},
		{
			MinWidth:  1,
			MaxWidth:  maxScaleWidth,
			MinHeight: 1,
			MaxHeight: maxScaleHeight,
			Formats:   []frames.Format{frames.FormatBGR8, frames.FormatRGB8},
		},
	}
}

// Caps returns the negotiated sink capabilities. Empty in runtime
// selection mode, where the shape depends on per-frame metadata.
func (k *Kernel) Caps() []Cap {
	return k.caps
}
