// Package frames - Raw video frame representation shared between the host
// pipeline and the inference kernel.
package frames

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/edge-ai-lab/go-dpuinfer/meta"
)

// ErrUnsupportedFormat is returned for pixel layouts the kernel cannot hand
// to a model.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is a raw pixel layout.
type Format string

const (
	// FormatBGR8 is 8-bit interleaved BGR.
	FormatBGR8 Format = "BGR8"
	// FormatRGB8 is 8-bit interleaved RGB.
	FormatRGB8 Format = "RGB8"
	// FormatUnknown is the zero value for unrecognized layouts.
	FormatUnknown Format = ""
)

// ParseFormat maps a configured pixel format name to a layout. Matching is
// by prefix, so "BGRx" and "BGR" both select BGR8.
func ParseFormat(name string) (Format, error) {
	switch {
	case strings.HasPrefix(name, "RGB"):
		return FormatRGB8, nil
	case strings.HasPrefix(name, "BGR"):
		return FormatBGR8, nil
	}
	return FormatUnknown, errors.Wrapf(ErrUnsupportedFormat, "model-format %q", name)
}

// Supported reports whether frames of this layout can be processed.
func Supported(f Format) bool {
	return f == FormatBGR8 || f == FormatRGB8
}

// Channels returns the number of interleaved channels for the layout.
func (f Format) Channels() int {
	return 3
}

// Image is a raw frame handed to the kernel by the host pipeline.
type Image struct {
	Format Format
	Width  int
	Height int
	// Stride is the number of bytes per row. Width*3 when tightly packed.
	Stride int
	Data   []byte

	// Input carries runtime model selection metadata attached by an
	// upstream stage. Nil outside runtime selection mode.
	Input *meta.Input
	// Inference is attached by the kernel after a successful run.
	Inference *meta.Inference
}
