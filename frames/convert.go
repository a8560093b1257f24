package frames

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// FromImage converts a decoded image into a raw frame of the given layout,
// scaling to width x height when the source dimensions differ.
func FromImage(src image.Image, width, height int, f Format) (*Image, error) {
	if !Supported(f) {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", f)
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid frame dimensions %dx%d", width, height)
	}

	bounds := src.Bounds()
	if bounds.Dx() != width || bounds.Dy() != height {
		src = resize.Resize(uint(width), uint(height), src, resize.Bilinear)
		bounds = src.Bounds()
	}

	stride := width * f.Channels()
	data := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		row := data[y*stride:]
		for x := 0; x < width; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := x * 3
			switch f {
			case FormatBGR8:
				row[i] = byte(b >> 8)
				row[i+1] = byte(g >> 8)
				row[i+2] = byte(r >> 8)
			case FormatRGB8:
				row[i] = byte(r >> 8)
				row[i+1] = byte(g >> 8)
				row[i+2] = byte(b >> 8)
			}
		}
	}

	return &Image{
		Format: f,
		Width:  width,
		Height: height,
		Stride: stride,
		Data:   data,
	}, nil
}
