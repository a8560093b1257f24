package model

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/edge-ai-lab/go-dpuinfer/frames"
)

// MatFromFrame copies a raw frame into a BGR gocv Mat for the DNN loader.
// Rows with padding strides are repacked; RGB frames get their channels
// swapped. The caller owns the returned Mat.
func MatFromFrame(frame *frames.Image) (gocv.Mat, error) {
	if !frames.Supported(frame.Format) {
		return gocv.NewMat(), errors.Wrapf(frames.ErrUnsupportedFormat, "frame format %q", frame.Format)
	}

	rowBytes := frame.Width * frame.Format.Channels()
	data := frame.Data
	if frame.Stride > rowBytes {
		packed := make([]byte, rowBytes*frame.Height)
		for y := 0; y < frame.Height; y++ {
			copy(packed[y*rowBytes:(y+1)*rowBytes], data[y*frame.Stride:y*frame.Stride+rowBytes])
		}
		data = packed
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "wrapping frame data")
	}
	if frame.Format == frames.FormatRGB8 {
		gocv.CvtColor(mat, &mat, gocv.ColorRGBToBGR)
	}
	return mat, nil
}
