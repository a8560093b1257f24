// Package util - Frame loading helpers for harnesses and tests.
package util

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/edge-ai-lab/go-dpuinfer/frames"
)

// LoadDirectoryFrames decodes every image file in dir into a raw frame of
// the given layout and shape, sorted by file name.
func LoadDirectoryFrames(dir string, width, height int, format frames.Format) ([]*frames.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	out := make([]*frames.Image, 0, len(paths))
	for _, p := range paths {
		frame, err := loadFrame(p, width, height, format)
		if err != nil {
			return nil, err
		}
		out = append(out, frame)
	}
	return out, nil
}

func loadFrame(path string, width, height int, format frames.Format) (*frames.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	frame, err := frames.FromImage(img, width, height, format)
	if err != nil {
		return nil, errors.Wrapf(err, "converting %s", path)
	}
	return frame, nil
}
