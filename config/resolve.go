package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrArtifactNotFound is returned when a model directory lacks its marker
// prototxt or a compiled artifact.
var ErrArtifactNotFound = errors.New("model artifact not found")

// ResolveArtifact locates the compiled model for name under root. The
// directory layout is <root>/<name>/<name>.prototxt plus exactly one of
// <name>.xmodel or <name>.elf. The prototxt is a required marker; without
// it resolution fails immediately. When both compiled forms exist the
// xmodel is preferred.
func ResolveArtifact(root, name string) (string, error) {
	dir := filepath.Join(root, name)

	prototxt := filepath.Join(dir, name+".prototxt")
	if !fileExists(prototxt) {
		return "", errors.Wrapf(ErrArtifactNotFound, "%s not found", prototxt)
	}

	xmodel := filepath.Join(dir, name+".xmodel")
	if fileExists(xmodel) {
		return xmodel, nil
	}
	elf := filepath.Join(dir, name+".elf")
	if fileExists(elf) {
		return elf, nil
	}
	return "", errors.Wrapf(ErrArtifactNotFound, "neither %s nor %s found", xmodel, elf)
}

// LabelFile returns the optional label table path for a model directory.
func LabelFile(root, name string) string {
	return filepath.Join(root, name, "label.json")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
