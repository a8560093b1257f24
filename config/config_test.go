package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edge-ai-lab/go-dpuinfer/frames"
)

func staticConfig(root string) string {
	return fmt.Sprintf(`{
		"model-format": "BGR",
		"model-path": %q,
		"model-class": "CLASSIFICATION",
		"model-name": "resnet50"
	}`, root)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(staticConfig(t.TempDir())))
	require.NoError(t, err)

	assert.Equal(t, LevelWarning, cfg.DebugLevel)
	assert.False(t, cfg.RunTimeModel)
	assert.False(t, cfg.PerformanceTest)
	assert.True(t, cfg.NeedPreprocess)
	assert.Equal(t, frames.FormatBGR8, cfg.Format)
	assert.Equal(t, "CLASSIFICATION", cfg.ModelClass)
	assert.Equal(t, "resnet50", cfg.ModelName)
}

func TestParseExplicitKeys(t *testing.T) {
	root := t.TempDir()
	cfg, err := Parse([]byte(fmt.Sprintf(`{
		"debug_level": 3,
		"run_time_model": true,
		"performance_test": true,
		"need_preprocess": false,
		"model-format": "RGB",
		"model-path": %q
	}`, root)))
	require.NoError(t, err)

	assert.Equal(t, LevelDebug, cfg.DebugLevel)
	assert.True(t, cfg.RunTimeModel)
	assert.True(t, cfg.PerformanceTest)
	assert.False(t, cfg.NeedPreprocess)
	assert.Equal(t, frames.FormatRGB8, cfg.Format)
	assert.Equal(t, root, cfg.ModelPath)
}

func TestParseMissingFormat(t *testing.T) {
	_, err := Parse([]byte(fmt.Sprintf(`{"model-path": %q, "run_time_model": true}`, t.TempDir())))
	require.ErrorIs(t, err, ErrConfig)
}

func TestParseUnknownFormat(t *testing.T) {
	_, err := Parse([]byte(fmt.Sprintf(`{"model-format": "NV12", "model-path": %q, "run_time_model": true}`, t.TempDir())))
	require.ErrorIs(t, err, frames.ErrUnsupportedFormat)
}

func TestParseMissingModelPathUsesDefault(t *testing.T) {
	if _, err := os.Stat(DefaultModelPath); err == nil {
		t.Skipf("%s exists on this host", DefaultModelPath)
	}
	_, err := Parse([]byte(`{"model-format": "BGR", "run_time_model": true}`))
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), DefaultModelPath)
}

func TestParseAbsentModelPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := Parse([]byte(fmt.Sprintf(`{"model-format": "BGR", "model-path": %q, "run_time_model": true}`, missing)))
	require.ErrorIs(t, err, ErrConfig)
}

func TestParseStaticRequiresClassAndName(t *testing.T) {
	root := t.TempDir()
	_, err := Parse([]byte(fmt.Sprintf(`{"model-format": "BGR", "model-path": %q, "model-name": "resnet50"}`, root)))
	require.ErrorIs(t, err, ErrConfig)

	_, err = Parse([]byte(fmt.Sprintf(`{"model-format": "BGR", "model-path": %q, "model-class": "SSD"}`, root)))
	require.ErrorIs(t, err, ErrConfig)
}

func TestParseRuntimeModeSkipsModelKeys(t *testing.T) {
	cfg, err := Parse([]byte(fmt.Sprintf(`{"model-format": "BGR", "model-path": %q, "run_time_model": true}`, t.TempDir())))
	require.NoError(t, err)
	assert.Empty(t, cfg.ModelClass)
	assert.Empty(t, cfg.ModelName)
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"model-format": `))
	require.ErrorIs(t, err, ErrConfig)
}

func writeModelDir(t *testing.T, root, name string, files ...string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644))
	}
}

func TestResolveArtifactPrefersXModel(t *testing.T) {
	root := t.TempDir()
	writeModelDir(t, root, "ssd_voc", "ssd_voc.prototxt", "ssd_voc.xmodel", "ssd_voc.elf")

	path, err := ResolveArtifact(root, "ssd_voc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "ssd_voc", "ssd_voc.xmodel"), path)
}

func TestResolveArtifactFallsBackToElf(t *testing.T) {
	root := t.TempDir()
	writeModelDir(t, root, "resnet50", "resnet50.prototxt", "resnet50.elf")

	path, err := ResolveArtifact(root, "resnet50")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "resnet50", "resnet50.elf"), path)
}

func TestResolveArtifactMissingPrototxt(t *testing.T) {
	root := t.TempDir()
	// The compiled artifact alone is not enough; the prototxt is the
	// required marker.
	writeModelDir(t, root, "resnet50", "resnet50.xmodel")

	_, err := ResolveArtifact(root, "resnet50")
	require.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestResolveArtifactNoCompiledModel(t *testing.T) {
	root := t.TempDir()
	writeModelDir(t, root, "resnet50", "resnet50.prototxt")

	_, err := ResolveArtifact(root, "resnet50")
	require.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestLabelFile(t *testing.T) {
	assert.Equal(t, filepath.Join("/models", "resnet50", "label.json"), LabelFile("/models", "resnet50"))
}
