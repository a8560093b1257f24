// Package config - Kernel configuration validation and model artifact
// resolution.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"

	"github.com/edge-ai-lab/go-dpuinfer/frames"
)

// ErrConfig is returned for a missing or malformed required configuration key.
var ErrConfig = errors.New("invalid kernel configuration")

// DefaultModelPath is searched for compiled model directories when the
// configuration does not name a root.
const DefaultModelPath = "/usr/share/vitis_ai_library/models/"

// Debug levels match the original kernel's debug_level integers.
const (
	LevelError = iota
	LevelWarning
	LevelInfo
	LevelDebug
)

// Config is the validated kernel configuration.
type Config struct {
	DebugLevel      int
	RunTimeModel    bool
	PerformanceTest bool
	NeedPreprocess  bool
	Format          frames.Format
	ModelPath       string
	// ModelClass and ModelName are set in static mode only; in runtime
	// selection mode the model is chosen per frame from attached metadata.
	ModelClass string
	ModelName  string
}

// Level maps the configured debug_level to a zap level.
func (c *Config) Level() zapcore.Level {
	switch {
	case c.DebugLevel <= LevelError:
		return zapcore.ErrorLevel
	case c.DebugLevel == LevelWarning:
		return zapcore.WarnLevel
	case c.DebugLevel == LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

type rawConfig struct {
	DebugLevel      *int    `json:"debug_level"`
	RunTimeModel    *bool   `json:"run_time_model"`
	PerformanceTest *bool   `json:"performance_test"`
	NeedPreprocess  *bool   `json:"need_preprocess"`
	ModelFormat     *string `json:"model-format"`
	ModelPath       *string `json:"model-path"`
	ModelClass      *string `json:"model-class"`
	ModelName       *string `json:"model-name"`
}

// Parse decodes and validates a kernel configuration object.
//
// Optional keys fall back to documented defaults: debug_level warning,
// run_time_model false, performance_test false, need_preprocess true,
// model-path DefaultModelPath. model-format has no default; an absent or
// unrecognized value is fatal. The model path must exist on disk. In
// static mode model-class and model-name are required.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(ErrConfig, "%v", err)
	}

	cfg := &Config{
		DebugLevel:     LevelWarning,
		NeedPreprocess: true,
		ModelPath:      DefaultModelPath,
	}
	if raw.DebugLevel != nil {
		cfg.DebugLevel = *raw.DebugLevel
	}
	if raw.RunTimeModel != nil {
		cfg.RunTimeModel = *raw.RunTimeModel
	}
	if raw.PerformanceTest != nil {
		cfg.PerformanceTest = *raw.PerformanceTest
	}
	if raw.NeedPreprocess != nil {
		cfg.NeedPreprocess = *raw.NeedPreprocess
	}

	if raw.ModelFormat == nil {
		return nil, errors.Wrap(ErrConfig, "model-format not set")
	}
	format, err := frames.ParseFormat(*raw.ModelFormat)
	if err != nil {
		return nil, err
	}
	cfg.Format = format

	if raw.ModelPath != nil && *raw.ModelPath != "" {
		cfg.ModelPath = *raw.ModelPath
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(ErrConfig, "model-path %s does not exist", cfg.ModelPath)
	}

	if !cfg.RunTimeModel {
		if raw.ModelClass == nil || *raw.ModelClass == "" {
			return nil, errors.Wrap(ErrConfig, "model-class is required when run_time_model is false")
		}
		if raw.ModelName == nil || *raw.ModelName == "" {
			return nil, errors.Wrap(ErrConfig, "model-name is required when run_time_model is false")
		}
		cfg.ModelClass = *raw.ModelClass
		cfg.ModelName = *raw.ModelName
	}

	return cfg, nil
}
