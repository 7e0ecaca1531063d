// Package config holds runtime configuration for the handsign service.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Defaults used when neither a flag nor an environment variable is set.
const (
	DefaultAddr          = "127.0.0.1:8000"
	DefaultCameraID      = 0
	DefaultModelPath     = "model.onnx"
	DefaultInputName     = "float_input"
	DefaultOutputName    = "output_label"
	DefaultMinConfidence = 0.3
	DefaultMaxHands      = 2
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
)

// Config holds every tunable of the service.
type Config struct {
	Addr     string
	CameraID int

	// Classifier artifact and ONNX Runtime shared library.
	ModelPath  string
	InputName  string
	OutputName string
	ORTLibPath string

	// MediaPipe helper process.
	ScriptPath    string
	PythonPath    string
	MinConfidence float64
	MaxHands      int

	// DBPath is the detection history database. Empty disables history.
	DBPath string

	LogLevel  string
	LogFormat string
}

// Default returns a Config populated with default values.
func Default() Config {
	cfg := Config{
		Addr:          DefaultAddr,
		CameraID:      DefaultCameraID,
		ModelPath:     DefaultModelPath,
		InputName:     DefaultInputName,
		OutputName:    DefaultOutputName,
		MinConfidence: DefaultMinConfidence,
		MaxHands:      DefaultMaxHands,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.DBPath = filepath.Join(home, ".handsign", "history.db")
	}

	return cfg
}

// FromEnv returns the defaults overlaid with HANDSIGN_* environment variables.
func FromEnv() (Config, error) {
	cfg := Default()

	cfg.Addr = envString("HANDSIGN_ADDR", cfg.Addr)
	cfg.ModelPath = envString("HANDSIGN_MODEL", cfg.ModelPath)
	cfg.InputName = envString("HANDSIGN_MODEL_INPUT", cfg.InputName)
	cfg.OutputName = envString("HANDSIGN_MODEL_OUTPUT", cfg.OutputName)
	cfg.ORTLibPath = envString("HANDSIGN_ORT_LIB", cfg.ORTLibPath)
	cfg.ScriptPath = envString("HANDSIGN_SCRIPT", cfg.ScriptPath)
	cfg.PythonPath = envString("HANDSIGN_PYTHON", cfg.PythonPath)
	cfg.DBPath = envString("HANDSIGN_DB", cfg.DBPath)
	cfg.LogLevel = envString("HANDSIGN_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envString("HANDSIGN_LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.CameraID, err = envInt("HANDSIGN_CAMERA", cfg.CameraID); err != nil {
		return cfg, err
	}
	if cfg.MaxHands, err = envInt("HANDSIGN_MAX_HANDS", cfg.MaxHands); err != nil {
		return cfg, err
	}
	if cfg.MinConfidence, err = envFloat("HANDSIGN_MIN_CONFIDENCE", cfg.MinConfidence); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.CameraID < 0 {
		return fmt.Errorf("camera id must be >= 0, got %d", c.CameraID)
	}
	if c.ModelPath == "" {
		return errors.New("model path must not be empty")
	}
	if c.InputName == "" || c.OutputName == "" {
		return errors.New("model input and output names must not be empty")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be within [0, 1], got %g", c.MinConfidence)
	}
	if c.MaxHands < 1 {
		return fmt.Errorf("max hands must be >= 1, got %d", c.MaxHands)
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}
