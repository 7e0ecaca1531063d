package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand landmark detection implementations.
type Detector interface {
	// Detect analyzes an RGB frame and returns the landmarks of every detected hand.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// StaticImageMode treats every frame as unrelated to the previous one,
	// running full palm detection instead of tracking.
	StaticImageMode bool

	// ScriptPath overrides the location of mediapipe_service.py.
	ScriptPath string

	// PythonPath overrides the interpreter used to run the script.
	PythonPath string
}

// DefaultConfig returns the detection settings the sign classifier was trained with.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.3,
		StaticImageMode: true,
	}
}
