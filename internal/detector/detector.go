package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector finds hands in a frame.
type Detector interface {
	// Detect returns the hands found in frame, best first. No hands is an empty slice.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	// Close releases any resources held by the detector.
	Close() error
}

// Config holds hand detection settings.
type Config struct {
	// MaxHands caps the number of hands returned.
	MaxHands int
	// MinConfidence is the minimum detection confidence (0-1).
	MinConfidence float64
	// MinTrackingConf is the minimum tracking confidence (0-1).
	MinTrackingConf float64
	// ScriptPath overrides the hand service script location.
	ScriptPath string
	// PythonPath overrides the interpreter.
	PythonPath string
	// IdleTimeout stops the service after this long without frames.
	IdleTimeout time.Duration
}

// DefaultConfig returns single-hand detection at 0.8 confidence.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.8,
		MinTrackingConf: 0.8,
		IdleTimeout:     30 * time.Second,
	}
}
