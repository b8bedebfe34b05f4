// Package emotion classifies the mood of tracked faces and throttles
// how often each identity is re-evaluated.
package emotion

import (
	"github.com/okabe-dev/facemood/pkg/camera"
	"github.com/okabe-dev/facemood/pkg/detect"
)

// Neutral is the label reported before any classification succeeds.
const Neutral = "neutral"

// State is the last known emotion of one identity.
type State struct {
	Label              string
	Confidence         float64
	LastEvaluatedFrame int // pipeline frame index, -1 until first success
}

// Classifier infers the emotion of a face region within a frame.
type Classifier interface {
	// Classify crops the box from the frame and returns the dominant
	// emotion label with its confidence.
	Classify(frame *camera.Frame, box detect.Rect) (label string, confidence float64, err error)
	// Name identifies the backend for status reporting.
	Name() string
	Close() error
}

// Config holds classifier and scheduler tuning.
type Config struct {
	ModelPath string // emotion recognition ONNX model
	Every     int    // classify each identity every Nth frame of its lifetime
}

// DefaultConfig returns the standard emotion tuning.
func DefaultConfig() Config {
	return Config{
		ModelPath: "models/emotion-ferplus.onnx",
		Every:     5,
	}
}

// Stub always reports a neutral face. It stands in when no emotion
// model is available so the rest of the pipeline keeps running.
type Stub struct{}

// Classify returns the neutral label with zero confidence.
func (Stub) Classify(*camera.Frame, detect.Rect) (string, float64, error) {
	return Neutral, 0.0, nil
}

// Name identifies the stub backend.
func (Stub) Name() string { return "stub" }

// Close is a no-op.
func (Stub) Close() error { return nil }
