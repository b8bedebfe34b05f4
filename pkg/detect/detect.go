// Package detect provides face detection over JPEG frames.
//
// Detector implementations wrap external models behind a single interface;
// the pipeline treats them as a black box that turns a frame into bounding
// boxes. Two backends are provided: YuNet (ONNX, via OpenCV's FaceDetectorYN)
// and a classic Haar cascade.
package detect

import (
	"encoding/json"
	"fmt"
)

// Rect is a face bounding box in pixel coordinates.
// It marshals to JSON as the array [x, y, w, h].
type Rect struct {
	X, Y, W, H int
}

// Center returns the centroid of the box.
func (r Rect) Center() (cx, cy float64) {
	return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
}

// ClampTo clips the box to a width×height frame and enforces a minimum
// size of 1×1, so downstream crops and drawing never see degenerate boxes.
func (r Rect) ClampTo(width, height int) Rect {
	if r.X < 0 {
		r.W += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.H += r.Y
		r.Y = 0
	}
	if r.X > width-1 {
		r.X = width - 1
	}
	if r.Y > height-1 {
		r.Y = height - 1
	}
	if r.W < 1 {
		r.W = 1
	}
	if r.H < 1 {
		r.H = 1
	}
	if r.X+r.W > width {
		r.W = width - r.X
		if r.W < 1 {
			r.W = 1
		}
	}
	if r.Y+r.H > height {
		r.H = height - r.Y
		if r.H < 1 {
			r.H = 1
		}
	}
	return r
}

// MarshalJSON renders the box as [x, y, w, h].
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{r.X, r.Y, r.W, r.H})
}

// UnmarshalJSON parses the [x, y, w, h] form.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var a []int
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if len(a) != 4 {
		return fmt.Errorf("rect: want 4 elements, got %d", len(a))
	}
	r.X, r.Y, r.W, r.H = a[0], a[1], a[2], a[3]
	return nil
}

// Detection is one detected face in one frame. It carries no identity;
// identity assignment is the tracker's job.
type Detection struct {
	Box        Rect
	Confidence float64 // detector score, 0 when the backend has none (Haar)
}

// Detector is the interface for face detection backends.
type Detector interface {
	// Detect finds faces in a JPEG-encoded frame.
	Detect(jpeg []byte) ([]Detection, error)

	// Close releases model resources.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	Backend       string  // "yunet" or "haar"
	ModelPath     string  // ONNX model for the yunet backend
	CascadePath   string  // cascade XML for the haar backend
	MinConfidence float64 // minimum detection score (yunet only)
}

// DefaultConfig returns production defaults for the YuNet backend.
func DefaultConfig() Config {
	return Config{
		Backend:       "yunet",
		ModelPath:     "models/face_detection_yunet.onnx",
		CascadePath:   "models/haarcascade_frontalface_default.xml",
		MinConfidence: 0.5,
	}
}

// Open resolves the configured backend once, at startup.
func Open(cfg Config) (Detector, error) {
	switch cfg.Backend {
	case "", "yunet":
		return NewYuNet(cfg)
	case "haar":
		return NewHaar(cfg)
	default:
		return nil, fmt.Errorf("unknown detector backend %q", cfg.Backend)
	}
}
