// Package camera captures frames from a local video device and hands
// them to the pipeline as JPEG bytes.
package camera

import (
	"context"
	"time"
)

// Frame is one captured camera frame, already JPEG-encoded.
type Frame struct {
	JPEG      []byte
	Width     int
	Height    int
	Timestamp time.Time
}

// Source produces frames for the pipeline. Capture blocks until a frame
// is available, an error occurs, or ctx is done.
type Source interface {
	Capture(ctx context.Context) (*Frame, error)
	Close() error
}
