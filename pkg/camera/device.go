package camera

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/okabe-dev/facemood/internal/log"
)

// Device reads frames from a local camera through OpenCV. The device is
// opened lazily on first Capture and re-probed after a failed read, so a
// camera that disappears and comes back recovers without a restart.
type Device struct {
	index    int
	quality  int
	settings Settings

	mu  sync.Mutex
	cap *gocv.VideoCapture
}

// NewDevice prepares a capture source for the camera at index.
// jpegQuality is the encoder quality (1-100).
func NewDevice(index, jpegQuality int, settings Settings) *Device {
	return &Device{index: index, quality: jpegQuality, settings: settings}
}

// open probes the device and applies the requested capture settings.
// Callers hold d.mu.
func (d *Device) open() error {
	cap, err := gocv.OpenVideoCapture(d.index)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", d.index, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return fmt.Errorf("camera %d not opened", d.index)
	}

	// Keep the driver queue short so reads return the newest frame.
	cap.Set(gocv.VideoCaptureBufferSize, 1)
	if d.settings.Width > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(d.settings.Width))
	}
	if d.settings.Height > 0 {
		cap.Set(gocv.VideoCaptureFrameHeight, float64(d.settings.Height))
	}
	if d.settings.FPS > 0 {
		cap.Set(gocv.VideoCaptureFPS, float64(d.settings.FPS))
	}

	// The driver picks the nearest mode it supports; report what we
	// actually got.
	log.Info("camera opened",
		"index", d.index,
		"requested", d.settings.String(),
		"width", int(cap.Get(gocv.VideoCaptureFrameWidth)),
		"height", int(cap.Get(gocv.VideoCaptureFrameHeight)),
		"fps", cap.Get(gocv.VideoCaptureFPS))

	d.cap = cap
	return nil
}

// Capture grabs one frame and encodes it to JPEG.
func (d *Device) Capture(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cap == nil {
		if err := d.open(); err != nil {
			return nil, err
		}
	}

	img := gocv.NewMat()
	defer img.Close()

	if ok := d.cap.Read(&img); !ok || img.Empty() {
		// Drop the handle so the next capture re-probes the device.
		d.cap.Close()
		d.cap = nil
		return nil, fmt.Errorf("camera %d: read failed", d.index)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img,
		[]int{int(gocv.IMWriteJpegQuality), d.quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())

	return &Frame{
		JPEG:      data,
		Width:     img.Cols(),
		Height:    img.Rows(),
		Timestamp: time.Now(),
	}, nil
}

// Close releases the camera device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cap == nil {
		return nil
	}
	err := d.cap.Close()
	d.cap = nil
	return err
}
