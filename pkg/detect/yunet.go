package detect

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// yunetInputSize is the initial model input size; Detect resizes it to
// match each frame before inference.
var yunetInputSize = image.Pt(320, 320)

// YuNet detects faces with OpenCV's FaceDetectorYN.
type YuNet struct {
	detector gocv.FaceDetectorYN
	mu       sync.Mutex // serializes inference
}

// NewYuNet loads the ONNX model from cfg.ModelPath.
func NewYuNet(cfg Config) (*YuNet, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("yunet model: %w", err)
	}

	det := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"", // no config file for ONNX
		yunetInputSize,
		float32(cfg.MinConfidence),
		0.3,  // NMS threshold
		5000, // top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNet{detector: det}, nil
}

// Detect finds faces in the JPEG frame and returns pixel-space boxes.
func (d *YuNet) Detect(jpeg []byte) ([]Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("decode frame: empty image")
	}

	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()
	d.detector.Detect(img, &faces)

	// YuNet rows: 0-3 box (x, y, w, h), 4-13 landmarks, 14 score.
	var out []Detection
	for r := 0; r < faces.Rows(); r++ {
		box := Rect{
			X: int(faces.GetFloatAt(r, 0)),
			Y: int(faces.GetFloatAt(r, 1)),
			W: int(faces.GetFloatAt(r, 2)),
			H: int(faces.GetFloatAt(r, 3)),
		}
		out = append(out, Detection{
			Box:        box.ClampTo(img.Cols(), img.Rows()),
			Confidence: float64(faces.GetFloatAt(r, 14)),
		})
	}
	return out, nil
}

// Close releases the detector.
func (d *YuNet) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
