package detect

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// Haar detects faces with a cascade classifier. It is the fallback
// backend for hosts without the YuNet model; it reports no confidence
// score, so Detection.Confidence is always zero.
type Haar struct {
	classifier gocv.CascadeClassifier
	mu         sync.Mutex
}

// NewHaar loads the cascade XML from cfg.CascadePath.
func NewHaar(cfg Config) (*Haar, error) {
	if _, err := os.Stat(cfg.CascadePath); err != nil {
		return nil, fmt.Errorf("haar cascade: %w", err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cfg.CascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("haar cascade: load %s failed", cfg.CascadePath)
	}

	return &Haar{classifier: classifier}, nil
}

// Detect finds faces in the JPEG frame.
func (d *Haar) Detect(jpeg []byte) ([]Detection, error) {
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

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	rects := d.classifier.DetectMultiScaleWithParams(
		gray, 1.1, 5, 0, image.Pt(40, 40), image.Pt(0, 0),
	)

	var out []Detection
	for _, r := range rects {
		box := Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
		out = append(out, Detection{Box: box.ClampTo(img.Cols(), img.Rows())})
	}
	return out, nil
}

// Close releases the classifier.
func (d *Haar) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.classifier.Close()
	return nil
}
