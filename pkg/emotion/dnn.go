package emotion

import (
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/okabe-dev/facemood/pkg/camera"
	"github.com/okabe-dev/facemood/pkg/detect"
)

// ferLabels is the FER+ class order; the model emits one logit per
// entry.
var ferLabels = []string{
	"neutral", "happiness", "surprise", "sadness",
	"anger", "disgust", "fear", "contempt",
}

// DNN classifies emotions with the FER+ network. The model expects a
// 64x64 grayscale crop and emits unnormalized logits.
type DNN struct {
	net gocv.Net
	mu  sync.Mutex // serializes inference
}

// NewDNN loads the ONNX model from cfg.ModelPath.
func NewDNN(cfg Config) (*DNN, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("emotion model: %w", err)
	}

	net := gocv.ReadNet(cfg.ModelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("emotion model: load %s failed", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &DNN{net: net}, nil
}

// Classify crops the face, runs a forward pass and softmaxes the
// winning logit into a confidence.
func (c *DNN) Classify(frame *camera.Frame, box detect.Rect) (string, float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, err := gocv.IMDecode(frame.JPEG, gocv.IMReadColor)
	if err != nil {
		return "", 0, fmt.Errorf("decode frame: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return "", 0, fmt.Errorf("decode frame: empty image")
	}

	box = box.ClampTo(img.Cols(), img.Rows())
	roi := img.Region(image.Rect(box.X, box.Y, box.X+box.W, box.Y+box.H))
	defer roi.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)

	blob := gocv.BlobFromImage(gray, 1.0, image.Pt(64, 64),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	defer out.Close()

	scores := out.Reshape(1, len(ferLabels))
	defer scores.Close()

	best := 0
	logits := make([]float64, len(ferLabels))
	for i := range logits {
		logits[i] = float64(scores.GetFloatAt(i, 0))
		if logits[i] > logits[best] {
			best = i
		}
	}

	// Softmax probability of the winning class. exp(best-max) is 1, so
	// only the denominator needs computing.
	var sum float64
	for _, v := range logits {
		sum += math.Exp(v - logits[best])
	}

	return ferLabels[best], 1.0 / sum, nil
}

// Name identifies the DNN backend.
func (c *DNN) Name() string { return "dnn" }

// Close releases the network.
func (c *DNN) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}
