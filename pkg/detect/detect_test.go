package detect

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestRectCenter(t *testing.T) {
	tests := []struct {
		name   string
		rect   Rect
		cx, cy float64
	}{
		{"origin", Rect{X: 0, Y: 0, W: 10, H: 10}, 5, 5},
		{"offset", Rect{X: 100, Y: 50, W: 40, H: 60}, 120, 80},
		{"odd size", Rect{X: 0, Y: 0, W: 5, H: 3}, 2.5, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cx, cy := tt.rect.Center()
			if cx != tt.cx || cy != tt.cy {
				t.Errorf("Center() = (%v, %v), want (%v, %v)", cx, cy, tt.cx, tt.cy)
			}
		})
	}
}

func TestRectClampTo(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"inside", Rect{10, 10, 50, 50}, Rect{10, 10, 50, 50}},
		{"negative origin", Rect{-5, -5, 50, 50}, Rect{0, 0, 45, 45}},
		{"past right edge", Rect{600, 100, 100, 50}, Rect{600, 100, 40, 50}},
		{"past bottom edge", Rect{100, 440, 50, 100}, Rect{100, 440, 50, 40}},
		{"fully outside", Rect{700, 500, 50, 50}, Rect{639, 479, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.ClampTo(640, 480)
			if got != tt.want {
				t.Errorf("ClampTo(640, 480) = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectJSON(t *testing.T) {
	r := Rect{X: 12, Y: 34, W: 56, H: 78}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "[12,34,56,78]" {
		t.Errorf("Marshal = %s, want [12,34,56,78]", data)
	}

	var back Rect
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back != r {
		t.Errorf("round trip = %+v, want %+v", back, r)
	}
}

func TestRectUnmarshalBadLength(t *testing.T) {
	var r Rect
	if err := json.Unmarshal([]byte("[1,2,3]"), &r); err == nil {
		t.Error("Expected error for three-element array")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "dlib"

	_, err := Open(cfg)
	if err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestYuNetNewInvalidPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = "/nonexistent/path/model.onnx"

	_, err := NewYuNet(cfg)
	if err == nil {
		t.Error("Expected error for invalid model path")
	}
}

func TestHaarNewInvalidPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CascadePath = "/nonexistent/path/cascade.xml"

	_, err := NewHaar(cfg)
	if err == nil {
		t.Error("Expected error for invalid cascade path")
	}
}

func TestYuNetDetect_SolidImage(t *testing.T) {
	modelPath := findModelFile("face_detection_yunet.onnx")
	if modelPath == "" {
		t.Skip("YuNet model not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.ModelPath = modelPath

	detector, err := NewYuNet(cfg)
	if err != nil {
		t.Fatalf("NewYuNet failed: %v", err)
	}
	defer detector.Close()

	// Invalid JPEG should fail.
	if _, err := detector.Detect([]byte("not a jpeg")); err == nil {
		t.Error("Expected error for invalid JPEG")
	}

	// Solid color image has no faces.
	frame := encodeSolidJPEG(320, 240, color.RGBA{0, 0, 255, 255})
	detections, err := detector.Detect(frame)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(detections) > 0 {
		t.Errorf("Expected no detections in solid color image, got %d", len(detections))
	}
}

func TestYuNetConcurrency(t *testing.T) {
	modelPath := findModelFile("face_detection_yunet.onnx")
	if modelPath == "" {
		t.Skip("YuNet model not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.ModelPath = modelPath

	detector, err := NewYuNet(cfg)
	if err != nil {
		t.Fatalf("NewYuNet failed: %v", err)
	}
	defer detector.Close()

	frame := encodeSolidJPEG(320, 240, color.RGBA{100, 100, 100, 255})

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			if _, err := detector.Detect(frame); err != nil {
				t.Errorf("Concurrent detection failed: %v", err)
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestHaarDetect_SolidImage(t *testing.T) {
	cascadePath := findModelFile("haarcascade_frontalface_default.xml")
	if cascadePath == "" {
		t.Skip("Haar cascade not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.CascadePath = cascadePath

	detector, err := NewHaar(cfg)
	if err != nil {
		t.Fatalf("NewHaar failed: %v", err)
	}
	defer detector.Close()

	frame := encodeSolidJPEG(320, 240, color.RGBA{0, 255, 0, 255})
	detections, err := detector.Detect(frame)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(detections) > 0 {
		t.Errorf("Expected no detections in solid color image, got %d", len(detections))
	}
}

// findModelFile walks up from the test directory looking for models/<name>.
func findModelFile(name string) string {
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != "/"; dir = filepath.Dir(dir) {
			p := filepath.Join(dir, "models", name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

func encodeSolidJPEG(width, height int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	jpeg.Encode(&buf, img, nil)
	return buf.Bytes()
}
