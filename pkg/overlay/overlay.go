// Package overlay draws identity and emotion annotations onto frames
// before they are published to the stream.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/okabe-dev/facemood/pkg/state"
)

var green = color.RGBA{G: 255}

// Annotate draws a box and an "ID n: emotion (conf)" label for each
// face and re-encodes the frame at the given JPEG quality. A frame with
// no faces is returned unchanged.
func Annotate(jpeg []byte, faces []state.Face, quality int) ([]byte, error) {
	if len(faces) == 0 {
		return jpeg, nil
	}

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("decode frame: empty image")
	}

	for _, f := range faces {
		box := f.Box.ClampTo(img.Cols(), img.Rows())
		rect := image.Rect(box.X, box.Y, box.X+box.W, box.Y+box.H)
		gocv.Rectangle(&img, rect, green, 2)

		label := fmt.Sprintf("ID %d: %s (%.2f)", f.ID, f.Emotion, f.Confidence)
		origin := image.Pt(box.X, max(box.Y-10, 20))
		gocv.PutText(&img, label, origin, gocv.FontHersheySimplex, 0.5, green, 2)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img,
		[]int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
