package web

import (
	"bufio"
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/okabe-dev/facemood/pkg/state"
)

const mjpegBoundary = "frame"

// partWriter frames JPEG payloads as parts of a
// multipart/x-mixed-replace body. The first part is written without a
// leading CRLF; every later part is separated from the previous one by
// CRLF.
type partWriter struct {
	w       *bufio.Writer
	started bool
}

func (pw *partWriter) writeFrame(jpeg []byte) error {
	if pw.started {
		if _, err := pw.w.WriteString("\r\n"); err != nil {
			return err
		}
	}
	pw.started = true

	if _, err := fmt.Fprintf(pw.w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", mjpegBoundary, len(jpeg)); err != nil {
		return err
	}
	_, err := pw.w.Write(jpeg)
	return err
}

// streamTo pushes annotated frames to one client until ctx is done or
// a write fails. The client holds a cursor into the publication
// sequence and always jumps to the newest frame, so a slow reader
// skips frames instead of lagging behind. Publications without a JPEG
// (capture failure markers) are passed over.
func streamTo(ctx context.Context, store *state.Store, w *bufio.Writer) {
	pw := &partWriter{w: w}
	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-store.WaitNext(seq):
		}
		if ctx.Err() != nil {
			return
		}
		seq = store.Seq()

		pub, ok := store.Latest()
		if !ok || len(pub.JPEG) == 0 {
			continue
		}
		if err := pw.writeFrame(pub.JPEG); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

// handleVideo serves the MJPEG stream. The response body is produced
// by a stream writer that runs for the lifetime of the connection;
// disconnects surface as flush errors.
func (s *Server) handleVideo(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	c.Set("Pragma", "no-cache")
	c.Set(fiber.HeaderContentType, "multipart/x-mixed-replace; boundary="+mjpegBoundary)

	ctx := c.Context()
	store := s.store
	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		streamTo(ctx, store, w)
	})
	return nil
}
