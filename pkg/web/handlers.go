package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/okabe-dev/facemood/pkg/hub"
	"github.com/okabe-dev/facemood/pkg/state"
)

// handleFrame returns the faces of the latest published snapshot.
func (s *Server) handleFrame(c *fiber.Ctx) error {
	pub, ok := s.store.Latest()
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).SendString("no frame captured yet")
	}
	if pub.Snapshot.Unavailable() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("camera unavailable: " + pub.Snapshot.Err)
	}

	faces := pub.Snapshot.Faces
	if faces == nil {
		faces = []state.Face{}
	}
	return c.JSON(fiber.Map{"faces": faces})
}

// handleStatus reports pipeline health.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	st := s.stats.Stats()
	return c.JSON(fiber.Map{
		"uptime_seconds":   time.Since(st.StartedAt).Seconds(),
		"frames_processed": st.FramesProcessed,
		"capture_failures": st.CaptureFailures,
		"events_emitted":   st.EventsEmitted,
		"live_tracks":      st.LiveTracks,
		"camera_ok":        st.CameraOK,
		"classifier":       st.Backend,
		"ws_clients":       s.events.ClientCount(),
	})
}

// handleEvents returns the most recent classification events, oldest
// first.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"events": s.ring.Recent()})
}

// handleEventsWS replays recent events to a new websocket client, then
// hands the connection to the hub for live pushes.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	for _, evt := range s.ring.Recent() {
		if err := c.WriteJSON(evt); err != nil {
			c.Close()
			return
		}
	}

	client := hub.NewClient(s.events, c)
	client.Run()
}
