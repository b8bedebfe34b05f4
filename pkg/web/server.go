// Package web is the HTTP front of the service: the viewer page, the
// JSON snapshot API, the MJPEG stream and a websocket event feed.
package web

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/okabe-dev/facemood/internal/log"
	"github.com/okabe-dev/facemood/pkg/eventlog"
	"github.com/okabe-dev/facemood/pkg/hub"
	"github.com/okabe-dev/facemood/pkg/pipeline"
	"github.com/okabe-dev/facemood/pkg/state"
)

// StatsSource reports pipeline health for the status endpoint.
type StatsSource interface {
	Stats() pipeline.Stats
}

// Config holds the server's settings.
type Config struct {
	// StaticDir is served at / and /static. Empty disables static
	// serving.
	StaticDir string
}

// Server owns the fiber app and the websocket hub.
type Server struct {
	app    *fiber.App
	store  *state.Store
	ring   *eventlog.Ring
	stats  StatsSource
	events *hub.Hub
}

// NewServer wires all routes. Call Listen to start serving.
func NewServer(cfg Config, store *state.Store, stats StatsSource, ring *eventlog.Ring) *Server {
	s := &Server{
		store:  store,
		ring:   ring,
		stats:  stats,
		events: hub.New("events"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "facemood",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
		app.Static("/static", cfg.StaticDir)
	}

	app.Get("/video", s.handleVideo)

	api := app.Group("/api")
	api.Get("/frame", s.handleFrame)
	api.Get("/status", s.handleStatus)
	api.Get("/events", s.handleEvents)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// EventSink returns a sink that forwards every appended event to
// connected websocket clients.
func (s *Server) EventSink() eventlog.Sink {
	return &hubSink{hub: s.events}
}

// Listen starts the event hub and serves on addr. It blocks until the
// listener fails or Shutdown is called; ctx stops the hub.
func (s *Server) Listen(ctx context.Context, addr string) error {
	go s.events.Run(ctx)
	log.Info("web server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
