package web

import (
	"github.com/okabe-dev/facemood/pkg/eventlog"
	"github.com/okabe-dev/facemood/pkg/hub"
)

// hubSink pushes appended events to websocket clients as JSON.
type hubSink struct {
	hub *hub.Hub
}

func (s *hubSink) Append(evt eventlog.Event) error {
	return s.hub.BroadcastJSON(evt)
}

func (s *hubSink) Close() error { return nil }
