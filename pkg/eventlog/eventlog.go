// Package eventlog records emotion classification events. Sinks are
// append-only; ordering follows event production, and no sink failure
// is allowed to stop the pipeline.
package eventlog

import (
	"errors"
	"time"
)

// Event is one classification result for one identity. One event is
// recorded per classifier invocation, not per frame.
type Event struct {
	TS         float64 `json:"ts"` // unix seconds
	PersonID   int     `json:"person_id"`
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// NewEvent stamps an event with the current time.
func NewEvent(personID int, emotion string, confidence float64) Event {
	return Event{
		TS:         float64(time.Now().UnixNano()) / float64(time.Second),
		PersonID:   personID,
		Emotion:    emotion,
		Confidence: confidence,
	}
}

// Sink receives events in production order.
type Sink interface {
	Append(Event) error
	Close() error
}

// Multi fans every event out to all sinks. Each sink is attempted even
// when an earlier one fails.
type Multi struct {
	sinks []Sink
}

// NewMulti combines sinks into one.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Append delivers the event to every sink and joins any errors.
func (m *Multi) Append(e Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Append(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes all sinks.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
