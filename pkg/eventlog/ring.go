package eventlog

import "sync"

// Ring keeps the most recent events in memory for the API surface.
type Ring struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

// NewRing creates a ring holding up to capacity events. Capacities
// below 1 are raised to 1.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{events: make([]Event, capacity)}
}

// Append records the event, evicting the oldest once full.
func (r *Ring) Append(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = e
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.full = true
	}
	return nil
}

// Recent returns the stored events, oldest first.
func (r *Ring) Recent() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]Event, r.next)
		copy(out, r.events[:r.next])
		return out
	}

	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	out = append(out, r.events[:r.next]...)
	return out
}

// Close is a no-op; the ring has nothing to release.
func (r *Ring) Close() error { return nil }
