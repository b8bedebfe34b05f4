// Package state publishes the pipeline's latest output to concurrent
// readers. The published value is immutable; each cycle swaps in a new
// one, so readers never observe a half-written snapshot.
package state

import (
	"sync"
	"time"

	"github.com/okabe-dev/facemood/pkg/detect"
)

// Face is one identified face in a snapshot.
type Face struct {
	ID         int         `json:"person_id"`
	Box        detect.Rect `json:"bbox"`
	Emotion    string      `json:"emotion"`
	Confidence float64     `json:"confidence"`
}

// Snapshot is the complete result of one pipeline cycle.
type Snapshot struct {
	Faces     []Face
	Timestamp time.Time
	Seq       uint64
	Err       string // non-empty marks the camera-unavailable marker
}

// Unavailable reports whether this snapshot is the marker published
// when frame capture failed.
func (s *Snapshot) Unavailable() bool { return s.Err != "" }

// Publication pairs a snapshot with the annotated JPEG it was computed
// from. The JPEG is nil for unavailable markers.
type Publication struct {
	Snapshot Snapshot
	JPEG     []byte
}

// Store holds the current publication. One writer (the pipeline)
// replaces it; any number of readers fetch it without blocking the
// writer or each other beyond the pointer swap.
type Store struct {
	mu      sync.RWMutex
	current *Publication

	notif *notifier
}

// NewStore creates an empty store. Latest reports not-ready until the
// first Publish.
func NewStore() *Store {
	return &Store{notif: newNotifier()}
}

// Publish replaces the current publication and wakes waiting stream
// readers. The caller must not mutate pub after handing it over.
func (s *Store) Publish(pub *Publication) {
	s.mu.Lock()
	pub.Snapshot.Seq = s.notif.Seq() + 1
	s.current = pub
	s.mu.Unlock()
	s.notif.next()
}

// Latest returns the current publication. ok is false before the first
// Publish.
func (s *Store) Latest() (*Publication, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	return s.current, true
}

// Seq returns the current publication sequence number, 0 before the
// first Publish.
func (s *Store) Seq() uint64 { return s.notif.Seq() }

// WaitNext returns a channel that is closed once the sequence advances
// past since. If it already has, the returned channel is closed.
func (s *Store) WaitNext(since uint64) <-chan struct{} {
	return s.notif.WaitNext(since)
}

// notifier fans a "new publication" edge out to any number of waiters.
type notifier struct {
	mu  sync.Mutex
	ch  chan struct{}
	seq uint64
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan struct{})}
}

func (n *notifier) next() {
	n.mu.Lock()
	n.seq++
	close(n.ch)
	n.ch = make(chan struct{})
	n.mu.Unlock()
}

func (n *notifier) Seq() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seq
}

func (n *notifier) WaitNext(since uint64) <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	if since != n.seq {
		// Already advanced: hand back a closed channel.
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return n.ch
}
