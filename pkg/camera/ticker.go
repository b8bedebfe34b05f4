package camera

import (
	"context"
	"time"
)

// Ticker paces the capture loop at a target frame rate without letting
// lag accumulate. Call Wait once per loop iteration.
type Ticker struct {
	dur  time.Duration
	next time.Time
}

// NewTicker creates a Ticker for the desired FPS. If fps <= 0 the
// returned Ticker never waits.
func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		return &Ticker{}
	}
	return &Ticker{dur: time.Second / time.Duration(fps)}
}

// Wait sleeps until the scheduled next frame time or ctx is done. A
// loop that has fallen more than one interval behind is rescheduled
// from now rather than sleeping through the backlog.
func (t *Ticker) Wait(ctx context.Context) {
	if t.dur <= 0 {
		return
	}
	now := time.Now()
	if t.next.IsZero() {
		t.next = now.Add(t.dur)
		return
	}
	if sleep := t.next.Sub(now); sleep > 0 {
		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
	t.next = t.next.Add(t.dur)
	if time.Since(t.next) > t.dur {
		t.next = time.Now().Add(t.dur)
	}
}
