// Package track assigns stable identities to face detections across
// frames by nearest-centroid matching.
package track

import (
	"math"
	"sort"

	"github.com/okabe-dev/facemood/pkg/detect"
)

// Face is one tracked identity.
type Face struct {
	ID     int
	Box    detect.Rect
	Missed int // consecutive updates without a matching detection
	Age    int // updates survived since first sight, starts at 0
}

// Centroid returns the face's box center.
func (f Face) Centroid() (x, y float64) { return f.Box.Center() }

// Config holds tracker tuning.
type Config struct {
	MatchDistance  float64 // max centroid distance for a match, in pixels
	MaxDisappeared int     // consecutive misses tolerated before retirement
}

// DefaultConfig returns the standard tracker tuning.
func DefaultConfig() Config {
	return Config{
		MatchDistance:  80.0,
		MaxDisappeared: 15,
	}
}

// Tracker matches detections to known identities frame over frame.
// Identities increase monotonically and are never reused. Methods are
// not safe for concurrent use; the pipeline loop is the only caller.
type Tracker struct {
	cfg    Config
	nextID int
	tracks map[int]*Face
}

// New creates an empty tracker.
func New(cfg Config) *Tracker {
	return &Tracker{cfg: cfg, tracks: make(map[int]*Face)}
}

// pair is one (track, detection) matching candidate.
type pair struct {
	dist     float64
	trackID  int
	detIndex int
}

// Update matches detections against live tracks and returns the live
// set after matching, ordered by ascending identity.
func (t *Tracker) Update(detections []detect.Detection) []Face {
	// Every pre-existing track ages one update, matched or not, so each
	// Age value occurs exactly once per identity.
	for _, f := range t.tracks {
		f.Age++
	}

	ids := t.sortedIDs()

	// Candidate pairs within the match threshold.
	var pairs []pair
	for _, id := range ids {
		cx, cy := t.tracks[id].Box.Center()
		for i, d := range detections {
			dx, dy := d.Box.Center()
			dist := math.Hypot(cx-dx, cy-dy)
			if dist > t.cfg.MatchDistance {
				continue
			}
			pairs = append(pairs, pair{dist: dist, trackID: id, detIndex: i})
		}
	}

	// Greedy assignment in (distance, track ID, detection index) order
	// keeps the outcome deterministic under ties.
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].dist != pairs[j].dist {
			return pairs[i].dist < pairs[j].dist
		}
		if pairs[i].trackID != pairs[j].trackID {
			return pairs[i].trackID < pairs[j].trackID
		}
		return pairs[i].detIndex < pairs[j].detIndex
	})

	matchedTrack := make(map[int]bool, len(ids))
	matchedDet := make(map[int]bool, len(detections))
	for _, p := range pairs {
		if matchedTrack[p.trackID] || matchedDet[p.detIndex] {
			continue
		}
		matchedTrack[p.trackID] = true
		matchedDet[p.detIndex] = true

		f := t.tracks[p.trackID]
		f.Box = detections[p.detIndex].Box
		f.Missed = 0
	}

	// Unmatched tracks miss one update; past the limit the identity is
	// retired for good.
	for _, id := range ids {
		if matchedTrack[id] {
			continue
		}
		f := t.tracks[id]
		f.Missed++
		if f.Missed > t.cfg.MaxDisappeared {
			delete(t.tracks, id)
		}
	}

	// Unmatched detections become new identities.
	for i, d := range detections {
		if matchedDet[i] {
			continue
		}
		id := t.nextID
		t.nextID++
		t.tracks[id] = &Face{ID: id, Box: d.Box}
	}

	return t.Live()
}

// Live returns the current tracks ordered by ascending identity.
func (t *Tracker) Live() []Face {
	out := make([]Face, 0, len(t.tracks))
	for _, id := range t.sortedIDs() {
		out = append(out, *t.tracks[id])
	}
	return out
}

// Count returns the number of live tracks.
func (t *Tracker) Count() int { return len(t.tracks) }

func (t *Tracker) sortedIDs() []int {
	ids := make([]int, 0, len(t.tracks))
	for id := range t.tracks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
