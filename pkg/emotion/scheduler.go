package emotion

import (
	"github.com/okabe-dev/facemood/pkg/camera"
	"github.com/okabe-dev/facemood/pkg/track"
)

// Scheduler caches one State per live identity and re-invokes the
// classifier only on each identity's evaluation cadence. It is not safe
// for concurrent use; the pipeline loop is the only caller.
type Scheduler struct {
	classifier Classifier
	every      int
	states     map[int]State
}

// NewScheduler wraps the classifier with per-identity throttling.
// every values below 1 classify on every frame.
func NewScheduler(classifier Classifier, every int) *Scheduler {
	if every < 1 {
		every = 1
	}
	return &Scheduler{
		classifier: classifier,
		every:      every,
		states:     make(map[int]State),
	}
}

// Classify returns the identity's State for this cycle. fresh reports
// whether the classifier actually ran and succeeded; a cached or
// error-preserved State returns fresh=false. A new identity classifies
// immediately (Age 0 is on cadence); afterwards only when its lifetime
// counter hits the cadence again. Classifier errors keep the prior
// cached value and are not retried within the cycle.
func (s *Scheduler) Classify(face track.Face, frame *camera.Frame, frameIndex int) (State, bool) {
	st, ok := s.states[face.ID]
	if !ok {
		st = State{Label: Neutral, Confidence: 0, LastEvaluatedFrame: -1}
		s.states[face.ID] = st
	}

	if face.Age%s.every != 0 {
		return st, false
	}

	label, confidence, err := s.classifier.Classify(frame, face.Box)
	if err != nil {
		return st, false
	}

	st = State{Label: label, Confidence: confidence, LastEvaluatedFrame: frameIndex}
	s.states[face.ID] = st
	return st, true
}

// Sweep drops cached states for identities no longer tracked.
func (s *Scheduler) Sweep(live []track.Face) {
	alive := make(map[int]bool, len(live))
	for _, f := range live {
		alive[f.ID] = true
	}
	for id := range s.states {
		if !alive[id] {
			delete(s.states, id)
		}
	}
}

// Backend reports the classifier backend name.
func (s *Scheduler) Backend() string { return s.classifier.Name() }
