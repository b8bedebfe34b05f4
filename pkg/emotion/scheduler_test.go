package emotion

import (
	"errors"
	"testing"

	"github.com/okabe-dev/facemood/pkg/camera"
	"github.com/okabe-dev/facemood/pkg/detect"
	"github.com/okabe-dev/facemood/pkg/track"
)

type fakeClassifier struct {
	label string
	conf  float64
	err   error
	calls int
}

func (f *fakeClassifier) Classify(*camera.Frame, detect.Rect) (string, float64, error) {
	f.calls++
	if f.err != nil {
		return "", 0, f.err
	}
	return f.label, f.conf, nil
}

func (f *fakeClassifier) Name() string { return "fake" }
func (f *fakeClassifier) Close() error { return nil }

func face(id, age int) track.Face {
	return track.Face{ID: id, Age: age, Box: detect.Rect{X: 0, Y: 0, W: 10, H: 10}}
}

func TestFirstSightClassifies(t *testing.T) {
	fc := &fakeClassifier{label: "happiness", conf: 0.9}
	s := NewScheduler(fc, 5)

	st, fresh := s.Classify(face(0, 0), &camera.Frame{}, 7)
	if !fresh {
		t.Fatal("first sight should classify")
	}
	want := State{Label: "happiness", Confidence: 0.9, LastEvaluatedFrame: 7}
	if st != want {
		t.Errorf("State = %+v, want %+v", st, want)
	}
	if fc.calls != 1 {
		t.Errorf("classifier calls = %d, want 1", fc.calls)
	}
}

func TestCadenceThrottling(t *testing.T) {
	fc := &fakeClassifier{label: "happiness", conf: 0.9}
	s := NewScheduler(fc, 3)

	var freshAges []int
	for age := 0; age <= 8; age++ {
		_, fresh := s.Classify(face(0, age), &camera.Frame{}, age)
		if fresh {
			freshAges = append(freshAges, age)
		}
	}

	if len(freshAges) != 3 || freshAges[0] != 0 || freshAges[1] != 3 || freshAges[2] != 6 {
		t.Errorf("fresh at ages %v, want [0 3 6]", freshAges)
	}
	if fc.calls != 3 {
		t.Errorf("classifier calls = %d, want 3", fc.calls)
	}
}

func TestOffCadenceReturnsBitIdenticalCache(t *testing.T) {
	fc := &fakeClassifier{label: "surprise", conf: 0.75}
	s := NewScheduler(fc, 5)

	cached, fresh := s.Classify(face(0, 0), &camera.Frame{}, 10)
	if !fresh {
		t.Fatal("expected fresh classification at age 0")
	}

	// Change what the classifier would report; off-cadence cycles must
	// not pick it up.
	fc.label, fc.conf = "anger", 0.99
	for age := 1; age <= 4; age++ {
		st, fresh := s.Classify(face(0, age), &camera.Frame{}, 10+age)
		if fresh {
			t.Errorf("age %d: unexpected fresh classification", age)
		}
		if st != cached {
			t.Errorf("age %d: State = %+v, want cached %+v", age, st, cached)
		}
	}

	// Back on cadence the new value lands.
	st, fresh := s.Classify(face(0, 5), &camera.Frame{}, 15)
	if !fresh || st.Label != "anger" || st.LastEvaluatedFrame != 15 {
		t.Errorf("age 5: State = %+v fresh=%v, want fresh anger at frame 15", st, fresh)
	}
}

func TestErrorKeepsCachedState(t *testing.T) {
	fc := &fakeClassifier{label: "happiness", conf: 0.9}
	s := NewScheduler(fc, 3)

	cached, _ := s.Classify(face(0, 0), &camera.Frame{}, 0)

	fc.err = errors.New("inference failed")
	st, fresh := s.Classify(face(0, 3), &camera.Frame{}, 3)
	if fresh {
		t.Error("errored classification reported as fresh")
	}
	if st != cached {
		t.Errorf("State = %+v, want prior cached %+v", st, cached)
	}
	if fc.calls != 2 {
		t.Errorf("classifier calls = %d, want 2 (no retry within the cycle)", fc.calls)
	}
}

func TestErrorOnFirstSightReturnsDefault(t *testing.T) {
	fc := &fakeClassifier{err: errors.New("inference failed")}
	s := NewScheduler(fc, 5)

	st, fresh := s.Classify(face(0, 0), &camera.Frame{}, 0)
	if fresh {
		t.Error("errored first sight reported as fresh")
	}
	want := State{Label: Neutral, Confidence: 0, LastEvaluatedFrame: -1}
	if st != want {
		t.Errorf("State = %+v, want default %+v", st, want)
	}
}

func TestIdentitiesThrottledIndependently(t *testing.T) {
	fc := &fakeClassifier{label: "sadness", conf: 0.6}
	s := NewScheduler(fc, 5)

	// Identity 0 at age 2 (off cadence), identity 1 newborn.
	s.Classify(face(0, 0), &camera.Frame{}, 0)
	callsAfterFirst := fc.calls

	_, fresh0 := s.Classify(face(0, 2), &camera.Frame{}, 2)
	_, fresh1 := s.Classify(face(1, 0), &camera.Frame{}, 2)

	if fresh0 {
		t.Error("identity 0 off cadence should be cached")
	}
	if !fresh1 {
		t.Error("identity 1 first sight should classify")
	}
	if fc.calls != callsAfterFirst+1 {
		t.Errorf("classifier calls = %d, want %d", fc.calls, callsAfterFirst+1)
	}
}

func TestSweepDropsRetiredStates(t *testing.T) {
	fc := &fakeClassifier{label: "happiness", conf: 0.9}
	s := NewScheduler(fc, 5)

	s.Classify(face(0, 0), &camera.Frame{}, 0)
	s.Classify(face(1, 0), &camera.Frame{}, 0)
	if len(s.states) != 2 {
		t.Fatalf("cached states = %d, want 2", len(s.states))
	}

	s.Sweep([]track.Face{face(1, 1)})
	if len(s.states) != 1 {
		t.Fatalf("cached states after sweep = %d, want 1", len(s.states))
	}
	if _, ok := s.states[0]; ok {
		t.Error("retired identity 0 still cached")
	}
	if _, ok := s.states[1]; !ok {
		t.Error("live identity 1 evicted")
	}
}

func TestStubClassifier(t *testing.T) {
	label, conf, err := Stub{}.Classify(&camera.Frame{}, detect.Rect{})
	if err != nil {
		t.Fatalf("Stub.Classify failed: %v", err)
	}
	if label != Neutral || conf != 0 {
		t.Errorf("Stub = (%q, %v), want (%q, 0)", label, conf, Neutral)
	}
}

func TestSchedulerBackend(t *testing.T) {
	s := NewScheduler(Stub{}, 5)
	if s.Backend() != "stub" {
		t.Errorf("Backend = %q, want stub", s.Backend())
	}
}

func TestLoadFallsBackToStub(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = "/nonexistent/model.onnx"

	c := Load(cfg)
	defer c.Close()
	if c.Name() != "stub" {
		t.Errorf("Load with missing model = %q backend, want stub", c.Name())
	}
}
