// Package pipeline runs the capture, detect, track, classify, publish
// cycle that feeds every outward surface of the service.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okabe-dev/facemood/internal/log"
	"github.com/okabe-dev/facemood/pkg/camera"
	"github.com/okabe-dev/facemood/pkg/detect"
	"github.com/okabe-dev/facemood/pkg/emotion"
	"github.com/okabe-dev/facemood/pkg/eventlog"
	"github.com/okabe-dev/facemood/pkg/overlay"
	"github.com/okabe-dev/facemood/pkg/state"
	"github.com/okabe-dev/facemood/pkg/track"
)

// Detector finds faces in a JPEG frame.
type Detector interface {
	Detect(jpeg []byte) ([]detect.Detection, error)
}

// annotateFunc re-encodes a frame with face annotations drawn on.
type annotateFunc func(jpeg []byte, faces []state.Face, quality int) ([]byte, error)

// Config holds loop tuning.
type Config struct {
	MaxFPS      int // capture rate cap, <= 0 means uncapped
	JPEGQuality int
}

// Deps are the pipeline's collaborators.
type Deps struct {
	Source    camera.Source
	Detector  Detector
	Tracker   *track.Tracker
	Scheduler *emotion.Scheduler
	Store     *state.Store
	Events    eventlog.Sink
}

// Stats is a point-in-time view of pipeline health for the status
// surface.
type Stats struct {
	StartedAt       time.Time
	FramesProcessed uint64
	CaptureFailures uint64
	EventsEmitted   uint64
	LiveTracks      int
	CameraOK        bool
	Backend         string
}

// Pipeline is the single producer behind the state store. Run drives
// it; everything else only reads counters.
type Pipeline struct {
	cfg      Config
	source   camera.Source
	detector Detector
	tracker  *track.Tracker
	sched    *emotion.Scheduler
	store    *state.Store
	events   eventlog.Sink
	annotate annotateFunc

	frameIndex int // owned by the loop goroutine

	startedAt       time.Time
	frames          atomic.Uint64
	captureFailures atomic.Uint64
	eventsEmitted   atomic.Uint64
	liveTracks      atomic.Int64
	cameraOK        atomic.Bool
}

// New assembles a pipeline. Run must be called exactly once.
func New(cfg Config, deps Deps) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		source:    deps.Source,
		detector:  deps.Detector,
		tracker:   deps.Tracker,
		sched:     deps.Scheduler,
		store:     deps.Store,
		events:    deps.Events,
		annotate:  overlay.Annotate,
		startedAt: time.Now(),
	}
	// Assume healthy until the first capture proves otherwise, so a
	// camera that is dead from the start still logs its failure.
	p.cameraOK.Store(true)
	return p
}

// Run loops until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) {
	tk := camera.NewTicker(p.cfg.MaxFPS)

	log.Info("pipeline started", "max_fps", p.cfg.MaxFPS, "classifier", p.sched.Backend())

	for {
		tk.Wait(ctx)
		if ctx.Err() != nil {
			log.Info("pipeline stopped")
			return
		}
		p.cycle(ctx)
	}
}

func (p *Pipeline) cycle(ctx context.Context) {
	frame, err := p.source.Capture(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.captureFailures.Add(1)
		// Log the transition, not every failing cycle.
		if p.cameraOK.CompareAndSwap(true, false) {
			log.Warn("frame capture failed", "error", err)
		}
		p.store.Publish(&state.Publication{
			Snapshot: state.Snapshot{
				Timestamp: time.Now(),
				Err:       err.Error(),
			},
		})
		return
	}
	if p.cameraOK.CompareAndSwap(false, true) {
		log.Info("camera capture healthy", "width", frame.Width, "height", frame.Height)
	}

	detections, err := p.detector.Detect(frame.JPEG)
	if err != nil {
		// A failing detector means an empty frame, never a dead loop.
		log.Debug("detector failed", "error", err)
		detections = nil
	}

	faces := p.tracker.Update(detections)

	snapFaces := make([]state.Face, 0, len(faces))
	var fresh []eventlog.Event
	for _, f := range faces {
		st, isFresh := p.sched.Classify(f, frame, p.frameIndex)
		snapFaces = append(snapFaces, state.Face{
			ID:         f.ID,
			Box:        f.Box,
			Emotion:    st.Label,
			Confidence: st.Confidence,
		})
		if isFresh {
			fresh = append(fresh, eventlog.NewEvent(f.ID, st.Label, st.Confidence))
		}
	}
	p.sched.Sweep(faces)

	annotated, err := p.annotate(frame.JPEG, snapFaces, p.cfg.JPEGQuality)
	if err != nil {
		log.Debug("frame annotation failed", "error", err)
		annotated = frame.JPEG
	}

	p.store.Publish(&state.Publication{
		Snapshot: state.Snapshot{
			Faces:     snapFaces,
			Timestamp: frame.Timestamp,
		},
		JPEG: annotated,
	})

	for _, ev := range fresh {
		if err := p.events.Append(ev); err != nil {
			log.Warn("event sink write failed", "person_id", ev.PersonID, "error", err)
		}
		p.eventsEmitted.Add(1)
	}

	p.liveTracks.Store(int64(len(faces)))
	p.frames.Add(1)
	p.frameIndex++
}

// Stats reports current pipeline counters. Safe to call from any
// goroutine.
func (p *Pipeline) Stats() Stats {
	return Stats{
		StartedAt:       p.startedAt,
		FramesProcessed: p.frames.Load(),
		CaptureFailures: p.captureFailures.Load(),
		EventsEmitted:   p.eventsEmitted.Load(),
		LiveTracks:      int(p.liveTracks.Load()),
		CameraOK:        p.cameraOK.Load(),
		Backend:         p.sched.Backend(),
	}
}
