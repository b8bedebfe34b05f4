// Package app assembles the camera pipeline and the HTTP front and
// manages their lifecycle.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/okabe-dev/facemood/internal/config"
	"github.com/okabe-dev/facemood/internal/log"
	"github.com/okabe-dev/facemood/internal/mqttclient"
	"github.com/okabe-dev/facemood/pkg/camera"
	"github.com/okabe-dev/facemood/pkg/detect"
	"github.com/okabe-dev/facemood/pkg/emotion"
	"github.com/okabe-dev/facemood/pkg/eventlog"
	"github.com/okabe-dev/facemood/pkg/pipeline"
	"github.com/okabe-dev/facemood/pkg/state"
	"github.com/okabe-dev/facemood/pkg/track"
	"github.com/okabe-dev/facemood/pkg/web"
)

// App owns every long-lived component of the service.
type App struct {
	cfg *config.Config

	source     camera.Source
	detector   detect.Detector
	classifier emotion.Classifier
	sched      *emotion.Scheduler
	tracker    *track.Tracker
	store      *state.Store
	ring       *eventlog.Ring
	sinks      *eventlog.Multi
	pipe       *pipeline.Pipeline
	web        *web.Server
}

// New validates the configuration. Call Init before Run.
func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &App{cfg: cfg}, nil
}

// Stats implements web.StatsSource. Valid once Init has returned.
func (a *App) Stats() pipeline.Stats { return a.pipe.Stats() }

// Init builds all components. The camera device itself opens lazily on
// the first capture, so a missing camera surfaces as capture failures
// rather than a startup error.
func (a *App) Init() error {
	dcfg := detect.DefaultConfig()
	dcfg.Backend = a.cfg.Detector
	dcfg.ModelPath = a.cfg.FaceModel
	dcfg.CascadePath = a.cfg.FaceCascade
	det, err := detect.Open(dcfg)
	if err != nil {
		return fmt.Errorf("face detector: %w", err)
	}
	a.detector = det
	log.Info("face detector ready", "backend", a.cfg.Detector)

	settings, ok := camera.GetPreset(a.cfg.CameraPreset)
	if !ok {
		return fmt.Errorf("unknown camera preset %q (have %s)",
			a.cfg.CameraPreset, strings.Join(camera.PresetNames(), ", "))
	}
	a.source = camera.NewDevice(a.cfg.CameraIndex, a.cfg.JPEGQuality, settings)

	a.classifier = emotion.Load(emotion.Config{
		ModelPath: a.cfg.EmotionModel,
		Every:     a.cfg.EmotionEvery,
	})
	a.sched = emotion.NewScheduler(a.classifier, a.cfg.EmotionEvery)

	a.tracker = track.New(track.Config{
		MatchDistance:  a.cfg.MatchDistance,
		MaxDisappeared: a.cfg.MaxDisappeared,
	})

	a.store = state.NewStore()
	a.ring = eventlog.NewRing(a.cfg.EventRing)

	file, err := eventlog.NewFileSink(a.cfg.EventsLog)
	if err != nil {
		return fmt.Errorf("event log: %w", err)
	}
	sinks := []eventlog.Sink{file, a.ring}

	if a.cfg.MQTTEnabled() {
		client, err := mqttclient.NewClient(mqttclient.Config{
			Host:     a.cfg.MQTTHost,
			Port:     a.cfg.MQTTPort,
			Username: a.cfg.MQTTUsername,
			Password: a.cfg.MQTTPassword,
			ClientID: "facemood",
		})
		if err != nil {
			log.Warn("mqtt broker unreachable, events stay local", "error", err)
		} else {
			sinks = append(sinks, eventlog.NewMQTTSink(client, a.cfg.MQTTTopic))
			log.Info("publishing events to mqtt", "topic", a.cfg.MQTTTopic)
		}
	}

	a.web = web.NewServer(web.Config{StaticDir: a.cfg.StaticDir}, a.store, a, a.ring)
	sinks = append(sinks, a.web.EventSink())
	a.sinks = eventlog.NewMulti(sinks...)

	a.pipe = pipeline.New(pipeline.Config{
		MaxFPS:      a.cfg.MaxFPS,
		JPEGQuality: a.cfg.JPEGQuality,
	}, pipeline.Deps{
		Source:    a.source,
		Detector:  a.detector,
		Tracker:   a.tracker,
		Scheduler: a.sched,
		Store:     a.store,
		Events:    a.sinks,
	})

	return nil
}

// Run starts the pipeline and serves HTTP until ctx is cancelled or
// the listener fails.
func (a *App) Run(ctx context.Context) error {
	go a.pipe.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		errc <- a.web.Listen(ctx, a.cfg.Addr())
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		return err
	}
}

// Shutdown stops the HTTP server and releases every component.
func (a *App) Shutdown() {
	if a.web != nil {
		if err := a.web.Shutdown(); err != nil {
			log.Warn("web server shutdown", "error", err)
		}
	}
	if a.sinks != nil {
		if err := a.sinks.Close(); err != nil {
			log.Warn("closing event sinks", "error", err)
		}
	}
	if a.classifier != nil {
		a.classifier.Close()
	}
	if a.detector != nil {
		a.detector.Close()
	}
	if a.source != nil {
		a.source.Close()
	}
}
