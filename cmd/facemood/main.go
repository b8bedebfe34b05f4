// facemood - realtime face emotion monitor
// Watches a camera, tracks each visible person and serves the
// annotated stream with per-person emotion labels.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okabe-dev/facemood/internal/config"
	"github.com/okabe-dev/facemood/internal/log"
	"github.com/okabe-dev/facemood/pkg/app"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Init("info")
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.Port, "HTTP listen port (overrides PORT)")
	cameraIndex := flag.Int("camera", cfg.CameraIndex, "camera device index (overrides CAMERA_INDEX)")
	debug := flag.Bool("debug", false, "verbose debug logging")
	flag.Parse()

	cfg.Port = *port
	cfg.CameraIndex = *cameraIndex
	if *debug {
		cfg.LogLevel = "debug"
	}

	log.Init(cfg.LogLevel)

	a, err := app.New(cfg)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := a.Init(); err != nil {
		log.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	defer a.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("facemood starting", "addr", cfg.Addr(), "camera", cfg.CameraIndex)
	if err := a.Run(ctx); err != nil {
		log.Error("runtime error", "error", err)
		os.Exit(1)
	}
}
