package camera

import (
	"context"
	"testing"
	"time"
)

func TestTickerDisabled(t *testing.T) {
	tk := NewTicker(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		tk.Wait(context.Background())
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("disabled ticker waited %v", elapsed)
	}
}

func TestTickerPacing(t *testing.T) {
	tk := NewTicker(100) // 10ms interval

	start := time.Now()
	for i := 0; i < 5; i++ {
		tk.Wait(context.Background())
	}
	elapsed := time.Since(start)

	// First Wait only schedules; the next four should each sleep ~10ms.
	if elapsed < 30*time.Millisecond {
		t.Errorf("5 waits at 100fps took %v, want >= 30ms", elapsed)
	}
}

func TestTickerContextCancel(t *testing.T) {
	tk := NewTicker(1) // 1s interval

	ctx, cancel := context.WithCancel(context.Background())
	tk.Wait(ctx) // schedules only
	cancel()

	start := time.Now()
	tk.Wait(ctx)
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("cancelled wait took %v", elapsed)
	}
}

func TestDeviceCaptureCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDevice(0, 85, DefaultSettings())
	defer d.Close()

	if _, err := d.Capture(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestDeviceCapture(t *testing.T) {
	d := NewDevice(0, 85, DefaultSettings())
	defer d.Close()

	frame, err := d.Capture(context.Background())
	if err != nil {
		t.Skipf("no camera available: %v", err)
	}

	if len(frame.JPEG) == 0 {
		t.Error("Expected JPEG bytes")
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		t.Errorf("bad frame size %dx%d", frame.Width, frame.Height)
	}
	if frame.Timestamp.IsZero() {
		t.Error("Expected timestamp")
	}
}

func TestDeviceCloseIdempotent(t *testing.T) {
	d := NewDevice(0, 85, DefaultSettings())
	if err := d.Close(); err != nil {
		t.Errorf("Close on unopened device failed: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	s, ok := GetPreset(Preset720p)
	if !ok {
		t.Fatal("720p preset missing")
	}
	if s.Width != 1280 || s.Height != 720 || s.FPS != 30 {
		t.Errorf("720p preset = %+v", s)
	}

	if _, ok := GetPreset("4k-cinema"); ok {
		t.Error("unknown preset should not resolve")
	}

	s, ok = GetPreset(PresetDefault)
	if !ok || s != DefaultSettings() {
		t.Errorf("default preset = %+v, ok=%v", s, ok)
	}
}

func TestPresetNamesSorted(t *testing.T) {
	names := PresetNames()
	if len(names) != len(Presets()) {
		t.Fatalf("got %d names for %d presets", len(names), len(Presets()))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Errorf("default settings invalid: %v", err)
	}
	if err := (Settings{Width: -1}).Validate(); err == nil {
		t.Error("negative width accepted")
	}
	if err := (Settings{FPS: -5}).Validate(); err == nil {
		t.Error("negative fps accepted")
	}
}

func TestSettingsString(t *testing.T) {
	if got := DefaultSettings().String(); got != "driver defaults" {
		t.Errorf("String() = %q", got)
	}
	if got := (Settings{Width: 1280, Height: 720, FPS: 30}).String(); got != "1280x720@30" {
		t.Errorf("String() = %q", got)
	}
}
