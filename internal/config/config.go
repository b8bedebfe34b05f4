// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the full service configuration.
type Config struct {
	CameraIndex  int
	CameraPreset string // capture mode name, resolved via pkg/camera presets
	Port         int
	MaxFPS       int
	JPEGQuality  int

	MatchDistance  float64
	MaxDisappeared int
	EmotionEvery   int

	Detector     string // "yunet" or "haar"
	FaceModel    string
	FaceCascade  string
	EmotionModel string

	EventsLog string
	EventRing int

	StaticDir string
	LogLevel  string

	MQTTHost     string // empty disables MQTT publishing
	MQTTPort     int
	MQTTUsername string
	MQTTPassword string
	MQTTTopic    string
}

// FromEnv loads a .env file when present, then reads the environment,
// falling back to defaults for anything unset.
func FromEnv() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		CameraIndex:  getenvInt("CAMERA_INDEX", 0),
		CameraPreset: getenv("CAMERA_PRESET", "default"),
		Port:         getenvInt("PORT", 8000),
		MaxFPS:       getenvInt("MAX_FPS", 15),
		JPEGQuality:  getenvInt("JPEG_QUALITY", 85),

		MatchDistance:  getenvFloat("MATCH_DISTANCE", 80),
		MaxDisappeared: getenvInt("MAX_DISAPPEARED", 15),
		EmotionEvery:   getenvInt("EMOTION_EVERY", 5),

		Detector:     getenv("DETECTOR", "yunet"),
		FaceModel:    getenv("FACE_MODEL", "models/face_detection_yunet.onnx"),
		FaceCascade:  getenv("FACE_CASCADE", "models/haarcascade_frontalface_default.xml"),
		EmotionModel: getenv("EMOTION_MODEL", "models/emotion-ferplus.onnx"),

		EventsLog: getenv("EMOTIONS_LOG", "logs/emotions.jsonl"),
		EventRing: getenvInt("EVENT_RING", 100),

		StaticDir: getenv("STATIC_DIR", "web"),
		LogLevel:  getenv("LOG_LEVEL", "info"),

		MQTTHost:     os.Getenv("MQTT_HOST"),
		MQTTPort:     getenvInt("MQTT_PORT", 1883),
		MQTTUsername: os.Getenv("MQTT_USERNAME"),
		MQTTPassword: os.Getenv("MQTT_PASSWORD"),
		MQTTTopic:    getenv("MQTT_TOPIC", "facemood/emotions"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	if c.CameraIndex < 0 {
		return fmt.Errorf("camera index %d out of range", c.CameraIndex)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality %d out of range", c.JPEGQuality)
	}
	if c.MatchDistance <= 0 {
		return fmt.Errorf("match distance must be positive, got %v", c.MatchDistance)
	}
	if c.MaxDisappeared < 0 {
		return fmt.Errorf("max disappeared must not be negative, got %d", c.MaxDisappeared)
	}
	if c.EmotionEvery < 1 {
		return fmt.Errorf("emotion interval must be at least 1, got %d", c.EmotionEvery)
	}
	switch c.Detector {
	case "yunet", "haar":
	default:
		return fmt.Errorf("unknown detector backend %q", c.Detector)
	}
	return nil
}

// MQTTEnabled reports whether event publishing to a broker is
// configured.
func (c *Config) MQTTEnabled() bool { return c.MQTTHost != "" }

// Addr returns the HTTP listen address.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvInt returns the parsed value, or the default when unset or not
// an integer.
func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
