// moodtail follows the emotion events a facemood instance publishes
// over MQTT and prints them to stdout, one line per event.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/okabe-dev/facemood/internal/config"
	"github.com/okabe-dev/facemood/internal/log"
	"github.com/okabe-dev/facemood/internal/mqttclient"
	"github.com/okabe-dev/facemood/pkg/eventlog"
)

func main() {
	raw := flag.Bool("raw", false, "print raw JSON payloads instead of formatted lines")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Init("info")
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	if !cfg.MQTTEnabled() {
		log.Error("MQTT_HOST not set, nothing to follow")
		os.Exit(1)
	}

	client, err := mqttclient.NewClient(mqttclient.Config{
		Host:     cfg.MQTTHost,
		Port:     cfg.MQTTPort,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
		// Unique per run so parallel followers do not kick each other
		// off the broker.
		ClientID: "moodtail-" + uuid.NewString()[:8],
	})
	if err != nil {
		log.Error("mqtt connect failed", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	err = client.Subscribe(cfg.MQTTTopic, 0, func(topic string, payload []byte) {
		if *raw {
			fmt.Println(string(payload))
			return
		}

		var evt eventlog.Event
		if err := json.Unmarshal(payload, &evt); err != nil {
			log.Warn("undecodable event", "topic", topic, "error", err)
			return
		}
		sec := int64(evt.TS)
		nsec := int64((evt.TS - float64(sec)) * float64(time.Second))
		when := time.Unix(sec, nsec).Format("15:04:05")
		fmt.Printf("%s  person %d: %s (%.2f)\n", when, evt.PersonID, evt.Emotion, evt.Confidence)
	})
	if err != nil {
		log.Error("mqtt subscribe failed", "topic", cfg.MQTTTopic, "error", err)
		os.Exit(1)
	}
	log.Info("following events", "topic", cfg.MQTTTopic)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()
}
