package eventlog

import (
	"encoding/json"
	"fmt"

	"github.com/okabe-dev/facemood/internal/mqttclient"
)

// MQTTSink publishes each event as JSON to a broker topic. It owns the
// client and disconnects it on Close.
type MQTTSink struct {
	client *mqttclient.Client
	topic  string
}

// NewMQTTSink wraps a connected client.
func NewMQTTSink(client *mqttclient.Client, topic string) *MQTTSink {
	return &MQTTSink{client: client, topic: topic}
}

// Append publishes the event at QoS 0.
func (s *MQTTSink) Append(e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := s.client.Publish(s.topic, 0, false, payload); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.client.Close()
	return nil
}
