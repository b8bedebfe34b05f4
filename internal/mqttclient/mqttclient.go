// Package mqttclient wraps the paho MQTT client with the connection
// defaults the service uses.
package mqttclient

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/okabe-dev/facemood/internal/log"
)

// Config identifies the broker to publish to.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	ClientID string
}

// Client is a connected MQTT publisher.
type Client struct {
	client mqtt.Client
}

// NewClient connects to the broker. The connection auto-reconnects; a
// broker that is down at startup is a startup error, not a retry loop.
func NewClient(cfg Config) (*Client, error) {
	broker := fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetKeepAlive(30 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.OnConnect = func(mqtt.Client) {
		log.Info("mqtt connected", "broker", broker, "client_id", cfg.ClientID)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost, auto-reconnecting", "broker", broker, "error", err)
	}

	cli := mqtt.NewClient(opts)
	token := cli.Connect()
	if ok := token.WaitTimeout(10 * time.Second); !ok {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return &Client{client: cli}, nil
}

// Publish sends payload to topic and waits briefly for the broker ack.
func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if ok := token.WaitTimeout(2 * time.Second); !ok {
		return fmt.Errorf("mqtt publish timeout")
	}
	return token.Error()
}

// Subscribe registers handler for every message published to topic and
// waits for the broker to confirm the subscription.
func (c *Client) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	token := c.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if ok := token.WaitTimeout(5 * time.Second); !ok {
		return fmt.Errorf("mqtt subscribe timeout")
	}
	return token.Error()
}

// Connected reports whether the broker connection is up.
func (c *Client) Connected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Close disconnects from the broker with a short grace period.
func (c *Client) Close() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}
