package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/i474232898/location-weather/internal/config"
	"github.com/i474232898/location-weather/internal/weather"
)

const (
	mqttConnectTimeout    = 10 * time.Second
	mqttPublishTimeout    = 5 * time.Second
	mqttDisconnectQuiesce = 250 // milliseconds
	mqttKeepAlive         = 60 * time.Second
)

// MQTTSink publishes each reading as JSON to <prefix>/<country>/<state>/<name>,
// leaving out the state segment when the location has none.
type MQTTSink struct {
	client pahomqtt.Client
	prefix string
	qos    byte
}

// ConnectMQTT connects to the broker. It returns ErrDisabled when MQTT is
// switched off.
func ConnectMQTT(cfg config.MQTTConfig) (*MQTTSink, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := pahomqtt.NewClient(buildClientOptions(cfg))
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("%w: mqtt timeout after %v", ErrConnectionFailed, mqttConnectTimeout)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return &MQTTSink{
		client: client,
		prefix: strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:    byte(cfg.QoS), // #nosec G115 -- validated to 0..2
	}, nil
}

func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(mqttConnectTimeout)
	opts.SetKeepAlive(mqttKeepAlive)
	return opts
}

// Name identifies the sink in logs.
func (s *MQTTSink) Name() string { return "mqtt" }

// Write publishes every reading and waits for each acknowledgement.
func (s *MQTTSink) Write(ctx context.Context, readings []weather.Reading) error {
	for _, r := range readings {
		if err := ctx.Err(); err != nil {
			return err
		}

		payload, err := readingPayload(r)
		if err != nil {
			return err
		}

		token := s.client.Publish(topicFor(s.prefix, r), s.qos, false, payload)
		if !token.WaitTimeout(mqttPublishTimeout) {
			return fmt.Errorf("%w: timeout publishing %s", ErrPublishFailed, r.Location.Key())
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("%w: %w", ErrPublishFailed, err)
		}
	}
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	if s.client != nil {
		s.client.Disconnect(mqttDisconnectQuiesce)
	}
	return nil
}

type readingMessage struct {
	Name         string    `json:"name"`
	State        string    `json:"state,omitempty"`
	Country      string    `json:"country"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	TemperatureF float64   `json:"temperatureF"`
	Provider     string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}

func readingPayload(r weather.Reading) ([]byte, error) {
	b, err := json.Marshal(readingMessage{
		Name:         r.Location.Name,
		State:        r.Location.State,
		Country:      r.Location.Country,
		Latitude:     r.Location.Latitude,
		Longitude:    r.Location.Longitude,
		TemperatureF: r.TemperatureF,
		Provider:     r.Provider,
		Timestamp:    r.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding reading: %w", err)
	}
	return b, nil
}

var topicReplacer = strings.NewReplacer(" ", "-", "/", "-", "+", "", "#", "")

// topicFor builds <prefix>/<country>/<state?>/<name>, lower-cased with MQTT
// wildcard characters removed.
func topicFor(prefix string, r weather.Reading) string {
	parts := []string{prefix, topicSegment(r.Location.Country)}
	if r.Location.State != "" {
		parts = append(parts, topicSegment(r.Location.State))
	}
	parts = append(parts, topicSegment(r.Location.Name))
	return strings.Join(parts, "/")
}

func topicSegment(s string) string {
	return topicReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}
