// Package sinks publishes sampled temperature readings to time-series and
// messaging backends.
package sinks

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/i474232898/location-weather/internal/config"
	"github.com/i474232898/location-weather/internal/weather"
)

const (
	influxConnectTimeout = 10 * time.Second
	measurementTemp      = "temperature"
)

// InfluxSink writes one "temperature" point per reading using the
// non-blocking write API.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI

	mu      sync.RWMutex
	onError func(err error)
}

// ConnectInflux pings the server and prepares the write API. It returns
// ErrDisabled when InfluxDB is switched off.
func ConnectInflux(cfg config.InfluxDBConfig) (*InfluxSink, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), influxConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: influxdb ping: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: influxdb not healthy", ErrConnectionFailed)
	}

	s := &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
	}
	go s.handleWriteErrors(s.writeAPI.Errors())

	return s, nil
}

// Name identifies the sink in logs.
func (s *InfluxSink) Name() string { return "influxdb" }

// SetOnError registers a callback for asynchronous write failures.
func (s *InfluxSink) SetOnError(callback func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = callback
}

func (s *InfluxSink) handleWriteErrors(errorsCh <-chan error) {
	for err := range errorsCh {
		s.mu.RLock()
		callback := s.onError
		s.mu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

// Write queues the readings. Delivery errors surface through SetOnError.
func (s *InfluxSink) Write(ctx context.Context, readings []weather.Reading) error {
	for _, r := range readings {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.writeAPI.WritePoint(temperaturePoint(r))
	}
	return nil
}

// Close flushes pending points and closes the client.
func (s *InfluxSink) Close() error {
	if s.client == nil {
		return nil
	}
	s.writeAPI.Flush()
	s.client.Close()
	return nil
}

func temperaturePoint(r weather.Reading) *write.Point {
	tags := map[string]string{
		"location": r.Location.Name,
		"country":  r.Location.Country,
		"provider": r.Provider,
	}
	if r.Location.State != "" {
		tags["state"] = r.Location.State
	}

	return write.NewPoint(measurementTemp, tags, map[string]any{
		"fahrenheit": r.TemperatureF,
		"latitude":   r.Location.Latitude,
		"longitude":  r.Location.Longitude,
	}, r.Timestamp)
}
