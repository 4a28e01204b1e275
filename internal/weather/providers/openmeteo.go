package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/location-weather/internal/weather"
)

// openMeteoTimeLayout is Open-Meteo's ISO 8601 form without seconds, in GMT.
const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(httpCfg HTTPClientConfig, baseURL string) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: httpCfg,
		circuit: newCircuitBreaker("openmeteo", httpCfg),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Fetch requests the current 2m temperature in Fahrenheit.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, at weather.Coordinates) (weather.ProviderReading, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", formatCoord(at.Latitude))
		values.Set("longitude", formatCoord(at.Longitude))
		values.Set("current", "temperature_2m")
		values.Set("temperature_unit", "fahrenheit")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.ProviderReading{}, fmt.Errorf("%s: %w", p.name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Current *struct {
			Time          string   `json:"time"`
			Temperature2m *float64 `json:"temperature_2m"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ProviderReading{}, fmt.Errorf("%s: %w: %v", p.name, ErrMalformedResponse, err)
	}
	if payload.Current == nil || payload.Current.Temperature2m == nil {
		return weather.ProviderReading{}, fmt.Errorf("%s: %w: missing current.temperature_2m", p.name, ErrMalformedResponse)
	}

	ts, err := time.Parse(openMeteoTimeLayout, payload.Current.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts.UTC(),
		TemperatureF: *payload.Current.Temperature2m,
	}, nil
}
