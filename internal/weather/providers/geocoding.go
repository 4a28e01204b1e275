package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/location-weather/internal/location"
)

// geocodingResultCount is how many candidates are requested per search.
const geocodingResultCount = 10

// OpenMeteoGeocoder implements location.Geocoder for the Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(httpCfg HTTPClientConfig, baseURL string) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		name:    "openmeteo-geocoding",
		baseURL: baseURL,
		httpCfg: httpCfg,
		circuit: newCircuitBreaker("openmeteo-geocoding", httpCfg),
	}
}

// Search returns the provider's candidates in ranked order. A response
// without a results field yields a nil slice.
func (g *OpenMeteoGeocoder) Search(ctx context.Context, name string) ([]location.Candidate, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", name)
		values.Set("count", fmt.Sprint(geocodingResultCount))
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Results []location.Candidate `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", g.name, ErrMalformedResponse, err)
	}

	return payload.Results, nil
}
