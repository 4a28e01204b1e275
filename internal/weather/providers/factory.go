package providers

import (
	"fmt"

	"github.com/i474232898/location-weather/internal/config"
	"github.com/i474232898/location-weather/internal/weather"
)

// NewWeatherProvider builds the provider selected by cfg.WeatherProvider.
func NewWeatherProvider(httpCfg HTTPClientConfig, cfg config.UpstreamConfig) (weather.Provider, error) {
	switch cfg.WeatherProvider {
	case config.ProviderOpenMeteo:
		return NewOpenMeteoProvider(httpCfg, cfg.OpenMeteoURL), nil
	case config.ProviderOpenWeather:
		return NewOpenWeatherProvider(httpCfg, cfg.OpenWeatherAPIKey), nil
	case config.ProviderWeatherAPI:
		return NewWeatherAPIProvider(httpCfg, cfg.WeatherAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", cfg.WeatherProvider)
	}
}
