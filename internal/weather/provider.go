package weather

import (
	"context"
	"time"

	"github.com/i474232898/location-weather/internal/location"
)

// ProviderReading is a single provider's answer for one coordinate pair.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time
	TemperatureF float64
}

// Provider abstracts a weather data source (e.g. Open-Meteo, OpenWeatherMap, WeatherAPI).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, at Coordinates) (ProviderReading, error)
}

// LocationLister supplies the saved locations to report on.
type LocationLister interface {
	List(ctx context.Context) ([]location.SavedLocation, error)
}
