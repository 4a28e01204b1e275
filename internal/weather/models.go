package weather

import (
	"fmt"
	"strconv"
	"time"

	"github.com/i474232898/location-weather/internal/location"
)

// Coordinates is the lookup key for a weather request.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Reading is the current temperature observed for one saved location.
type Reading struct {
	Location     location.SavedLocation `json:"location"`
	Provider     string                 `json:"provider"`
	Timestamp    time.Time              `json:"timestamp"` // always UTC
	TemperatureF float64                `json:"temperatureF"`
}

// Line renders the reading for display, naming the state when the location
// has one and the country otherwise:
//
//	Austin, Texas: 72 °F
//	Paris, France: 61.3 °F
func (r Reading) Line() string {
	return fmt.Sprintf("%s, %s: %s °F", r.Location.Name, r.Location.Region(), FormatTemperature(r.TemperatureF))
}

// FormatTemperature prints t in its shortest exact decimal form (72, 71.6).
func FormatTemperature(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// Report holds one reading per saved location, in store order.
type Report struct {
	Readings []Reading `json:"readings"`
}

// Empty reports whether there were no saved locations.
func (r Report) Empty() bool {
	return len(r.Readings) == 0
}

// Lines returns the display line of every reading, in order.
func (r Report) Lines() []string {
	lines := make([]string, 0, len(r.Readings))
	for _, rd := range r.Readings {
		lines = append(lines, rd.Line())
	}
	return lines
}
