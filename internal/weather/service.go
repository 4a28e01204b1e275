package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/location-weather/internal/location"
	"github.com/i474232898/location-weather/internal/logging"
)

// Service builds temperature reports for every saved location.
type Service struct {
	locations LocationLister
	provider  Provider
	policy    AggregationPolicy
	logger    *logging.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithPolicy replaces the default AllOrNothing aggregation policy.
func WithPolicy(p AggregationPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// NewService creates a new Service.
func NewService(locations LocationLister, provider Provider, logger *logging.Logger, opts ...Option) *Service {
	s := &Service{
		locations: locations,
		provider:  provider,
		policy:    AllOrNothing{},
		logger:    logger.With("component", "weather"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report reads all saved locations and looks up the current temperature of
// each one. The report keeps store order. With no saved locations the report
// is empty and no lookup is made.
func (s *Service) Report(ctx context.Context) (Report, error) {
	if s.provider == nil {
		return Report{}, ErrNoProvider
	}

	locs, err := s.locations.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrListLocations, err)
	}
	if len(locs) == 0 {
		return Report{}, nil
	}

	s.logger.Debug("fetching current temperatures",
		"locations", len(locs), "provider", s.provider.Name(), "policy", s.policy.Name())

	readings, err := s.policy.Collect(ctx, locs, s.lookup)
	if err != nil {
		return Report{}, err
	}
	return Report{Readings: readings}, nil
}

func (s *Service) lookup(ctx context.Context, loc location.SavedLocation) (Reading, error) {
	pr, err := s.provider.Fetch(ctx, Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude})
	if err != nil {
		return Reading{}, err
	}

	ts := pr.Timestamp.UTC()
	if pr.Timestamp.IsZero() {
		ts = time.Now().UTC()
	}
	return Reading{
		Location:     loc,
		Provider:     pr.ProviderName,
		Timestamp:    ts,
		TemperatureF: pr.TemperatureF,
	}, nil
}
