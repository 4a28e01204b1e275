package location

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/location-weather/internal/logging"
)

// Service resolves, saves and clears locations.
type Service struct {
	geocoder Geocoder
	store    Store
	logger   *logging.Logger
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(geocoder Geocoder, store Store, logger *logging.Logger) *Service {
	return &Service{
		geocoder: geocoder,
		store:    store,
		logger:   logger.With("component", "location"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Save geocodes req.City, picks the matching candidate and upserts it.
//
// The stored identity uses the candidate's canonical name together with the
// requested state and country, not the candidate's Admin1 and Country.
// No match is reported as OutcomeRejected with a nil error.
func (s *Service) Save(ctx context.Context, req SaveRequest) (SaveResult, error) {
	candidates, err := s.geocoder.Search(ctx, req.City)
	if err != nil {
		return SaveResult{}, fmt.Errorf("%w: %w", ErrGeocoding, err)
	}
	if candidates == nil {
		s.logger.Debug("geocoder returned no results", "city", req.City)
		return SaveResult{Outcome: OutcomeRejected}, nil
	}

	match, ok := Match(candidates, req.State, req.Country)
	if !ok {
		s.logger.Debug("no candidate matched",
			"city", req.City, "state", req.State, "country", req.Country,
			"candidates", len(candidates))
		return SaveResult{Outcome: OutcomeRejected}, nil
	}

	loc := SavedLocation{
		Name:      match.Name,
		State:     req.State,
		Country:   req.Country,
		Latitude:  match.Latitude,
		Longitude: match.Longitude,
		UpdatedAt: s.now(),
	}
	if err := s.store.Upsert(ctx, loc); err != nil {
		return SaveResult{}, fmt.Errorf("%w: upsert %s: %w", ErrStore, loc.Key(), err)
	}

	s.logger.Info("location saved",
		"name", loc.Name, "state", loc.State, "country", loc.Country,
		"latitude", loc.Latitude, "longitude", loc.Longitude)
	return SaveResult{Outcome: OutcomeAccepted, Location: loc}, nil
}

// ClearAll deletes every saved location and returns how many were removed.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: delete all: %w", ErrStore, err)
	}
	s.logger.Info("locations cleared", "deleted", n)
	return n, nil
}

// List returns every saved location in store order.
func (s *Service) List(ctx context.Context) ([]SavedLocation, error) {
	locs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrStore, err)
	}
	return locs, nil
}
