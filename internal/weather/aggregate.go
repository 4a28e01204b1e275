package weather

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/i474232898/location-weather/internal/location"
)

// LookupFunc fetches the reading for a single saved location.
type LookupFunc func(ctx context.Context, loc location.SavedLocation) (Reading, error)

// AggregationPolicy decides how per-location lookups are combined into a report.
type AggregationPolicy interface {
	Name() string
	Collect(ctx context.Context, locs []location.SavedLocation, lookup LookupFunc) ([]Reading, error)
}

// AllOrNothing issues every lookup concurrently with no bound on fan-out and
// waits for all of them to settle. A single failed lookup fails the whole
// collection; readings keep the order of locs.
type AllOrNothing struct{}

// Name implements AggregationPolicy.
func (AllOrNothing) Name() string { return "all-or-nothing" }

// Collect implements AggregationPolicy.
func (AllOrNothing) Collect(ctx context.Context, locs []location.SavedLocation, lookup LookupFunc) ([]Reading, error) {
	readings := make([]Reading, len(locs))

	// A plain Group: siblings are not cancelled when one fails.
	var g errgroup.Group
	for i, loc := range locs {
		g.Go(func() error {
			r, err := lookup(ctx, loc)
			if err != nil {
				return fmt.Errorf("%w for %s: %w", ErrLookup, loc.Key(), err)
			}
			readings[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return readings, nil
}
