package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/location-weather/internal/location"
	"github.com/i474232898/location-weather/internal/logging"
)

type staticLister struct {
	locs []location.SavedLocation
	err  error
}

func (l staticLister) List(context.Context) ([]location.SavedLocation, error) {
	return l.locs, l.err
}

// tempProvider answers with a temperature per coordinate pair.
type tempProvider struct {
	temps map[Coordinates]float64
	fail  map[Coordinates]error
	delay map[Coordinates]time.Duration

	mu    sync.Mutex
	calls int
}

func (p *tempProvider) Name() string { return "fake" }

func (p *tempProvider) Fetch(ctx context.Context, at Coordinates) (ProviderReading, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if d := p.delay[at]; d > 0 {
		time.Sleep(d)
	}
	if err := p.fail[at]; err != nil {
		return ProviderReading{}, err
	}
	t, ok := p.temps[at]
	if !ok {
		return ProviderReading{}, fmt.Errorf("no temperature for %v", at)
	}
	return ProviderReading{ProviderName: "fake", TemperatureF: t}, nil
}

var (
	austin = location.SavedLocation{Name: "Austin", State: "Texas", Country: "United States", Latitude: 30.27, Longitude: -97.74}
	paris  = location.SavedLocation{Name: "Paris", Country: "France", Latitude: 48.85, Longitude: 2.35}
	oslo   = location.SavedLocation{Name: "Oslo", Country: "Norway", Latitude: 59.91, Longitude: 10.75}
)

func coords(l location.SavedLocation) Coordinates {
	return Coordinates{Latitude: l.Latitude, Longitude: l.Longitude}
}

func TestReport_FormatsLinesInStoreOrder(t *testing.T) {
	provider := &tempProvider{
		temps: map[Coordinates]float64{
			coords(austin): 72,
			coords(paris):  61.3,
			coords(oslo):   40,
		},
		// The first location answers last; order must still follow the store.
		delay: map[Coordinates]time.Duration{coords(austin): 30 * time.Millisecond},
	}
	svc := NewService(staticLister{locs: []location.SavedLocation{austin, paris, oslo}}, provider, logging.Discard())

	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	want := []string{
		"Austin, Texas: 72 °F",
		"Paris, France: 61.3 °F",
		"Oslo, Norway: 40 °F",
	}
	got := report.Lines()
	if len(got) != len(want) {
		t.Fatalf("Lines() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Lines()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	for _, r := range report.Readings {
		if r.Timestamp.IsZero() {
			t.Errorf("reading for %s has zero timestamp", r.Location.Name)
		}
	}
}

func TestReport_EmptyStoreMakesNoLookups(t *testing.T) {
	provider := &tempProvider{}
	svc := NewService(staticLister{}, provider, logging.Discard())

	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !report.Empty() {
		t.Errorf("Empty() = false, want true")
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times, want 0", provider.calls)
	}
}

func TestReport_OneFailureFailsAll(t *testing.T) {
	cause := errors.New("upstream 503")
	provider := &tempProvider{
		temps: map[Coordinates]float64{coords(austin): 72, coords(oslo): 40},
		fail:  map[Coordinates]error{coords(paris): cause},
	}
	svc := NewService(staticLister{locs: []location.SavedLocation{austin, paris, oslo}}, provider, logging.Discard())

	report, err := svc.Report(context.Background())
	if !errors.Is(err, ErrLookup) || !errors.Is(err, cause) {
		t.Fatalf("Report() error = %v, want ErrLookup wrapping cause", err)
	}
	if !report.Empty() {
		t.Errorf("failed report carries %d readings, want none", len(report.Readings))
	}
	if provider.calls != 3 {
		t.Errorf("provider called %d times, want every lookup to settle (3)", provider.calls)
	}
}

func TestReport_ListError(t *testing.T) {
	svc := NewService(staticLister{err: errors.New("store down")}, &tempProvider{}, logging.Discard())
	if _, err := svc.Report(context.Background()); !errors.Is(err, ErrListLocations) {
		t.Errorf("Report() error = %v, want ErrListLocations", err)
	}
}

func TestReport_NoProvider(t *testing.T) {
	svc := NewService(staticLister{locs: []location.SavedLocation{paris}}, nil, logging.Discard())
	if _, err := svc.Report(context.Background()); !errors.Is(err, ErrNoProvider) {
		t.Errorf("Report() error = %v, want ErrNoProvider", err)
	}
}

// barrierProvider only answers once n lookups are in flight at the same time.
type barrierProvider struct {
	n       int32
	arrived atomic.Int32
	release chan struct{}
	once    sync.Once
}

func (p *barrierProvider) Name() string { return "barrier" }

func (p *barrierProvider) Fetch(ctx context.Context, _ Coordinates) (ProviderReading, error) {
	if p.arrived.Add(1) == p.n {
		p.once.Do(func() { close(p.release) })
	}
	select {
	case <-p.release:
		return ProviderReading{TemperatureF: 50}, nil
	case <-time.After(2 * time.Second):
		return ProviderReading{}, errors.New("lookups were not issued concurrently")
	}
}

func TestAllOrNothing_IssuesLookupsConcurrently(t *testing.T) {
	locs := []location.SavedLocation{austin, paris, oslo}
	provider := &barrierProvider{n: int32(len(locs)), release: make(chan struct{})}
	svc := NewService(staticLister{locs: locs}, provider, logging.Discard())

	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(report.Readings) != len(locs) {
		t.Errorf("got %d readings, want %d", len(report.Readings), len(locs))
	}
}

type firstOnly struct{}

func (firstOnly) Name() string { return "first-only" }

func (firstOnly) Collect(ctx context.Context, locs []location.SavedLocation, lookup LookupFunc) ([]Reading, error) {
	r, err := lookup(ctx, locs[0])
	if err != nil {
		return nil, err
	}
	return []Reading{r}, nil
}

func TestWithPolicy(t *testing.T) {
	provider := &tempProvider{temps: map[Coordinates]float64{coords(paris): 55}}
	svc := NewService(staticLister{locs: []location.SavedLocation{paris, oslo}}, provider, logging.Discard(), WithPolicy(firstOnly{}))

	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if got := report.Lines(); len(got) != 1 || got[0] != "Paris, France: 55 °F" {
		t.Errorf("Lines() = %v", got)
	}
}

func TestFormatTemperature(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{72, "72"},
		{71.6, "71.6"},
		{-3.25, "-3.25"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := FormatTemperature(tt.in); got != tt.want {
			t.Errorf("FormatTemperature(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
