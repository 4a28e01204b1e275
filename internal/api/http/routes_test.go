package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/location-weather/internal/location"
	"github.com/i474232898/location-weather/internal/logging"
	"github.com/i474232898/location-weather/internal/store"
	"github.com/i474232898/location-weather/internal/weather"
)

type fakeGeocoder struct {
	candidates []location.Candidate
	err        error
}

func (f fakeGeocoder) Search(context.Context, string) ([]location.Candidate, error) {
	return f.candidates, f.err
}

type fixedProvider struct {
	temp float64
	err  error
}

func (p fixedProvider) Name() string { return "fixed" }

func (p fixedProvider) Fetch(context.Context, weather.Coordinates) (weather.ProviderReading, error) {
	if p.err != nil {
		return weather.ProviderReading{}, p.err
	}
	return weather.ProviderReading{ProviderName: "fixed", TemperatureF: p.temp}, nil
}

type brokenStore struct{}

func (brokenStore) Upsert(context.Context, location.SavedLocation) error { return errors.New("down") }
func (brokenStore) List(context.Context) ([]location.SavedLocation, error) {
	return nil, errors.New("down")
}
func (brokenStore) DeleteAll(context.Context) (int64, error) { return 0, errors.New("down") }

var (
	parisFR = location.Candidate{Name: "Paris", Country: "France", Admin1: "Île-de-France", Latitude: 48.85341, Longitude: 2.3488}
	parisTN = location.Candidate{Name: "Paris", Country: "United States", Admin1: "Tennessee", Latitude: 36.302, Longitude: -88.32671}
)

func newTestApp(t *testing.T, geo location.Geocoder, st location.Store, prov weather.Provider) *fiber.App {
	t.Helper()

	app := fiber.New()
	logger := logging.Discard()
	locSvc := location.NewService(geo, st, logger)
	wxSvc := weather.NewService(st, prov, logger)
	if err := RegisterRoutes(app, locSvc, wxSvc, logger); err != nil {
		t.Fatalf("RegisterRoutes() error = %v", err)
	}
	return app
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, app, req)
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()
	return do(t, app, httptest.NewRequest(http.MethodGet, path, nil))
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestIndexRendersForms(t *testing.T) {
	app := newTestApp(t, fakeGeocoder{}, store.NewMemoryStore(), fixedProvider{})

	code, body := get(t, app, "/")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	for _, want := range []string{`action="/saveLocation"`, `action="/getWeather"`, `action="/removeAll"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %s", want)
		}
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, fakeGeocoder{}, store.NewMemoryStore(), fixedProvider{})

	code, body := get(t, app, "/health")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("unexpected health body %q", body)
	}
}

func TestSaveThenWeather(t *testing.T) {
	mem := store.NewMemoryStore()
	app := newTestApp(t, fakeGeocoder{candidates: []location.Candidate{parisFR}}, mem, fixedProvider{temp: 61.3})

	code, body := postForm(t, app, "/saveLocation", url.Values{
		"city":    {"Paris"},
		"country": {"France"},
	})
	if code != http.StatusOK {
		t.Fatalf("saveLocation: expected 200, got %d (%s)", code, body)
	}
	if !strings.Contains(body, "Paris") || !strings.Contains(body, "France") {
		t.Errorf("accepted view missing location: %s", body)
	}

	locs, _ := mem.List(context.Background())
	if len(locs) != 1 {
		t.Fatalf("expected 1 saved location, got %d", len(locs))
	}

	code, body = get(t, app, "/getWeather")
	if code != http.StatusOK {
		t.Fatalf("getWeather: expected 200, got %d", code)
	}
	if !strings.Contains(body, "Paris, France: 61.3 °F") {
		t.Errorf("weather view missing line: %s", body)
	}
}

func TestSaveRejected(t *testing.T) {
	tests := []struct {
		name string
		geo  fakeGeocoder
		form url.Values
	}{
		{
			name: "no geocoding results",
			geo:  fakeGeocoder{},
			form: url.Values{"city": {"Nowhere"}, "country": {"France"}},
		},
		{
			name: "country mismatch",
			geo:  fakeGeocoder{candidates: []location.Candidate{parisFR}},
			form: url.Values{"city": {"Paris"}, "country": {"Spain"}},
		},
		{
			name: "whitespace-only state",
			geo:  fakeGeocoder{candidates: []location.Candidate{parisTN}},
			form: url.Values{"city": {"Paris"}, "state": {" "}, "country": {"United States"}},
		},
		{
			name: "missing country",
			geo:  fakeGeocoder{candidates: []location.Candidate{parisFR}},
			form: url.Values{"city": {"Paris"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemoryStore()
			app := newTestApp(t, tt.geo, mem, fixedProvider{})

			code, body := postForm(t, app, "/saveLocation", tt.form)
			if code != http.StatusOK {
				t.Fatalf("expected 200, got %d", code)
			}
			if !strings.Contains(body, "No matching location was found") {
				t.Errorf("expected rejection view, got %s", body)
			}
			if locs, _ := mem.List(context.Background()); len(locs) != 0 {
				t.Errorf("expected nothing saved, got %d", len(locs))
			}
		})
	}
}

func TestSaveFailureReturns404(t *testing.T) {
	app := newTestApp(t, fakeGeocoder{err: errors.New("dns")}, store.NewMemoryStore(), fixedProvider{})

	code, body := postForm(t, app, "/saveLocation", url.Values{"city": {"Paris"}, "country": {"France"}})
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body != msgSaveFailed {
		t.Errorf("body = %q, want %q", body, msgSaveFailed)
	}
}

func TestWeatherEmpty(t *testing.T) {
	app := newTestApp(t, fakeGeocoder{}, store.NewMemoryStore(), fixedProvider{err: errors.New("unused")})

	code, body := get(t, app, "/getWeather")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(body, "No saved locations yet.") {
		t.Errorf("expected empty message, got %s", body)
	}
}

func TestWeatherFailureReturns404(t *testing.T) {
	mem := store.NewMemoryStore()
	_ = mem.Upsert(context.Background(), location.SavedLocation{Name: "Paris", Country: "France"})
	app := newTestApp(t, fakeGeocoder{}, mem, fixedProvider{err: errors.New("timeout")})

	code, body := get(t, app, "/getWeather")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body != msgWeatherFailed {
		t.Errorf("body = %q, want %q", body, msgWeatherFailed)
	}
}

func TestRemoveAll(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	for _, name := range []string{"Paris", "Oslo", "Austin"} {
		_ = mem.Upsert(ctx, location.SavedLocation{Name: name, Country: "X"})
	}
	app := newTestApp(t, fakeGeocoder{}, mem, fixedProvider{})

	code, body := postForm(t, app, "/removeAll", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(body, "Removed 3 saved location(s).") {
		t.Errorf("unexpected removal view: %s", body)
	}
	if locs, _ := mem.List(ctx); len(locs) != 0 {
		t.Errorf("expected empty store, got %d", len(locs))
	}
}

func TestRemoveAllFailureReturns404(t *testing.T) {
	app := newTestApp(t, fakeGeocoder{}, brokenStore{}, fixedProvider{})

	code, body := postForm(t, app, "/removeAll", nil)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body != msgClearFailed {
		t.Errorf("body = %q, want %q", body, msgClearFailed)
	}
}
