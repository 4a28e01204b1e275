package httpapi

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/location-weather/internal/location"
	"github.com/i474232898/location-weather/internal/logging"
	"github.com/i474232898/location-weather/internal/weather"
)

var validate = validator.New()

// failureStatus is returned with a plain-text message whenever a flow fails
// on an upstream or store error.
const failureStatus = fiber.StatusNotFound

// Failure messages.
const (
	msgSaveFailed    = "Failed to save location."
	msgWeatherFailed = "Failed to retrieve weather."
	msgClearFailed   = "Error clearing locations"
)

// LocationService saves and clears locations.
type LocationService interface {
	Save(ctx context.Context, req location.SaveRequest) (location.SaveResult, error)
	ClearAll(ctx context.Context) (int64, error)
}

// WeatherReporter builds the current-temperature report.
type WeatherReporter interface {
	Report(ctx context.Context) (weather.Report, error)
}

type handlers struct {
	locations LocationService
	reports   WeatherReporter
	views     *views
	logger    *logging.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, locations LocationService, reports WeatherReporter, logger *logging.Logger) error {
	v, err := loadViews()
	if err != nil {
		return err
	}

	h := &handlers{
		locations: locations,
		reports:   reports,
		views:     v,
		logger:    logger.With("component", "http"),
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "location-weather",
		})
	})

	app.Get("/", h.index)
	app.Post("/saveLocation", h.saveLocation)
	app.Get("/getWeather", h.getWeather)
	app.Post("/removeAll", h.removeAll)

	return nil
}

func (h *handlers) index(c *fiber.Ctx) error {
	return h.views.render(c, viewIndex, nil)
}

func (h *handlers) saveLocation(c *fiber.Ctx) error {
	var req location.SaveRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("unparseable save form", "error", err)
		return h.views.render(c, viewRejected, nil)
	}
	req = req.Normalize()

	// A form without city or country can never match a candidate.
	if err := validate.Struct(req); err != nil {
		h.logger.Debug("invalid save form", "error", err)
		return h.views.render(c, viewRejected, nil)
	}

	res, err := h.locations.Save(c.UserContext(), req)
	if err != nil {
		h.logger.Error("error saving location",
			"city", req.City, "state", req.State, "country", req.Country, "error", err)
		return c.Status(failureStatus).SendString(msgSaveFailed)
	}

	if res.Outcome == location.OutcomeRejected {
		return h.views.render(c, viewRejected, nil)
	}
	return h.views.render(c, viewAccepted, res.Location)
}

func (h *handlers) getWeather(c *fiber.Ctx) error {
	report, err := h.reports.Report(c.UserContext())
	if err != nil {
		h.logger.Error("error fetching weather", "error", err)
		return c.Status(failureStatus).SendString(msgWeatherFailed)
	}

	return h.views.render(c, viewWeather, weatherView{
		Empty: report.Empty(),
		Lines: report.Lines(),
	})
}

func (h *handlers) removeAll(c *fiber.Ctx) error {
	n, err := h.locations.ClearAll(c.UserContext())
	if err != nil {
		h.logger.Error("error clearing locations", "error", err)
		return c.Status(failureStatus).SendString(msgClearFailed)
	}
	return h.views.render(c, viewRemove, removeView{Deleted: n})
}
