package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/location-weather/internal/api/http"
	"github.com/i474232898/location-weather/internal/config"
	"github.com/i474232898/location-weather/internal/console"
	"github.com/i474232898/location-weather/internal/location"
	"github.com/i474232898/location-weather/internal/logging"
	"github.com/i474232898/location-weather/internal/scheduler"
	"github.com/i474232898/location-weather/internal/sinks"
	"github.com/i474232898/location-weather/internal/store"
	"github.com/i474232898/location-weather/internal/weather"
	"github.com/i474232898/location-weather/internal/weather/providers"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	os.Exit(run(os.Args[1:]))
}

type cliArgs struct {
	configPath string
	port       string
}

// parseArgs handles `location-weather [-config path] [port]`.
func parseArgs(args []string, stderr io.Writer) (cliArgs, error) {
	fs := flag.NewFlagSet("location-weather", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: location-weather [-config path] [port]")
		fs.PrintDefaults()
	}

	var out cliArgs
	fs.StringVar(&out.configPath, "config", os.Getenv("CONFIG_FILE"), "path to an optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return cliArgs{}, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		out.port = fs.Arg(0)
		if n, err := strconv.Atoi(out.port); err != nil || n < 0 || n > 65535 {
			return cliArgs{}, fmt.Errorf("invalid port %q", out.port)
		}
	default:
		fs.Usage()
		return cliArgs{}, errors.New("too many arguments")
	}
	return out, nil
}

func run(args []string) int {
	bootLog := logging.Default()

	cli, err := parseArgs(args, os.Stderr)
	if err != nil {
		bootLog.Error("invalid arguments", "error", err)
		return 1
	}

	cfg, err := config.Load(cli.configPath)
	if err != nil {
		bootLog.Error("failed to load config", "error", err)
		return 1
	}
	if cli.port != "" {
		cfg.Port = cli.port
	}

	log := logging.New(cfg.Logging, version)

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	st, err := store.Open(startCtx, cfg.Store)
	cancelStart()
	if err != nil {
		log.Error("failed to connect to store", "driver", cfg.Store.Driver, "error", err)
		return 1
	}
	defer closeStore(st, log)
	if sq, ok := st.(*store.SQLiteStore); ok {
		log.Info("store ready", "driver", cfg.Store.Driver, "path", sq.Path())
	} else {
		log.Info("store ready", "driver", cfg.Store.Driver)
	}

	// Shared HTTP client for outbound geocoding and weather calls.
	httpClient := &http.Client{Timeout: cfg.Upstream.HTTPTimeout}
	httpCfg := providers.NewHTTPClientConfig(httpClient, cfg.Upstream.MaxRetries, cfg.Upstream.CircuitBreaker)

	geocoder := providers.NewOpenMeteoGeocoder(httpCfg, cfg.Upstream.GeocodingURL)
	provider, err := providers.NewWeatherProvider(httpCfg, cfg.Upstream)
	if err != nil {
		log.Error("failed to create weather provider", "error", err)
		return 1
	}

	locations := location.NewService(geocoder, st, log)
	reports := weather.NewService(st, provider, log)

	sampleSinks, closeSinks := connectSinks(cfg, log)
	defer closeSinks()

	sched := scheduler.New(reports, cfg.SampleInterval, log, sampleSinks...)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		return 1
	}
	defer sched.Stop()

	app := newApp()
	if err := httpapi.RegisterRoutes(app, locations, reports, log); err != nil {
		log.Error("failed to register routes", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Listen(":" + cfg.Port)
	}()
	log.Info("server is running", "url", "http://localhost:"+cfg.Port, "provider", provider.Name())

	go func() {
		if console.WaitForStop(os.Stdin, os.Stdout) {
			stop()
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			log.Error("fiber server stopped", "error", err)
			return 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	return 0
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "location-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	return app
}

// connectSinks connects every enabled sink. A sink that fails to connect is
// logged and skipped so the web app still starts.
func connectSinks(cfg *config.AppConfig, log *logging.Logger) ([]scheduler.Sink, func()) {
	var (
		out     []scheduler.Sink
		closers []func() error
	)

	influx, err := sinks.ConnectInflux(cfg.InfluxDB)
	switch {
	case err == nil:
		influx.SetOnError(func(err error) {
			log.Warn("influxdb write failed", "error", err)
		})
		out = append(out, influx)
		closers = append(closers, influx.Close)
	case !errors.Is(err, sinks.ErrDisabled):
		log.Warn("influxdb sink unavailable", "error", err)
	}

	broker, err := sinks.ConnectMQTT(cfg.MQTT)
	switch {
	case err == nil:
		out = append(out, broker)
		closers = append(closers, broker.Close)
	case !errors.Is(err, sinks.ErrDisabled):
		log.Warn("mqtt sink unavailable", "error", err)
	}

	return out, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("error closing sink", "error", err)
			}
		}
	}
}

func closeStore(st store.Closer, log *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := st.Close(ctx); err != nil {
		log.Error("error closing store", "error", err)
	}
}
