package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Weather providers.
const (
	ProviderOpenMeteo   = "openmeteo"
	ProviderOpenWeather = "openweather"
	ProviderWeatherAPI  = "weatherapi"
)

var validate = validator.New()

// AppConfig is the root configuration. Values come from defaults, an optional
// YAML file, a .env file and the process environment, in that order.
type AppConfig struct {
	Port     string         `yaml:"port" validate:"required,numeric"`
	Logging  LoggingConfig  `yaml:"logging"`
	Store    StoreConfig    `yaml:"store"`
	Upstream UpstreamConfig `yaml:"upstream"`

	// SampleInterval controls how often the sampler reports temperatures
	// for every saved location. Zero disables the sampler.
	SampleInterval time.Duration `yaml:"sample_interval" validate:"gte=0"`

	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
	Output string `yaml:"output" validate:"omitempty,oneof=stdout stderr"`
}

// StoreConfig selects and configures the saved-location store.
type StoreConfig struct {
	Driver          string `yaml:"driver" validate:"required,oneof=mongo sqlite memory"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
	SQLitePath      string `yaml:"sqlite_path"`
}

// UpstreamConfig configures the outbound geocoding and weather calls.
type UpstreamConfig struct {
	GeocodingURL      string `yaml:"geocoding_url" validate:"required,url"`
	WeatherProvider   string `yaml:"weather_provider" validate:"required,oneof=openmeteo openweather weatherapi"`
	OpenMeteoURL      string `yaml:"openmeteo_url" validate:"required,url"`
	OpenWeatherAPIKey string `yaml:"openweather_api_key"`
	WeatherAPIKey     string `yaml:"weatherapi_api_key"`

	// HTTPTimeout bounds each outbound request. Zero means no timeout.
	HTTPTimeout time.Duration `yaml:"http_timeout" validate:"gte=0"`
	MaxRetries  int           `yaml:"max_retries" validate:"gte=0,lte=10"`

	// CircuitBreaker trips after repeated upstream failures and then
	// rejects calls until it half-opens again. Off by default.
	CircuitBreaker bool `yaml:"circuit_breaker"`
}

// InfluxDBConfig contains InfluxDB connection settings for the sampler.
type InfluxDBConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
}

// MQTTConfig contains MQTT broker settings for the sampler.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port" validate:"gte=0,lte=65535"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos" validate:"gte=0,lte=2"`
}

// Load reads configuration with sensible defaults. path may be empty, in which
// case no YAML file is read.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Port: "3000",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Store: StoreConfig{
			Driver:          DriverMongo,
			MongoDatabase:   "CMSC335DB",
			MongoCollection: "savedLocations",
			SQLitePath:      "./data/locations.db",
		},
		Upstream: UpstreamConfig{
			GeocodingURL:    "https://geocoding-api.open-meteo.com/v1/search",
			WeatherProvider: ProviderOpenMeteo,
			OpenMeteoURL:    "https://api.open-meteo.com/v1/forecast",
		},
		MQTT: MQTTConfig{
			Host:        "localhost",
			Port:        1883,
			ClientID:    "location-weather",
			TopicPrefix: "location-weather/temperature",
		},
	}
}

func applyEnvOverrides(cfg *AppConfig) error {
	cfg.Port = getenvDefault("PORT", cfg.Port)

	cfg.Logging.Level = getenvDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getenvDefault("LOG_FORMAT", cfg.Logging.Format)

	cfg.Store.Driver = strings.ToLower(getenvDefault("STORE_DRIVER", cfg.Store.Driver))
	cfg.Store.MongoURI = getenvDefault("MONGO_CONNECTION_STRING", cfg.Store.MongoURI)
	cfg.Store.MongoDatabase = getenvDefault("MONGO_DATABASE", cfg.Store.MongoDatabase)
	cfg.Store.MongoCollection = getenvDefault("MONGO_COLLECTION", cfg.Store.MongoCollection)
	cfg.Store.SQLitePath = getenvDefault("SQLITE_PATH", cfg.Store.SQLitePath)

	cfg.Upstream.GeocodingURL = getenvDefault("GEOCODING_URL", cfg.Upstream.GeocodingURL)
	cfg.Upstream.WeatherProvider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", cfg.Upstream.WeatherProvider))
	cfg.Upstream.OpenMeteoURL = getenvDefault("OPENMETEO_URL", cfg.Upstream.OpenMeteoURL)
	cfg.Upstream.OpenWeatherAPIKey = getenvDefault("OPENWEATHER_API_KEY", cfg.Upstream.OpenWeatherAPIKey)
	cfg.Upstream.WeatherAPIKey = getenvDefault("WEATHERAPI_API_KEY", cfg.Upstream.WeatherAPIKey)
	cfg.Upstream.MaxRetries = getenvInt("OUTBOUND_MAX_RETRIES", cfg.Upstream.MaxRetries)
	cfg.Upstream.CircuitBreaker = getenvBool("CIRCUIT_BREAKER_ENABLED", cfg.Upstream.CircuitBreaker)

	var err error
	if cfg.Upstream.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", cfg.Upstream.HTTPTimeout); err != nil {
		return err
	}
	if cfg.SampleInterval, err = getenvDuration("SAMPLE_INTERVAL", cfg.SampleInterval); err != nil {
		return err
	}

	cfg.InfluxDB.Enabled = getenvBool("INFLUXDB_ENABLED", cfg.InfluxDB.Enabled)
	cfg.InfluxDB.URL = getenvDefault("INFLUXDB_URL", cfg.InfluxDB.URL)
	cfg.InfluxDB.Token = getenvDefault("INFLUXDB_TOKEN", cfg.InfluxDB.Token)
	cfg.InfluxDB.Org = getenvDefault("INFLUXDB_ORG", cfg.InfluxDB.Org)
	cfg.InfluxDB.Bucket = getenvDefault("INFLUXDB_BUCKET", cfg.InfluxDB.Bucket)

	cfg.MQTT.Enabled = getenvBool("MQTT_ENABLED", cfg.MQTT.Enabled)
	cfg.MQTT.Host = getenvDefault("MQTT_HOST", cfg.MQTT.Host)
	cfg.MQTT.Port = getenvInt("MQTT_PORT", cfg.MQTT.Port)
	cfg.MQTT.ClientID = getenvDefault("MQTT_CLIENT_ID", cfg.MQTT.ClientID)
	cfg.MQTT.Username = getenvDefault("MQTT_USERNAME", cfg.MQTT.Username)
	cfg.MQTT.Password = getenvDefault("MQTT_PASSWORD", cfg.MQTT.Password)
	cfg.MQTT.TopicPrefix = getenvDefault("MQTT_TOPIC_PREFIX", cfg.MQTT.TopicPrefix)
	cfg.MQTT.QoS = getenvInt("MQTT_QOS", cfg.MQTT.QoS)

	return nil
}

// Validate checks field constraints and the settings that depend on each other.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	var errs []string

	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, "MONGO_CONNECTION_STRING is required for the mongo store")
		}
		if c.Store.MongoDatabase == "" || c.Store.MongoCollection == "" {
			errs = append(errs, "mongo database and collection names are required")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, "SQLITE_PATH is required for the sqlite store")
		}
	}

	switch c.Upstream.WeatherProvider {
	case ProviderOpenWeather:
		if c.Upstream.OpenWeatherAPIKey == "" {
			errs = append(errs, "OPENWEATHER_API_KEY is required for the openweather provider")
		}
	case ProviderWeatherAPI:
		if c.Upstream.WeatherAPIKey == "" {
			errs = append(errs, "WEATHERAPI_API_KEY is required for the weatherapi provider")
		}
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb url and bucket are required when influxdb is enabled")
	}
	if c.MQTT.Enabled && c.MQTT.Host == "" {
		errs = append(errs, "mqtt host is required when mqtt is enabled")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors: " + strings.Join(errs, "; "))
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
