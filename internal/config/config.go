// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Scrape sources.
	NewsURL          string
	AnnouncementsURL string
	LakeURL          string
	FetchTimeout     time.Duration
	GazetteerPath    string

	// Weather alerts.
	WeatherAPIURL    string
	WeatherPointLat  float64
	WeatherPointLng  float64
	WeatherUserAgent string

	// Traffic geodata.
	OverpassURL string

	// Locations store.
	LocationsDBPath string

	// Poll intervals per data kind.
	TrafficInterval   time.Duration
	WeatherInterval   time.Duration
	IncidentsInterval time.Duration
	LocationsInterval time.Duration
	LakeInterval      time.Duration

	// Optional incident snapshot publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	lat, err := parseFloat("WEATHER_POINT_LAT", "38.1500")
	if err != nil {
		return nil, err
	}
	lng, err := parseFloat("WEATHER_POINT_LNG", "-92.7500")
	if err != nil {
		return nil, err
	}

	intervals := map[string]*time.Duration{}
	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NewsURL:          envOrDefault("NEWS_URL", "https://www.lakeexpo.com/news/"),
		AnnouncementsURL: envOrDefault("ANNOUNCEMENTS_URL", "https://www.lakeexpo.com/community/"),
		LakeURL:          envOrDefault("LAKE_URL", "https://www.ameren.com/missouri/residential/renewables/osage/lake-levels"),
		FetchTimeout:     fetchTimeout,
		GazetteerPath:    os.Getenv("GAZETTEER_PATH"),

		WeatherAPIURL:    envOrDefault("WEATHER_API_URL", "https://api.weather.gov"),
		WeatherPointLat:  lat,
		WeatherPointLng:  lng,
		WeatherUserAgent: envOrDefault("WEATHER_USER_AGENT", "loz-watch (ops@loz-watch.dev)"),

		OverpassURL: envOrDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),

		LocationsDBPath: envOrDefault("LOCATIONS_DB_PATH", "data/locations.db"),

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: splitNonEmpty(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "incident-snapshots"),
	}

	intervals["TRAFFIC_INTERVAL"] = &cfg.TrafficInterval
	intervals["WEATHER_INTERVAL"] = &cfg.WeatherInterval
	intervals["INCIDENTS_INTERVAL"] = &cfg.IncidentsInterval
	intervals["LOCATIONS_INTERVAL"] = &cfg.LocationsInterval
	intervals["LAKE_INTERVAL"] = &cfg.LakeInterval
	defaults := map[string]string{
		"TRAFFIC_INTERVAL":   "5m",
		"WEATHER_INTERVAL":   "10m",
		"INCIDENTS_INTERVAL": "15m",
		"LOCATIONS_INTERVAL": "60m",
		"LAKE_INTERVAL":      "60m",
	}
	for name, dst := range intervals {
		d, err := parseDuration(name, defaults[name])
		if err != nil {
			return nil, err
		}
		*dst = d
	}

	if cfg.NewsURL == "" {
		return nil, errors.New("NEWS_URL is required")
	}
	if cfg.AnnouncementsURL == "" {
		return nil, errors.New("ANNOUNCEMENTS_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func parseDuration(name, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(name, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}
	return d, nil
}

func parseFloat(name, fallback string) (float64, error) {
	f, err := strconv.ParseFloat(envOrDefault(name, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return f, nil
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
