package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)

	assert.NotEmpty(t, cfg.NewsURL)
	assert.NotEmpty(t, cfg.AnnouncementsURL)
	assert.NotEmpty(t, cfg.LakeURL)
	assert.Empty(t, cfg.GazetteerPath)

	assert.Equal(t, "https://api.weather.gov", cfg.WeatherAPIURL)
	assert.InDelta(t, 38.15, cfg.WeatherPointLat, 0.001)
	assert.InDelta(t, -92.75, cfg.WeatherPointLng, 0.001)

	assert.Equal(t, 5*time.Minute, cfg.TrafficInterval)
	assert.Equal(t, 10*time.Minute, cfg.WeatherInterval)
	assert.Equal(t, 15*time.Minute, cfg.IncidentsInterval)
	assert.Equal(t, time.Hour, cfg.LocationsInterval)
	assert.Equal(t, time.Hour, cfg.LakeInterval)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "incident-snapshots", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("NEWS_URL", "https://example.com/news/")
	t.Setenv("ANNOUNCEMENTS_URL", "https://example.com/community/")
	t.Setenv("GAZETTEER_PATH", "/etc/loz-watch/places.yaml")
	t.Setenv("WEATHER_POINT_LAT", "38.2000")
	t.Setenv("WEATHER_POINT_LNG", "-92.6000")
	t.Setenv("TRAFFIC_INTERVAL", "2m")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-snapshots")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://example.com/news/", cfg.NewsURL)
	assert.Equal(t, "/etc/loz-watch/places.yaml", cfg.GazetteerPath)
	assert.InDelta(t, 38.20, cfg.WeatherPointLat, 0.001)
	assert.Equal(t, 2*time.Minute, cfg.TrafficInterval)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-snapshots", cfg.KafkaTopic)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
	assert.ErrorContains(t, err, "soon", "the parse failure cause must survive wrapping")
}

func TestLoad_NegativeInterval(t *testing.T) {
	t.Setenv("WEATHER_INTERVAL", "-5m")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_INTERVAL")
	assert.Contains(t, err.Error(), "positive")
}

func TestLoad_InvalidPoint(t *testing.T) {
	t.Setenv("WEATHER_POINT_LAT", "north")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_POINT_LAT")
}

func TestLoad_KafkaEnabledRequiresBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " , ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}
