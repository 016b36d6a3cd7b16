package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vincentandwood-dev/loz-watch/internal/adapter/httpapi"
	kafkaadapter "github.com/vincentandwood-dev/loz-watch/internal/adapter/kafka"
	"github.com/vincentandwood-dev/loz-watch/internal/adapter/nws"
	"github.com/vincentandwood-dev/loz-watch/internal/adapter/overpass"
	"github.com/vincentandwood-dev/loz-watch/internal/adapter/store"
	"github.com/vincentandwood-dev/loz-watch/internal/aggregate"
	"github.com/vincentandwood-dev/loz-watch/internal/config"
	"github.com/vincentandwood-dev/loz-watch/internal/domain"
	"github.com/vincentandwood-dev/loz-watch/internal/observability"
	"github.com/vincentandwood-dev/loz-watch/internal/poll"
	"github.com/vincentandwood-dev/loz-watch/internal/scrape"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lakewatch",
		Short: "Situational-awareness backend for the Lake of the Ozarks region",
		Long: `lakewatch aggregates local news, community announcements, weather
alerts, traffic geodata, and lake conditions into cached JSON endpoints.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd(), snapshotCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the poll scheduler and HTTP API",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Run one aggregation cycle and print the incidents as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshot(cmd)
		},
	}
}

// app holds everything built from one config load.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *observability.Metrics
	aggregator *aggregate.Aggregator
	poller     *poll.Poller
	server     *httpapi.Server
	locations  *store.Locations
	publisher  *kafkaadapter.Publisher
}

func buildApp() (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	geocoder := domain.NewGeocoder()
	if cfg.GazetteerPath != "" {
		geocoder, err = domain.NewGeocoderFromFile(cfg.GazetteerPath)
		if err != nil {
			return nil, fmt.Errorf("loading gazetteer: %w", err)
		}
		logger.Info("gazetteer loaded", "path", cfg.GazetteerPath)
	}

	client := &http.Client{Timeout: cfg.FetchTimeout}
	newsSource := scrape.NewNewsSource(cfg.NewsURL, client, geocoder, logger)
	announcementsSource := scrape.NewAnnouncementsSource(cfg.AnnouncementsURL, client, geocoder, logger)
	lakeScraper := scrape.NewLakeScraper(cfg.LakeURL, client, logger)

	aggregator := aggregate.New(
		[]scrape.Source{newsSource, announcementsSource}, logger, metrics)

	weatherClient := nws.NewClient(cfg.WeatherAPIURL, cfg.WeatherPointLat, cfg.WeatherPointLng,
		cfg.WeatherUserAgent, cfg.FetchTimeout, logger)
	trafficClient := overpass.NewClient(cfg.OverpassURL, cfg.FetchTimeout, logger)

	locations, err := store.Open(cfg.LocationsDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening locations store: %w", err)
	}

	var publisher *kafkaadapter.Publisher
	var incidentPublisher poll.IncidentPublisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		incidentPublisher = publisher
		logger.Info("incident snapshot publishing enabled",
			"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("incident snapshot publishing disabled")
	}

	poller := poll.New(
		poll.Sources{
			Incidents: aggregator.Fetch,
			Weather:   weatherClient.ActiveAlerts,
			Traffic:   trafficClient.Incidents,
			Locations: locations.All,
			Lake:      lakeScraper.Fetch,
		},
		poll.Intervals{
			Incidents: cfg.IncidentsInterval,
			Weather:   cfg.WeatherInterval,
			Traffic:   cfg.TrafficInterval,
			Locations: cfg.LocationsInterval,
			Lake:      cfg.LakeInterval,
		},
		incidentPublisher, logger, metrics)

	server := httpapi.NewServer(cfg.HTTPAddr, poller,
		httpapi.Scrapers{
			News:          newsSource.FetchArticles,
			Announcements: announcementsSource.FetchArticles,
			Lake:          lakeScraper.Fetch,
		},
		poller, logger, metrics)

	return &app{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		aggregator: aggregator,
		poller:     poller,
		server:     server,
		locations:  locations,
		publisher:  publisher,
	}, nil
}

func runServe() error {
	a, err := buildApp()
	if err != nil {
		slog.Error("startup failed", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", "error", err)
		}
	}()

	if err := a.poller.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("poller start error", "error", err)
	}

	<-ctx.Done()
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", "error", err)
	}
	a.poller.Stop()
	if err := a.locations.Close(); err != nil {
		a.logger.Error("locations store close error", "error", err)
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("publisher close error", "error", err)
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}

func runSnapshot(cmd *cobra.Command) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.locations.Close()

	incidents := a.aggregator.Fetch(cmd.Context())

	out, err := json.MarshalIndent(incidents, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
