// Package httpapi is the JSON boundary. Every data route answers 200: an
// upstream failure degrades to an empty array or null fields, never to an
// error status.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
	"github.com/vincentandwood-dev/loz-watch/internal/observability"
	"github.com/vincentandwood-dev/loz-watch/internal/poll"
)

const (
	scrapeCacheTTL = 30 * time.Minute
	lakeCacheTTL   = time.Hour
)

// SnapshotReader exposes the latest polled data sets.
type SnapshotReader interface {
	Incidents() ([]domain.Incident, poll.Status)
	Weather() ([]domain.WeatherAlert, poll.Status)
	Traffic() ([]domain.TrafficIncident, poll.Status)
	Locations() ([]domain.Location, poll.Status)
	Lake() (domain.LakeConditions, poll.Status)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Scrapers supplies the on-demand fetches behind the cached scrape routes.
// The article routes re-expose the raw scrape product, not the normalized
// incident view.
type Scrapers struct {
	News          func(ctx context.Context) ([]domain.RawArticle, error)
	Announcements func(ctx context.Context) ([]domain.RawArticle, error)
	Lake          func(ctx context.Context) (domain.LakeConditions, error)
}

// Server exposes the data API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	snapshot   SnapshotReader
	logger     *slog.Logger

	newsCache          *ttlCache[[]domain.RawArticle]
	announcementsCache *ttlCache[[]domain.RawArticle]
	lakeCache          *ttlCache[domain.LakeConditions]
}

// NewServer creates the API server.
func NewServer(addr string, snapshot SnapshotReader, scrapers Scrapers, ready ReadinessChecker, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		snapshot:           snapshot,
		logger:             logger,
		newsCache:          newTTLCache("news", scrapeCacheTTL, scrapers.News, metrics),
		announcementsCache: newTTLCache("announcements", scrapeCacheTTL, scrapers.Announcements, metrics),
		lakeCache:          newTTLCache("lake_conditions", lakeCacheTTL, scrapers.Lake, metrics),
	}

	mux.HandleFunc("GET /api/news", s.handleNews)
	mux.HandleFunc("GET /api/announcements", s.handleAnnouncements)
	mux.HandleFunc("GET /api/lake-conditions", s.handleLakeConditions)
	mux.HandleFunc("GET /api/incidents", s.handleIncidents)
	mux.HandleFunc("GET /api/weather-alerts", s.handleWeatherAlerts)
	mux.HandleFunc("GET /api/traffic", s.handleTraffic)
	mux.HandleFunc("GET /api/locations", s.handleLocations)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	articles, err := s.newsCache.Get(r.Context())
	if err != nil {
		s.logger.Warn("news fetch failed, serving empty list", "error", err)
		articles = nil
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": orEmpty(articles)})
}

func (s *Server) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := s.announcementsCache.Get(r.Context())
	if err != nil {
		s.logger.Warn("announcements fetch failed, serving empty list", "error", err)
		announcements = nil
	}
	writeJSON(w, http.StatusOK, map[string]any{"announcements": orEmpty(announcements)})
}

func (s *Server) handleLakeConditions(w http.ResponseWriter, r *http.Request) {
	conditions, err := s.lakeCache.Get(r.Context())
	if err != nil {
		s.logger.Warn("lake conditions fetch failed, serving nulls", "error", err)
		conditions = domain.LakeConditions{
			LastUpdated: domain.Now().Format(time.RFC3339),
			Error:       "conditions temporarily unavailable",
		}
	}
	writeJSON(w, http.StatusOK, conditions)
}

func (s *Server) handleIncidents(w http.ResponseWriter, _ *http.Request) {
	incidents, _ := s.snapshot.Incidents()
	body := map[string]any{"incidents": orEmpty(incidents)}
	if len(incidents) == 0 {
		body["message"] = "no current incidents"
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleWeatherAlerts(w http.ResponseWriter, _ *http.Request) {
	alerts, _ := s.snapshot.Weather()
	writeJSON(w, http.StatusOK, map[string]any{"alerts": orEmpty(alerts)})
}

func (s *Server) handleTraffic(w http.ResponseWriter, _ *http.Request) {
	incidents, _ := s.snapshot.Traffic()
	writeJSON(w, http.StatusOK, map[string]any{"incidents": orEmpty(incidents)})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	locations, _ := s.snapshot.Locations()
	if typesParam := r.URL.Query().Get("types"); typesParam != "" {
		locations = domain.FilterLocations(locations, parseTypes(typesParam))
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": orEmpty(locations)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// orEmpty keeps empty collections as [] in JSON instead of null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func parseTypes(param string) map[string]bool {
	enabled := make(map[string]bool)
	for _, t := range strings.Split(param, ",") {
		if t = strings.TrimSpace(t); t != "" {
			enabled[t] = true
		}
	}
	return enabled
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
