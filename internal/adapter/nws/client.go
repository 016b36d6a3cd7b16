// Package nws fetches active weather alerts for the lake region from the
// National Weather Service API.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
)

// Client queries the NWS active-alerts endpoint for a fixed point.
type Client struct {
	httpClient *http.Client
	baseURL    string
	lat        float64
	lng        float64
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates an alerts client for the given point. The NWS API
// requires a contact-bearing User-Agent.
func NewClient(baseURL string, lat, lng float64, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.weather.gov"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		lat:        lat,
		lng:        lng,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// ActiveAlerts returns the alerts currently in effect at the client's
// point. Only operational alerts are returned; test and exercise messages
// are dropped. Severity is passed through verbatim.
func (c *Client) ActiveAlerts(ctx context.Context) ([]domain.WeatherAlert, error) {
	params := url.Values{
		"point": {fmt.Sprintf("%.4f,%.4f", c.lat, c.lng)},
	}
	fullURL := fmt.Sprintf("%s/alerts/active?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alerts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)
	}

	var alertsResp response
	if err := json.NewDecoder(resp.Body).Decode(&alertsResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	alerts := make([]domain.WeatherAlert, 0, len(alertsResp.Features))
	for _, f := range alertsResp.Features {
		if f.Properties.Status != "Actual" {
			continue
		}
		alerts = append(alerts, domain.WeatherAlert{
			ID:          f.Properties.ID,
			Event:       domain.SanitizeText(f.Properties.Event),
			Severity:    f.Properties.Severity,
			Headline:    domain.SanitizeText(f.Properties.Headline),
			Description: domain.SanitizeText(f.Properties.Description),
			AreaDesc:    domain.SanitizeText(f.Properties.AreaDesc),
			Effective:   f.Properties.Effective,
			Expires:     f.Properties.Expires,
		})
	}

	c.logger.Debug("weather alerts fetched",
		"total", len(alertsResp.Features), "actual", len(alerts))
	return alerts, nil
}

// NWS API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties properties `json:"properties"`
}

type properties struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Event       string `json:"event"`
	Severity    string `json:"severity"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	AreaDesc    string `json:"areaDesc"`
	Effective   string `json:"effective"`
	Expires     string `json:"expires"`
}
