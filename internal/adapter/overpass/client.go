// Package overpass queries road geodata inside the watched bounding box and
// maps tagged elements to traffic incidents.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
)

const sourceName = "road-geodata"

// Client posts a fixed bounding-box query to an Overpass API endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a traffic geodata client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://overpass-api.de/api/interpreter"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// query restricts results to tagged road disruptions inside the region box.
func query() string {
	bbox := fmt.Sprintf("%.2f,%.2f,%.2f,%.2f",
		domain.RegionSouth, domain.RegionWest,
		domain.RegionNorth, domain.RegionEast)
	return fmt.Sprintf(`[out:json][timeout:25];
(
  nwr["hazard"](%[1]s);
  nwr["highway"="construction"](%[1]s);
  way["construction"]["highway"](%[1]s);
  way["access"="no"]["highway"](%[1]s);
  node["crossing:hazard"](%[1]s);
);
out center;`, bbox)
}

// Incidents fetches the current traffic incidents in the watched box.
func (c *Client) Incidents(ctx context.Context) ([]domain.TrafficIncident, error) {
	body := url.Values{"data": {query()}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geodata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geodata API error: status %d: %s", resp.StatusCode, raw)
	}

	var overpassResp response
	if err := json.NewDecoder(resp.Body).Decode(&overpassResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	incidents := make([]domain.TrafficIncident, 0, len(overpassResp.Elements))
	for _, el := range overpassResp.Elements {
		lat, lng, ok := el.coordinate()
		if !ok || !domain.InRegion(domain.Coordinate{Lat: lat, Lng: lng}) {
			continue
		}
		trafficType := classifyTags(el.Tags)
		incidents = append(incidents, domain.TrafficIncident{
			ID:          fmt.Sprintf("%s/%d", el.Type, el.ID),
			Type:        trafficType,
			Description: domain.SanitizeText(describe(el.Tags, trafficType)),
			Lat:         lat,
			Lng:         lng,
			Severity:    domain.DeriveTrafficSeverity(trafficType),
			Timestamp:   el.timestampOrNow(),
			Source:      sourceName,
		})
	}

	c.logger.Debug("traffic geodata fetched",
		"elements", len(overpassResp.Elements), "incidents", len(incidents))
	return incidents, nil
}

// classifyTags maps element tags to a traffic type. Checked in order;
// hazard tags take precedence since they mark the active danger.
func classifyTags(tags map[string]string) domain.TrafficType {
	switch {
	case tags["hazard"] != "" || tags["crossing:hazard"] != "":
		if strings.Contains(strings.ToLower(tags["hazard"]), "accident") {
			return domain.TrafficAccident
		}
		return domain.TrafficHazard
	case tags["highway"] == "construction" || tags["construction"] != "":
		return domain.TrafficConstruction
	case tags["access"] == "no":
		return domain.TrafficClosure
	case tags["disabled"] == "yes":
		return domain.TrafficDisabled
	default:
		return domain.TrafficOther
	}
}

func describe(tags map[string]string, trafficType domain.TrafficType) string {
	for _, key := range []string{"description", "note", "name", "hazard"} {
		if tags[key] != "" {
			return tags[key]
		}
	}
	switch trafficType {
	case domain.TrafficConstruction:
		return "Road construction"
	case domain.TrafficClosure:
		return "Road closed"
	case domain.TrafficHazard:
		return "Road hazard"
	default:
		return "Traffic disruption"
	}
}

// Overpass API response types.

type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type      string            `json:"type"`
	ID        int64             `json:"id"`
	Lat       float64           `json:"lat"`
	Lon       float64           `json:"lon"`
	Center    *center           `json:"center"`
	Tags      map[string]string `json:"tags"`
	Timestamp string            `json:"timestamp"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// coordinate prefers the element's own point, falling back to the computed
// center for ways and relations.
func (el element) coordinate() (float64, float64, bool) {
	if el.Lat != 0 || el.Lon != 0 {
		return el.Lat, el.Lon, true
	}
	if el.Center != nil {
		return el.Center.Lat, el.Center.Lon, true
	}
	return 0, 0, false
}

func (el element) timestampOrNow() time.Time {
	if el.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, el.Timestamp); err == nil {
			return ts
		}
	}
	return domain.Now()
}
