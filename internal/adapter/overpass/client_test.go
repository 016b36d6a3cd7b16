package overpass

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Incidents_MapsElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		data := r.PostForm.Get("data")
		assert.Contains(t, data, "[out:json]")
		assert.Contains(t, data, "37.90,-93.45,38.45,-92.40")

		resp := response{Elements: []element{
			{
				Type: "node", ID: 101, Lat: 38.20, Lon: -92.70,
				Tags:      map[string]string{"hazard": "debris on roadway"},
				Timestamp: "2026-08-20T14:00:00Z",
			},
			{
				Type: "way", ID: 202,
				Center: &center{Lat: 38.10, Lon: -92.80},
				Tags:   map[string]string{"highway": "construction", "name": "Bagnell Dam Blvd"},
			},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	incidents, err := testClient(srv.URL).Incidents(context.Background())
	require.NoError(t, err)
	require.Len(t, incidents, 2)

	hazard := incidents[0]
	assert.Equal(t, "node/101", hazard.ID)
	assert.Equal(t, domain.TrafficHazard, hazard.Type)
	assert.Equal(t, domain.SeverityAdvisory, hazard.Severity)
	assert.Equal(t, "debris on roadway", hazard.Description)
	assert.Equal(t, time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC), hazard.Timestamp)

	construction := incidents[1]
	assert.Equal(t, "way/202", construction.ID)
	assert.Equal(t, domain.TrafficConstruction, construction.Type)
	assert.Equal(t, 38.10, construction.Lat)
	assert.Equal(t, -92.80, construction.Lng)
	assert.Equal(t, "Bagnell Dam Blvd", construction.Description)
}

func TestClient_Incidents_DropsOutOfRegionAndUnlocated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := response{Elements: []element{
			{Type: "node", ID: 1, Lat: 45.0, Lon: -92.7, Tags: map[string]string{"hazard": "x"}},
			{Type: "way", ID: 2, Tags: map[string]string{"hazard": "no center"}},
			{Type: "node", ID: 3, Lat: 38.2, Lon: -92.7, Tags: map[string]string{"hazard": "kept"}},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	incidents, err := testClient(srv.URL).Incidents(context.Background())
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, "node/3", incidents[0].ID)
}

func TestClient_Incidents_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Incidents(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestClient_Incidents_DefaultTimestamp(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := response{Elements: []element{
			{Type: "node", ID: 7, Lat: 38.2, Lon: -92.7, Tags: map[string]string{"hazard": "x"}},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	incidents, err := testClient(srv.URL).Incidents(context.Background())
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), incidents[0].Timestamp)
}

func TestClassifyTags(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want domain.TrafficType
	}{
		{"hazard", map[string]string{"hazard": "flooding"}, domain.TrafficHazard},
		{"accident hazard", map[string]string{"hazard": "accident blackspot"}, domain.TrafficAccident},
		{"construction highway", map[string]string{"highway": "construction"}, domain.TrafficConstruction},
		{"construction tag", map[string]string{"highway": "residential", "construction": "minor"}, domain.TrafficConstruction},
		{"closure", map[string]string{"highway": "residential", "access": "no"}, domain.TrafficClosure},
		{"untyped", map[string]string{"name": "Route 54"}, domain.TrafficOther},
		{"nil tags", nil, domain.TrafficOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyTags(tt.tags))
		})
	}
}
