package nws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/geo+json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 38.15, -92.75, "loz-watch (ops@example.com)",
		5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_ActiveAlerts_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alerts/active", r.URL.Path)
		assert.Equal(t, "38.1500,-92.7500", r.URL.Query().Get("point"))
		assert.Contains(t, r.Header.Get("User-Agent"), "loz-watch")

		resp := response{
			Features: []feature{
				{Properties: properties{
					ID:       "urn:oid:2.49.0.1.840.0.1",
					Status:   "Actual",
					Event:    "Severe Thunderstorm Warning",
					Severity: "Severe",
					Headline: "Severe Thunderstorm Warning until 9 PM",
					AreaDesc: "Camden; Miller; Morgan",
				}},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	alerts, err := testClient(srv.URL).ActiveAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	assert.Equal(t, "Severe Thunderstorm Warning", alerts[0].Event)
	assert.Equal(t, "Severe", alerts[0].Severity)
	assert.Equal(t, "Camden; Miller; Morgan", alerts[0].AreaDesc)
}

func TestClient_ActiveAlerts_DropsNonActual(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := response{
			Features: []feature{
				{Properties: properties{ID: "t1", Status: "Test", Event: "Test Message"}},
				{Properties: properties{ID: "e1", Status: "Exercise", Event: "Drill"}},
				{Properties: properties{ID: "a1", Status: "Actual", Event: "Flood Warning", Severity: "Moderate"}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	alerts, err := testClient(srv.URL).ActiveAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "a1", alerts[0].ID)
}

func TestClient_ActiveAlerts_EmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(response{}))
	}))
	defer srv.Close()

	alerts, err := testClient(srv.URL).ActiveAlerts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestClient_ActiveAlerts_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ActiveAlerts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestClient_ActiveAlerts_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ActiveAlerts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_ActiveAlerts_SanitizesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := response{
			Features: []feature{
				{Properties: properties{
					ID:       "a1",
					Status:   "Actual",
					Event:    "Wind Advisory",
					Headline: `Gusts <40 mph> expected`,
				}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	alerts, err := testClient(srv.URL).ActiveAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Gusts &lt;40 mph&gt; expected", alerts[0].Headline)
}
