package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocode_KnownPlaces(t *testing.T) {
	g := NewGeocoder()

	tests := []struct {
		name     string
		text     string
		expected Coordinate
	}{
		{"osage beach", "Crash reported in Osage Beach on Friday", Coordinate{38.1295, -92.6529}},
		{"camdenton", "CAMDENTON city council meets", Coordinate{38.0081, -92.7446}},
		{"bagnell dam before lake ozark", "Bagnell Dam strip in Lake Ozark", Coordinate{38.2031, -92.6238}},
		{"warsaw", "fishing tournament at warsaw", Coordinate{38.2431, -93.3819}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := g.Geocode(tt.text, "item-1")
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestGeocode_FallbackDeterministic(t *testing.T) {
	g := NewGeocoder()

	c1 := g.Geocode("no place names here", "story-8841")
	c2 := g.Geocode("no place names here", "story-8841")
	assert.Equal(t, c1, c2, "same identifier must map to the same coordinate")

	c3 := g.Geocode("no place names here", "story-8842")
	assert.NotEqual(t, c1, c3, "different identifiers should usually differ")
}

func TestGeocode_FallbackWithinSpread(t *testing.T) {
	g := NewGeocoder()

	ids := []string{"", "a", "zzzz", "story-1", "2024-08-31-big-headline", "x9"}
	for _, id := range ids {
		c := g.Geocode("unmatched", id)
		assert.InDelta(t, RegionCenterLat, c.Lat, fallbackSpread, "id %q lat outside spread", id)
		assert.InDelta(t, RegionCenterLng, c.Lng, fallbackSpread, "id %q lng outside spread", id)
		assert.True(t, InRegion(c), "id %q fell outside the watched region", id)
	}
}

func TestGeocode_FallbackArithmetic(t *testing.T) {
	// "ab" -> hash 97+98 = 195.
	// lat: (195%200-100)/400*0.25 = 95/400*0.25
	// lng: (195*13%200-100)/400*0.25 = (2535%200-100)/400*0.25 = 35/400*0.25
	c := fallbackCoordinate("ab")
	assert.InDelta(t, RegionCenterLat+95.0/400.0*0.25, c.Lat, 1e-9)
	assert.InDelta(t, RegionCenterLng+35.0/400.0*0.25, c.Lng, 1e-9)
}

func TestGazetteerCoordinatesInRegion(t *testing.T) {
	for _, e := range defaultGazetteer {
		assert.True(t, InRegion(Coordinate{e.Lat, e.Lng}), "gazetteer entry %q outside region", e.Name)
	}
}

func TestNewGeocoderFromFile(t *testing.T) {
	t.Run("valid file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "places.yml")
		data := "- name: test cove\n  lat: 38.2\n  lng: -92.7\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		g, err := NewGeocoderFromFile(path)
		require.NoError(t, err)

		c := g.Geocode("meet me at Test Cove", "id")
		assert.Equal(t, Coordinate{38.2, -92.7}, c)

		// Defaults are replaced, so a built-in name now falls back.
		c = g.Geocode("osage beach", "id")
		assert.NotEqual(t, Coordinate{38.1295, -92.6529}, c)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewGeocoderFromFile("/does/not/exist.yml")
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.yml")
		require.NoError(t, os.WriteFile(path, []byte(""), 0o644))
		_, err := NewGeocoderFromFile(path)
		assert.Error(t, err)
	})
}
