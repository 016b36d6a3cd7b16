package domain

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Watched-region geometry. The bounding box constrains the geodata query and
// every coordinate this package hands out; the center anchors the jitter
// fallback for items no gazetteer entry matches.
const (
	RegionCenterLat = 38.1500
	RegionCenterLng = -92.7500

	RegionSouth = 37.9000
	RegionNorth = 38.4500
	RegionWest  = -93.4500
	RegionEast  = -92.4000

	// fallbackSpread is the jitter envelope in degrees around the center.
	fallbackSpread = 0.25
)

// PlaceEntry maps a place-name substring to a fixed coordinate.
type PlaceEntry struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// defaultGazetteer is tested in order; more specific names come first so
// "bagnell dam" wins over any later entry whose town name also appears.
var defaultGazetteer = []PlaceEntry{
	{"bagnell dam", 38.2031, -92.6238},
	{"ha ha tonka", 37.9770, -92.7693},
	{"grand glaize", 38.1117, -92.6602},
	{"osage beach", 38.1295, -92.6529},
	{"lake ozark", 38.1986, -92.6388},
	{"sunrise beach", 38.1664, -92.7760},
	{"gravois mills", 38.3084, -92.8238},
	{"climax springs", 38.1264, -93.0294},
	{"linn creek", 38.0486, -92.7110},
	{"camdenton", 38.0081, -92.7446},
	{"versailles", 38.4314, -92.8410},
	{"tuscumbia", 38.2331, -92.4585},
	{"eldon", 38.3484, -92.5816},
	{"laurie", 38.2023, -92.8216},
	{"warsaw", 38.2431, -93.3819},
}

// Geocoder resolves free text to coordinates in the watched region.
type Geocoder struct {
	gazetteer []PlaceEntry
}

// NewGeocoder returns a geocoder backed by the built-in gazetteer.
func NewGeocoder() *Geocoder {
	return &Geocoder{gazetteer: defaultGazetteer}
}

// NewGeocoderFromFile loads an ordered gazetteer from a YAML file. The file
// replaces the built-in table wholesale so operators control priority.
func NewGeocoderFromFile(path string) (*Geocoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gazetteer: %w", err)
	}
	var entries []PlaceEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse gazetteer: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("gazetteer %s has no entries", path)
	}
	return &Geocoder{gazetteer: entries}, nil
}

// Geocode matches place-name substrings in the lower-cased text against the
// gazetteer, first match wins. Unmatched text falls back to a deterministic
// pseudo-coordinate derived from id, so every item gets a coordinate and the
// same id always lands on the same spot across refreshes.
func (g *Geocoder) Geocode(text, id string) Coordinate {
	lower := strings.ToLower(text)
	for _, e := range g.gazetteer {
		if strings.Contains(lower, e.Name) {
			return Coordinate{Lat: e.Lat, Lng: e.Lng}
		}
	}
	return fallbackCoordinate(id)
}

// fallbackCoordinate sums the byte values of id into a hash and spreads it
// around the region center. The arithmetic is kept exactly as shipped so
// marker placement stays bit-for-bit stable for existing consumers.
func fallbackCoordinate(id string) Coordinate {
	hash := 0
	for i := 0; i < len(id); i++ {
		hash += int(id[i])
	}
	latOffset := float64(hash%200-100) / 400.0 * fallbackSpread
	lngOffset := float64((hash*13)%200-100) / 400.0 * fallbackSpread
	return Coordinate{
		Lat: RegionCenterLat + latOffset,
		Lng: RegionCenterLng + lngOffset,
	}
}

// InRegion reports whether a coordinate lies inside the watched bounding box.
func InRegion(c Coordinate) bool {
	return c.Lat >= RegionSouth && c.Lat <= RegionNorth &&
		c.Lng >= RegionWest && c.Lng <= RegionEast
}
