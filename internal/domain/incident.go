package domain

import "time"

// Category classifies a local incident into the fixed taxonomy.
type Category string

const (
	CategoryCrime    Category = "crime"
	CategoryAccident Category = "accident"
	CategoryBoating  Category = "boating"
	CategoryFire     Category = "fire"
	CategoryAdvisory Category = "advisory"
	CategoryOther    Category = "other"
)

// Severity is the coarse urgency ranking used for display ordering and
// marker prominence.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityAdvisory Severity = "advisory"
	SeverityAlert    Severity = "alert"
)

// TrafficType classifies a traffic incident derived from the geodata query.
type TrafficType string

const (
	TrafficAccident     TrafficType = "accident"
	TrafficClosure      TrafficType = "closure"
	TrafficConstruction TrafficType = "construction"
	TrafficDisabled     TrafficType = "disabled"
	TrafficHazard       TrafficType = "hazard"
	TrafficOther        TrafficType = "other"
)

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RawArticle is the flat record produced by one scrape of an HTML page.
// Ephemeral: it lives for a single extraction call and is never persisted.
type RawArticle struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Incident is a normalized local incident ready for map display.
// Recomputed every poll cycle; identity does not persist across cycles.
type Incident struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  Category  `json:"category"`
	Severity  Severity  `json:"severity"`
	Source    string    `json:"source"`
	SourceURL string    `json:"sourceUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Summary   string    `json:"summary,omitempty"`
}

// WeatherAlert is an active alert from the weather feed. Severity is carried
// verbatim from upstream (Minor, Moderate, Severe, Extreme, Unknown); it is
// the one severity field this system never derives itself.
type WeatherAlert struct {
	ID          string `json:"id"`
	Event       string `json:"event"`
	Severity    string `json:"severity"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	AreaDesc    string `json:"areaDesc"`
	Effective   string `json:"effective"`
	Expires     string `json:"expires"`
}

// TrafficIncident is a per-fetch view of one geodata element inside the
// watched bounding box. Only the upstream element ID persists across fetches.
type TrafficIncident struct {
	ID          string      `json:"id"`
	Type        TrafficType `json:"type"`
	Description string      `json:"description"`
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
	Severity    Severity    `json:"severity"`
	Timestamp   time.Time   `json:"timestamp"`
	Source      string      `json:"source"`
}

// Location is a point of interest (restaurant, marina, bar) read from the
// external store. Read-only from this system's perspective.
type Location struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	CamEmbedURL string  `json:"camEmbedUrl,omitempty"`
	IsOpen      *bool   `json:"isOpen,omitempty"`
}

// LakeConditions is the lake-level endpoint payload. Missing readings stay
// nil and serialize as JSON null.
type LakeConditions struct {
	LakeLevel   *float64 `json:"lakeLevel"`
	WaterTemp   *float64 `json:"waterTemp"`
	RiverLevel  *float64 `json:"riverLevel"`
	LastUpdated string   `json:"lastUpdated"`
	Error       string   `json:"error,omitempty"`
}

// FilterLocations returns the locations whose type is enabled. A nil or
// empty set of enabled types shows everything. Pure predicate over
// already-fetched data; it never triggers a re-fetch.
func FilterLocations(locations []Location, enabled map[string]bool) []Location {
	if len(enabled) == 0 {
		return locations
	}
	out := make([]Location, 0, len(locations))
	for _, l := range locations {
		if enabled[l.Type] {
			out = append(out, l)
		}
	}
	return out
}

// FilterIncidents returns the incidents whose category is enabled, with the
// same all-visible semantics for an empty set.
func FilterIncidents(incidents []Incident, enabled map[Category]bool) []Incident {
	if len(enabled) == 0 {
		return incidents
	}
	out := make([]Incident, 0, len(incidents))
	for _, in := range incidents {
		if enabled[in.Category] {
			out = append(out, in)
		}
	}
	return out
}
