// Package domain models situational-awareness data for the Lake of the
// Ozarks region: locally-scraped incidents, weather alerts, traffic
// incidents, points of interest, and lake conditions.
//
// # Classification
//
// Local incidents are classified by substring matching over the lower-cased
// concatenation of type hint, title, and summary. Rules run in a fixed
// priority order:
//
//	boating > fire > accident > crime > advisory > other
//
// The first matching rule wins, so text containing both "boat" and "fire"
// is boating. Severity is a deterministic function of the category plus two
// escalation keywords ("fatal", "serious" on accidents):
//
//	fire, fatal/serious accident -> alert
//	boating, crime, accident, advisory -> advisory
//	other -> info
//
// Weather alerts are the single exception: their severity field (Minor,
// Moderate, Severe, Extreme, Unknown) is carried verbatim from the feed.
//
// # Geocoding
//
// An ordered gazetteer maps known place-name substrings to fixed
// coordinates. Unmatched items receive a deterministic pseudo-coordinate:
// the byte values of a stable identifier (the source URL's trailing
// segment) are summed into a hash, and
//
//	latOffset = ((hash % 200) - 100) / 400 * 0.25
//	lngOffset = (((hash * 13) % 200) - 100) / 400 * 0.25
//
// offsets the region center. Every item gets a coordinate, and the same
// identifier always lands on the same spot, which keeps markers stable
// across refreshes and makes placement testable.
//
// # Sanitization
//
// All sanitizers are total functions: they never fail and return safe
// defaults (empty string, "#") for hostile or empty input. URLs outside
// http(s) or root-relative form are replaced with "#".
package domain
