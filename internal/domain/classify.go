package domain

import "strings"

// classificationRule binds a category to the keywords that select it.
type classificationRule struct {
	category Category
	keywords []string
}

// classificationRules is evaluated top to bottom; the first rule with any
// matching keyword wins. The order is load-bearing: "boat fire" classifies
// as boating because the boating rule runs before fire.
var classificationRules = []classificationRule{
	{CategoryBoating, []string{
		"boat", "watercraft", "vessel", "jet ski", "marina", "drowning",
		"swimmer", "capsiz", "dock",
	}},
	{CategoryFire, []string{
		"fire", "blaze", "smoke", "burning",
	}},
	{CategoryAccident, []string{
		"accident", "crash", "collision", "wreck", "rollover", "injured",
	}},
	{CategoryCrime, []string{
		"arrest", "theft", "burglary", "robbery", "assault", "stolen",
		"shooting", "vandalism", "fraud",
	}},
	{CategoryAdvisory, []string{
		"advisory", "warning", "alert", "closure", "closed", "boil order",
		"outage", "road work",
	}},
}

// ClassifyCategory assigns exactly one category to an article. The type
// hint, title, and summary are lower-cased and concatenated; rules are
// tested in priority order and the first keyword hit decides. No match
// yields CategoryOther. Idempotent: same input, same category.
func ClassifyCategory(typeHint, title, summary string) Category {
	text := strings.ToLower(typeHint + " " + title + " " + summary)
	for _, rule := range classificationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return CategoryOther
}

// DeriveSeverity maps a category (plus a small set of escalation keywords in
// the text) to a severity. No external severity input overrides this; only
// weather alerts carry an upstream severity verbatim.
//
//	fire, or accident with "fatal"/"serious"  -> alert
//	boating, crime                            -> advisory
//	accident, advisory                        -> advisory
//	everything else                           -> info
func DeriveSeverity(category Category, text string) Severity {
	lower := strings.ToLower(text)
	switch {
	case category == CategoryFire:
		return SeverityAlert
	case category == CategoryAccident &&
		(strings.Contains(lower, "fatal") || strings.Contains(lower, "serious")):
		return SeverityAlert
	case category == CategoryBoating, category == CategoryCrime:
		return SeverityAdvisory
	case category == CategoryAccident, category == CategoryAdvisory:
		return SeverityAdvisory
	default:
		return SeverityInfo
	}
}

// DeriveTrafficSeverity maps a traffic incident type to a severity,
// consistent with the incident ladder above.
func DeriveTrafficSeverity(t TrafficType) Severity {
	switch t {
	case TrafficAccident:
		return SeverityAlert
	case TrafficClosure, TrafficConstruction, TrafficHazard:
		return SeverityAdvisory
	default:
		return SeverityInfo
	}
}
