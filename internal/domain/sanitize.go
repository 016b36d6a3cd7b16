package domain

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	// blockedSchemes reject URLs that could execute or exfiltrate in a
	// browser context. Checked case-insensitively against the raw prefix.
	blockedSchemes = []string{"javascript:", "data:", "vbscript:", "file:"}
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
)

// SanitizeText trims surrounding whitespace and escapes the five HTML
// reserved characters. Total: empty input yields empty output.
func SanitizeText(s string) string {
	return htmlEscaper.Replace(strings.TrimSpace(s))
}

// SanitizeHTML reduces untrusted markup to escaped plain text: entities are
// decoded first, all tags stripped, the remainder re-escaped, and
// whitespace runs collapsed to single spaces.
func SanitizeHTML(s string) string {
	s = html.UnescapeString(s)
	s = tagRe.ReplaceAllString(s, " ")
	s = htmlEscaper.Replace(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SanitizeURL passes through http(s) and root-relative URLs unchanged and
// returns the "#" placeholder for anything else, including executable
// schemes. Idempotent: sanitizing twice equals sanitizing once.
func SanitizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return "#"
	}
	lower := strings.ToLower(u)
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "#"
		}
	}
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(u, "/") {
		return u
	}
	return "#"
}

// TruncateText hard-caps s at max runes, appending an ellipsis when cut.
func TruncateText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
