package scrape

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
)

// Extraction bounds. The windows are character offsets into the raw HTML
// following a matched heading; they keep the scan linear and local so a
// summary or date is only claimed when it sits next to its headline.
const (
	maxArticles      = 50
	minPrimaryYield  = 5
	summaryWindow    = 500
	dateWindow       = 1000
	minSummaryChars  = 50
	maxSummaryChars  = 200
	minFallbackTitle = 20
)

var (
	// headingRe finds heading blocks; anchorRe pulls the link inside one.
	headingRe = regexp.MustCompile(`(?is)<h[1-4][^>]*>(.*?)</h[1-4]>`)
	anchorRe  = regexp.MustCompile(`(?is)<a[^>]+href\s*=\s*["']([^"']+)["'][^>]*>(.*?)</a>`)

	paragraphRe = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)

	dateSlashRe = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`)
	dateISORe   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

	markupRe = regexp.MustCompile(`<[^>]*>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// ArticleExtractor turns raw HTML into flat article records. Implementations
// must be pure functions of the input: no state, no network, no errors for
// malformed markup (an empty slice is the worst case). The interface exists
// so the matching strategy can be swapped without touching callers.
type ArticleExtractor interface {
	Extract(htmlSrc, baseURL string) []domain.RawArticle
}

// PatternExtractor scans for headings containing an anchor, in document
// order, with a looser anchor-only fallback when the page yields too little.
type PatternExtractor struct{}

// NewPatternExtractor returns the default extraction strategy.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

// Extract implements ArticleExtractor. For every heading+anchor match it
// resolves the link against baseURL, takes the anchor text as title, looks
// ahead a bounded window for a 50-200 character paragraph as summary
// (falling back to the title), and a bounded window for a date token
// (falling back to the current time). Output is deduplicated by absolute
// URL and capped. If the primary pattern finds fewer than minPrimaryYield
// articles, a looser anchor scan tops the list up.
func (e *PatternExtractor) Extract(htmlSrc, baseURL string) []domain.RawArticle {
	seen := make(map[string]bool)
	var articles []domain.RawArticle

	for _, m := range headingRe.FindAllStringSubmatchIndex(htmlSrc, -1) {
		if len(articles) >= maxArticles {
			break
		}

		inner := htmlSrc[m[2]:m[3]]
		am := anchorRe.FindStringSubmatch(inner)
		if am == nil {
			continue
		}

		link := resolveURL(baseURL, am[1])
		title := plainText(am[2])
		if link == "" || title == "" || seen[link] {
			continue
		}
		seen[link] = true

		headingEnd := m[1]
		articles = append(articles, domain.RawArticle{
			Title:       title,
			Summary:     lookaheadSummary(htmlSrc, headingEnd, title),
			URL:         link,
			PublishedAt: lookaheadDate(htmlSrc, headingEnd),
		})
	}

	if len(articles) < minPrimaryYield {
		articles = e.fallbackAnchors(htmlSrc, baseURL, seen, articles)
	}
	return articles
}

// fallbackAnchors is the secondary, looser pattern: any anchor under /news/
// or /community/ whose text is long enough to read as a headline.
func (e *PatternExtractor) fallbackAnchors(htmlSrc, baseURL string, seen map[string]bool, articles []domain.RawArticle) []domain.RawArticle {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSrc))
	if err != nil {
		return articles
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(articles) >= maxArticles {
			return false
		}
		href := sel.AttrOr("href", "")
		if !strings.Contains(href, "/news/") && !strings.Contains(href, "/community/") {
			return true
		}
		title := spaceRe.ReplaceAllString(strings.TrimSpace(sel.Text()), " ")
		if utf8.RuneCountInString(title) < minFallbackTitle {
			return true
		}
		link := resolveURL(baseURL, href)
		if link == "" || seen[link] {
			return true
		}
		seen[link] = true
		articles = append(articles, domain.RawArticle{
			Title:       title,
			Summary:     title,
			URL:         link,
			PublishedAt: domain.Now(),
		})
		return true
	})
	return articles
}

// lookaheadSummary returns the first paragraph of acceptable length within
// the window after a heading, else the title.
func lookaheadSummary(htmlSrc string, from int, title string) string {
	window := htmlSrc[from:min(from+summaryWindow, len(htmlSrc))]
	for _, pm := range paragraphRe.FindAllStringSubmatch(window, -1) {
		text := plainText(pm[1])
		// Character bounds, not bytes: accented place names must not
		// push a paragraph over the limit.
		n := utf8.RuneCountInString(text)
		if n >= minSummaryChars && n <= maxSummaryChars {
			return text
		}
	}
	return title
}

// lookaheadDate returns the first MM/DD/YYYY or YYYY-MM-DD token within the
// window after a heading, else the current time.
func lookaheadDate(htmlSrc string, from int) time.Time {
	window := htmlSrc[from:min(from+dateWindow, len(htmlSrc))]
	if m := dateSlashRe.FindString(window); m != "" {
		if t, err := time.Parse("01/02/2006", m); err == nil {
			return t
		}
	}
	if m := dateISORe.FindString(window); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t
		}
	}
	return domain.Now()
}

// resolveURL makes href absolute against base. Unparseable input resolves
// to "", which callers treat as no link.
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == "" || h.IsAbs() {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// plainText reduces an HTML fragment to readable text: entities decoded,
// tags dropped, whitespace collapsed. Escaping for display happens later in
// the sanitizer; this is only for measuring and matching.
func plainText(s string) string {
	s = html.UnescapeString(s)
	s = markupRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
