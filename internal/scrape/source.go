package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
)

// maxBodyBytes bounds how much of an upstream page is read. The scraped
// sites are small; anything past this is junk or abuse.
const maxBodyBytes = 2 << 20

const summaryCap = 300

// Source produces normalized incidents from one upstream site.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Incident, error)
}

// SiteSource scrapes one HTML page into articles and incidents.
type SiteSource struct {
	name      string
	pageURL   string
	typeHint  string
	client    *http.Client
	extractor ArticleExtractor
	geocoder  *domain.Geocoder
	logger    *slog.Logger
}

// NewNewsSource scrapes the regional news site.
func NewNewsSource(pageURL string, client *http.Client, geocoder *domain.Geocoder, logger *slog.Logger) *SiteSource {
	return newSiteSource("lake-news", pageURL, "", client, geocoder, logger)
}

// NewAnnouncementsSource scrapes the community announcements site. The
// "advisory" hint nudges classification for pages that are mostly notices.
func NewAnnouncementsSource(pageURL string, client *http.Client, geocoder *domain.Geocoder, logger *slog.Logger) *SiteSource {
	return newSiteSource("community-announcements", pageURL, "advisory", client, geocoder, logger)
}

func newSiteSource(name, pageURL, typeHint string, client *http.Client, geocoder *domain.Geocoder, logger *slog.Logger) *SiteSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &SiteSource{
		name:      name,
		pageURL:   pageURL,
		typeHint:  typeHint,
		client:    client,
		extractor: NewPatternExtractor(),
		geocoder:  geocoder,
		logger:    logger,
	}
}

func (s *SiteSource) Name() string { return s.name }

// FetchArticles fetches and extracts the page, returning sanitized article
// records for the listing endpoints.
func (s *SiteSource) FetchArticles(ctx context.Context) ([]domain.RawArticle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", s.name, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch page: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: unexpected status %d", s.name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", s.name, err)
	}

	raw := s.extractor.Extract(string(body), s.pageURL)
	articles := make([]domain.RawArticle, 0, len(raw))
	for _, a := range raw {
		articles = append(articles, domain.RawArticle{
			Title:       domain.SanitizeText(a.Title),
			Summary:     domain.TruncateText(domain.SanitizeText(a.Summary), summaryCap),
			URL:         domain.SanitizeURL(a.URL),
			PublishedAt: a.PublishedAt,
		})
	}
	s.logger.Debug("extracted articles", "source", s.name, "count", len(articles))
	return articles, nil
}

// Fetch implements Source: every extracted article is classified, geocoded,
// and normalized into an incident.
func (s *SiteSource) Fetch(ctx context.Context) ([]domain.Incident, error) {
	articles, err := s.FetchArticles(ctx)
	if err != nil {
		return nil, err
	}

	incidents := make([]domain.Incident, 0, len(articles))
	for _, a := range articles {
		incidents = append(incidents, s.normalize(a))
	}
	return incidents, nil
}

func (s *SiteSource) normalize(a domain.RawArticle) domain.Incident {
	slug := urlSlug(a.URL)
	id := slug
	if id == "" {
		id = fmt.Sprintf("%s-%d", s.name, a.PublishedAt.Unix())
	}

	category := domain.ClassifyCategory(s.typeHint, a.Title, a.Summary)
	text := a.Title + " " + a.Summary
	coord := s.geocoder.Geocode(text, slug)

	sourceURL := a.URL
	if sourceURL == "#" {
		sourceURL = ""
	}

	return domain.Incident{
		ID:        id,
		Title:     a.Title,
		Category:  category,
		Severity:  domain.DeriveSeverity(category, text),
		Source:    s.name,
		SourceURL: sourceURL,
		Timestamp: a.PublishedAt,
		Lat:       coord.Lat,
		Lng:       coord.Lng,
		Summary:   a.Summary,
	}
}

// urlSlug returns the trailing path segment of a URL, the stable per-item
// identifier used for IDs and fallback geocoding.
func urlSlug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	seg := path.Base(strings.TrimRight(u.Path, "/"))
	if seg == "." || seg == "/" || seg == "#" {
		return ""
	}
	return strings.TrimSuffix(seg, path.Ext(seg))
}
