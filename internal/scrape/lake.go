package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
)

var (
	lakeLevelRe = regexp.MustCompile(`(?i)lake\s*(?:level|elevation)[^\d-]{0,40}(\d{3}(?:\.\d+)?)`)
	waterTempRe = regexp.MustCompile(`(?i)water\s*temp(?:erature)?[^\d-]{0,40}(\d{2,3}(?:\.\d+)?)`)
	riverRe     = regexp.MustCompile(`(?i)(?:river|tailwater)\s*(?:level|stage)[^\d-]{0,40}(\d+(?:\.\d+)?)`)
)

// LakeScraper pulls lake level, water temperature, and the downstream river
// gauge from the lake conditions page. Readings the page does not carry stay
// nil; the scrape succeeds even when every field is missing.
type LakeScraper struct {
	pageURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewLakeScraper creates a scraper for the given conditions page.
func NewLakeScraper(pageURL string, client *http.Client, logger *slog.Logger) *LakeScraper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &LakeScraper{pageURL: pageURL, client: client, logger: logger}
}

// Fetch retrieves and parses the page. A transport or status failure is an
// error for the caller to collapse; a page with no recognizable readings is
// a success with nil fields.
func (l *LakeScraper) Fetch(ctx context.Context) (domain.LakeConditions, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.pageURL, nil)
	if err != nil {
		return domain.LakeConditions{}, fmt.Errorf("lake: create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.LakeConditions{}, fmt.Errorf("lake: fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.LakeConditions{}, fmt.Errorf("lake: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.LakeConditions{}, fmt.Errorf("lake: read body: %w", err)
	}

	cond := ParseLakeConditions(string(body))
	l.logger.Debug("lake conditions scraped",
		"lake_level", cond.LakeLevel != nil,
		"water_temp", cond.WaterTemp != nil,
		"river_level", cond.RiverLevel != nil,
	)
	return cond, nil
}

// ParseLakeConditions extracts readings from raw page text. Pure function;
// unmatched fields stay nil.
func ParseLakeConditions(page string) domain.LakeConditions {
	return domain.LakeConditions{
		LakeLevel:   firstNumber(lakeLevelRe, page),
		WaterTemp:   firstNumber(waterTempRe, page),
		RiverLevel:  firstNumber(riverRe, page),
		LastUpdated: domain.Now().UTC().Format(time.RFC3339),
	}
}

func firstNumber(re *regexp.Regexp, s string) *float64 {
	m := re.FindStringSubmatch(s)
	if len(m) != 2 {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}
