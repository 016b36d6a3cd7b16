// Package aggregate merges incident lists from independently-failing
// sources into the single list the map displays.
package aggregate

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
	"github.com/vincentandwood-dev/loz-watch/internal/observability"
	"github.com/vincentandwood-dev/loz-watch/internal/scrape"
)

const (
	// maxIncidents caps the merged listing fed to the map.
	maxIncidents = 50

	// retention drops items older than this. Items whose timestamp is the
	// zero value (date never parsed) are kept and assumed recent.
	retention = 30 * 24 * time.Hour
)

// Aggregator fans out to all sources concurrently and settles: a failed
// source contributes an empty list and is logged, never propagated.
type Aggregator struct {
	sources []scrape.Source
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Aggregator over the given sources.
func New(sources []scrape.Source, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{sources: sources, logger: logger, metrics: metrics}
}

// Fetch runs one aggregation cycle: concurrent fetch of every source,
// merge, dedupe by URL (first-seen wins, in source order), retention
// filter, sort by recency, cap. It never returns an error; the worst
// outcome is an empty list.
func (a *Aggregator) Fetch(ctx context.Context) []domain.Incident {
	start := time.Now()
	results := make([][]domain.Incident, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src scrape.Source) {
			defer wg.Done()
			incidents, err := src.Fetch(ctx)
			if err != nil {
				a.logger.Warn("source fetch failed, contributing empty list",
					"source", src.Name(), "error", err)
				a.metrics.SourceFetches.WithLabelValues(src.Name(), "error").Inc()
				return
			}
			a.metrics.SourceFetches.WithLabelValues(src.Name(), "success").Inc()
			a.metrics.ArticlesExtracted.WithLabelValues(src.Name()).Add(float64(len(incidents)))
			results[i] = incidents
		}(i, src)
	}
	wg.Wait()

	merged := Merge(results...)
	a.metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	a.logger.Info("aggregation cycle complete",
		"sources", len(a.sources), "incidents", len(merged))
	return merged
}

// Merge combines incident lists: dedupe by source URL (first occurrence
// wins), drop items outside the retention window, sort newest first,
// truncate to the cap. Pure function, exported for tests and the snapshot
// command.
func Merge(lists ...[]domain.Incident) []domain.Incident {
	cutoff := domain.Now().Add(-retention)
	seen := make(map[string]bool)
	var merged []domain.Incident

	for _, list := range lists {
		for _, in := range list {
			key := in.SourceURL
			if key == "" {
				key = in.ID
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			if !in.Timestamp.IsZero() && in.Timestamp.Before(cutoff) {
				continue
			}
			merged = append(merged, in)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})

	if len(merged) > maxIncidents {
		merged = merged[:maxIncidents]
	}
	return merged
}
