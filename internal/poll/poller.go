// Package poll schedules the per-kind refresh cycles and holds the latest
// successfully-fetched snapshot of each data kind. Readers always see the
// last good data; a failed cycle changes status, never content.
package poll

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
	"github.com/vincentandwood-dev/loz-watch/internal/observability"
)

// Kind names one independently-polled data set.
type Kind string

const (
	KindIncidents Kind = "incidents"
	KindWeather   Kind = "weather_alerts"
	KindTraffic   Kind = "traffic"
	KindLocations Kind = "locations"
	KindLake      Kind = "lake_conditions"
)

// Status is the refresh state of one kind. Every tick re-enters loading
// regardless of the prior outcome; the snapshot itself is untouched until
// the cycle settles, so readers never observe a data gap.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusErrored Status = "errored"
)

// cycleTimeout bounds a single refresh; a hung upstream must not wedge the
// scheduler slot past the next tick.
const cycleTimeout = 60 * time.Second

// Sources supplies the fetch function for each kind. The incidents fetch
// settles internally and cannot fail; the rest return errors that the
// poller absorbs.
type Sources struct {
	Incidents func(ctx context.Context) []domain.Incident
	Weather   func(ctx context.Context) ([]domain.WeatherAlert, error)
	Traffic   func(ctx context.Context) ([]domain.TrafficIncident, error)
	Locations func(ctx context.Context) ([]domain.Location, error)
	Lake      func(ctx context.Context) (domain.LakeConditions, error)
}

// Intervals holds the per-kind refresh periods.
type Intervals struct {
	Incidents time.Duration
	Weather   time.Duration
	Traffic   time.Duration
	Locations time.Duration
	Lake      time.Duration
}

// IncidentPublisher receives the merged incident list after each successful
// incidents cycle. Optional; publish failures are logged and dropped.
type IncidentPublisher interface {
	Publish(ctx context.Context, incidents []domain.Incident) error
}

// Poller runs one cron job per kind and swaps the corresponding snapshot
// field under a single lock when a cycle succeeds.
type Poller struct {
	sources   Sources
	intervals Intervals
	publisher IncidentPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	cron *cron.Cron

	mu        sync.RWMutex
	status    map[Kind]Status
	updatedAt map[Kind]time.Time
	incidents []domain.Incident
	weather   []domain.WeatherAlert
	traffic   []domain.TrafficIncident
	locations []domain.Location
	lake      domain.LakeConditions

	ready atomic.Bool
}

// New creates a Poller. publisher may be nil.
func New(sources Sources, intervals Intervals, publisher IncidentPublisher, logger *slog.Logger, metrics *observability.Metrics) *Poller {
	p := &Poller{
		sources:   sources,
		intervals: intervals,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		cron:      cron.New(),
		status:    make(map[Kind]Status),
		updatedAt: make(map[Kind]time.Time),
	}
	for _, k := range []Kind{KindIncidents, KindWeather, KindTraffic, KindLocations, KindLake} {
		p.status[k] = StatusIdle
	}
	return p
}

// Start runs every kind once immediately, then schedules the recurring
// cycles. The initial cycles run concurrently so a slow upstream does not
// delay the rest of the warm-up.
func (p *Poller) Start(ctx context.Context) error {
	jobs := []struct {
		kind     Kind
		interval time.Duration
		run      func(ctx context.Context)
	}{
		{KindIncidents, p.intervals.Incidents, p.refreshIncidents},
		{KindWeather, p.intervals.Weather, p.refreshWeather},
		{KindTraffic, p.intervals.Traffic, p.refreshTraffic},
		{KindLocations, p.intervals.Locations, p.refreshLocations},
		{KindLake, p.intervals.Lake, p.refreshLake},
	}

	for _, j := range jobs {
		j := j
		spec := fmt.Sprintf("@every %s", j.interval)
		if _, err := p.cron.AddFunc(spec, func() { p.runCycle(j.kind, j.run) }); err != nil {
			return fmt.Errorf("scheduling %s: %w", j.kind, err)
		}
	}

	var wg sync.WaitGroup
	for _, j := range jobs {
		j := j
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.runCycle(j.kind, j.run)
		}()
	}
	wg.Wait()

	p.cron.Start()
	p.metrics.PollerRunning.Set(1)
	p.logger.Info("poller started",
		"incidents_interval", p.intervals.Incidents,
		"weather_interval", p.intervals.Weather,
		"traffic_interval", p.intervals.Traffic,
		"locations_interval", p.intervals.Locations,
		"lake_interval", p.intervals.Lake)
	return ctx.Err()
}

// Stop halts the scheduler and waits for any in-flight cycle to finish.
func (p *Poller) Stop() {
	<-p.cron.Stop().Done()
	p.metrics.PollerRunning.Set(0)
	p.logger.Info("poller stopped")
}

// RefreshAll runs every kind once, synchronously. Used by the one-shot
// snapshot command.
func (p *Poller) RefreshAll(ctx context.Context) {
	p.runCycle(KindIncidents, p.refreshIncidents)
	p.runCycle(KindWeather, p.refreshWeather)
	p.runCycle(KindTraffic, p.refreshTraffic)
	p.runCycle(KindLocations, p.refreshLocations)
	p.runCycle(KindLake, p.refreshLake)
}

// CheckReadiness reports whether at least one kind has completed a
// successful cycle.
func (p *Poller) CheckReadiness(ctx context.Context) error {
	if !p.ready.Load() {
		return fmt.Errorf("no data kind has loaded yet")
	}
	return nil
}

func (p *Poller) runCycle(kind Kind, run func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	p.mu.Lock()
	p.status[kind] = StatusLoading
	p.mu.Unlock()

	start := time.Now()
	run(ctx)
	p.metrics.PollCycleDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
}

func (p *Poller) refreshIncidents(ctx context.Context) {
	incidents := p.sources.Incidents(ctx)
	p.store(KindIncidents, func() { p.incidents = incidents })

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, incidents); err != nil {
			p.logger.Warn("incident snapshot publish failed", "error", err)
			p.metrics.SnapshotPublishes.WithLabelValues("error").Inc()
		} else {
			p.metrics.SnapshotPublishes.WithLabelValues("success").Inc()
		}
	}
}

func (p *Poller) refreshWeather(ctx context.Context) {
	alerts, err := p.sources.Weather(ctx)
	if err != nil {
		p.fail(KindWeather, err)
		return
	}
	p.store(KindWeather, func() { p.weather = alerts })
}

func (p *Poller) refreshTraffic(ctx context.Context) {
	incidents, err := p.sources.Traffic(ctx)
	if err != nil {
		p.fail(KindTraffic, err)
		return
	}
	p.store(KindTraffic, func() { p.traffic = incidents })
}

func (p *Poller) refreshLocations(ctx context.Context) {
	locations, err := p.sources.Locations(ctx)
	if err != nil {
		p.fail(KindLocations, err)
		return
	}
	p.store(KindLocations, func() { p.locations = locations })
}

func (p *Poller) refreshLake(ctx context.Context) {
	conditions, err := p.sources.Lake(ctx)
	if err != nil {
		p.fail(KindLake, err)
		return
	}
	p.store(KindLake, func() { p.lake = conditions })
}

// store swaps in a new snapshot for kind and marks it loaded. apply runs
// under the write lock.
func (p *Poller) store(kind Kind, apply func()) {
	p.mu.Lock()
	apply()
	p.status[kind] = StatusLoaded
	p.updatedAt[kind] = domain.Now()
	p.mu.Unlock()

	p.ready.Store(true)
	p.metrics.PollCycles.WithLabelValues(string(kind), "loaded").Inc()
}

// fail marks the cycle errored. The previous snapshot stays in place.
func (p *Poller) fail(kind Kind, err error) {
	p.mu.Lock()
	p.status[kind] = StatusErrored
	p.mu.Unlock()

	p.metrics.PollCycles.WithLabelValues(string(kind), "errored").Inc()
	p.logger.Warn("refresh cycle failed, keeping previous snapshot",
		"kind", string(kind), "error", err)
}

// Incidents returns the latest merged incident list and its status.
func (p *Poller) Incidents() ([]domain.Incident, Status) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.incidents, p.status[KindIncidents]
}

// Weather returns the latest active weather alerts and their status.
func (p *Poller) Weather() ([]domain.WeatherAlert, Status) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.weather, p.status[KindWeather]
}

// Traffic returns the latest traffic incidents and their status.
func (p *Poller) Traffic() ([]domain.TrafficIncident, Status) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.traffic, p.status[KindTraffic]
}

// Locations returns the latest points of interest and their status.
func (p *Poller) Locations() ([]domain.Location, Status) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.locations, p.status[KindLocations]
}

// Lake returns the latest lake conditions and their status.
func (p *Poller) Lake() (domain.LakeConditions, Status) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lake, p.status[KindLake]
}

// UpdatedAt reports when a kind last loaded successfully; the zero time
// means it never has.
func (p *Poller) UpdatedAt(kind Kind) time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updatedAt[kind]
}
