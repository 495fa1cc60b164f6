// Package health samples side signals and annotates responses with
// degradation warnings.
package health

import (
	"context"
	"log"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/db"
)

// Degradation thresholds
const (
	failedJobWindow    = time.Hour
	failedJobLimit     = 5
	stalenessAge       = 6 * time.Hour
	stalenessRatioMax  = 0.8
	checkTimeout       = 2 * time.Second
)

// Component names reported in the degraded list
const (
	ComponentCache     = "cache"
	ComponentQueue     = "queue_processing"
	ComponentFreshness = "data_freshness"
)

// Pinger is anything with cache-style reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is one health snapshot
type Status struct {
	Healthy  bool     `json:"healthy"`
	Warnings []string `json:"warnings"`
	Degraded []string `json:"degraded"`
}

// SystemStatus is the one-word annotation carried on data responses
func (s *Status) SystemStatus() string {
	if s.Healthy {
		return "healthy"
	}
	return "degraded"
}

// Monitor runs the independent health checks. Each check failure degrades
// the status; none of them can abort the response.
type Monitor struct {
	cache Pinger
	store db.MatchStore
}

// NewMonitor creates a health monitor
func NewMonitor(cache Pinger, store db.MatchStore) *Monitor {
	return &Monitor{
		cache: cache,
		store: store,
	}
}

// CheckHealth runs every check and aggregates the result
func (m *Monitor) CheckHealth(ctx context.Context) *Status {
	status := &Status{
		Healthy:  true,
		Warnings: []string{},
		Degraded: []string{},
	}

	m.checkCache(ctx, status)
	m.checkFailedJobs(ctx, status)
	m.checkFreshness(ctx, status)

	status.Healthy = len(status.Degraded) == 0
	return status
}

func (m *Monitor) checkCache(ctx context.Context, status *Status) {
	pingCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := m.cache.Ping(pingCtx); err != nil {
		log.Printf("[health] cache ping failed: %v", err)
		status.Degraded = append(status.Degraded, ComponentCache)
		status.Warnings = append(status.Warnings, "cache unreachable")
	}
}

func (m *Monitor) checkFailedJobs(ctx context.Context, status *Status) {
	countCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	failed, err := m.store.CountFailedJobs(countCtx, time.Now().UTC().Add(-failedJobWindow))
	if err != nil {
		// A failing check degrades nothing by itself; it just can't vouch.
		log.Printf("[health] failed-job count unavailable: %v", err)
		return
	}
	if failed > failedJobLimit {
		status.Degraded = append(status.Degraded, ComponentQueue)
		status.Warnings = append(status.Warnings, "background job failure rate elevated")
	}
}

func (m *Monitor) checkFreshness(ctx context.Context, status *Status) {
	countCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	total, err := m.store.CountMatches(countCtx)
	if err != nil {
		log.Printf("[health] match count unavailable: %v", err)
		return
	}
	if total == 0 {
		return
	}

	stale, err := m.store.CountStaleMatches(countCtx, time.Now().UTC().Add(-stalenessAge))
	if err != nil {
		log.Printf("[health] stale count unavailable: %v", err)
		return
	}

	if float64(stale)/float64(total) > stalenessRatioMax {
		status.Degraded = append(status.Degraded, ComponentFreshness)
		status.Warnings = append(status.Warnings, "most match data is older than six hours")
	}
}
