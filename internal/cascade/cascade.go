// Package cascade implements the tiered read path: authoritative store,
// fast cache, stale cache, empty. It never surfaces an upstream data
// problem to the caller as long as any tier can answer.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/classifier"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/config"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/db"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/metrics"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
)

// ErrExhausted signals that every tier including the stale-cache rescue
// failed. The handler maps it to 503.
var ErrExhausted = errors.New("all read tiers exhausted")

// Client-cache TTLs per tier
const (
	TTLDatabase = 30 * time.Second
	TTLFallback = 10 * time.Second
	TTLEmpty    = 5 * time.Second
)

// storeLookback bounds how far back tier 1 scans for live candidates.
// Wide enough to cover any sport's plausible duration plus slack.
const storeLookback = 12 * time.Hour

const (
	storeTimeout    = 5 * time.Second
	cacheTimeout    = 2 * time.Second
	dispatchTimeout = 3 * time.Second
)

// MatchCache is the slice of the cache layer the cascade reads
type MatchCache interface {
	ReadMatches(ctx context.Context, kind models.MatchType, sportID int, leagueIDs []int) ([]models.Match, error)
	ReadStaleMatches(ctx context.Context, kind models.MatchType, sportID int, leagueIDs []int) ([]models.Match, error)
}

// CooldownGate guards refresh enqueuing
type CooldownGate interface {
	Claim(ctx context.Context, sportID int, matchType models.MatchType) (bool, error)
}

// RefreshDispatcher enqueues background refresh tasks
type RefreshDispatcher interface {
	EnqueueRefresh(ctx context.Context, sportID int, leagueIDs []int, matchType models.MatchType) error
}

// Result is one cascade answer
type Result struct {
	Matches     []classifier.Classified
	Source      models.DataSource
	CacheStatus models.CacheStatus
	ClientTTL   time.Duration
}

// Cascade orchestrates the tiered read path
type Cascade struct {
	store      db.MatchStore
	cache      MatchCache
	cooldown   CooldownGate
	dispatcher RefreshDispatcher
	clf        *classifier.Classifier
	cfg        *config.Config
}

// New creates a cascade
func New(store db.MatchStore, cache MatchCache, cooldown CooldownGate, dispatcher RefreshDispatcher, clf *classifier.Classifier, cfg *config.Config) *Cascade {
	return &Cascade{
		store:      store,
		cache:      cache,
		cooldown:   cooldown,
		dispatcher: dispatcher,
		clf:        clf,
		cfg:        cfg,
	}
}

// GetMatches walks the tiers and returns the first non-empty answer.
// A panic or error inside the tiers triggers one stale-cache rescue before
// the caller sees ErrExhausted.
func (c *Cascade) GetMatches(ctx context.Context, sportID int, leagueIDs []int, matchType models.MatchType) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[cascade] recovered from panic: %v", r)
			result, err = c.rescue(ctx, sportID, leagueIDs, matchType)
		}
	}()

	result, err = c.walkTiers(ctx, sportID, leagueIDs, matchType)
	if err != nil {
		log.Printf("[cascade] tiers failed for sport=%d type=%s: %v", sportID, matchType, err)
		return c.rescue(ctx, sportID, leagueIDs, matchType)
	}
	return result, nil
}

func (c *Cascade) walkTiers(ctx context.Context, sportID int, leagueIDs []int, matchType models.MatchType) (*Result, error) {
	now := time.Now().UTC()

	// Tier 1: authoritative store.
	matches, storeErr := c.queryStore(ctx, sportID, leagueIDs, now)
	if storeErr != nil {
		log.Printf("[cascade] store unavailable: %v", storeErr)
	} else {
		selected := c.clf.SelectForListing(matches, matchType, now)
		if len(selected) > 0 {
			if c.needsRefresh(selected, now) {
				c.triggerRefresh(sportID, leagueIDs, matchType)
			}
			metrics.RecordTierServed(string(models.SourceDatabase))
			return &Result{
				Matches:     selected,
				Source:      models.SourceDatabase,
				CacheStatus: models.CacheCurrent,
				ClientTTL:   TTLDatabase,
			}, nil
		}
	}

	// Tiers 2+3: fast cache with per-key stale fallback.
	cached, cacheErr := c.readCache(ctx, sportID, leagueIDs, matchType, false)
	if cacheErr != nil {
		log.Printf("[cascade] cache unavailable: %v", cacheErr)
		if storeErr != nil {
			// Nothing left to serve from; let the rescue try stale keys
			// once more before giving up.
			return nil, fmt.Errorf("store and cache both failed: %w", cacheErr)
		}
	} else {
		selected := c.clf.SelectForListing(cached, matchType, now)
		if len(selected) > 0 {
			c.triggerRefresh(sportID, leagueIDs, matchType)
			metrics.RecordTierServed(string(models.SourceCacheFallback))
			return &Result{
				Matches:     selected,
				Source:      models.SourceCacheFallback,
				CacheStatus: models.CacheStale,
				ClientTTL:   TTLFallback,
			}, nil
		}
	}

	// Tier 4: nothing anywhere; ask for a refresh and return empty.
	c.triggerRefresh(sportID, leagueIDs, matchType)
	metrics.RecordTierServed(string(models.SourceNone))
	return &Result{
		Matches:     []classifier.Classified{},
		Source:      models.SourceNone,
		CacheStatus: models.CacheEmpty,
		ClientTTL:   TTLEmpty,
	}, nil
}

// rescue is the last stale-data attempt after a tier failure
func (c *Cascade) rescue(ctx context.Context, sportID int, leagueIDs []int, matchType models.MatchType) (*Result, error) {
	metrics.RecordCascadeRescue()

	cached, err := c.readCache(ctx, sportID, leagueIDs, matchType, true)
	if err != nil {
		return nil, ErrExhausted
	}

	selected := c.clf.SelectForListing(cached, matchType, time.Now().UTC())
	if len(selected) == 0 {
		return nil, ErrExhausted
	}

	metrics.RecordTierServed(string(models.SourceCacheFallback))
	return &Result{
		Matches:     selected,
		Source:      models.SourceCacheFallback,
		CacheStatus: models.CacheStale,
		ClientTTL:   TTLFallback,
	}, nil
}

func (c *Cascade) queryStore(ctx context.Context, sportID int, leagueIDs []int, now time.Time) ([]models.Match, error) {
	queryCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	from := now.Add(-storeLookback)
	to := now.Add(c.cfg.PrematchHorizon())

	return c.store.GetMatches(queryCtx, db.MatchFilters{
		SportID:   sportID,
		LeagueIDs: leagueIDs,
		FromTime:  &from,
		ToTime:    &to,
	})
}

// readCache gathers the cached lists for every kind the listing covers
func (c *Cascade) readCache(ctx context.Context, sportID int, leagueIDs []int, matchType models.MatchType, staleOnly bool) ([]models.Match, error) {
	readCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	kinds := []models.MatchType{matchType}
	if matchType == models.MatchTypeAll {
		kinds = []models.MatchType{models.MatchTypeLive, models.MatchTypePrematch}
	}

	var out []models.Match
	for _, kind := range kinds {
		var (
			matches []models.Match
			err     error
		)
		if staleOnly {
			matches, err = c.cache.ReadStaleMatches(readCtx, kind, sportID, leagueIDs)
		} else {
			matches, err = c.cache.ReadMatches(readCtx, kind, sportID, leagueIDs)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

// needsRefresh checks the conditional-refresh rule: the oldest lastUpdated
// among returned matches older than the configured threshold (or absent)
// asks for a background refresh.
func (c *Cascade) needsRefresh(selected []classifier.Classified, now time.Time) bool {
	oldest := now
	for i := range selected {
		lu := selected[i].Match.LastUpdated
		if lu.IsZero() {
			return true
		}
		if lu.Before(oldest) {
			oldest = lu
		}
	}
	return now.Sub(oldest) > c.cfg.StaleAfter()
}

// triggerRefresh enqueues a refresh without blocking the request. The
// cooldown claim makes concurrent bursts converge on a single enqueue per
// window (best-effort).
func (c *Cascade) triggerRefresh(sportID int, leagueIDs []int, matchType models.MatchType) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		won, err := c.cooldown.Claim(ctx, sportID, matchType)
		if err != nil {
			log.Printf("[cascade] cooldown claim failed: %v", err)
			return
		}
		if !won {
			metrics.RecordRefreshSuppressed()
			return
		}

		if err := c.dispatcher.EnqueueRefresh(ctx, sportID, leagueIDs, matchType); err != nil {
			log.Printf("[cascade] refresh enqueue failed: %v", err)
			return
		}
		metrics.RecordRefreshEnqueued()
	}()
}
