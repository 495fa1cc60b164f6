package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/db"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/health"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/oddsfeed"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
	"github.com/go-chi/chi/v5"
)

// OddsCache holds recently aggregated odds responses for a short window
type OddsCache interface {
	ReadOdds(ctx context.Context, matchID string) (*models.OddsResponse, error)
	WriteOdds(ctx context.Context, matchID string, resp *models.OddsResponse) error
}

// OddsHandler serves aggregated match odds
type OddsHandler struct {
	store      db.MatchStore
	aggregator *oddsfeed.Aggregator
	cache      OddsCache
	monitor    *health.Monitor
}

// NewOddsHandler creates an odds handler
func NewOddsHandler(store db.MatchStore, aggregator *oddsfeed.Aggregator, cache OddsCache, monitor *health.Monitor) *OddsHandler {
	return &OddsHandler{
		store:      store,
		aggregator: aggregator,
		cache:      cache,
		monitor:    monitor,
	}
}

// HandleGetMatchOdds returns deduplicated odds for one match
// GET /api/v1/matches/{matchID}/odds?market={type}&period={period}
func (h *OddsHandler) HandleGetMatchOdds(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		respondError(w, http.StatusBadRequest, "match id is required", nil)
		return
	}

	marketType := models.MarketType(r.URL.Query().Get("market"))
	if marketType == "" {
		marketType = models.MarketAll
	}
	switch marketType {
	case models.MarketMoneyLine, models.MarketSpreads, models.MarketTotals,
		models.MarketPlayerProps, models.MarketAll:
	default:
		respondError(w, http.StatusBadRequest, "unknown market type", nil)
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "all"
	}

	ctx := r.Context()

	// Default-shaped requests can reuse a just-aggregated response.
	cacheable := marketType == models.MarketAll && period == "all"
	if cacheable && h.cache != nil {
		if cached, err := h.cache.ReadOdds(ctx, matchID); err == nil && cached != nil {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	match, err := h.store.GetMatch(ctx, matchID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "match store unavailable", err)
		return
	}
	if match == nil {
		respondError(w, http.StatusNotFound, "match not found", nil)
		return
	}

	odds, total, providerNames, err := h.aggregator.Aggregate(ctx, match, oddsfeed.Options{
		MarketType: marketType,
		Period:     period,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to aggregate odds", err)
		return
	}

	status := h.monitor.CheckHealth(ctx)

	resp := &models.OddsResponse{
		MatchID:      matchID,
		MarketType:   marketType,
		Period:       period,
		Odds:         odds,
		TotalCount:   total,
		ShowingCount: len(odds),
		Providers:    providerNames,
		SystemStatus: status.SystemStatus(),
		Warnings:     status.Warnings,
	}

	if cacheable && h.cache != nil {
		if err := h.cache.WriteOdds(ctx, matchID, resp); err != nil {
			log.Printf("[odds] response cache write failed for %s: %v", matchID, err)
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
