package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/cascade"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/classifier"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/health"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
)

const localTimeLayout = "2006-01-02 15:04"

// MatchesHandler serves match listings through the read cascade
type MatchesHandler struct {
	cascade *cascade.Cascade
	monitor *health.Monitor
}

// NewMatchesHandler creates a matches handler
func NewMatchesHandler(c *cascade.Cascade, monitor *health.Monitor) *MatchesHandler {
	return &MatchesHandler{
		cascade: c,
		monitor: monitor,
	}
}

// HandleGetMatches returns a match listing
// GET /api/v1/matches?sport={id}&leagues={id,id}&type={live|prematch|all}&tz={IANA}
func (h *MatchesHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	sportID := parseIntParam(r, "sport", 0)
	if sportID <= 0 {
		respondError(w, http.StatusBadRequest, "sport is required", nil)
		return
	}

	leagueIDs, err := parseLeagueIDs(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	matchType := models.MatchType(r.URL.Query().Get("type"))
	if matchType == "" {
		matchType = models.MatchTypeAll
	}
	switch matchType {
	case models.MatchTypeLive, models.MatchTypePrematch, models.MatchTypeAll:
	default:
		respondError(w, http.StatusBadRequest, "type must be live, prematch or all", nil)
		return
	}

	loc := parseTimezone(r)

	result, err := h.cascade.GetMatches(r.Context(), sportID, leagueIDs, matchType)
	if err != nil {
		if errors.Is(err, cascade.ErrExhausted) {
			respondError(w, http.StatusServiceUnavailable, "match data temporarily unavailable", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to retrieve matches", err)
		return
	}

	status := h.monitor.CheckHealth(r.Context())

	resp := models.MatchesResponse{
		Matches:      buildViews(result.Matches, loc),
		Total:        len(result.Matches),
		DataSource:   result.Source,
		CacheStatus:  result.CacheStatus,
		SystemStatus: status.SystemStatus(),
		Warnings:     status.Warnings,
	}
	if !status.Healthy && resp.Total == 0 {
		resp.Message = "service temporarily degraded, match data may be incomplete"
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(result.ClientTTL/time.Second)))
	respondJSON(w, http.StatusOK, resp)
}

func parseTimezone(r *http.Request) *time.Location {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("[matches] unknown timezone %q, falling back to UTC", tz)
		return time.UTC
	}
	return loc
}

func buildViews(selected []classifier.Classified, loc *time.Location) []models.MatchView {
	views := make([]models.MatchView, 0, len(selected))
	for i := range selected {
		m := &selected[i].Match

		matchType := string(models.MatchTypePrematch)
		if selected[i].IsLive {
			matchType = string(models.MatchTypeLive)
		}

		var startUTC, startLocal string
		if m.StartTime != nil {
			startUTC = m.StartTime.UTC().Format(time.RFC3339)
			startLocal = m.StartTime.In(loc).Format(localTimeLayout)
		}

		views = append(views, models.MatchView{
			EventID:             m.EventID,
			SportID:             m.SportID,
			LeagueID:            m.LeagueID,
			HomeTeam:            m.HomeTeam,
			AwayTeam:            m.AwayTeam,
			HomeTeamID:          m.HomeTeamID,
			AwayTeamID:          m.AwayTeamID,
			StartTime:           startUTC,
			StartTimeLocal:      startLocal,
			MatchType:           matchType,
			BettingAvailability: m.HasOpenMarkets && !m.LiveStatus.IsTerminal(),
			LiveStatusID:        int(m.LiveStatus),
			HomeScore:           m.HomeScore,
			AwayScore:           m.AwayScore,
			HasOpenMarkets:      m.HasOpenMarkets,
		})
	}

	return views
}
