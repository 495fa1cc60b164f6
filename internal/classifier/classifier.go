// Package classifier decides match visibility from disagreeing, late, or
// missing provider signals.
package classifier

import (
	"log"
	"sort"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/config"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
)

// SuggestionSink receives mark-finished suggestions emitted when the
// time-decay heuristic concludes a match must be over. The classifier
// never writes to the store itself.
type SuggestionSink interface {
	SuggestFinish(eventID string)
}

// Classifier applies the visibility rules for one match at a time.
// It is stateless and safe for concurrent use.
type Classifier struct {
	cfg  *config.Config
	sink SuggestionSink
}

// New creates a classifier. sink may be nil when self-healing is not wanted
// (e.g. when classifying cached copies).
func New(cfg *config.Config, sink SuggestionSink) *Classifier {
	return &Classifier{
		cfg:  cfg,
		sink: sink,
	}
}

// IsLiveVisible reports whether a match should appear in a live result set.
// Rules are checked in order; the first match wins:
//
//	1. Cancelled           -> false
//	2. Finished            -> false
//	3. no/future start     -> false (a live-betting window on an unstarted
//	                          match is not visible-live)
//	4. open markets + started -> true
//	5. any score           -> true
//	6. past the sport's max plausible duration -> false, suggest Finished
//	   (a bare Live flag past the bound is a stuck feed, not a signal)
//	7. started within bound -> true (Live flag, or grace period while
//	   waiting for provider confirmation)
func (c *Classifier) IsLiveVisible(m *models.Match, now time.Time) bool {
	if m.LiveStatus == models.StatusCancelled {
		return false
	}
	if m.LiveStatus == models.StatusFinished {
		return false
	}
	if m.StartTime == nil || m.StartTime.After(now) {
		return false
	}

	if m.HasOpenMarkets {
		return true
	}
	if m.HomeScore > 0 || m.AwayScore > 0 {
		return true
	}

	sinceStart := now.Sub(*m.StartTime)
	if sinceStart > c.cfg.MaxDuration(m.SportID) {
		// Past any plausible duration with no market or score activity:
		// the provider never told us this match ended, even if its Live
		// flag is still set.
		if c.sink != nil {
			c.sink.SuggestFinish(m.EventID)
		}
		return false
	}

	return true
}

// ClassifyForListing reports whether a match belongs in a listing of the
// given type.
func (c *Classifier) ClassifyForListing(m *models.Match, matchType models.MatchType, now time.Time) bool {
	switch matchType {
	case models.MatchTypeLive:
		return c.isLiveListed(m, now)
	case models.MatchTypePrematch:
		return c.isPrematchListed(m, now)
	case models.MatchTypeAll:
		return c.isLiveListed(m, now) || c.isPrematchListed(m, now)
	default:
		return false
	}
}

func (c *Classifier) isLiveListed(m *models.Match, now time.Time) bool {
	if m.LiveStatus.IsTerminal() {
		return false
	}
	return c.IsLiveVisible(m, now)
}

func (c *Classifier) isPrematchListed(m *models.Match, now time.Time) bool {
	if m.LiveStatus.IsTerminal() {
		return false
	}
	if m.StartTime == nil {
		// A TBD match has no window to place it in.
		log.Printf("[classifier] match %s has no start time, excluded from prematch", m.EventID)
		return false
	}
	if !m.StartTime.After(now) {
		return false
	}
	return m.StartTime.Sub(now) <= c.cfg.PrematchHorizon()
}

// Classified is a match with its one-time visibility evaluation attached.
// The rules (and their self-heal side effect) run once per match per
// listing; sorting and formatting reuse the stored result.
type Classified struct {
	Match  models.Match
	IsLive bool
}

// SelectForListing evaluates every match once, keeps those that belong in
// the listing, and sorts them per the listing's ordering rules:
// live: most recently started first; prematch: soonest first;
// all: live block first, then the live ordering key.
func (c *Classifier) SelectForListing(matches []models.Match, matchType models.MatchType, now time.Time) []Classified {
	out := make([]Classified, 0, len(matches))
	for i := range matches {
		m := &matches[i]

		var isLive, isPrematch bool
		switch matchType {
		case models.MatchTypeLive:
			isLive = c.isLiveListed(m, now)
		case models.MatchTypePrematch:
			isPrematch = c.isPrematchListed(m, now)
		case models.MatchTypeAll:
			isLive = c.isLiveListed(m, now)
			if !isLive {
				isPrematch = c.isPrematchListed(m, now)
			}
		}

		if isLive || isPrematch {
			out = append(out, Classified{Match: *m, IsLive: isLive})
		}
	}

	switch matchType {
	case models.MatchTypePrematch:
		sort.SliceStable(out, func(i, j int) bool {
			return startBefore(&out[i].Match, &out[j].Match)
		})
	case models.MatchTypeLive:
		sort.SliceStable(out, func(i, j int) bool {
			return liveOrder(&out[i].Match, &out[j].Match)
		})
	case models.MatchTypeAll:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].IsLive != out[j].IsLive {
				return out[i].IsLive
			}
			return liveOrder(&out[i].Match, &out[j].Match)
		})
	}

	return out
}

// liveOrder sorts by start time descending, breaking ties on last_updated
// descending. Matches with no start time go last.
func liveOrder(a, b *models.Match) bool {
	switch {
	case a.StartTime == nil && b.StartTime == nil:
		return a.LastUpdated.After(b.LastUpdated)
	case a.StartTime == nil:
		return false
	case b.StartTime == nil:
		return true
	case !a.StartTime.Equal(*b.StartTime):
		return a.StartTime.After(*b.StartTime)
	default:
		return a.LastUpdated.After(b.LastUpdated)
	}
}

// startBefore sorts by start time ascending, no-start-time last.
func startBefore(a, b *models.Match) bool {
	switch {
	case a.StartTime == nil:
		return false
	case b.StartTime == nil:
		return true
	default:
		return a.StartTime.Before(*b.StartTime)
	}
}
