package classifier

import (
	"testing"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/config"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
)

type recordingSink struct {
	suggested []string
}

func (s *recordingSink) SuggestFinish(eventID string) {
	s.suggested = append(s.suggested, eventID)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestIsLiveVisible_TerminalStatesNeverLive(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	clf := New(config.New(), nil)

	statuses := []models.LiveStatus{models.StatusCancelled, models.StatusFinished}
	for _, status := range statuses {
		// Every other field screams "live"; terminal status must win.
		m := &models.Match{
			EventID:        "ev1",
			SportID:        1,
			LiveStatus:     status,
			StartTime:      timePtr(now.Add(-30 * time.Minute)),
			HomeScore:      2,
			AwayScore:      1,
			HasOpenMarkets: true,
		}
		if clf.IsLiveVisible(m, now) {
			t.Errorf("status %d: expected not live", status)
		}
	}
}

func TestIsLiveVisible_FutureStartNeverLive(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	clf := New(config.New(), nil)

	// Live-betting window opened before kickoff: provider says Live but
	// the match has not started.
	m := &models.Match{
		EventID:    "ev2",
		SportID:    1,
		LiveStatus: models.StatusLive,
		StartTime:  timePtr(now.Add(2 * time.Hour)),
	}
	if clf.IsLiveVisible(m, now) {
		t.Error("future match must not be live even with live flag")
	}

	m.StartTime = nil
	if clf.IsLiveVisible(m, now) {
		t.Error("match without start time must not be live")
	}
}

func TestIsLiveVisible_PositiveSignals(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	clf := New(config.New(), nil)

	tests := []struct {
		name  string
		match models.Match
	}{
		{
			name: "explicit live flag",
			match: models.Match{
				EventID:    "ev3",
				SportID:    1,
				LiveStatus: models.StatusLive,
				StartTime:  timePtr(now.Add(-30 * time.Minute)),
			},
		},
		{
			name: "open markets after start",
			match: models.Match{
				EventID:        "ev4",
				SportID:        1,
				LiveStatus:     models.StatusScheduled,
				StartTime:      timePtr(now.Add(-10 * time.Minute)),
				HasOpenMarkets: true,
			},
		},
		{
			name: "score is evidence of play",
			match: models.Match{
				EventID:    "ev5",
				SportID:    1,
				LiveStatus: models.StatusScheduled,
				StartTime:  timePtr(now.Add(-40 * time.Minute)),
				HomeScore:  1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !clf.IsLiveVisible(&tt.match, now) {
				t.Errorf("expected live")
			}
		})
	}
}

func TestIsLiveVisible_TimeDecaySuggestsFinishOnce(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	sink := &recordingSink{}
	clf := New(config.New(), sink)

	// Soccer (sport 1, 3h bound), started 5 hours ago, no live signal.
	m := &models.Match{
		EventID:    "ev6",
		SportID:    1,
		LiveStatus: models.StatusScheduled,
		StartTime:  timePtr(now.Add(-5 * time.Hour)),
	}

	if clf.IsLiveVisible(m, now) {
		t.Error("match past max duration must not be live")
	}
	if len(sink.suggested) != 1 || sink.suggested[0] != "ev6" {
		t.Fatalf("expected exactly one finish suggestion for ev6, got %v", sink.suggested)
	}
}

func TestIsLiveVisible_StaleLiveFlagDecays(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	sink := &recordingSink{}
	clf := New(config.New(), sink)

	// Soccer match 5 hours in with a Live flag still set but no market or
	// score activity: the flag is a stuck feed.
	m := &models.Match{
		EventID:    "ev7",
		SportID:    1,
		LiveStatus: models.StatusLive,
		StartTime:  timePtr(now.Add(-5 * time.Hour)),
	}

	if clf.IsLiveVisible(m, now) {
		t.Error("stale live flag past max duration must not be live")
	}
	if len(sink.suggested) != 1 || sink.suggested[0] != "ev7" {
		t.Fatalf("expected exactly one finish suggestion for ev7, got %v", sink.suggested)
	}
}

func TestIsLiveVisible_ScoreBeatsTimeDecay(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	sink := &recordingSink{}
	clf := New(config.New(), sink)

	m := &models.Match{
		EventID:    "ev11",
		SportID:    1,
		LiveStatus: models.StatusScheduled,
		StartTime:  timePtr(now.Add(-5 * time.Hour)),
		HomeScore:  2,
	}

	if !clf.IsLiveVisible(m, now) {
		t.Error("score activity must win over time decay")
	}
	if len(sink.suggested) != 0 {
		t.Errorf("no suggestion expected, got %v", sink.suggested)
	}
}

func TestIsLiveVisible_GracePeriod(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	clf := New(config.New(), nil)

	// Started 10 minutes ago, no provider confirmation yet.
	m := &models.Match{
		EventID:    "ev8",
		SportID:    1,
		LiveStatus: models.StatusScheduled,
		StartTime:  timePtr(now.Add(-10 * time.Minute)),
	}

	if !clf.IsLiveVisible(m, now) {
		t.Error("recently started match should be live during grace period")
	}
}

func TestIsLiveVisible_PerSportDuration(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	clf := New(config.New(), nil)

	// 3.5 hours in: past soccer's 3h bound, within the 4h default bound.
	start := timePtr(now.Add(-210 * time.Minute))

	soccer := &models.Match{EventID: "ev9", SportID: 1, StartTime: start}
	other := &models.Match{EventID: "ev10", SportID: 7, StartTime: start}

	if clf.IsLiveVisible(soccer, now) {
		t.Error("soccer match past 3h with no signal should not be live")
	}
	if !clf.IsLiveVisible(other, now) {
		t.Error("4h-bound sport at 3.5h should still be in grace period")
	}
}

func TestClassifyForListing_Prematch(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	clf := New(config.New(), nil)

	tests := []struct {
		name  string
		match models.Match
		want  bool
	}{
		{
			name:  "starts tomorrow",
			match: models.Match{EventID: "p1", StartTime: timePtr(now.Add(24 * time.Hour))},
			want:  true,
		},
		{
			name:  "beyond horizon",
			match: models.Match{EventID: "p2", StartTime: timePtr(now.Add(72 * time.Hour))},
			want:  false,
		},
		{
			name:  "already started",
			match: models.Match{EventID: "p3", StartTime: timePtr(now.Add(-time.Hour))},
			want:  false,
		},
		{
			name:  "cancelled",
			match: models.Match{EventID: "p4", LiveStatus: models.StatusCancelled, StartTime: timePtr(now.Add(24 * time.Hour))},
			want:  false,
		},
		{
			name:  "no start time",
			match: models.Match{EventID: "p5"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clf.ClassifyForListing(&tt.match, models.MatchTypePrematch, now)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectForListing_AllPutsLiveFirst(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	clf := New(config.New(), nil)

	matches := []models.Match{
		{
			EventID:   "prematch1",
			SportID:   1,
			StartTime: timePtr(now.Add(24 * time.Hour)),
		},
		{
			EventID:    "live1",
			SportID:    1,
			LiveStatus: models.StatusLive,
			StartTime:  timePtr(now.Add(-10 * time.Minute)),
		},
	}

	selected := clf.SelectForListing(matches, models.MatchTypeAll, now)
	if len(selected) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(selected))
	}
	if selected[0].Match.EventID != "live1" || !selected[0].IsLive {
		t.Errorf("expected live match first, got %s", selected[0].Match.EventID)
	}
	if selected[1].IsLive {
		t.Errorf("prematch match flagged live")
	}
}

func TestSelectForListing_LiveOrdering(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	clf := New(config.New(), nil)

	matches := []models.Match{
		{
			EventID:    "older",
			SportID:    1,
			LiveStatus: models.StatusLive,
			StartTime:  timePtr(now.Add(-90 * time.Minute)),
		},
		{
			EventID:    "newer",
			SportID:    1,
			LiveStatus: models.StatusLive,
			StartTime:  timePtr(now.Add(-5 * time.Minute)),
		},
	}

	selected := clf.SelectForListing(matches, models.MatchTypeLive, now)
	if len(selected) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(selected))
	}
	if selected[0].Match.EventID != "newer" {
		t.Errorf("expected most recently started first, got %s", selected[0].Match.EventID)
	}
}

func TestSelectForListing_PrematchOrdering(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	clf := New(config.New(), nil)

	matches := []models.Match{
		{EventID: "later", StartTime: timePtr(now.Add(30 * time.Hour))},
		{EventID: "sooner", StartTime: timePtr(now.Add(2 * time.Hour))},
	}

	selected := clf.SelectForListing(matches, models.MatchTypePrematch, now)
	if len(selected) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(selected))
	}
	if selected[0].Match.EventID != "sooner" {
		t.Errorf("expected soonest first, got %s", selected[0].Match.EventID)
	}
}
