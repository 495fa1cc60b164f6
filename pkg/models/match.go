package models

import "time"

// LiveStatus is the provider-reported lifecycle state of a match
type LiveStatus int

const (
	StatusCancelled LiveStatus = -1
	StatusScheduled LiveStatus = 0
	StatusLive      LiveStatus = 1
	StatusFinished  LiveStatus = 2
)

// IsTerminal reports whether the status is absorbing (Finished/Cancelled).
// A terminal match must never be shown as live again.
func (s LiveStatus) IsTerminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// MatchType selects which slice of matches a listing returns
type MatchType string

const (
	MatchTypeLive     MatchType = "live"
	MatchTypePrematch MatchType = "prematch"
	MatchTypeAll      MatchType = "all"
)

// Match represents one sporting event as stored upstream
type Match struct {
	EventID        string     `json:"event_id"`
	SportID        int        `json:"sport_id"`
	LeagueID       int        `json:"league_id"`
	HomeTeam       string     `json:"home_team"`
	AwayTeam       string     `json:"away_team"`
	HomeTeamID     *int64     `json:"home_team_id"`
	AwayTeamID     *int64     `json:"away_team_id"`
	StartTime      *time.Time `json:"start_time"`       // nil for TBD matches
	LiveStatus     LiveStatus `json:"live_status"`
	HomeScore      int        `json:"home_score"`       // 0 also means "no score yet"
	AwayScore      int        `json:"away_score"`
	HasOpenMarkets bool       `json:"has_open_markets"`
	LastUpdated    time.Time  `json:"last_updated"`
}

// HasStarted reports whether the match has a known start time in the past
func (m *Match) HasStarted(now time.Time) bool {
	return m.StartTime != nil && !m.StartTime.After(now)
}

// MatchView is the wire shape of a match in listing responses
type MatchView struct {
	EventID             string `json:"event_id"`
	SportID             int    `json:"sport_id"`
	LeagueID            int    `json:"league_id"`
	HomeTeam            string `json:"home_team"`
	AwayTeam            string `json:"away_team"`
	HomeTeamID          *int64 `json:"home_team_id"`
	AwayTeamID          *int64 `json:"away_team_id"`
	StartTime           string `json:"start_time"`           // RFC3339, UTC
	StartTimeLocal      string `json:"start_time_local"`     // formatted in requested timezone
	MatchType           string `json:"match_type"`           // live or prematch
	BettingAvailability bool   `json:"betting_availability"`
	LiveStatusID        int    `json:"live_status_id"`
	HomeScore           int    `json:"home_score"`
	AwayScore           int    `json:"away_score"`
	HasOpenMarkets      bool   `json:"has_open_markets"`
}

// DataSource identifies which cascade tier produced a response
type DataSource string

const (
	SourceDatabase      DataSource = "database"
	SourceCacheFallback DataSource = "cache_fallback"
	SourceNone          DataSource = "none"
)

// CacheStatus describes the freshness of the returned data
type CacheStatus string

const (
	CacheCurrent CacheStatus = "current"
	CacheStale   CacheStatus = "stale"
	CacheEmpty   CacheStatus = "empty"
)

// MatchesResponse is the envelope for match listings
type MatchesResponse struct {
	Matches      []MatchView `json:"matches"`
	Total        int         `json:"total"`
	DataSource   DataSource  `json:"data_source"`
	CacheStatus  CacheStatus `json:"cache_status"`
	SystemStatus string      `json:"system_status"`
	Warnings     []string    `json:"warnings,omitempty"`
	Message      string      `json:"message,omitempty"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
