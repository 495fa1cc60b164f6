package models

import "time"

// MarketType is the canonical market vocabulary shared across providers
type MarketType string

const (
	MarketMoneyLine   MarketType = "money_line"
	MarketSpreads     MarketType = "spreads"
	MarketTotals      MarketType = "totals"
	MarketPlayerProps MarketType = "player_props"
	MarketUnknown     MarketType = "unknown"
	MarketAll         MarketType = "all"
)

// QuoteStatus is the offer state reported by a provider
type QuoteStatus string

const (
	QuoteOpen   QuoteStatus = "open"
	QuoteClosed QuoteStatus = "closed"
)

// OddsQuote is one provider's price for one outcome, pre-normalization.
// MarketName and BetType carry the provider's native vocabulary.
type OddsQuote struct {
	EventID    string      `json:"event_id,omitempty"` // empty when the provider omits it
	MarketName string      `json:"market_name"`
	BetType    string      `json:"bet_type,omitempty"` // structured code, preferred over MarketName
	Selection  string      `json:"selection"`
	Line       *float64    `json:"line,omitempty"`
	Price      float64     `json:"price"` // decimal odds, >= 1.0
	Period     string      `json:"period"`
	Status     QuoteStatus `json:"status"`
	Provider   string      `json:"provider"`
	ObservedAt time.Time   `json:"observed_at"`
}

// OddsSource distinguishes provider prices from synthesized ones
type OddsSource string

const (
	SourceProvider  OddsSource = "provider"
	SourceGenerated OddsSource = "generated"
)

// AggregatedOdds is the canonical, deduplicated odds record
type AggregatedOdds struct {
	MarketType MarketType  `json:"market_type"`
	Selection  string      `json:"selection"`
	Line       *float64    `json:"line,omitempty"`
	Price      float64     `json:"price"`
	Period     string      `json:"period"`
	Status     QuoteStatus `json:"status"`
	Providers  []string    `json:"providers"`
	Source     OddsSource  `json:"source"`
}

// OddsResponse is the envelope for match odds
type OddsResponse struct {
	MatchID      string           `json:"match_id"`
	MarketType   MarketType       `json:"market_type"`
	Period       string           `json:"period"`
	Odds         []AggregatedOdds `json:"odds"`
	TotalCount   int              `json:"total_count"`
	ShowingCount int              `json:"showing_count"`
	Providers    []string         `json:"providers"`
	SystemStatus string           `json:"system_status"`
	Warnings     []string         `json:"warnings,omitempty"`
}
