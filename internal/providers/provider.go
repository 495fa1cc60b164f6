// Package providers contains the upstream odds provider clients. Each
// provider returns quotes in its own native shape; parsers translate them
// into models.OddsQuote before aggregation.
package providers

import (
	"context"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
)

// Client is one upstream odds provider
type Client interface {
	Name() string
	FetchOdds(ctx context.Context, eventID string, sportID int) ([]models.OddsQuote, error)
}

// LineupSource supplies player names for a match. Used only for
// player-prop synthesis.
type LineupSource interface {
	Lineups(ctx context.Context, eventID string) ([]string, error)
}
