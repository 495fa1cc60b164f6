// Package oddsfeed normalizes and aggregates odds quotes from multiple
// upstream providers into one canonical, deduplicated view.
package oddsfeed

import (
	"strings"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
)

// betTypeCodes maps structured provider bet-type codes to canonical market
// types. A known code short-circuits the free-text name scan, because
// provider codes are more reliable than display names.
var betTypeCodes = map[string]models.MarketType{
	"1x2":       models.MarketMoneyLine,
	"ml":        models.MarketMoneyLine,
	"moneyline": models.MarketMoneyLine,
	"ou":        models.MarketTotals,
	"total":     models.MarketTotals,
	"ah":        models.MarketSpreads,
	"handicap":  models.MarketSpreads,
	"spread":    models.MarketSpreads,
	"prop":      models.MarketPlayerProps,
	"player":    models.MarketPlayerProps,
}

// Keyword tables per canonical type, scanned in order. First match wins.
var (
	moneyLineKeywords = []string{
		"1x2", "match winner", "moneyline", "money line", "winner", "outright", "to win",
	}
	totalsKeywords = []string{
		"over/under", "total", "points total",
	}
	spreadsKeywords = []string{
		"handicap", "spread", "asian", "line",
	}
)

// NormalizeMarket maps a provider's raw market vocabulary to a canonical
// market type. Unrecognized markets come back MarketUnknown and must be
// dropped, never surfaced miscategorized.
func NormalizeMarket(rawMarketName, rawBetType string) models.MarketType {
	if rawBetType != "" {
		if mt, ok := betTypeCodes[strings.ToLower(strings.TrimSpace(rawBetType))]; ok {
			return mt
		}
	}

	name := strings.ToLower(rawMarketName)
	if name == "" {
		return models.MarketUnknown
	}

	for _, kw := range moneyLineKeywords {
		if strings.Contains(name, kw) {
			return models.MarketMoneyLine
		}
	}

	// "Player Total Goals" is a prop, not a totals market. Without a
	// structured bet-type code it stays unknown.
	if !strings.Contains(name, "player") {
		for _, kw := range totalsKeywords {
			if strings.Contains(name, kw) {
				return models.MarketTotals
			}
		}
	}

	for _, kw := range spreadsKeywords {
		if strings.Contains(name, kw) {
			return models.MarketSpreads
		}
	}

	return models.MarketUnknown
}

// IsStandardMarket reports whether a market type is one of the three
// standard markets providers scope to a single event.
func IsStandardMarket(mt models.MarketType) bool {
	return mt == models.MarketMoneyLine || mt == models.MarketSpreads || mt == models.MarketTotals
}
