package oddsfeed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/providers"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
)

type fakeProvider struct {
	name   string
	quotes []models.OddsQuote
	err    error
	delay  time.Duration
}

func (p *fakeProvider) Name() string {
	return p.name
}

func (p *fakeProvider) FetchOdds(ctx context.Context, eventID string, sportID int) ([]models.OddsQuote, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.quotes, nil
}

type fakeLineups struct {
	players []string
	err     error
}

func (l *fakeLineups) Lineups(ctx context.Context, eventID string) ([]string, error) {
	return l.players, l.err
}

func newTestAggregator(lineups providers.LineupSource, clients ...providers.Client) *Aggregator {
	return NewAggregator(clients, lineups, time.Second)
}

func testMatch() *models.Match {
	return &models.Match{
		EventID:  "ev1",
		SportID:  1,
		HomeTeam: "Arsenal",
		AwayTeam: "Chelsea",
	}
}

func mlQuote(provider string, price float64) models.OddsQuote {
	return models.OddsQuote{
		MarketName: "Moneyline",
		Selection:  "Home",
		Price:      price,
		Period:     "Game",
		Status:     models.QuoteOpen,
		Provider:   provider,
	}
}

func TestAggregate_DeduplicatesAcrossProviders(t *testing.T) {
	agg := newTestAggregator(nil,
		&fakeProvider{name: "oddsline", quotes: []models.OddsQuote{mlQuote("oddsline", 1.85)}},
		&fakeProvider{name: "betvista", quotes: []models.OddsQuote{mlQuote("betvista", 1.85)}},
	)

	odds, total, providerNames, err := agg.Aggregate(context.Background(), testMatch(), Options{
		MarketType: models.MarketMoneyLine,
		Period:     "all",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(odds) != 1 {
		t.Fatalf("expected one deduplicated record, got %d (total %d)", len(odds), total)
	}
	if len(odds[0].Providers) != 2 {
		t.Errorf("expected both providers listed, got %v", odds[0].Providers)
	}
	if odds[0].Price != 1.85 {
		t.Errorf("expected representative price 1.85, got %v", odds[0].Price)
	}
	if len(providerNames) != 2 {
		t.Errorf("expected 2 contributing providers, got %v", providerNames)
	}
}

func TestAggregate_DisagreeingPricesStaySeparate(t *testing.T) {
	agg := newTestAggregator(nil,
		&fakeProvider{name: "oddsline", quotes: []models.OddsQuote{mlQuote("oddsline", 1.85)}},
		&fakeProvider{name: "betvista", quotes: []models.OddsQuote{mlQuote("betvista", 1.90)}},
	)

	odds, _, _, err := agg.Aggregate(context.Background(), testMatch(), Options{
		MarketType: models.MarketMoneyLine,
		Period:     "all",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(odds) != 2 {
		t.Fatalf("price disagreement must stay separate, got %d records", len(odds))
	}
	for _, o := range odds {
		if len(o.Providers) != 1 {
			t.Errorf("expected single provider per record, got %v", o.Providers)
		}
	}
}

func TestAggregate_EventFiltering(t *testing.T) {
	quotes := []models.OddsQuote{
		// Explicit id for another event: dropped.
		{EventID: "other", MarketName: "Moneyline", Selection: "Home", Price: 2.0, Period: "Game", Provider: "oddsline"},
		// Explicit id for our event: kept.
		{EventID: "ev1", MarketName: "Moneyline", Selection: "Away", Price: 3.1, Period: "Game", Provider: "oddsline"},
		// No id, standard market: trusted.
		{MarketName: "Over/Under 2.5", Selection: "Over", Price: 1.95, Period: "Game", Provider: "oddsline"},
		// No id, special market, selection names a team: kept.
		{MarketName: "Specials", BetType: "prop", Selection: "Arsenal Clean Sheet", Price: 4.2, Period: "Game", Provider: "oddsline"},
		// No id, special market, no team match: dropped.
		{MarketName: "Specials", BetType: "prop", Selection: "Any Player Hat-trick", Price: 9.0, Period: "Game", Provider: "oddsline"},
		// Unknown market: dropped.
		{MarketName: "Correct Score", Selection: "2-1", Price: 8.5, Period: "Game", Provider: "oddsline"},
	}

	agg := newTestAggregator(nil, &fakeProvider{name: "oddsline", quotes: quotes})

	odds, _, _, err := agg.Aggregate(context.Background(), testMatch(), Options{
		MarketType: models.MarketAll,
		Period:     "all",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(odds) != 3 {
		t.Fatalf("expected 3 surviving records, got %d: %+v", len(odds), odds)
	}
	for _, o := range odds {
		if o.Selection == "Home" {
			t.Error("cross-event quote leaked through")
		}
		if o.Selection == "Any Player Hat-trick" {
			t.Error("unmatched special quote leaked through")
		}
	}
}

func TestAggregate_FailedProviderIsIsolated(t *testing.T) {
	agg := newTestAggregator(nil,
		&fakeProvider{name: "oddsline", err: errors.New("connection refused")},
		&fakeProvider{name: "betvista", quotes: []models.OddsQuote{mlQuote("betvista", 1.90)}},
	)

	odds, _, providerNames, err := agg.Aggregate(context.Background(), testMatch(), Options{
		MarketType: models.MarketMoneyLine,
		Period:     "all",
	})
	if err != nil {
		t.Fatalf("failed provider must not abort aggregation: %v", err)
	}
	if len(odds) != 1 {
		t.Fatalf("expected the healthy provider's record, got %d", len(odds))
	}
	if len(providerNames) != 1 || providerNames[0] != "betvista" {
		t.Errorf("expected only betvista to contribute, got %v", providerNames)
	}
}

func TestAggregate_SlowProviderTimesOut(t *testing.T) {
	slow := &fakeProvider{
		name:   "oddsline",
		quotes: []models.OddsQuote{mlQuote("oddsline", 1.85)},
		delay:  500 * time.Millisecond,
	}
	fast := &fakeProvider{name: "betvista", quotes: []models.OddsQuote{mlQuote("betvista", 1.90)}}

	agg := NewAggregator([]providers.Client{slow, fast}, nil, 50*time.Millisecond)

	odds, _, _, err := agg.Aggregate(context.Background(), testMatch(), Options{
		MarketType: models.MarketMoneyLine,
		Period:     "all",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(odds) != 1 || odds[0].Providers[0] != "betvista" {
		t.Fatalf("expected only the fast provider's record, got %+v", odds)
	}
}

func TestAggregate_SynthesizesPlayerProps(t *testing.T) {
	lineups := &fakeLineups{players: []string{"Bukayo Saka", "Cole Palmer"}}
	agg := newTestAggregator(lineups, &fakeProvider{name: "oddsline"})

	odds, _, _, err := agg.Aggregate(context.Background(), testMatch(), Options{
		MarketType: models.MarketPlayerProps,
		Period:     "all",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Soccer: 4 prop types, Over/Under pair each, 2 players.
	if len(odds) != 16 {
		t.Fatalf("expected 16 synthetic records, got %d", len(odds))
	}
	for _, o := range odds {
		if o.Source != models.SourceGenerated {
			t.Errorf("synthetic prop not tagged generated: %+v", o)
		}
		if o.MarketType != models.MarketPlayerProps {
			t.Errorf("wrong market type: %s", o.MarketType)
		}
	}
}

func TestAggregate_NoPropsWithoutLineups(t *testing.T) {
	lineups := &fakeLineups{err: errors.New("lineup service down")}
	agg := newTestAggregator(lineups, &fakeProvider{name: "oddsline"})

	odds, total, _, err := agg.Aggregate(context.Background(), testMatch(), Options{
		MarketType: models.MarketPlayerProps,
		Period:     "all",
	})
	if err != nil {
		t.Fatalf("lineup failure must not abort aggregation: %v", err)
	}
	if len(odds) != 0 || total != 0 {
		t.Fatalf("expected empty result, got %d odds", len(odds))
	}
}

func TestAggregate_PropsNotSynthesizedForStandardRequests(t *testing.T) {
	lineups := &fakeLineups{players: []string{"Bukayo Saka"}}
	agg := newTestAggregator(lineups, &fakeProvider{name: "oddsline", quotes: []models.OddsQuote{mlQuote("oddsline", 1.85)}})

	odds, _, _, err := agg.Aggregate(context.Background(), testMatch(), Options{
		MarketType: models.MarketMoneyLine,
		Period:     "all",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, o := range odds {
		if o.Source == models.SourceGenerated {
			t.Fatalf("synthetic props must only appear when requested: %+v", o)
		}
	}
}

func TestAggregate_PeriodFilter(t *testing.T) {
	quotes := []models.OddsQuote{
		{MarketName: "Moneyline", Selection: "Home", Price: 1.85, Period: "Game", Provider: "oddsline"},
		{MarketName: "Moneyline", Selection: "Home", Price: 2.05, Period: "1st Half", Provider: "oddsline"},
	}
	agg := newTestAggregator(nil, &fakeProvider{name: "oddsline", quotes: quotes})

	odds, total, _, err := agg.Aggregate(context.Background(), testMatch(), Options{
		MarketType: models.MarketMoneyLine,
		Period:     "1st Half",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected pre-filter total 2, got %d", total)
	}
	if len(odds) != 1 || odds[0].Period != "1st Half" {
		t.Fatalf("expected only the 1st Half record, got %+v", odds)
	}
}
