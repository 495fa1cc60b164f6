package oddsfeed

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/providers"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/metrics"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
)

// Options narrows an aggregation to one market type and/or period.
// MarketAll / "all" disable the respective filter.
type Options struct {
	MarketType models.MarketType
	Period     string
}

// Aggregator merges quotes from all configured providers for one match
type Aggregator struct {
	providers []providers.Client
	lineups   providers.LineupSource
	timeout   time.Duration
}

// NewAggregator creates an aggregator over the given provider clients
func NewAggregator(clients []providers.Client, lineups providers.LineupSource, timeout time.Duration) *Aggregator {
	return &Aggregator{
		providers: clients,
		lineups:   lineups,
		timeout:   timeout,
	}
}

// dedupKey identifies logically identical offers across providers
type dedupKey struct {
	marketType models.MarketType
	selection  string
	line       string
	price      string
}

func keyFor(mt models.MarketType, q *models.OddsQuote) dedupKey {
	line := ""
	if q.Line != nil {
		line = fmt.Sprintf("%.2f", *q.Line)
	}
	rounded := math.Round(q.Price*100) / 100
	return dedupKey{
		marketType: mt,
		selection:  strings.ToLower(strings.TrimSpace(q.Selection)),
		line:       line,
		price:      fmt.Sprintf("%.2f", rounded),
	}
}

// Aggregate fetches quotes from every provider concurrently, filters them
// to the target event, deduplicates across providers, and applies the
// requested market/period filters. It returns the surviving records, the
// pre-filter total, and the list of providers that contributed.
//
// Quotes at genuinely different prices stay separate records: consumers
// must see provider disagreement, never an average.
func (a *Aggregator) Aggregate(ctx context.Context, match *models.Match, opts Options) ([]models.AggregatedOdds, int, []string, error) {
	lists := a.fetchAll(ctx, match)

	merged := make(map[dedupKey]*models.AggregatedOdds)
	var order []dedupKey
	contributed := make(map[string]bool)

	for _, quotes := range lists {
		for i := range quotes {
			q := &quotes[i]

			marketType := NormalizeMarket(q.MarketName, q.BetType)
			if marketType == models.MarketUnknown {
				metrics.RecordQuoteDropped("unknown_market")
				continue
			}
			if !belongsToEvent(q, marketType, match) {
				metrics.RecordQuoteDropped("event_mismatch")
				continue
			}

			key := keyFor(marketType, q)
			if rec, ok := merged[key]; ok {
				if !containsString(rec.Providers, q.Provider) {
					rec.Providers = append(rec.Providers, q.Provider)
				}
			} else {
				merged[key] = &models.AggregatedOdds{
					MarketType: marketType,
					Selection:  q.Selection,
					Line:       q.Line,
					Price:      q.Price, // first-seen representative
					Period:     q.Period,
					Status:     q.Status,
					Providers:  []string{q.Provider},
					Source:     models.SourceProvider,
				}
				order = append(order, key)
			}
			contributed[q.Provider] = true
		}
	}

	out := make([]models.AggregatedOdds, 0, len(order))
	for _, key := range order {
		out = append(out, *merged[key])
	}

	if opts.MarketType == models.MarketPlayerProps || opts.MarketType == models.MarketAll {
		out = append(out, a.synthesizeProps(ctx, match)...)
	}

	total := len(out)
	out = filterOdds(out, opts)

	providerNames := make([]string, 0, len(contributed))
	for name := range contributed {
		providerNames = append(providerNames, name)
	}
	sort.Strings(providerNames)

	return out, total, providerNames, nil
}

// fetchAll issues one fetch per provider in parallel, each bounded by the
// configured timeout. A failed or slow provider contributes an empty list
// and never aborts the others.
func (a *Aggregator) fetchAll(ctx context.Context, match *models.Match) [][]models.OddsQuote {
	lists := make([][]models.OddsQuote, len(a.providers))

	var wg sync.WaitGroup
	for i, client := range a.providers {
		wg.Add(1)
		go func(i int, client providers.Client) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			quotes, err := client.FetchOdds(fetchCtx, match.EventID, match.SportID)
			if err != nil {
				log.Printf("[aggregator] provider %s failed for %s: %v", client.Name(), match.EventID, err)
				metrics.RecordProviderError(client.Name())
				return
			}
			lists[i] = quotes
		}(i, client)
	}
	wg.Wait()

	return lists
}

// belongsToEvent decides whether a quote is for the target match.
// Explicit event IDs are authoritative. Without one, standard markets are
// trusted (the provider query was already event- or league-scoped); special
// markets must name one of the teams or they are dropped to prevent
// cross-event leakage.
func belongsToEvent(q *models.OddsQuote, marketType models.MarketType, match *models.Match) bool {
	if q.EventID != "" {
		return q.EventID == match.EventID
	}
	if IsStandardMarket(marketType) {
		return true
	}
	return selectionNamesTeam(q.Selection, match)
}

func selectionNamesTeam(selection string, match *models.Match) bool {
	s := strings.ToLower(selection)
	if home := strings.ToLower(match.HomeTeam); home != "" && strings.Contains(s, home) {
		return true
	}
	if away := strings.ToLower(match.AwayTeam); away != "" && strings.Contains(s, away) {
		return true
	}
	return false
}

func filterOdds(odds []models.AggregatedOdds, opts Options) []models.AggregatedOdds {
	filterMarket := opts.MarketType != "" && opts.MarketType != models.MarketAll
	filterPeriod := opts.Period != "" && opts.Period != "all"
	if !filterMarket && !filterPeriod {
		return odds
	}

	out := make([]models.AggregatedOdds, 0, len(odds))
	for _, o := range odds {
		if filterMarket && o.MarketType != opts.MarketType {
			continue
		}
		if filterPeriod && o.Period != opts.Period {
			continue
		}
		out = append(out, o)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
