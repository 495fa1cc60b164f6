package oddsfeed

import (
	"context"
	"fmt"
	"log"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
)

// propType is one synthesizable player-prop market
type propType struct {
	name string
	line float64
}

// Sport IDs follow the upstream feed convention: 1 soccer, 2 basketball.
var propTypesBySport = map[int][]propType{
	1: {
		{name: "Goals", line: 0.5},
		{name: "Assists", line: 0.5},
		{name: "Shots", line: 1.5},
		{name: "Cards", line: 0.5},
	},
	2: {
		{name: "Points", line: 15.5},
		{name: "Rebounds", line: 5.5},
		{name: "Assists", line: 3.5},
		{name: "Steals", line: 0.5},
	},
}

var genericPropTypes = []propType{
	{name: "Points", line: 9.5},
	{name: "Assists", line: 1.5},
}

// Synthetic prices for generated props. These are placeholders, not
// provider-sourced, which is why every generated record carries
// Source=generated.
const (
	syntheticOverPrice  = 1.85
	syntheticUnderPrice = 1.95
)

// synthesizeProps emits an Over/Under pair per player per prop type for
// the match's sport. Lineup failures skip synthesis, they never abort the
// aggregation.
func (a *Aggregator) synthesizeProps(ctx context.Context, match *models.Match) []models.AggregatedOdds {
	if a.lineups == nil {
		return nil
	}

	players, err := a.lineups.Lineups(ctx, match.EventID)
	if err != nil {
		log.Printf("[aggregator] lineup fetch failed for %s: %v", match.EventID, err)
		return nil
	}
	if len(players) == 0 {
		return nil
	}

	propTypes, ok := propTypesBySport[match.SportID]
	if !ok {
		propTypes = genericPropTypes
	}

	out := make([]models.AggregatedOdds, 0, len(players)*len(propTypes)*2)
	for _, player := range players {
		for _, pt := range propTypes {
			line := pt.line
			out = append(out,
				models.AggregatedOdds{
					MarketType: models.MarketPlayerProps,
					Selection:  fmt.Sprintf("%s %s Over", player, pt.name),
					Line:       &line,
					Price:      syntheticOverPrice,
					Period:     "Game",
					Status:     models.QuoteOpen,
					Providers:  nil,
					Source:     models.SourceGenerated,
				},
				models.AggregatedOdds{
					MarketType: models.MarketPlayerProps,
					Selection:  fmt.Sprintf("%s %s Under", player, pt.name),
					Line:       &line,
					Price:      syntheticUnderPrice,
					Period:     "Game",
					Status:     models.QuoteOpen,
					Providers:  nil,
					Source:     models.SourceGenerated,
				},
			)
		}
	}

	return out
}
