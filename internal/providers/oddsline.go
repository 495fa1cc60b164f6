package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
)

// OddsLine bundles several events per response, so every quote carries the
// provider's event identifier.
type OddsLine struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewOddsLine creates an OddsLine client
func NewOddsLine(baseURL string, timeout time.Duration) *OddsLine {
	return &OddsLine{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "Mozilla/5.0 (compatible; FortunaBot/1.0)",
	}
}

// Name returns the provider identifier
func (c *OddsLine) Name() string {
	return "oddsline"
}

// oddsLinePayload is the provider-native response shape
type oddsLinePayload struct {
	Events []struct {
		ID      string `json:"id"`
		Markets []struct {
			Name     string `json:"name"`
			BetType  string `json:"bet_type"`
			Period   string `json:"period"`
			Outcomes []struct {
				Label  string   `json:"label"`
				Line   *float64 `json:"line"`
				Price  float64  `json:"price"`
				Status string   `json:"status"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"events"`
}

// FetchOdds fetches and parses odds for one event's league scope
func (c *OddsLine) FetchOdds(ctx context.Context, eventID string, sportID int) ([]models.OddsQuote, error) {
	url := fmt.Sprintf("%s/v2/odds?sport=%d&event=%s", c.baseURL, sportID, eventID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("oddsline API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var payload oddsLinePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	now := time.Now().UTC()
	var quotes []models.OddsQuote
	for _, ev := range payload.Events {
		for _, market := range ev.Markets {
			for _, o := range market.Outcomes {
				status := models.QuoteOpen
				if o.Status == "suspended" || o.Status == "closed" {
					status = models.QuoteClosed
				}
				quotes = append(quotes, models.OddsQuote{
					EventID:    ev.ID,
					MarketName: market.Name,
					BetType:    market.BetType,
					Selection:  o.Label,
					Line:       o.Line,
					Price:      o.Price,
					Period:     market.Period,
					Status:     status,
					Provider:   c.Name(),
					ObservedAt: now,
				})
			}
		}
	}

	return quotes, nil
}
