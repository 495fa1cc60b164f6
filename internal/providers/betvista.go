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

// BetVista scopes each query to a single event and omits event identifiers
// from its offers. Special markets from this provider are kept only when
// their selection text matches the event's team names (see the aggregator).
type BetVista struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewBetVista creates a BetVista client
func NewBetVista(baseURL string, timeout time.Duration) *BetVista {
	return &BetVista{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "Mozilla/5.0 (compatible; FortunaBot/1.0)",
	}
}

// Name returns the provider identifier
func (c *BetVista) Name() string {
	return "betvista"
}

// betVistaPayload is the provider-native response shape
type betVistaPayload struct {
	Offers []struct {
		Market   string   `json:"market"`
		Code     string   `json:"code"`
		Pick     string   `json:"pick"`
		Handicap *float64 `json:"handicap"`
		Odds     float64  `json:"odds"`
		Stage    string   `json:"stage"`
		Open     bool     `json:"open"`
	} `json:"offers"`
}

// FetchOdds fetches and parses odds for one event
func (c *BetVista) FetchOdds(ctx context.Context, eventID string, sportID int) ([]models.OddsQuote, error) {
	url := fmt.Sprintf("%s/api/offers/%s", c.baseURL, eventID)

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
		return nil, fmt.Errorf("betvista API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var payload betVistaPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	now := time.Now().UTC()
	quotes := make([]models.OddsQuote, 0, len(payload.Offers))
	for _, o := range payload.Offers {
		status := models.QuoteOpen
		if !o.Open {
			status = models.QuoteClosed
		}
		period := o.Stage
		if period == "" {
			period = "Game"
		}
		quotes = append(quotes, models.OddsQuote{
			MarketName: o.Market,
			BetType:    o.Code,
			Selection:  o.Pick,
			Line:       o.Handicap,
			Price:      o.Odds,
			Period:     period,
			Status:     status,
			Provider:   c.Name(),
			ObservedAt: now,
		})
	}

	return quotes, nil
}
