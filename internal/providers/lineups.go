package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LineupClient fetches player names for a match from the lineup service.
// Implements LineupSource.
type LineupClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLineupClient creates a lineup client
func NewLineupClient(baseURL string, timeout time.Duration) *LineupClient {
	return &LineupClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Lineups returns the player names announced for an event
func (c *LineupClient) Lineups(ctx context.Context, eventID string) ([]string, error) {
	url := fmt.Sprintf("%s/api/v1/lineups/%s", c.baseURL, eventID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("lineup API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var payload struct {
		Players []string `json:"players"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return payload.Players, nil
}
