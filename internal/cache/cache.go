package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
	"github.com/redis/go-redis/v9"
)

// TTL constants
const (
	FastLiveTTL     = 60 * time.Second
	FastPrematchTTL = 5 * time.Minute
	StaleTTL        = 24 * time.Hour
	OddsTTL         = 10 * time.Second
)

// MatchCache reads and writes match lists in Redis.
// Each sport+league pair has a fast key and a longer-lived stale key
// written alongside it; readers fall back to the stale key when the
// fast key has expired.
type MatchCache struct {
	client *redis.Client
}

// NewMatchCache creates a new match cache
func NewMatchCache(client *redis.Client) *MatchCache {
	return &MatchCache{
		client: client,
	}
}

func fastKey(kind models.MatchType, sportID, leagueID int) string {
	return fmt.Sprintf("%s_matches:%d:%d", kind, sportID, leagueID)
}

func staleKey(kind models.MatchType, sportID, leagueID int) string {
	return fmt.Sprintf("%s_matches_stale:%d:%d", kind, sportID, leagueID)
}

func oddsKey(matchID string) string {
	return fmt.Sprintf("odds:%s", matchID)
}

// WriteMatches stores a match list under both the fast and the stale key
// for one sport+league
func (c *MatchCache) WriteMatches(ctx context.Context, kind models.MatchType, sportID, leagueID int, matches []models.Match) error {
	data, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("marshaling matches: %w", err)
	}

	fastTTL := FastLiveTTL
	if kind == models.MatchTypePrematch {
		fastTTL = FastPrematchTTL
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, fastKey(kind, sportID, leagueID), data, fastTTL)
	pipe.Set(ctx, staleKey(kind, sportID, leagueID), data, StaleTTL)

	_, err = pipe.Exec(ctx)
	return err
}

// ReadMatches retrieves cached matches for a sport across the given
// leagues, falling back to the stale key where the fast key misses.
// A missing league entry is skipped, not an error.
func (c *MatchCache) ReadMatches(ctx context.Context, kind models.MatchType, sportID int, leagueIDs []int) ([]models.Match, error) {
	var out []models.Match
	for _, leagueID := range leagueIDs {
		matches, err := c.readOne(ctx, fastKey(kind, sportID, leagueID))
		if err == redis.Nil {
			matches, err = c.readOne(ctx, staleKey(kind, sportID, leagueID))
		}
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

// ReadStaleMatches retrieves only the long-lived stale entries. Used as
// the last rescue tier when everything else has failed.
func (c *MatchCache) ReadStaleMatches(ctx context.Context, kind models.MatchType, sportID int, leagueIDs []int) ([]models.Match, error) {
	var out []models.Match
	for _, leagueID := range leagueIDs {
		matches, err := c.readOne(ctx, staleKey(kind, sportID, leagueID))
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

func (c *MatchCache) readOne(ctx context.Context, key string) ([]models.Match, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var matches []models.Match
	if err := json.Unmarshal([]byte(data), &matches); err != nil {
		return nil, fmt.Errorf("unmarshaling matches: %w", err)
	}
	return matches, nil
}

// WriteOdds stores an aggregated odds response for a short window
func (c *MatchCache) WriteOdds(ctx context.Context, matchID string, resp *models.OddsResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshaling odds: %w", err)
	}
	return c.client.Set(ctx, oddsKey(matchID), data, OddsTTL).Err()
}

// ReadOdds retrieves a recently aggregated odds response, if any
func (c *MatchCache) ReadOdds(ctx context.Context, matchID string) (*models.OddsResponse, error) {
	data, err := c.client.Get(ctx, oddsKey(matchID)).Result()
	if err != nil {
		return nil, err
	}

	var resp models.OddsResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling odds: %w", err)
	}
	return &resp, nil
}

// Ping checks cache connectivity
func (c *MatchCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
