package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
	"github.com/redis/go-redis/v9"
)

// Cooldown gates refresh enqueuing so a burst of client requests does not
// flood the job queue. The claim is a single SET NX with TTL, so among
// concurrent callers at most one wins per window (best-effort).
type Cooldown struct {
	client *redis.Client
	window time.Duration
}

// NewCooldown creates a cooldown gate with the given window
func NewCooldown(client *redis.Client, window time.Duration) *Cooldown {
	return &Cooldown{
		client: client,
		window: window,
	}
}

// Claim returns true if the caller won the cooldown slot for this
// sport+matchType and may enqueue a refresh
func (c *Cooldown) Claim(ctx context.Context, sportID int, matchType models.MatchType) (bool, error) {
	key := fmt.Sprintf("refresh_cooldown:%d:%s", sportID, matchType)

	ok, err := c.client.SetNX(ctx, key, "1", c.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim cooldown: %w", err)
	}
	return ok, nil
}

// Clear removes a cooldown entry (for testing)
func (c *Cooldown) Clear(ctx context.Context, sportID int, matchType models.MatchType) error {
	key := fmt.Sprintf("refresh_cooldown:%d:%s", sportID, matchType)
	return c.client.Del(ctx, key).Err()
}
