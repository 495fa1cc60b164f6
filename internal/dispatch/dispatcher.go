// Package dispatch enqueues refresh tasks onto the shared job stream.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RefreshTask describes one requested refresh
type RefreshTask struct {
	TaskID    string           `json:"task_id"`
	SportID   int              `json:"sport_id"`
	LeagueIDs []int            `json:"league_ids"`
	MatchType models.MatchType `json:"match_type"`
	QueuedAt  time.Time        `json:"queued_at"`
}

// Dispatcher publishes refresh tasks to a Redis stream consumed by the
// sync workers. Enqueuing is fire-and-forget from the read path.
type Dispatcher struct {
	client *redis.Client
	stream string
}

// NewDispatcher creates a new refresh dispatcher
func NewDispatcher(client *redis.Client, stream string) *Dispatcher {
	return &Dispatcher{
		client: client,
		stream: stream,
	}
}

// EnqueueRefresh publishes a refresh task for sport+leagues+matchType
func (d *Dispatcher) EnqueueRefresh(ctx context.Context, sportID int, leagueIDs []int, matchType models.MatchType) error {
	task := RefreshTask{
		TaskID:    uuid.New().String(),
		SportID:   sportID,
		LeagueIDs: leagueIDs,
		MatchType: matchType,
		QueuedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshaling refresh task: %w", err)
	}

	return d.client.XAdd(ctx, &redis.XAddArgs{
		Stream: d.stream,
		Values: map[string]interface{}{
			"data":    string(data),
			"task_id": task.TaskID,
			"sport":   fmt.Sprintf("%d", sportID),
			"type":    string(matchType),
		},
	}).Err()
}
