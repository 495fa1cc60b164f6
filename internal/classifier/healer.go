package classifier

import (
	"context"
	"log"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
)

// StatusWriter is the slice of the store the healer needs
type StatusWriter interface {
	UpdateLiveStatus(ctx context.Context, eventID string, status models.LiveStatus) error
}

const healWriteTimeout = 3 * time.Second

// Healer consumes mark-finished suggestions and applies them to the store.
// Suggestions are fire-and-forget: a full queue drops the suggestion and a
// failed write is logged, never surfaced. Writes are idempotent, so
// concurrent requests racing to heal the same match are harmless.
type Healer struct {
	store       StatusWriter
	suggestions chan string
}

// NewHealer creates a healer with a bounded suggestion queue
func NewHealer(store StatusWriter, queueSize int) *Healer {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Healer{
		store:       store,
		suggestions: make(chan string, queueSize),
	}
}

// SuggestFinish implements SuggestionSink. Non-blocking.
func (h *Healer) SuggestFinish(eventID string) {
	select {
	case h.suggestions <- eventID:
	default:
		log.Printf("[healer] suggestion queue full, dropping %s", eventID)
	}
}

// Run consumes suggestions until ctx is cancelled
func (h *Healer) Run(ctx context.Context) {
	log.Printf("[healer] started")
	for {
		select {
		case <-ctx.Done():
			log.Printf("[healer] stopping")
			return
		case eventID := <-h.suggestions:
			h.heal(ctx, eventID)
		}
	}
}

func (h *Healer) heal(ctx context.Context, eventID string) {
	writeCtx, cancel := context.WithTimeout(ctx, healWriteTimeout)
	defer cancel()

	if err := h.store.UpdateLiveStatus(writeCtx, eventID, models.StatusFinished); err != nil {
		log.Printf("[healer] failed to mark %s finished: %v", eventID, err)
		return
	}
	log.Printf("[healer] marked %s finished", eventID)
}
