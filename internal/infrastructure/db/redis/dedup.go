package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDedupTTL = 24 * time.Hour

// Deduplicator records which handlers already processed an event, so
// redelivery after a crash or retry does not repeat side effects.
// Key format: marketplace:handled:<handler>:<event_id>
type Deduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeduplicator wraps client. Marks expire after ttl, or a day when ttl is
// not positive.
func NewDeduplicator(client *redis.Client, ttl time.Duration) *Deduplicator {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &Deduplicator{client: client, ttl: ttl}
}

// IsHandled reports whether handler already succeeded for eventID.
func (d *Deduplicator) IsHandled(ctx context.Context, handler, eventID string) (bool, error) {
	n, err := d.client.Exists(ctx, handledKey(handler, eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

func (d *Deduplicator) MarkHandled(ctx context.Context, handler, eventID string) error {
	return d.client.Set(ctx, handledKey(handler, eventID), "1", d.ttl).Err()
}
