package ports

import (
	"context"

	"github.com/sharethrift/marketplace/internal/core/domain"
)

// EventHandler reacts to one dispatched event. Handlers run outside the
// transaction that raised the event, may see the same event more than once,
// and must be idempotent.
type EventHandler func(ctx context.Context, e domain.Event) error

// EventBus delivers committed events to registered handlers at least once.
type EventBus interface {
	// Register subscribes handler under name. The name keys deduplication, so
	// it must be stable across restarts.
	Register(t domain.EventType, name string, handler EventHandler)
	Publish(ctx context.Context, events ...domain.Event) error
}

// Deduplicator remembers which (handler, event) pairs already succeeded.
type Deduplicator interface {
	IsHandled(ctx context.Context, handler, eventID string) (bool, error)
	MarkHandled(ctx context.Context, handler, eventID string) error
}

// EventLog keeps an append-only record of every committed event.
type EventLog interface {
	Append(ctx context.Context, events []domain.Event) error
}
