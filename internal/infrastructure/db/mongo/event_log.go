package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sharethrift/marketplace/internal/core/domain"
)

const collectionEvents = "domain_events"

// EventLog appends committed events to the domain_events audit collection.
type EventLog struct {
	coll *mongo.Collection
}

func NewEventLog(db *mongo.Database) *EventLog {
	return &EventLog{coll: db.Collection(collectionEvents)}
}

func (l *EventLog) Append(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(events))
	now := time.Now().UTC()
	for _, e := range events {
		docs = append(docs, bson.M{
			"_id":          e.ID,
			"type":         string(e.Type),
			"kind":         string(e.Kind),
			"aggregate_id": e.AggregateID,
			"payload":      e.Payload,
			"occurred_at":  e.OccurredAt.UTC(),
			"logged_at":    now,
		})
	}
	if _, err := l.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	return nil
}
