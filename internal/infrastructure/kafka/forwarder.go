// Package kafka forwards integration events to other bounded contexts over a
// Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/sharethrift/marketplace/internal/api/metrics"
	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

// HandlerName keys deduplication of forwarded events.
const HandlerName = "kafka-forward"

// IntegrationEvents are the event types other contexts subscribe to.
var IntegrationEvents = []domain.EventType{
	domain.EventAccountCreated,
	domain.EventPersonalUserCreated,
	domain.EventListingDraftPublishRequested,
	domain.EventListingPublished,
	domain.EventListingDeleted,
	domain.EventPhotoDeleted,
	domain.EventAppealRequestAccepted,
}

// Config names the brokers and the topic integration events go to.
type Config struct {
	Brokers []string
	Topic   string
}

// message is the wire form of a forwarded event.
type message struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Payload     any       `json:"payload"`
}

// Forwarder publishes integration events, keyed by aggregate id so one
// aggregate's events stay in one partition.
type Forwarder struct {
	client *kgo.Client
	topic  string
	log    zerolog.Logger
}

func NewForwarder(cfg Config, log zerolog.Logger) (*Forwarder, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Forwarder{client: client, topic: cfg.Topic, log: log}, nil
}

// Register subscribes the forwarder to every integration event type.
func (f *Forwarder) Register(bus ports.EventBus) {
	for _, t := range IntegrationEvents {
		bus.Register(t, HandlerName, f.Forward)
	}
}

func (f *Forwarder) Forward(ctx context.Context, e domain.Event) error {
	rec, err := Record(f.topic, e)
	if err != nil {
		return err
	}
	if err := f.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		metrics.IntegrationEventsForwardedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("produce %s: %w", e.Type, err)
	}
	metrics.IntegrationEventsForwardedTotal.WithLabelValues("ok").Inc()
	f.log.Debug().Str("event_id", e.ID).Str("event_type", string(e.Type)).Msg("integration event forwarded")
	return nil
}

// Close flushes buffered records and closes the client.
func (f *Forwarder) Close(ctx context.Context) {
	if err := f.client.Flush(ctx); err != nil {
		f.log.Warn().Err(err).Msg("kafka flush failed")
	}
	f.client.Close()
}

// Record encodes e as a Kafka record on topic.
func Record(topic string, e domain.Event) (*kgo.Record, error) {
	body, err := json.Marshal(message{
		ID:          e.ID,
		Type:        string(e.Type),
		AggregateID: e.AggregateID,
		OccurredAt:  e.OccurredAt.UTC(),
		Payload:     e.Payload,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Type, err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(e.AggregateID),
		Value: body,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(e.Type)},
			{Key: "event_id", Value: []byte(e.ID)},
		},
	}, nil
}
