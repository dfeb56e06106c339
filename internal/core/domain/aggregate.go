package domain

import "time"

// EventRecorder accumulates the events raised by every aggregate loaded in one
// unit-of-work scope. It is owned by that scope and is not safe for concurrent
// use; scopes are single-threaded.
type EventRecorder struct {
	domainEvents      []Event
	integrationEvents []Event
	now               func() time.Time
}

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{now: func() time.Time { return time.Now().UTC() }}
}

func (r *EventRecorder) record(kind EventKind, aggregateID string, t EventType, payload any) {
	e := Event{
		ID:          NewID(),
		Type:        t,
		Kind:        kind,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  r.now(),
	}
	if kind == KindIntegration {
		r.integrationEvents = append(r.integrationEvents, e)
		return
	}
	r.domainEvents = append(r.domainEvents, e)
}

// DomainEvents returns a copy of the queued domain events in raise order.
func (r *EventRecorder) DomainEvents() []Event {
	return append([]Event(nil), r.domainEvents...)
}

// IntegrationEvents returns a copy of the queued integration events in raise order.
func (r *EventRecorder) IntegrationEvents() []Event {
	return append([]Event(nil), r.integrationEvents...)
}

// Drain returns both queues and empties them. The unit of work calls it
// exactly once per committed scope.
func (r *EventRecorder) Drain() (domainEvents, integrationEvents []Event) {
	domainEvents, integrationEvents = r.domainEvents, r.integrationEvents
	r.domainEvents, r.integrationEvents = nil, nil
	return domainEvents, integrationEvents
}

// Reset discards everything queued, used on rollback.
func (r *EventRecorder) Reset() {
	r.domainEvents, r.integrationEvents = nil, nil
}

func (r *EventRecorder) clear(kind EventKind, aggregateID string) {
	keep := func(in []Event) []Event {
		out := in[:0]
		for _, e := range in {
			if e.AggregateID != aggregateID {
				out = append(out, e)
			}
		}
		return out
	}
	if kind == KindIntegration {
		r.integrationEvents = keep(r.integrationEvents)
		return
	}
	r.domainEvents = keep(r.domainEvents)
}

func filterByAggregate(in []Event, aggregateID string) []Event {
	var out []Event
	for _, e := range in {
		if e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	return out
}

// AggregateRoot is embedded by every aggregate. Events it raises go to the
// recorder handed in at construction; other aggregates never see them.
type AggregateRoot struct {
	Entity
	version  int64
	recorder *EventRecorder
}

// NewAggregateRoot binds an aggregate identity to a recorder. A nil recorder
// gets a private one, which is what standalone construction in tests wants.
func NewAggregateRoot(id string, version int64, rec *EventRecorder) AggregateRoot {
	if rec == nil {
		rec = NewEventRecorder()
	}
	return AggregateRoot{Entity: NewEntity(id), version: version, recorder: rec}
}

// Version is the persisted document version used for optimistic concurrency.
func (a *AggregateRoot) Version() int64 { return a.version }

// SetVersion is called by repositories after a successful write.
func (a *AggregateRoot) SetVersion(v int64) { a.version = v }

func (a *AggregateRoot) Recorder() *EventRecorder { return a.recorder }

func (a *AggregateRoot) AddDomainEvent(t EventType, payload any) {
	a.recorder.record(KindDomain, a.ID(), t, payload)
}

func (a *AggregateRoot) AddIntegrationEvent(t EventType, payload any) {
	a.recorder.record(KindIntegration, a.ID(), t, payload)
}

func (a *AggregateRoot) DomainEvents() []Event {
	return filterByAggregate(a.recorder.domainEvents, a.ID())
}

func (a *AggregateRoot) IntegrationEvents() []Event {
	return filterByAggregate(a.recorder.integrationEvents, a.ID())
}

func (a *AggregateRoot) ClearDomainEvents() { a.recorder.clear(KindDomain, a.ID()) }

func (a *AggregateRoot) ClearIntegrationEvents() { a.recorder.clear(KindIntegration, a.ID()) }
