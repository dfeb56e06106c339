package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	AggregateRoot
}

func newProbe(id string, rec *EventRecorder) *probe {
	return &probe{AggregateRoot: NewAggregateRoot(id, 0, rec)}
}

func TestAggregateRoot_QueuesAreSeparate(t *testing.T) {
	p := newProbe("a1", nil)
	p.AddDomainEvent(EventRoleAdded, RolePayload{AccountID: "a1", RoleID: "r1"})
	p.AddIntegrationEvent(EventAccountCreated, AccountCreatedPayload{AccountID: "a1"})
	p.AddDomainEvent(EventContactAdded, ContactPayload{AccountID: "a1"})

	domainEvents := p.DomainEvents()
	require.Len(t, domainEvents, 2)
	assert.Equal(t, EventRoleAdded, domainEvents[0].Type)
	assert.Equal(t, EventContactAdded, domainEvents[1].Type)
	assert.Equal(t, KindDomain, domainEvents[0].Kind)

	integration := p.IntegrationEvents()
	require.Len(t, integration, 1)
	assert.Equal(t, KindIntegration, integration[0].Kind)
	assert.Equal(t, "a1", integration[0].AggregateID)
	assert.NotEmpty(t, integration[0].ID)
	assert.False(t, integration[0].OccurredAt.IsZero())
}

func TestAggregateRoot_SharedRecorderKeepsAggregatesApart(t *testing.T) {
	rec := NewEventRecorder()
	a := newProbe("a", rec)
	b := newProbe("b", rec)

	a.AddDomainEvent(EventRoleAdded, nil)
	b.AddDomainEvent(EventRoleDeleted, nil)
	b.AddIntegrationEvent(EventListingPublished, nil)

	require.Len(t, a.DomainEvents(), 1)
	require.Len(t, b.DomainEvents(), 1)
	assert.Empty(t, a.IntegrationEvents())

	b.ClearDomainEvents()
	assert.Empty(t, b.DomainEvents())
	assert.Len(t, a.DomainEvents(), 1, "clearing one aggregate must not touch another")
	assert.Len(t, rec.IntegrationEvents(), 1)
}

func TestEventRecorder_DrainEmptiesQueues(t *testing.T) {
	rec := NewEventRecorder()
	p := newProbe("p", rec)
	p.AddDomainEvent(EventRoleAdded, nil)
	p.AddIntegrationEvent(EventAccountCreated, nil)

	domainEvents, integration := rec.Drain()
	assert.Len(t, domainEvents, 1)
	assert.Len(t, integration, 1)

	domainEvents, integration = rec.Drain()
	assert.Empty(t, domainEvents)
	assert.Empty(t, integration)
}

func TestEventRecorder_Reset(t *testing.T) {
	rec := NewEventRecorder()
	p := newProbe("p", rec)
	p.AddDomainEvent(EventRoleAdded, nil)
	p.AddIntegrationEvent(EventAccountCreated, nil)

	rec.Reset()

	assert.Empty(t, rec.DomainEvents())
	assert.Empty(t, rec.IntegrationEvents())
}

func TestAggregateRoot_Version(t *testing.T) {
	p := &probe{AggregateRoot: NewAggregateRoot("p", 3, nil)}
	assert.Equal(t, int64(3), p.Version())
	p.SetVersion(4)
	assert.Equal(t, int64(4), p.Version())
}

func TestErrors_UnwrapToSentinels(t *testing.T) {
	cases := []struct {
		err    error
		target error
	}{
		{NewPermissionError("op"), ErrPermissionDenied},
		{NewValidationError("field", "bad"), ErrValidation},
		{NewInvalidStateTransitionError("A", "B"), ErrInvalidStateTransition},
		{NewInvariantViolationError("stale"), ErrInvariantViolation},
	}
	for _, tc := range cases {
		assert.True(t, errors.Is(tc.err, tc.target), "%v should unwrap to %v", tc.err, tc.target)
	}
	assert.Equal(t, "invalid state transition from A to B", NewInvalidStateTransitionError("A", "B").Error())
}
