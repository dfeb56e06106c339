package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/ports"
	"github.com/sharethrift/marketplace/internal/infrastructure/db/memory"
	"github.com/sharethrift/marketplace/internal/infrastructure/moderation"
)

// syncBus delivers every event inline, in publish order, so a test observes
// the whole cascade of handlers before the triggering call returns.
type syncBus struct {
	t *testing.T

	mu        sync.Mutex
	handlers  map[domain.EventType][]ports.EventHandler
	published []domain.Event
}

func newSyncBus(t *testing.T) *syncBus {
	return &syncBus{t: t, handlers: map[domain.EventType][]ports.EventHandler{}}
}

func (b *syncBus) Register(et domain.EventType, _ string, h ports.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[et] = append(b.handlers[et], h)
}

func (b *syncBus) Publish(ctx context.Context, events ...domain.Event) error {
	for _, e := range events {
		b.mu.Lock()
		b.published = append(b.published, e)
		hs := append([]ports.EventHandler(nil), b.handlers[e.Type]...)
		b.mu.Unlock()
		for _, h := range hs {
			if err := h(ctx, e); err != nil {
				b.t.Errorf("handler for %s failed: %v", e.Type, err)
			}
		}
	}
	return nil
}

func (b *syncBus) count(et domain.EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.published {
		if e.Type == et {
			n++
		}
	}
	return n
}

type harness struct {
	bus    *syncBus
	store  *memory.Store
	log    *memory.EventLog
	uow    *memory.UnitOfWork
	index  *memory.SearchIndex
	blobs  *memory.BlobStore
	admins *memory.AdminUserRepository

	accounts *AccountService
	listings *ListingService
	appeals  *AppealService
	users    *UserService
	resolver *PassportResolver
	handlers *EventHandlers
}

func newHarness(t *testing.T, blockedTerms ...string) *harness {
	t.Helper()
	return newHarnessWith(t, moderation.Config{BlockedTerms: blockedTerms})
}

// newHarnessWith picks the reviewer from cfg the same way the server does.
func newHarnessWith(t *testing.T, cfg moderation.Config) *harness {
	t.Helper()
	h := &harness{
		bus:    newSyncBus(t),
		store:  memory.NewStore(),
		log:    memory.NewEventLog(),
		index:  memory.NewSearchIndex(),
		blobs:  memory.NewBlobStore(),
		admins: memory.NewAdminUserRepository(),
	}
	logger := zerolog.Nop()
	h.uow = memory.NewUnitOfWork(h.store, h.bus, h.log, logger)
	h.accounts = NewAccountService(h.uow, logger)
	h.listings = NewListingService(h.uow, h.blobs, logger)
	h.appeals = NewAppealService(h.uow, logger)
	h.users = NewUserService(h.uow, logger)
	h.resolver = NewPassportResolver(h.uow, h.admins, h.users, logger)
	h.handlers = NewEventHandlers(h.uow, h.accounts, moderation.NewReviewer(cfg), h.index, h.blobs, logger)
	h.handlers.Register(h.bus)
	return h
}
