package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

type recordingBus struct {
	mu     sync.Mutex
	events []domain.Event
}

func (b *recordingBus) Register(domain.EventType, string, ports.EventHandler) {}

func (b *recordingBus) Publish(_ context.Context, events ...domain.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
	return nil
}

func newUnitOfWork() (*UnitOfWork, *recordingBus, *EventLog) {
	bus := &recordingBus{}
	log := NewEventLog()
	return NewUnitOfWork(NewStore(), bus, log, zerolog.Nop()), bus, log
}

func createUser(t *testing.T, uow *UnitOfWork, email string) *user.PersonalUser {
	t.Helper()
	var out *user.PersonalUser
	err := uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		u, err := r.Users.GetNewInstance(ctx, email, "Test", "User")
		if err != nil {
			return err
		}
		out, err = r.Users.Save(ctx, u)
		return err
	})
	require.NoError(t, err)
	return out
}

func createAccount(t *testing.T, uow *UnitOfWork, userID, handle string) *account.Account {
	t.Helper()
	var out *account.Account
	err := uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		a, err := r.Accounts.GetNewInstance(ctx, account.Owner{UserID: userID, Name: "Test", Handle: handle})
		if err != nil {
			return err
		}
		out, err = r.Accounts.Save(ctx, a)
		return err
	})
	require.NoError(t, err)
	return out
}

func TestUnitOfWork_CommitPublishesEvents(t *testing.T) {
	uow, bus, log := newUnitOfWork()

	u := createUser(t, uow, "Ann@Example.com")

	assert.Equal(t, int64(1), u.Version())
	require.Len(t, bus.events, 1)
	assert.Equal(t, domain.EventPersonalUserCreated, bus.events[0].Type)
	assert.Equal(t, u.ID(), bus.events[0].AggregateID)
	assert.Equal(t, bus.events, log.Events())

	err := uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		got, err := r.Users.GetByEmail(ctx, " ANN@example.com ")
		if err != nil {
			return err
		}
		assert.Equal(t, u.ID(), got.ID())
		assert.Equal(t, int64(1), got.Version())
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, bus.events, 1, "read-only scope publishes nothing")
}

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	uow, bus, log := newUnitOfWork()
	boom := errors.New("boom")

	var id string
	err := uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		u, err := r.Users.GetNewInstance(ctx, "ann@example.com", "Ann", "")
		if err != nil {
			return err
		}
		id = u.ID()
		if _, err := r.Users.Save(ctx, u); err != nil {
			return err
		}
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Empty(t, bus.events)
	assert.Empty(t, log.Events())

	err = uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		_, err := r.Users.Get(ctx, id)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUnitOfWork_ScopeReadsItsOwnWrites(t *testing.T) {
	uow, _, _ := newUnitOfWork()
	u := createUser(t, uow, "ann@example.com")

	err := uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		got, err := r.Users.Get(ctx, u.ID())
		if err != nil {
			return err
		}
		if err := got.SetProfile("Anne", "Smith"); err != nil {
			return err
		}
		if _, err := r.Users.Save(ctx, got); err != nil {
			return err
		}
		again, err := r.Users.Get(ctx, u.ID())
		if err != nil {
			return err
		}
		assert.Equal(t, "Anne", again.FirstName())
		assert.Equal(t, int64(2), again.Version())

		// A second save in the same scope keeps the first expectation.
		if err := again.SetProfile("Annie", "Smith"); err != nil {
			return err
		}
		_, err = r.Users.Save(ctx, again)
		return err
	})
	require.NoError(t, err)
}

func TestUnitOfWork_StaleVersionConflicts(t *testing.T) {
	uow, bus, _ := newUnitOfWork()
	u := createUser(t, uow, "ann@example.com")
	before := len(bus.events)

	load := func() *user.PersonalUser {
		var out *user.PersonalUser
		require.NoError(t, uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
			var err error
			out, err = r.Users.Get(ctx, u.ID())
			return err
		}))
		return out
	}
	save := func(target *user.PersonalUser) error {
		return uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
			_, err := r.Users.Save(ctx, target)
			return err
		})
	}

	first, second := load(), load()
	require.NoError(t, first.SetBlocked(true, "staff"))
	require.NoError(t, second.SetProfile("Other", "Name"))

	require.NoError(t, save(first))
	err := save(second)

	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Len(t, bus.events, before, "a conflicting scope publishes nothing")
	assert.True(t, load().IsBlocked())
}

func TestUnitOfWork_DuplicateEmailRejected(t *testing.T) {
	uow, _, _ := newUnitOfWork()
	createUser(t, uow, "ann@example.com")

	err := uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		u, err := r.Users.GetNewInstance(ctx, "ANN@example.com", "Ann", "")
		if err != nil {
			return err
		}
		_, err = r.Users.Save(ctx, u)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUnitOfWork_HandleUniqueness(t *testing.T) {
	uow, _, _ := newUnitOfWork()
	first := createAccount(t, uow, "u1", "shared")
	second := createAccount(t, uow, "u2", "other")

	err := uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		a, err := r.Accounts.Get(ctx, second.ID())
		if err != nil {
			return err
		}
		if err := a.SetHandle("SHARED"); err != nil {
			return err
		}
		_, err = r.Accounts.Save(ctx, a)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrHandleTaken)

	err = uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		a, err := r.Accounts.GetByHandle(ctx, "Shared")
		if err != nil {
			return err
		}
		assert.Equal(t, first.ID(), a.ID())

		accs, err := r.Accounts.GetByUserID(ctx, "u2")
		if err != nil {
			return err
		}
		require.Len(t, accs, 1)
		assert.Equal(t, "other", accs[0].Handle())
		return nil
	})
	require.NoError(t, err)
}

func TestUnitOfWork_HandleUniquenessWithinScope(t *testing.T) {
	uow, bus, _ := newUnitOfWork()

	err := uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		for _, userID := range []string{"u1", "u2"} {
			a, err := r.Accounts.GetNewInstance(ctx, account.Owner{UserID: userID, Name: "Test", Handle: "twin"})
			if err != nil {
				return err
			}
			if _, err := r.Accounts.Save(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrHandleTaken)
	assert.Empty(t, bus.events, "nothing committed")
}

func TestUnitOfWork_DeleteListing(t *testing.T) {
	uow, _, _ := newUnitOfWork()
	acc := createAccount(t, uow, "u1", "owner")

	var id string
	require.NoError(t, uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		l, err := r.Listings.GetNewInstance(ctx, acc.ID(), "Bike")
		if err != nil {
			return err
		}
		id = l.ID()
		_, err = r.Listings.Save(ctx, l)
		return err
	}))

	require.NoError(t, uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		ls, err := r.Listings.GetByAccountID(ctx, acc.ID())
		if err != nil {
			return err
		}
		require.Len(t, ls, 1)
		return r.Listings.Delete(ctx, id)
	}))

	err := uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		_, err := r.Listings.Get(ctx, id)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = uow.WithTransaction(context.Background(), passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		return r.Listings.Delete(ctx, id)
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeduplicator(t *testing.T) {
	ctx := context.Background()
	d := NewDeduplicator()

	handled, err := d.IsHandled(ctx, "index-listing", "e1")
	require.NoError(t, err)
	assert.False(t, handled)

	require.NoError(t, d.MarkHandled(ctx, "index-listing", "e1"))

	handled, _ = d.IsHandled(ctx, "index-listing", "e1")
	assert.True(t, handled)
	handled, _ = d.IsHandled(ctx, "purge-listing", "e1")
	assert.False(t, handled, "marks are per handler")
}

func TestSearchIndex(t *testing.T) {
	ctx := context.Background()
	idx := NewSearchIndex()

	require.NoError(t, idx.Index(ctx, ports.ListingDocument{ListingID: "b", Tags: []string{"Bikes"}}))
	require.NoError(t, idx.Index(ctx, ports.ListingDocument{ListingID: "a", Tags: []string{"bikes", "outdoor"}}))
	require.NoError(t, idx.Index(ctx, ports.ListingDocument{ListingID: "c", Tags: []string{"books"}}))

	ids, err := idx.SearchByTag(ctx, "BIKES")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, idx.Remove(ctx, "a"))
	ids, _ = idx.SearchByTag(ctx, "bikes")
	assert.Equal(t, []string{"b"}, ids)

	ids, _ = idx.SearchByTag(ctx, "missing")
	assert.Empty(t, ids)
}

func TestBlobStore(t *testing.T) {
	ctx := context.Background()
	blobs := NewBlobStore()

	require.NoError(t, blobs.Put(ctx, "doc-1", strings.NewReader("content")))
	r, ok := blobs.Get("doc-1")
	require.True(t, ok)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))

	require.NoError(t, blobs.Delete(ctx, "doc-1"))
	_, ok = blobs.Get("doc-1")
	assert.False(t, ok)
}

func TestAdminUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAdminUserRepository()

	admin, err := user.NewAdminUser("a1", "Staff@Example.com", "Staff", "hash", user.AdminRole{Name: "moderator"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, admin)
	require.NoError(t, err)

	_, err = repo.Create(ctx, admin)
	assert.ErrorIs(t, err, domain.ErrUserExists)

	got, err := repo.FindByEmail(ctx, "STAFF@example.com")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
