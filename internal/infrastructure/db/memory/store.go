// Package memory is a single-process storage driver. It keeps aggregate props
// in maps and gives a unit of work the same optimistic-version and
// uniqueness semantics as the Mongo driver.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
	"github.com/sharethrift/marketplace/internal/core/ports"
	"github.com/sharethrift/marketplace/internal/infrastructure/db"
)

const driverName = "memory"

// Store holds committed state.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]account.Props
	listings map[string]listing.Props
	appeals  map[string]appeal.Props
	users    map[string]user.Props
}

func NewStore() *Store {
	return &Store{
		accounts: map[string]account.Props{},
		listings: map[string]listing.Props{},
		appeals:  map[string]appeal.Props{},
		users:    map[string]user.Props{},
	}
}

// UnitOfWork implements ports.UnitOfWork over a Store.
type UnitOfWork struct {
	store  *Store
	bus    ports.EventBus
	events ports.EventLog
	logger zerolog.Logger
}

func NewUnitOfWork(store *Store, bus ports.EventBus, events ports.EventLog, logger zerolog.Logger) *UnitOfWork {
	return &UnitOfWork{store: store, bus: bus, events: events, logger: logger}
}

func (u *UnitOfWork) WithTransaction(ctx context.Context, p passport.Passport, fn func(ctx context.Context, repos ports.Repositories) error) (err error) {
	ctx, span := db.StartScope(ctx, driverName)
	defer func() { db.EndScope(span, driverName, err) }()

	s := newScope(u.store, p)
	repos := ports.Repositories{
		Accounts: &accountRepo{s},
		Listings: &listingRepo{s},
		Appeals:  &appealRepo{s},
		Users:    &userRepo{s},
	}
	if err := fn(ctx, repos); err != nil {
		s.rec.Reset()
		return err
	}
	if err := s.commit(); err != nil {
		s.rec.Reset()
		return err
	}
	db.PublishCommitted(ctx, s.rec, u.events, u.bus, u.logger)
	return nil
}

// staged is a pending write. expected is the version the aggregate had when
// it was loaded; zero means it must not exist yet.
type staged[P any] struct {
	props    P
	expected int64
	deleted  bool
}

type scope struct {
	store    *Store
	passport passport.Passport
	rec      *domain.EventRecorder

	accounts map[string]staged[account.Props]
	listings map[string]staged[listing.Props]
	appeals  map[string]staged[appeal.Props]
	users    map[string]staged[user.Props]
}

func newScope(store *Store, p passport.Passport) *scope {
	return &scope{
		store:    store,
		passport: p,
		rec:      domain.NewEventRecorder(),
		accounts: map[string]staged[account.Props]{},
		listings: map[string]staged[listing.Props]{},
		appeals:  map[string]staged[appeal.Props]{},
		users:    map[string]staged[user.Props]{},
	}
}

// lookup returns the scope's own pending write for id, falling back to
// committed state.
func lookup[P any](pending map[string]staged[P], committed map[string]P, mu *sync.RWMutex, id string) (P, bool) {
	if st, ok := pending[id]; ok {
		if st.deleted {
			var zero P
			return zero, false
		}
		return st.props, true
	}
	mu.RLock()
	defer mu.RUnlock()
	p, ok := committed[id]
	return p, ok
}

// all merges committed state with the scope's pending writes.
func all[P any](pending map[string]staged[P], committed map[string]P, mu *sync.RWMutex) []P {
	mu.RLock()
	merged := make(map[string]P, len(committed)+len(pending))
	for id, p := range committed {
		merged[id] = p
	}
	mu.RUnlock()
	for id, st := range pending {
		if st.deleted {
			delete(merged, id)
			continue
		}
		merged[id] = st.props
	}
	out := make([]P, 0, len(merged))
	for _, p := range merged {
		out = append(out, p)
	}
	return out
}

func checkVersion(committedVersion int64, exists bool, expected int64) error {
	if expected == 0 && exists {
		return domain.ErrConcurrencyConflict
	}
	if expected != 0 && (!exists || committedVersion != expected) {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// commit validates every pending write against committed state and applies
// them all or none.
func (s *scope) commit() error {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	for id, w := range s.accounts {
		cur, ok := st.accounts[id]
		if err := checkVersion(cur.Version, ok, w.expected); err != nil {
			return fmt.Errorf("commit account %s: %w", id, err)
		}
	}
	if id, dup := firstDuplicate(st.accounts, s.accounts, func(p account.Props) string { return strings.ToLower(p.Handle) }); dup {
		return fmt.Errorf("commit account %s: %w", id, domain.ErrHandleTaken)
	}
	for id, w := range s.listings {
		cur, ok := st.listings[id]
		if err := checkVersion(cur.Version, ok, w.expected); err != nil {
			return fmt.Errorf("commit listing %s: %w", id, err)
		}
	}
	for id, w := range s.appeals {
		cur, ok := st.appeals[id]
		if err := checkVersion(cur.Version, ok, w.expected); err != nil {
			return fmt.Errorf("commit appeal request %s: %w", id, err)
		}
	}
	for id, w := range s.users {
		cur, ok := st.users[id]
		if err := checkVersion(cur.Version, ok, w.expected); err != nil {
			return fmt.Errorf("commit user %s: %w", id, err)
		}
	}
	if id, dup := firstDuplicate(st.users, s.users, func(p user.Props) string { return p.Email }); dup {
		return fmt.Errorf("commit user %s: %w", id, domain.ErrUserExists)
	}

	apply(st.accounts, s.accounts)
	apply(st.listings, s.listings)
	apply(st.appeals, s.appeals)
	apply(st.users, s.users)
	return nil
}

// firstDuplicate looks for two records sharing a key in the state the commit
// would produce, and returns the id of a staged record involved.
func firstDuplicate[P any](committed map[string]P, pending map[string]staged[P], key func(P) string) (string, bool) {
	owner := make(map[string]string, len(committed)+len(pending))
	for id, p := range committed {
		if _, staged := pending[id]; !staged && key(p) != "" {
			owner[key(p)] = id
		}
	}
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		w := pending[id]
		if w.deleted {
			continue
		}
		k := key(w.props)
		if k == "" {
			continue
		}
		if _, taken := owner[k]; taken {
			return id, true
		}
		owner[k] = id
	}
	return "", false
}

func apply[P any](committed map[string]P, pending map[string]staged[P]) {
	for id, w := range pending {
		if w.deleted {
			delete(committed, id)
			continue
		}
		committed[id] = w.props
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}
