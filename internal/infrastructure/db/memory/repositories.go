package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

// stage queues a write of an aggregate loaded at version loaded. A second
// write in the same scope keeps the first write's expectation.
func stage[P any](pending map[string]staged[P], id string, loaded int64, build func(next int64) P) int64 {
	expected := loaded
	if prev, ok := pending[id]; ok {
		expected = prev.expected
	}
	next := loaded + 1
	pending[id] = staged[P]{props: build(next), expected: expected}
	return next
}

// --- accounts ---

type accountRepo struct{ s *scope }

func (r *accountRepo) hydrate(p account.Props) *account.Account {
	return account.Rehydrate(p, r.s.passport, r.s.rec)
}

func (r *accountRepo) Get(_ context.Context, id string) (*account.Account, error) {
	p, ok := lookup(r.s.accounts, r.s.store.accounts, &r.s.store.mu, id)
	if !ok {
		return nil, notFound("account", id)
	}
	return r.hydrate(p), nil
}

func (r *accountRepo) GetByHandle(_ context.Context, handle string) (*account.Account, error) {
	for _, p := range all(r.s.accounts, r.s.store.accounts, &r.s.store.mu) {
		if strings.EqualFold(p.Handle, handle) {
			return r.hydrate(p), nil
		}
	}
	return nil, notFound("account with handle", handle)
}

func (r *accountRepo) GetByUserID(_ context.Context, userID string) ([]*account.Account, error) {
	var out []*account.Account
	for _, p := range all(r.s.accounts, r.s.store.accounts, &r.s.store.mu) {
		for _, c := range p.Contacts {
			if c.UserID == userID {
				out = append(out, r.hydrate(p))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r *accountRepo) GetNewInstance(_ context.Context, owner account.Owner) (*account.Account, error) {
	return account.CreateInitialAccountForNewUser(r.s.passport, domain.NewID(), owner, r.s.rec)
}

func (r *accountRepo) Save(_ context.Context, a *account.Account) (*account.Account, error) {
	next := stage(r.s.accounts, a.ID(), a.Version(), func(v int64) account.Props {
		p := a.Props()
		p.Version = v
		return p
	})
	a.SetVersion(next)
	return a, nil
}

// --- listings ---

type listingRepo struct{ s *scope }

func (r *listingRepo) hydrate(p listing.Props) *listing.Listing {
	return listing.Rehydrate(p, r.s.passport, r.s.rec)
}

func (r *listingRepo) Get(_ context.Context, id string) (*listing.Listing, error) {
	p, ok := lookup(r.s.listings, r.s.store.listings, &r.s.store.mu, id)
	if !ok {
		return nil, notFound("listing", id)
	}
	return r.hydrate(p), nil
}

func (r *listingRepo) GetByAccountID(_ context.Context, accountID string) ([]*listing.Listing, error) {
	var out []*listing.Listing
	for _, p := range all(r.s.listings, r.s.store.listings, &r.s.store.mu) {
		if p.AccountID == accountID {
			out = append(out, r.hydrate(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r *listingRepo) GetNewInstance(_ context.Context, accountID, title string) (*listing.Listing, error) {
	return listing.NewDraftListing(r.s.passport, domain.NewID(), accountID, title, r.s.rec)
}

func (r *listingRepo) Save(_ context.Context, l *listing.Listing) (*listing.Listing, error) {
	next := stage(r.s.listings, l.ID(), l.Version(), func(v int64) listing.Props {
		p := l.Props()
		p.Version = v
		return p
	})
	l.SetVersion(next)
	return l, nil
}

func (r *listingRepo) Delete(_ context.Context, id string) error {
	p, ok := lookup(r.s.listings, r.s.store.listings, &r.s.store.mu, id)
	if !ok {
		return notFound("listing", id)
	}
	expected := p.Version
	if prev, queued := r.s.listings[id]; queued {
		expected = prev.expected
	}
	r.s.listings[id] = staged[listing.Props]{props: p, expected: expected, deleted: true}
	return nil
}

// --- appeal requests ---

type appealRepo struct{ s *scope }

func (r *appealRepo) hydrate(p appeal.Props) *appeal.Request {
	return appeal.Rehydrate(p, r.s.passport, r.s.rec)
}

func (r *appealRepo) Get(_ context.Context, id string) (*appeal.Request, error) {
	p, ok := lookup(r.s.appeals, r.s.store.appeals, &r.s.store.mu, id)
	if !ok {
		return nil, notFound("appeal request", id)
	}
	return r.hydrate(p), nil
}

func (r *appealRepo) List(_ context.Context, f ports.AppealFilter) ([]*appeal.Request, error) {
	var out []*appeal.Request
	for _, p := range all(r.s.appeals, r.s.store.appeals, &r.s.store.mu) {
		if f.UserID != "" && p.UserID != f.UserID {
			continue
		}
		if f.State != "" && p.State != f.State {
			continue
		}
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		out = append(out, r.hydrate(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r *appealRepo) GetNewListingInstance(_ context.Context, userID, listingID, reason, blockerID string) (*appeal.Request, error) {
	return appeal.NewListingAppealRequest(r.s.passport, domain.NewID(), userID, listingID, reason, blockerID, r.s.rec)
}

func (r *appealRepo) GetNewUserInstance(_ context.Context, userID, reason, blockerID string) (*appeal.Request, error) {
	return appeal.NewUserAppealRequest(r.s.passport, domain.NewID(), userID, reason, blockerID, r.s.rec)
}

func (r *appealRepo) Save(_ context.Context, a *appeal.Request) (*appeal.Request, error) {
	next := stage(r.s.appeals, a.ID(), a.Version(), func(v int64) appeal.Props {
		p := a.Props()
		p.Version = v
		return p
	})
	a.SetVersion(next)
	return a, nil
}

// --- personal users ---

type userRepo struct{ s *scope }

func (r *userRepo) hydrate(p user.Props) *user.PersonalUser {
	return user.Rehydrate(p, r.s.passport, r.s.rec)
}

func (r *userRepo) Get(_ context.Context, id string) (*user.PersonalUser, error) {
	p, ok := lookup(r.s.users, r.s.store.users, &r.s.store.mu, id)
	if !ok {
		return nil, notFound("user", id)
	}
	return r.hydrate(p), nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*user.PersonalUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, p := range all(r.s.users, r.s.store.users, &r.s.store.mu) {
		if p.Email == email {
			return r.hydrate(p), nil
		}
	}
	return nil, notFound("user with email", email)
}

func (r *userRepo) GetNewInstance(_ context.Context, email, firstName, lastName string) (*user.PersonalUser, error) {
	return user.NewPersonalUser(r.s.passport, domain.NewID(), email, firstName, lastName, r.s.rec)
}

func (r *userRepo) Save(_ context.Context, u *user.PersonalUser) (*user.PersonalUser, error) {
	next := stage(r.s.users, u.ID(), u.Version(), func(v int64) user.Props {
		p := u.Props()
		p.Version = v
		return p
	})
	u.SetVersion(next)
	return u, nil
}
