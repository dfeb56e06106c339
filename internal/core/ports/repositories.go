package ports

import (
	"context"

	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

// Repositories loaded through a unit of work are bound to that scope's
// session, passport and event recorder. Aggregates they return carry the
// scope passport's visa. Save fails with domain.ErrConcurrencyConflict when
// the stored version moved since the aggregate was loaded.

type AccountRepository interface {
	Get(ctx context.Context, id string) (*account.Account, error)
	GetByHandle(ctx context.Context, handle string) (*account.Account, error)
	// GetByUserID returns every account the user is a contact of.
	GetByUserID(ctx context.Context, userID string) ([]*account.Account, error)
	GetNewInstance(ctx context.Context, owner account.Owner) (*account.Account, error)
	Save(ctx context.Context, a *account.Account) (*account.Account, error)
}

type ListingRepository interface {
	Get(ctx context.Context, id string) (*listing.Listing, error)
	GetByAccountID(ctx context.Context, accountID string) ([]*listing.Listing, error)
	GetNewInstance(ctx context.Context, accountID, title string) (*listing.Listing, error)
	Save(ctx context.Context, l *listing.Listing) (*listing.Listing, error)
	Delete(ctx context.Context, id string) error
}

// AppealFilter narrows List. Zero fields match everything.
type AppealFilter struct {
	UserID string
	State  appeal.State
	Type   appeal.Type
}

type AppealRequestRepository interface {
	Get(ctx context.Context, id string) (*appeal.Request, error)
	List(ctx context.Context, f AppealFilter) ([]*appeal.Request, error)
	GetNewListingInstance(ctx context.Context, userID, listingID, reason, blockerID string) (*appeal.Request, error)
	GetNewUserInstance(ctx context.Context, userID, reason, blockerID string) (*appeal.Request, error)
	Save(ctx context.Context, r *appeal.Request) (*appeal.Request, error)
}

type PersonalUserRepository interface {
	Get(ctx context.Context, id string) (*user.PersonalUser, error)
	GetByEmail(ctx context.Context, email string) (*user.PersonalUser, error)
	GetNewInstance(ctx context.Context, email, firstName, lastName string) (*user.PersonalUser, error)
	Save(ctx context.Context, u *user.PersonalUser) (*user.PersonalUser, error)
}

// Repositories is the set handed to a transaction callback.
type Repositories struct {
	Accounts AccountRepository
	Listings ListingRepository
	Appeals  AppealRequestRepository
	Users    PersonalUserRepository
}

// UnitOfWork runs fn inside one transactional scope. Events raised by
// aggregates loaded in the scope are handed to the event bus only after the
// scope commits; on error nothing is written and nothing is published.
type UnitOfWork interface {
	WithTransaction(ctx context.Context, p passport.Passport, fn func(ctx context.Context, repos Repositories) error) error
}
