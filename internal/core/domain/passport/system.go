package passport

import (
	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

// System is the passport of event handlers and other background work. Every
// permission is granted unless an option switches it off.
type System struct {
	account func(*account.Permissions)
	listing func(*listing.Permissions)
	appeal  func(*appeal.Permissions)
	user    func(*user.Permissions)
}

type SystemOption func(*System)

func WithAccountPermissions(f func(*account.Permissions)) SystemOption {
	return func(s *System) { s.account = f }
}

func WithListingPermissions(f func(*listing.Permissions)) SystemOption {
	return func(s *System) { s.listing = f }
}

func WithAppealPermissions(f func(*appeal.Permissions)) SystemOption {
	return func(s *System) { s.appeal = f }
}

func WithUserPermissions(f func(*user.Permissions)) SystemOption {
	return func(s *System) { s.user = f }
}

func NewSystem(opts ...SystemOption) *System {
	s := &System{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *System) Kind() Kind      { return KindSystem }
func (s *System) ActorID() string { return SystemActorID }

func (s *System) ForAccount(*account.Account) account.Visa {
	return domain.VisaFunc[account.Permissions](func() account.Permissions {
		p := account.FromRole(account.FullPermissions())
		p.IsSystemAccount = true
		apply(s.account, &p)
		return p
	})
}

func (s *System) ForListing(*listing.Listing) listing.Visa {
	return domain.VisaFunc[listing.Permissions](func() listing.Permissions {
		p := listing.Permissions{
			CanManageListings:   true,
			CanDeleteListings:   true,
			CanModerateListings: true,
			IsSystemAccount:     true,
		}
		apply(s.listing, &p)
		return p
	})
}

func (s *System) ForAppealRequest(*appeal.Request) appeal.Visa {
	return domain.VisaFunc[appeal.Permissions](func() appeal.Permissions {
		p := appeal.Permissions{
			CanCreateAppealRequest:      true,
			CanUpdateAppealRequestState: true,
			CanResolveAppealRequest:     true,
			CanViewAppealRequest:        true,
			CanViewAllAppealRequests:    true,
			IsSystemAccount:             true,
		}
		apply(s.appeal, &p)
		return p
	})
}

func (s *System) ForPersonalUser(*user.PersonalUser) user.Visa {
	return domain.VisaFunc[user.Permissions](func() user.Permissions {
		p := user.Permissions{
			IsEditingOwnAccount: true,
			CanBlockUsers:       true,
			IsSystemAccount:     true,
		}
		apply(s.user, &p)
		return p
	})
}

func apply[P any](f func(*P), p *P) {
	if f != nil {
		f(p)
	}
}
