package passport

import (
	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

// Guest is the passport of unauthenticated callers. It denies everything.
type Guest struct{}

func NewGuest() Guest { return Guest{} }

func (Guest) Kind() Kind      { return KindGuest }
func (Guest) ActorID() string { return "" }

func (Guest) ForAccount(*account.Account) account.Visa {
	return domain.DenyVisa[account.Permissions]{}
}

func (Guest) ForListing(*listing.Listing) listing.Visa {
	return domain.DenyVisa[listing.Permissions]{}
}

func (Guest) ForAppealRequest(*appeal.Request) appeal.Visa {
	return domain.DenyVisa[appeal.Permissions]{}
}

func (Guest) ForPersonalUser(*user.PersonalUser) user.Visa {
	return domain.DenyVisa[user.Permissions]{}
}
