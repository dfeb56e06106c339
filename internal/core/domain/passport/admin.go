package passport

import (
	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

// Admin is the passport of staff users. Admins moderate and block according
// to their AdminRole but never manage a member account's roles or listings.
type Admin struct {
	admin *user.AdminUser
}

func NewAdmin(a *user.AdminUser) *Admin {
	return &Admin{admin: a}
}

func (p *Admin) Kind() Kind      { return KindAdmin }
func (p *Admin) ActorID() string { return p.admin.ID }

func (p *Admin) perms() user.AdminPermissions {
	if p.admin.IsBlocked {
		return user.AdminPermissions{}
	}
	return p.admin.Role.Permissions
}

func (p *Admin) ForAccount(*account.Account) account.Visa {
	return domain.DenyVisa[account.Permissions]{}
}

func (p *Admin) ForListing(*listing.Listing) listing.Visa {
	return domain.VisaFunc[listing.Permissions](func() listing.Permissions {
		return listing.Permissions{CanModerateListings: p.perms().CanModerateListings}
	})
}

func (p *Admin) ForAppealRequest(root *appeal.Request) appeal.Visa {
	return domain.VisaFunc[appeal.Permissions](func() appeal.Permissions {
		own := p.admin.ID == root.UserID()
		return appeal.Permissions{
			CanCreateAppealRequest:      !p.admin.IsBlocked,
			CanUpdateAppealRequestState: own,
			CanResolveAppealRequest:     !own && p.mayResolve(root),
			CanViewAppealRequest:        own || p.admin.ID == root.BlockerID(),
			CanViewAllAppealRequests:    false,
		}
	})
}

// mayResolve reports whether the admin imposed the block under appeal or
// holds the power to impose that kind of block.
func (p *Admin) mayResolve(root *appeal.Request) bool {
	if p.admin.IsBlocked {
		return false
	}
	if p.admin.ID == root.BlockerID() {
		return true
	}
	perms := p.perms()
	switch root.Type() {
	case appeal.TypeListing:
		return perms.CanModerateListings
	case appeal.TypeUser:
		return perms.CanBlockUsers
	}
	return false
}

func (p *Admin) ForPersonalUser(*user.PersonalUser) user.Visa {
	return domain.VisaFunc[user.Permissions](func() user.Permissions {
		return user.Permissions{CanBlockUsers: p.perms().CanBlockUsers}
	})
}
