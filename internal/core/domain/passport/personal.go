package passport

import (
	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

// Personal is the passport of a marketplace member. Listing visas need the
// account that owns the listing, which the caller supplies through
// WithAccounts. The resolver supplies the accounts as they stood when the
// request began, so a role change committed mid-request applies from the
// next request on.
type Personal struct {
	user     *user.PersonalUser
	accounts map[string]*account.Account
}

func NewPersonal(u *user.PersonalUser) *Personal {
	return &Personal{user: u, accounts: map[string]*account.Account{}}
}

// WithAccounts returns a copy of the passport that can resolve listings owned
// by accs.
func (p *Personal) WithAccounts(accs ...*account.Account) *Personal {
	next := &Personal{user: p.user, accounts: make(map[string]*account.Account, len(p.accounts)+len(accs))}
	for id, a := range p.accounts {
		next.accounts[id] = a
	}
	for _, a := range accs {
		if a != nil {
			next.accounts[a.ID()] = a
		}
	}
	return next
}

func (p *Personal) Kind() Kind               { return KindPersonal }
func (p *Personal) ActorID() string          { return p.user.ID() }
func (p *Personal) User() *user.PersonalUser { return p.user }

// rolePermissions resolves the actor's contact in acc and returns its role's
// bundle. No contact or no role yields nothing.
func rolePermissions(acc *account.Account, userID string) (account.RolePermissions, bool) {
	if acc == nil {
		return account.RolePermissions{}, false
	}
	c, ok := acc.ContactForUser(userID)
	if !ok {
		return account.RolePermissions{}, false
	}
	r, ok := acc.Role(c.RoleID())
	if !ok {
		return account.RolePermissions{}, false
	}
	return r.Permissions(), true
}

func (p *Personal) ForAccount(root *account.Account) account.Visa {
	return domain.VisaFunc[account.Permissions](func() account.Permissions {
		rp, ok := rolePermissions(root, p.user.ID())
		if !ok {
			return account.Permissions{}
		}
		if p.user.IsBlocked() {
			return account.Permissions{IsMember: true}
		}
		perms := account.FromRole(rp)
		perms.IsMember = true
		return perms
	})
}

func (p *Personal) ForListing(root *listing.Listing) listing.Visa {
	return domain.VisaFunc[listing.Permissions](func() listing.Permissions {
		if p.user.IsBlocked() {
			return listing.Permissions{}
		}
		acc := p.accounts[root.AccountID()]
		rp, ok := rolePermissions(acc, p.user.ID())
		if !ok {
			return listing.Permissions{}
		}
		return listing.Permissions{
			CanManageListings: rp.Listing.CanManageListings,
			CanDeleteListings: rp.Listing.CanDeleteListings,
		}
	})
}

func (p *Personal) ForAppealRequest(root *appeal.Request) appeal.Visa {
	return domain.VisaFunc[appeal.Permissions](func() appeal.Permissions {
		own := p.user.ID() == root.UserID()
		return appeal.Permissions{
			CanCreateAppealRequest:      !p.user.IsBlocked(),
			CanUpdateAppealRequestState: own,
			CanResolveAppealRequest:     false,
			CanViewAppealRequest:        own,
			CanViewAllAppealRequests:    false,
		}
	})
}

func (p *Personal) ForPersonalUser(root *user.PersonalUser) user.Visa {
	return domain.VisaFunc[user.Permissions](func() user.Permissions {
		return user.Permissions{IsEditingOwnAccount: p.user.ID() == root.ID()}
	})
}
