package passport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

func anyListing(listing.Permissions) bool { return true }

func member(id string, blocked bool) *user.PersonalUser {
	return user.Rehydrate(user.Props{ID: id, IsBlocked: blocked}, nil, nil)
}

func TestGuest_DeniesEverything(t *testing.T) {
	g := NewGuest()
	assert.Equal(t, KindGuest, g.Kind())
	assert.Empty(t, g.ActorID())

	assert.False(t, g.ForAccount(nil).DetermineIf(func(account.Permissions) bool { return true }))
	assert.False(t, g.ForListing(nil).DetermineIf(anyListing))
	assert.False(t, g.ForAppealRequest(nil).DetermineIf(func(appeal.Permissions) bool { return true }))
	assert.False(t, g.ForPersonalUser(nil).DetermineIf(func(user.Permissions) bool { return true }))
}

func TestSystem_GrantsAllUnlessSwitchedOff(t *testing.T) {
	s := NewSystem()
	assert.Equal(t, KindSystem, s.Kind())
	assert.Equal(t, SystemActorID, s.ActorID())

	assert.True(t, s.ForListing(nil).DetermineIf(func(p listing.Permissions) bool {
		return p.CanManageListings && p.CanDeleteListings && p.CanModerateListings && p.IsSystemAccount
	}))
	assert.True(t, s.ForAppealRequest(nil).DetermineIf(func(p appeal.Permissions) bool {
		return p.CanViewAllAppealRequests && p.IsSystemAccount
	}))

	restricted := NewSystem(
		WithListingPermissions(func(p *listing.Permissions) { p.CanDeleteListings = false }),
		WithAccountPermissions(func(p *account.Permissions) { p.Account.CanManageMembers = false }),
		WithUserPermissions(func(p *user.Permissions) { p.CanBlockUsers = false }),
		WithAppealPermissions(func(p *appeal.Permissions) { p.CanViewAllAppealRequests = false }),
	)
	assert.False(t, restricted.ForListing(nil).DetermineIf(func(p listing.Permissions) bool { return p.CanDeleteListings }))
	assert.True(t, restricted.ForListing(nil).DetermineIf(func(p listing.Permissions) bool { return p.CanManageListings }))
	assert.False(t, restricted.ForAccount(nil).DetermineIf(func(p account.Permissions) bool { return p.Account.CanManageMembers }))
	assert.False(t, restricted.ForPersonalUser(nil).DetermineIf(func(p user.Permissions) bool { return p.CanBlockUsers }))
	assert.False(t, restricted.ForAppealRequest(nil).DetermineIf(func(p appeal.Permissions) bool { return p.CanViewAllAppealRequests }))
}

func TestVisas_ArePure(t *testing.T) {
	acc, err := account.CreateInitialAccountForNewUser(NewSystem(), "acc", account.Owner{UserID: "u1", Name: "A", Handle: "acc"}, nil)
	require.NoError(t, err)
	l, err := listing.NewDraftListing(NewSystem(), "l", "acc", "Bike", nil)
	require.NoError(t, err)

	p := NewPersonal(member("u1", false)).WithAccounts(acc)
	accountVisa := p.ForAccount(acc)
	listingVisa := p.ForListing(l)

	manageRoles := func(p account.Permissions) bool { return p.Account.CanManageRolesAndPermissions }
	manage := func(p listing.Permissions) bool { return p.CanManageListings }

	for i := 0; i < 3; i++ {
		assert.True(t, accountVisa.DetermineIf(manageRoles))
		assert.True(t, listingVisa.DetermineIf(manage))
	}
	assert.Len(t, acc.Roles(), 1, "evaluation never mutates the aggregate")
	assert.Empty(t, acc.DomainEvents())
}

func TestPersonal_AccountVisaFailsClosed(t *testing.T) {
	acc, err := account.CreateInitialAccountForNewUser(NewSystem(), "acc", account.Owner{UserID: "u1", Name: "A", Handle: "acc"}, nil)
	require.NoError(t, err)

	assert.True(t, NewPersonal(member("u1", false)).ForAccount(acc).DetermineIf(func(p account.Permissions) bool {
		return p.Account.CanManageMembers
	}))
	assert.False(t, NewPersonal(member("stranger", false)).ForAccount(acc).DetermineIf(func(p account.Permissions) bool {
		return p.Account.CanManageMembers
	}))
	assert.False(t, NewPersonal(member("u1", true)).ForAccount(acc).DetermineIf(func(p account.Permissions) bool {
		return p.Account.CanManageMembers
	}))

	isMember := func(p account.Permissions) bool { return p.IsMember }
	assert.True(t, NewPersonal(member("u1", true)).ForAccount(acc).DetermineIf(isMember), "blocked members still read their account")
	assert.False(t, NewPersonal(member("stranger", false)).ForAccount(acc).DetermineIf(isMember))
}

func TestPersonal_WithAccountsCopies(t *testing.T) {
	acc, err := account.CreateInitialAccountForNewUser(NewSystem(), "acc", account.Owner{UserID: "u1", Name: "A", Handle: "acc"}, nil)
	require.NoError(t, err)
	l, err := listing.NewDraftListing(NewSystem(), "l", "acc", "Bike", nil)
	require.NoError(t, err)

	base := NewPersonal(member("u1", false))
	extended := base.WithAccounts(acc)

	manage := func(p listing.Permissions) bool { return p.CanManageListings }
	assert.False(t, base.ForListing(l).DetermineIf(manage))
	assert.True(t, extended.ForListing(l).DetermineIf(manage))
	assert.Equal(t, "u1", extended.ActorID())
	assert.Equal(t, KindPersonal, extended.Kind())
}

func TestPersonalAndAdmin_AppealVisa(t *testing.T) {
	r, err := appeal.NewUserAppealRequest(NewSystem(), "apl", "u1", "please", "staff", nil)
	require.NoError(t, err)

	perms := func(p appeal.Passport) appeal.Permissions {
		var out appeal.Permissions
		p.ForAppealRequest(r).DetermineIf(func(got appeal.Permissions) bool { out = got; return true })
		return out
	}

	own := perms(NewPersonal(member("u1", false)))
	assert.True(t, own.CanCreateAppealRequest)
	assert.True(t, own.CanUpdateAppealRequestState)
	assert.True(t, own.CanViewAppealRequest)
	assert.False(t, own.CanViewAllAppealRequests)

	blocked := perms(NewPersonal(member("u1", true)))
	assert.False(t, blocked.CanCreateAppealRequest)

	assert.False(t, own.CanResolveAppealRequest, "appellants never resolve their own appeal")

	blocker := perms(NewAdmin(&user.AdminUser{ID: "staff"}))
	assert.True(t, blocker.CanResolveAppealRequest)
	assert.True(t, blocker.CanViewAppealRequest)
	assert.False(t, blocker.CanUpdateAppealRequestState)
	assert.False(t, blocker.CanViewAllAppealRequests)

	userBlocker := perms(NewAdmin(&user.AdminUser{ID: "other", Role: user.AdminRole{
		Permissions: user.AdminPermissions{CanBlockUsers: true},
	}}))
	assert.True(t, userBlocker.CanResolveAppealRequest)

	moderator := perms(NewAdmin(&user.AdminUser{ID: "other", Role: user.AdminRole{
		Permissions: user.AdminPermissions{CanModerateListings: true},
	}}))
	assert.False(t, moderator.CanResolveAppealRequest, "listing moderation does not cover user blocks")

	selfAppeal, err := appeal.NewUserAppealRequest(NewSystem(), "apl-2", "staff", "please", "staff", nil)
	require.NoError(t, err)
	var ownAdmin appeal.Permissions
	NewAdmin(&user.AdminUser{ID: "staff"}).ForAppealRequest(selfAppeal).DetermineIf(func(got appeal.Permissions) bool { ownAdmin = got; return true })
	assert.False(t, ownAdmin.CanResolveAppealRequest)
}

func TestPersonal_ListingVisaUsesSuppliedAccounts(t *testing.T) {
	acc, err := account.CreateInitialAccountForNewUser(NewSystem(), "acc", account.Owner{UserID: "u1", Name: "A", Handle: "acc"}, nil)
	require.NoError(t, err)
	l, err := listing.NewDraftListing(NewSystem(), "l", "acc", "Bike", nil)
	require.NoError(t, err)

	resolved := NewPersonal(member("u2", false)).WithAccounts(acc)

	// A later copy of the account gains u2 as a contact; the passport
	// resolved earlier still checks the copy it was given.
	updated := account.Rehydrate(acc.Props(), NewSystem(), nil)
	_, err = updated.RequestAddContact("u2", "")
	require.NoError(t, err)

	manage := func(p listing.Permissions) bool { return p.CanManageListings }
	assert.False(t, resolved.ForListing(l).DetermineIf(manage))
	assert.True(t, resolved.WithAccounts(updated).ForListing(l).DetermineIf(manage))
}

func TestAdmin_BlockedLosesPermissions(t *testing.T) {
	a := &user.AdminUser{ID: "staff", Role: user.AdminRole{Permissions: user.AdminPermissions{
		CanBlockUsers: true, CanModerateListings: true,
	}}}
	p := NewAdmin(a)
	moderate := func(p listing.Permissions) bool { return p.CanModerateListings }
	block := func(p user.Permissions) bool { return p.CanBlockUsers }

	assert.True(t, p.ForListing(nil).DetermineIf(moderate))
	assert.True(t, p.ForPersonalUser(nil).DetermineIf(block))

	a.IsBlocked = true
	assert.False(t, p.ForListing(nil).DetermineIf(moderate))
	assert.False(t, p.ForPersonalUser(nil).DetermineIf(block))
}
