package account_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

type AccountSuite struct {
	suite.Suite
	system *passport.System
}

func TestAccountSuite(t *testing.T) {
	suite.Run(t, new(AccountSuite))
}

func (s *AccountSuite) SetupTest() {
	s.system = passport.NewSystem()
}

func (s *AccountSuite) newAccount(p account.Passport) *account.Account {
	acc, err := account.CreateInitialAccountForNewUser(p, "acc-1", account.Owner{
		UserID: "owner",
		Name:   "Owner's Things",
		Handle: "Owners-Things",
	}, nil)
	s.Require().NoError(err)
	return acc
}

func (s *AccountSuite) personal(id string, blocked bool) *passport.Personal {
	return passport.NewPersonal(user.Rehydrate(user.Props{ID: id, Email: id + "@example.com", IsBlocked: blocked}, nil, nil))
}

// rebind reloads acc under another passport, the way a repository would.
func (s *AccountSuite) rebind(acc *account.Account, p account.Passport) *account.Account {
	return account.Rehydrate(acc.Props(), p, nil)
}

// TestInitialAccount verifies the bootstrap role and contact of a new account.
func (s *AccountSuite) TestInitialAccount() {
	acc := s.newAccount(s.system)

	roles := acc.Roles()
	s.Require().Len(roles, 1)
	s.True(roles[0].IsDefault())
	s.Equal(account.DefaultRoleName, roles[0].Name())
	s.Equal(account.FullPermissions(), roles[0].Permissions())

	contacts := acc.Contacts()
	s.Require().Len(contacts, 1)
	s.Equal("owner", contacts[0].UserID())
	s.Equal(roles[0].ID(), contacts[0].RoleID())

	s.Equal("owners-things", acc.Handle())
	s.Equal(int64(0), acc.Version())

	events := acc.IntegrationEvents()
	s.Require().Len(events, 1)
	s.Equal(domain.EventAccountCreated, events[0].Type)
	s.Equal(domain.AccountCreatedPayload{AccountID: "acc-1", UserID: "owner"}, events[0].Payload)
}

func (s *AccountSuite) TestInitialAccountRunsForAnyCaller() {
	s.Run("guest passport still provisions the account", func() {
		acc := s.newAccount(passport.NewGuest())
		s.Len(acc.Roles(), 1)
		s.ErrorIs(acc.SetName("Renamed"), domain.ErrPermissionDenied, "the returned account carries the caller's visa")
	})

	s.Run("rejects invalid owner data", func() {
		_, err := account.CreateInitialAccountForNewUser(s.system, "acc-2", account.Owner{UserID: "u", Name: "n", Handle: "x"}, nil)
		s.ErrorIs(err, domain.ErrValidation)

		_, err = account.CreateInitialAccountForNewUser(s.system, "acc-2", account.Owner{Name: "n", Handle: "valid"}, nil)
		s.ErrorIs(err, domain.ErrValidation)
	})
}

func (s *AccountSuite) TestRequestAddRole() {
	acc := s.newAccount(s.system)

	s.Run("new roles start with every permission off", func() {
		role, err := acc.RequestAddRole("Editor")
		s.Require().NoError(err)
		s.False(role.IsDefault())
		s.Equal(account.RolePermissions{}, role.Permissions())
		s.Len(acc.Roles(), 2)
	})

	s.Run("rejects a duplicate name regardless of case", func() {
		_, err := acc.RequestAddRole("editor")
		s.ErrorIs(err, domain.ErrInvariantViolation)
		s.Len(acc.Roles(), 2)
	})

	s.Run("rejects an empty name", func() {
		_, err := acc.RequestAddRole("   ")
		s.ErrorIs(err, domain.ErrValidation)
	})

	s.Run("raises RoleAdded", func() {
		events := acc.DomainEvents()
		s.Require().Len(events, 1)
		s.Equal(domain.EventRoleAdded, events[0].Type)
	})
}

func (s *AccountSuite) TestPersonalVisa() {
	acc := s.newAccount(s.system)
	editor, err := acc.RequestAddRole("Editor")
	s.Require().NoError(err)
	_, err = acc.RequestAddContact("member", editor.ID())
	s.Require().NoError(err)

	s.Run("default role holder may manage roles", func() {
		owned := s.rebind(acc, s.personal("owner", false))
		_, err := owned.RequestAddRole("Viewer")
		s.NoError(err)
	})

	s.Run("role without permissions is denied", func() {
		asMember := s.rebind(acc, s.personal("member", false))
		_, err := asMember.RequestAddRole("Viewer")
		s.ErrorIs(err, domain.ErrPermissionDenied)
	})

	s.Run("actor without a contact is denied", func() {
		asStranger := s.rebind(acc, s.personal("stranger", false))
		err := asStranger.SetName("Mine now")
		s.ErrorIs(err, domain.ErrPermissionDenied)
		s.Equal("Owner's Things", asStranger.Name())
	})

	s.Run("blocked user is denied", func() {
		asBlocked := s.rebind(acc, s.personal("owner", true))
		s.ErrorIs(asBlocked.SetHandle("new-handle"), domain.ErrPermissionDenied)
	})

	s.Run("admin staff never manage member accounts", func() {
		admin := passport.NewAdmin(&user.AdminUser{ID: "staff", Role: user.AdminRole{Permissions: user.AdminPermissions{
			CanBlockUsers: true, CanModerateListings: true, CanViewAllUsers: true,
		}}})
		asAdmin := s.rebind(acc, admin)
		_, err := asAdmin.RequestAddRole("Staff")
		s.ErrorIs(err, domain.ErrPermissionDenied)
	})

	s.Run("visa observes a role change made earlier in the same scope", func() {
		owned := s.rebind(acc, s.personal("owner", false))
		ownerContact, ok := owned.ContactForUser("owner")
		s.Require().True(ok)

		s.Require().NoError(owned.AssignContactRole(ownerContact.ID(), editor.ID()))

		_, err := owned.RequestAddRole("Another")
		s.ErrorIs(err, domain.ErrPermissionDenied)
	})
}

// TestDeleteRoleAndReassign covers reassignment before removal.
func (s *AccountSuite) TestDeleteRoleAndReassign() {
	acc := s.newAccount(s.system)
	admin := acc.DefaultRole()
	editor, err := acc.RequestAddRole("Editor")
	s.Require().NoError(err)
	_, err = acc.RequestAddContact("member", editor.ID())
	s.Require().NoError(err)
	acc.ClearDomainEvents()

	s.Require().NoError(acc.DeleteRoleAndReassignTo(editor.ID(), admin.ID()))

	for _, c := range acc.Contacts() {
		s.Equal(admin.ID(), c.RoleID(), "contact %s must point at the surviving role", c.UserID())
	}
	_, stillThere := acc.RoleByName("Editor")
	s.False(stillThere)
	s.Len(acc.Roles(), 1)

	events := acc.DomainEvents()
	s.Require().Len(events, 1)
	payload, ok := events[0].Payload.(domain.RoleDeletedPayload)
	s.Require().True(ok)
	s.Equal([]string{"member"}, payload.ReassignedUsers)
	s.Equal(admin.ID(), payload.ReassignedTo)
}

func (s *AccountSuite) TestDeleteRoleFailures() {
	acc := s.newAccount(s.system)
	admin := acc.DefaultRole()
	editor, err := acc.RequestAddRole("Editor")
	s.Require().NoError(err)

	s.Run("default role can never be deleted", func() {
		err := acc.DeleteRoleAndReassignTo(admin.ID(), editor.ID())
		s.ErrorIs(err, domain.ErrInvariantViolation)
		s.Len(acc.Roles(), 2)
	})

	s.Run("missing role to delete", func() {
		s.ErrorIs(acc.DeleteRoleAndReassignTo("nope", admin.ID()), domain.ErrInvariantViolation)
	})

	s.Run("missing target role", func() {
		s.ErrorIs(acc.DeleteRoleAndReassignTo(editor.ID(), "nope"), domain.ErrInvariantViolation)
		_, ok := acc.Role(editor.ID())
		s.True(ok)
	})

	s.Run("target equal to the deleted role", func() {
		s.ErrorIs(acc.DeleteRoleAndReassignTo(editor.ID(), editor.ID()), domain.ErrInvariantViolation)
	})
}

func (s *AccountSuite) TestUpdateRolePermissions() {
	acc := s.newAccount(s.system)
	editor, err := acc.RequestAddRole("Editor")
	s.Require().NoError(err)

	perms := account.RolePermissions{Listing: account.ListingPermissions{CanManageListings: true}}
	s.Require().NoError(acc.UpdateRolePermissions(editor.ID(), perms))
	got, _ := acc.Role(editor.ID())
	s.Equal(perms, got.Permissions())

	s.ErrorIs(acc.UpdateRolePermissions(acc.DefaultRole().ID(), account.RolePermissions{}), domain.ErrInvariantViolation)
	s.Equal(account.FullPermissions(), acc.DefaultRole().Permissions())

	s.ErrorIs(acc.UpdateRolePermissions("missing", perms), domain.ErrInvariantViolation)
}

func (s *AccountSuite) TestContacts() {
	acc := s.newAccount(s.system)

	s.Run("empty role id selects the default role", func() {
		c, err := acc.RequestAddContact("member", "")
		s.Require().NoError(err)
		s.Equal(acc.DefaultRole().ID(), c.RoleID())
	})

	s.Run("a user appears in at most one contact", func() {
		_, err := acc.RequestAddContact("member", "")
		s.ErrorIs(err, domain.ErrInvariantViolation)
	})

	s.Run("unknown role is rejected", func() {
		_, err := acc.RequestAddContact("other", "missing")
		s.ErrorIs(err, domain.ErrInvariantViolation)
	})

	s.Run("assigning to an unknown contact is rejected", func() {
		s.ErrorIs(acc.AssignContactRole("missing", acc.DefaultRole().ID()), domain.ErrInvariantViolation)
	})
}

func (s *AccountSuite) TestSettings() {
	acc := s.newAccount(s.system)

	s.Require().NoError(acc.SetName("  New Name "))
	s.Equal("New Name", acc.Name())

	s.ErrorIs(acc.SetHandle("ab"), domain.ErrValidation)
	s.ErrorIs(acc.SetHandle("has space"), domain.ErrValidation)
	s.Equal("owners-things", acc.Handle())

	s.Require().NoError(acc.SetHandle("Fresh_Handle"))
	s.Equal("fresh_handle", acc.Handle())
}

func (s *AccountSuite) TestPropsRoundTripKeepsVersion() {
	acc := s.newAccount(s.system)
	acc.SetVersion(7)

	back := account.Rehydrate(acc.Props(), s.system, nil)
	s.Equal(int64(7), back.Version())
	s.Equal(acc.Props(), back.Props())
	s.Empty(back.IntegrationEvents(), "rehydration raises nothing")
}
