package user_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

type PersonalUserSuite struct {
	suite.Suite
	system *passport.System
}

func TestPersonalUserSuite(t *testing.T) {
	suite.Run(t, new(PersonalUserSuite))
}

func (s *PersonalUserSuite) SetupTest() {
	s.system = passport.NewSystem()
}

func (s *PersonalUserSuite) newUser() *user.PersonalUser {
	u, err := user.NewPersonalUser(s.system, "u1", " Ada@Example.COM ", "Ada", "Lovelace", nil)
	s.Require().NoError(err)
	return u
}

func (s *PersonalUserSuite) TestProvisioning() {
	u := s.newUser()
	s.Equal("ada@example.com", u.Email())
	s.Equal("Ada Lovelace", u.DisplayName())
	s.False(u.IsBlocked())

	events := u.IntegrationEvents()
	s.Require().Len(events, 1)
	s.Equal(domain.EventPersonalUserCreated, events[0].Type)
	s.Equal(domain.PersonalUserCreatedPayload{
		UserID: "u1", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
	}, events[0].Payload)

	_, err := user.NewPersonalUser(s.system, "u2", "not-an-email", "", "", nil)
	s.ErrorIs(err, domain.ErrValidation)

	_, err = user.NewPersonalUser(passport.NewGuest(), "u3", "g@example.com", "", "", nil)
	s.ErrorIs(err, domain.ErrPermissionDenied)
}

func (s *PersonalUserSuite) TestDisplayNameFallsBackToEmail() {
	u, err := user.NewPersonalUser(s.system, "u1", "anon@example.com", "", "", nil)
	s.Require().NoError(err)
	s.Equal("anon@example.com", u.DisplayName())
}

func (s *PersonalUserSuite) TestProfile() {
	u := s.newUser()

	s.Run("self may edit", func() {
		self := user.Rehydrate(u.Props(), passport.NewPersonal(u), nil)
		s.Require().NoError(self.SetProfile("Augusta", "King"))
		s.Equal("Augusta King", self.DisplayName())
		s.Len(self.DomainEvents(), 1)
	})

	s.Run("another member may not", func() {
		other := passport.NewPersonal(user.Rehydrate(user.Props{ID: "u2"}, nil, nil))
		asOther := user.Rehydrate(u.Props(), other, nil)
		s.ErrorIs(asOther.SetProfile("Mallory", "X"), domain.ErrPermissionDenied)
		s.Equal("Ada", asOther.FirstName())
	})
}

func (s *PersonalUserSuite) TestBlocking() {
	u := s.newUser()

	s.Run("admin without block permission is denied", func() {
		staff := passport.NewAdmin(&user.AdminUser{ID: "staff"})
		asStaff := user.Rehydrate(u.Props(), staff, nil)
		s.ErrorIs(asStaff.SetBlocked(true, "staff"), domain.ErrPermissionDenied)
		s.False(asStaff.IsBlocked())
	})

	s.Run("admin with block permission records the blocker", func() {
		staff := passport.NewAdmin(&user.AdminUser{ID: "staff", Role: user.AdminRole{
			Permissions: user.AdminPermissions{CanBlockUsers: true},
		}})
		asStaff := user.Rehydrate(u.Props(), staff, nil)
		s.Require().NoError(asStaff.SetBlocked(true, "staff"))
		s.True(asStaff.IsBlocked())
		s.Equal("staff", asStaff.BlockedBy())
		s.Require().NoError(asStaff.SetBlocked(true, "staff"))
		s.Len(asStaff.DomainEvents(), 1, "blocking twice raises one event")

		s.Require().NoError(asStaff.SetBlocked(false, ""))
		s.Empty(asStaff.BlockedBy())
	})

	s.Run("members cannot block each other", func() {
		asSelf := user.Rehydrate(u.Props(), passport.NewPersonal(u), nil)
		s.ErrorIs(asSelf.SetBlocked(true, "u1"), domain.ErrPermissionDenied)
	})
}
