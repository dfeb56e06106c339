package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

// PassportResolver builds the passport for one request from the verified
// token. Personal passports carry the accounts the user is a contact of so
// their listing visas can resolve roles.
type PassportResolver struct {
	uow    ports.UnitOfWork
	admins ports.AdminUserRepository
	users  *UserService
	logger zerolog.Logger
}

func NewPassportResolver(uow ports.UnitOfWork, admins ports.AdminUserRepository, users *UserService, logger zerolog.Logger) *PassportResolver {
	return &PassportResolver{uow: uow, admins: admins, users: users, logger: logger}
}

func (r *PassportResolver) Resolve(ctx context.Context, a ports.Actor) (passport.Passport, error) {
	switch a.Kind {
	case passport.KindAdmin:
		admin, err := r.admins.FindByID(ctx, a.Subject)
		if err != nil {
			return nil, fmt.Errorf("resolve admin: %w", err)
		}
		return passport.NewAdmin(admin), nil

	case passport.KindPersonal:
		email := a.Email
		if email == "" {
			email = a.Subject
		}
		u, err := r.users.Provision(ctx, email, a.FirstName, a.LastName)
		if err != nil {
			return nil, fmt.Errorf("resolve personal user: %w", err)
		}
		var accounts []*account.Account
		err = r.uow.WithTransaction(ctx, passport.NewSystem(), func(ctx context.Context, repos ports.Repositories) error {
			accounts, err = repos.Accounts.GetByUserID(ctx, u.ID())
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("resolve personal accounts: %w", err)
		}
		return passport.NewPersonal(u).WithAccounts(accounts...), nil

	case passport.KindGuest, "":
		return passport.NewGuest(), nil
	}
	return nil, fmt.Errorf("resolve passport: %w", domain.NewValidationError("actor kind", string(a.Kind)))
}
