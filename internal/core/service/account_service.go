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

// AccountService runs account use cases, one unit-of-work scope per call.
type AccountService struct {
	uow    ports.UnitOfWork
	logger zerolog.Logger
}

func NewAccountService(uow ports.UnitOfWork, logger zerolog.Logger) *AccountService {
	return &AccountService{uow: uow, logger: logger}
}

func (s *AccountService) Get(ctx context.Context, p passport.Passport, id string) (*account.Account, error) {
	var out *account.Account
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		a, err := r.Accounts.Get(ctx, id)
		if err != nil {
			return err
		}
		if !a.CanView() {
			return domain.NewPermissionError("view account")
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return out, nil
}

// CreateInitialAccount provisions the first account of owner.UserID. A user
// who already belongs to an account gets that account back unchanged, which
// keeps redelivered PersonalUserCreated events harmless.
func (s *AccountService) CreateInitialAccount(ctx context.Context, p passport.Passport, owner account.Owner) (*account.Account, error) {
	var out *account.Account
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		existing, err := r.Accounts.GetByUserID(ctx, owner.UserID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			out = existing[0]
			return nil
		}
		a, err := r.Accounts.GetNewInstance(ctx, owner)
		if err != nil {
			return err
		}
		out, err = r.Accounts.Save(ctx, a)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create initial account: %w", err)
	}
	s.logger.Info().Str("account_id", out.ID()).Str("user_id", owner.UserID).Msg("initial account ready")
	return out, nil
}

func (s *AccountService) UpdateSettings(ctx context.Context, p passport.Passport, id string, in ports.UpdateAccountInput) (*account.Account, error) {
	var out *account.Account
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		a, err := r.Accounts.Get(ctx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			if err := a.SetName(*in.Name); err != nil {
				return err
			}
		}
		if in.Handle != nil {
			if err := a.SetHandle(*in.Handle); err != nil {
				return err
			}
		}
		out, err = r.Accounts.Save(ctx, a)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update account settings: %w", err)
	}
	return out, nil
}

func (s *AccountService) AddRole(ctx context.Context, p passport.Passport, accountID, name string) (*account.Role, error) {
	var role *account.Role
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		a, err := r.Accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		role, err = a.RequestAddRole(name)
		if err != nil {
			return err
		}
		_, err = r.Accounts.Save(ctx, a)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add role: %w", err)
	}
	return role, nil
}

func (s *AccountService) DeleteRole(ctx context.Context, p passport.Passport, accountID, roleID, reassignTo string) error {
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		a, err := r.Accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if reassignTo == "" {
			if def := a.DefaultRole(); def != nil {
				reassignTo = def.ID()
			}
		}
		if err := a.DeleteRoleAndReassignTo(roleID, reassignTo); err != nil {
			return err
		}
		_, err = r.Accounts.Save(ctx, a)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	s.logger.Info().Str("account_id", accountID).Str("role_id", roleID).Str("actor_id", p.ActorID()).Msg("role deleted")
	return nil
}

func (s *AccountService) UpdateRolePermissions(ctx context.Context, p passport.Passport, accountID, roleID string, perms account.RolePermissions) error {
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		a, err := r.Accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if err := a.UpdateRolePermissions(roleID, perms); err != nil {
			return err
		}
		_, err = r.Accounts.Save(ctx, a)
		return err
	})
	if err != nil {
		return fmt.Errorf("update role permissions: %w", err)
	}
	return nil
}

func (s *AccountService) AddContact(ctx context.Context, p passport.Passport, accountID, userID, roleID string) (*account.Contact, error) {
	var c *account.Contact
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		if _, err := r.Users.Get(ctx, userID); err != nil {
			return err
		}
		a, err := r.Accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		c, err = a.RequestAddContact(userID, roleID)
		if err != nil {
			return err
		}
		_, err = r.Accounts.Save(ctx, a)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add contact: %w", err)
	}
	return c, nil
}
