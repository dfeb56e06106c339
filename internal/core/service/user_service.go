package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

type UserService struct {
	uow    ports.UnitOfWork
	logger zerolog.Logger
}

func NewUserService(uow ports.UnitOfWork, logger zerolog.Logger) *UserService {
	return &UserService{uow: uow, logger: logger}
}

func (s *UserService) Get(ctx context.Context, id string) (*user.PersonalUser, error) {
	var out *user.PersonalUser
	err := s.uow.WithTransaction(ctx, passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		u, err := r.Users.Get(ctx, id)
		out = u
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return out, nil
}

// Provision returns the user registered under email, creating it on first
// sight. Creation raises PersonalUserCreated, which provisions their account.
func (s *UserService) Provision(ctx context.Context, email, firstName, lastName string) (*user.PersonalUser, error) {
	var out *user.PersonalUser
	err := s.uow.WithTransaction(ctx, passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		u, err := r.Users.GetByEmail(ctx, email)
		if err == nil {
			out = u
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		u, err = r.Users.GetNewInstance(ctx, email, firstName, lastName)
		if err != nil {
			return err
		}
		out, err = r.Users.Save(ctx, u)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}
	return out, nil
}

func (s *UserService) SetProfile(ctx context.Context, p passport.Passport, id, firstName, lastName string) (*user.PersonalUser, error) {
	var out *user.PersonalUser
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		u, err := r.Users.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := u.SetProfile(firstName, lastName); err != nil {
			return err
		}
		out, err = r.Users.Save(ctx, u)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("set profile: %w", err)
	}
	return out, nil
}

func (s *UserService) SetBlocked(ctx context.Context, p passport.Passport, id string, blocked bool) (*user.PersonalUser, error) {
	var out *user.PersonalUser
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		u, err := r.Users.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := u.SetBlocked(blocked, p.ActorID()); err != nil {
			return err
		}
		out, err = r.Users.Save(ctx, u)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("set user blocked: %w", err)
	}
	s.logger.Info().Str("user_id", id).Bool("blocked", blocked).Str("actor_id", p.ActorID()).Msg("user block changed")
	return out, nil
}
