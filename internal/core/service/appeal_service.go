package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

type AppealService struct {
	uow    ports.UnitOfWork
	logger zerolog.Logger
}

func NewAppealService(uow ports.UnitOfWork, logger zerolog.Logger) *AppealService {
	return &AppealService{uow: uow, logger: logger}
}

// Create files an appeal against a block that is actually in place. The
// blocker defaults to the one recorded on the blocked aggregate and may not
// name anyone else, and a listing appeal must come from a contact of the
// account that owns the listing.
func (s *AppealService) Create(ctx context.Context, p passport.Passport, in ports.CreateAppealInput) (*appeal.Request, error) {
	var out *appeal.Request
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		var (
			req *appeal.Request
			err error
		)
		switch in.Type {
		case appeal.TypeUser:
			u, err := r.Users.Get(ctx, in.UserID)
			if err != nil {
				return err
			}
			if !u.IsBlocked() {
				return domain.NewInvariantViolationError("user is not blocked")
			}
			blocker, err := recordedBlocker(in.BlockerID, u.BlockedBy())
			if err != nil {
				return err
			}
			req, err = r.Appeals.GetNewUserInstance(ctx, in.UserID, in.Reason, blocker)
			if err != nil {
				return err
			}
		case appeal.TypeListing:
			l, err := r.Listings.Get(ctx, in.ListingID)
			if err != nil {
				return err
			}
			if !l.IsBlocked() {
				return domain.NewInvariantViolationError("listing is not blocked")
			}
			acc, err := r.Accounts.Get(ctx, l.AccountID())
			if err != nil {
				return err
			}
			if _, member := acc.ContactForUser(in.UserID); !member {
				return domain.NewPermissionError("appeal a listing of an account the user does not belong to")
			}
			blocker, err := recordedBlocker(in.BlockerID, l.BlockedBy())
			if err != nil {
				return err
			}
			req, err = r.Appeals.GetNewListingInstance(ctx, in.UserID, in.ListingID, in.Reason, blocker)
			if err != nil {
				return err
			}
		default:
			return domain.NewValidationError("type", "must be one of: ListingAppealRequest UserAppealRequest")
		}
		out, err = r.Appeals.Save(ctx, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create appeal request: %w", err)
	}
	s.logger.Info().Str("appeal_id", out.ID()).Str("type", string(out.Type())).Str("actor_id", p.ActorID()).Msg("appeal filed")
	return out, nil
}

// recordedBlocker picks the blocker an appeal is addressed to. Blocks written
// before blockers were recorded accept whatever the caller names.
func recordedBlocker(named, recorded string) (string, error) {
	switch {
	case recorded == "":
		return named, nil
	case named == "" || named == recorded:
		return recorded, nil
	default:
		return "", domain.NewValidationError("blocker id", "does not match the recorded blocker")
	}
}

func (s *AppealService) Get(ctx context.Context, p passport.Passport, id string) (*appeal.Request, error) {
	var out *appeal.Request
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		req, err := r.Appeals.Get(ctx, id)
		if err != nil {
			return err
		}
		if !req.CanView() {
			return domain.NewPermissionError("view appeal request")
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get appeal request: %w", err)
	}
	return out, nil
}

// List returns appeals matching f. Actors listing their own appeals only need
// to be a party to each result; anything wider needs the view-all permission.
func (s *AppealService) List(ctx context.Context, p passport.Passport, f ports.AppealFilter) ([]*appeal.Request, error) {
	if f.UserID == "" || f.UserID != p.ActorID() {
		if err := appeal.RequireViewAll(p); err != nil {
			return nil, fmt.Errorf("list appeal requests: %w", err)
		}
	}
	var out []*appeal.Request
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		reqs, err := r.Appeals.List(ctx, f)
		if err != nil {
			return err
		}
		for _, req := range reqs {
			if req.CanView() {
				out = append(out, req)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list appeal requests: %w", err)
	}
	return out, nil
}

func (s *AppealService) Update(ctx context.Context, p passport.Passport, id string, in ports.UpdateAppealInput) (*appeal.Request, error) {
	var out *appeal.Request
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		req, err := r.Appeals.Get(ctx, id)
		if err != nil {
			return err
		}
		if in.Reason != nil {
			if err := req.SetReason(*in.Reason); err != nil {
				return err
			}
		}
		if in.State != nil {
			if err := req.SetState(*in.State); err != nil {
				return err
			}
		}
		out, err = r.Appeals.Save(ctx, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update appeal request: %w", err)
	}
	return out, nil
}
