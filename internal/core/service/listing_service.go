package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

type ListingService struct {
	uow    ports.UnitOfWork
	blobs  ports.BlobStore
	logger zerolog.Logger
}

func NewListingService(uow ports.UnitOfWork, blobs ports.BlobStore, logger zerolog.Logger) *ListingService {
	return &ListingService{uow: uow, blobs: blobs, logger: logger}
}

func (s *ListingService) Create(ctx context.Context, p passport.Passport, accountID, title string) (*listing.Listing, error) {
	var out *listing.Listing
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		if _, err := r.Accounts.Get(ctx, accountID); err != nil {
			return err
		}
		l, err := r.Listings.GetNewInstance(ctx, accountID, title)
		if err != nil {
			return err
		}
		out, err = r.Listings.Save(ctx, l)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	return out, nil
}

func (s *ListingService) Get(ctx context.Context, p passport.Passport, id string) (*listing.Listing, error) {
	var out *listing.Listing
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		l, err := r.Listings.Get(ctx, id)
		if err != nil {
			return err
		}
		if !l.CanView() {
			return domain.NewPermissionError("view listing")
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return out, nil
}

// mutate loads listing id, applies fn and saves it in one scope.
func (s *ListingService) mutate(ctx context.Context, p passport.Passport, op, id string, fn func(ctx context.Context, l *listing.Listing) error) (*listing.Listing, error) {
	var out *listing.Listing
	err := s.uow.WithTransaction(ctx, p, func(ctx context.Context, r ports.Repositories) error {
		l, err := r.Listings.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, l); err != nil {
			return err
		}
		out, err = r.Listings.Save(ctx, l)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *ListingService) UpdateDraft(ctx context.Context, p passport.Passport, id string, in ports.UpdateDraftInput) (*listing.Listing, error) {
	return s.mutate(ctx, p, "update draft", id, func(_ context.Context, l *listing.Listing) error {
		if in.Title != nil {
			if err := l.SetDraftTitle(*in.Title); err != nil {
				return err
			}
		}
		if in.Description != nil {
			if err := l.SetDraftDescription(*in.Description); err != nil {
				return err
			}
		}
		if in.Tags != nil {
			if err := l.SetDraftTags(*in.Tags); err != nil {
				return err
			}
		}
		if in.PrimaryCategory != nil {
			if err := l.SetDraftPrimaryCategory(*in.PrimaryCategory); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddPhoto reserves the slot and stores content under the returned document
// id once the slot change has committed. The store may re-run the scope, so
// the blob is written outside it. A failed upload leaves the slot pointing at
// a missing blob; adding to the same slot again reuses its id.
func (s *ListingService) AddPhoto(ctx context.Context, p passport.Passport, id string, order int, content io.Reader) (string, error) {
	var docID string
	_, err := s.mutate(ctx, p, "add photo", id, func(_ context.Context, l *listing.Listing) error {
		var err error
		docID, err = l.RequestAddPhoto(order)
		return err
	})
	if err != nil {
		return "", err
	}
	if content == nil || s.blobs == nil {
		return docID, nil
	}
	if err := s.blobs.Put(ctx, docID, content); err != nil {
		s.logger.Error().Err(err).Str("listing_id", id).Str("document_id", docID).Msg("photo upload failed after slot was reserved")
		return "", fmt.Errorf("add photo: %w", err)
	}
	return docID, nil
}

func (s *ListingService) RemovePhoto(ctx context.Context, p passport.Passport, id string, order int) error {
	_, err := s.mutate(ctx, p, "remove photo", id, func(_ context.Context, l *listing.Listing) error {
		return l.RequestRemovePhoto(order)
	})
	return err
}

func (s *ListingService) RequestPublish(ctx context.Context, p passport.Passport, id string) error {
	_, err := s.mutate(ctx, p, "request publish", id, func(_ context.Context, l *listing.Listing) error {
		return l.RequestPublish()
	})
	if err == nil {
		s.logger.Info().Str("listing_id", id).Str("actor_id", p.ActorID()).Msg("publish requested")
	}
	return err
}

func (s *ListingService) WithdrawPublishRequest(ctx context.Context, p passport.Passport, id string) error {
	_, err := s.mutate(ctx, p, "withdraw publish request", id, func(_ context.Context, l *listing.Listing) error {
		return l.WithdrawPublishRequest()
	})
	return err
}

// ApprovePublish is the manual counterpart of the moderate-draft handler.
func (s *ListingService) ApprovePublish(ctx context.Context, p passport.Passport, id string) error {
	_, err := s.mutate(ctx, p, "approve publish", id, func(_ context.Context, l *listing.Listing) error {
		if err := l.ApprovePublish(); err != nil {
			return err
		}
		return l.PublishApprovedDraft()
	})
	if err == nil {
		s.logger.Info().Str("listing_id", id).Str("actor_id", p.ActorID()).Msg("draft approved and published")
	}
	return err
}

func (s *ListingService) RejectPublish(ctx context.Context, p passport.Passport, id, reason string) error {
	_, err := s.mutate(ctx, p, "reject publish", id, func(_ context.Context, l *listing.Listing) error {
		return l.RejectPublish(reason)
	})
	if err == nil {
		s.logger.Info().Str("listing_id", id).Str("actor_id", p.ActorID()).Msg("draft rejected")
	}
	return err
}

func (s *ListingService) SetBlocked(ctx context.Context, p passport.Passport, id string, blocked bool) error {
	_, err := s.mutate(ctx, p, "set listing blocked", id, func(_ context.Context, l *listing.Listing) error {
		return l.SetBlocked(blocked, p.ActorID())
	})
	return err
}

// Delete marks the listing deleted. Photo cleanup and index removal follow
// from the events it raises.
func (s *ListingService) Delete(ctx context.Context, p passport.Passport, id string) error {
	_, err := s.mutate(ctx, p, "delete listing", id, func(_ context.Context, l *listing.Listing) error {
		return l.RequestDelete()
	})
	return err
}
