package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

// Handler names key deduplication and must not change once deployed.
const (
	HandlerProvisionAccount = "provision-account"
	HandlerModerateDraft    = "moderate-draft"
	HandlerIndexListing     = "index-listing"
	HandlerUnindexListing   = "unindex-listing"
	HandlerPurgeListing     = "purge-listing"
	HandlerDeletePhotoBlob  = "delete-photo-blob"
	HandlerLiftBlock        = "lift-block"
)

// EventHandlers holds the reactions to committed events. Every handler runs
// under the system passport in a fresh unit of work and is idempotent.
type EventHandlers struct {
	uow      ports.UnitOfWork
	accounts *AccountService
	reviewer ports.ModerationReviewer
	index    ports.SearchIndex
	blobs    ports.BlobStore
	logger   zerolog.Logger
}

func NewEventHandlers(
	uow ports.UnitOfWork,
	accounts *AccountService,
	reviewer ports.ModerationReviewer,
	index ports.SearchIndex,
	blobs ports.BlobStore,
	logger zerolog.Logger,
) *EventHandlers {
	return &EventHandlers{
		uow:      uow,
		accounts: accounts,
		reviewer: reviewer,
		index:    index,
		blobs:    blobs,
		logger:   logger,
	}
}

// Register subscribes every handler on bus. Handlers whose collaborator is
// not configured are skipped.
func (h *EventHandlers) Register(bus ports.EventBus) {
	bus.Register(domain.EventPersonalUserCreated, HandlerProvisionAccount, h.ProvisionAccount)
	bus.Register(domain.EventAppealRequestAccepted, HandlerLiftBlock, h.LiftBlock)
	bus.Register(domain.EventListingDeleted, HandlerPurgeListing, h.PurgeListing)
	if h.reviewer != nil {
		bus.Register(domain.EventListingDraftPublishRequested, HandlerModerateDraft, h.ModerateDraft)
	}
	if h.index != nil {
		bus.Register(domain.EventListingPublished, HandlerIndexListing, h.IndexListing)
		bus.Register(domain.EventListingDeleted, HandlerUnindexListing, h.UnindexListing)
	}
	if h.blobs != nil {
		bus.Register(domain.EventPhotoDeleted, HandlerDeletePhotoBlob, h.DeletePhotoBlob)
	}
}

func unexpectedPayload(e domain.Event) error {
	return fmt.Errorf("%s: unexpected payload %T", e.Type, e.Payload)
}

// ProvisionAccount creates the first account of a newly provisioned user.
func (h *EventHandlers) ProvisionAccount(ctx context.Context, e domain.Event) error {
	pl, ok := e.Payload.(domain.PersonalUserCreatedPayload)
	if !ok {
		return unexpectedPayload(e)
	}
	name := strings.TrimSpace(pl.FirstName + " " + pl.LastName)
	if name == "" {
		name = pl.Email
	}
	owner := account.Owner{
		UserID: pl.UserID,
		Name:   name,
		Handle: handleFor(pl.Email, pl.UserID),
	}
	if _, err := h.accounts.CreateInitialAccount(ctx, passport.NewSystem(), owner); err != nil {
		return err
	}
	return nil
}

// handleFor derives a unique-enough handle from the email local part and the
// user id.
func handleFor(email, userID string) string {
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == '.' || r == '+':
			b.WriteRune('-')
		}
	}
	base := b.String()
	if len(base) < 3 {
		base = "user"
	}
	if len(base) > 40 {
		base = base[:40]
	}
	suffix := strings.ReplaceAll(userID, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return base + "-" + suffix
}

// ModerateDraft reviews a pending draft and approves and publishes it, or
// rejects it with the reviewer's reason. Drafts no longer pending are left
// alone.
func (h *EventHandlers) ModerateDraft(ctx context.Context, e domain.Event) error {
	pl, ok := e.Payload.(domain.ListingPayload)
	if !ok {
		return unexpectedPayload(e)
	}
	return h.uow.WithTransaction(ctx, passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		l, err := r.Listings.Get(ctx, pl.ListingID)
		if err != nil {
			return err
		}
		if l.CurrentStatus() != listing.StatusPending {
			h.logger.Debug().Str("listing_id", l.ID()).Str("status", string(l.CurrentStatus())).Msg("draft no longer pending, skipping review")
			return nil
		}

		d := l.Draft()
		verdict, err := h.reviewer.Review(ctx, ports.ModerationDraft{
			ListingID:       l.ID(),
			Title:           d.Title(),
			Description:     d.Description(),
			Tags:            d.Tags(),
			PrimaryCategory: d.PrimaryCategory(),
		})
		if err != nil {
			return fmt.Errorf("review draft: %w", err)
		}

		if verdict.Approved {
			if err := l.ApprovePublish(); err != nil {
				return err
			}
			if err := l.PublishApprovedDraft(); err != nil {
				return err
			}
		} else if err := l.RejectPublish(verdict.Reason); err != nil {
			return err
		}
		_, err = r.Listings.Save(ctx, l)
		if err == nil {
			h.logger.Info().Str("listing_id", l.ID()).Bool("approved", verdict.Approved).Msg("draft moderated")
		}
		return err
	})
}

// IndexListing writes the published view of a listing to the search index.
func (h *EventHandlers) IndexListing(ctx context.Context, e domain.Event) error {
	pl, ok := e.Payload.(domain.ListingPayload)
	if !ok {
		return unexpectedPayload(e)
	}
	var doc *ports.ListingDocument
	err := h.uow.WithTransaction(ctx, passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		l, err := r.Listings.Get(ctx, pl.ListingID)
		if err != nil {
			return err
		}
		if l.IsDeleted() || l.StatusCode() != listing.StatePublished {
			return nil
		}
		doc = documentFor(l)
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	return h.index.Index(ctx, *doc)
}

func documentFor(l *listing.Listing) *ports.ListingDocument {
	photos := l.Photos()
	ids := make([]string, 0, len(photos))
	for _, p := range photos {
		ids = append(ids, p.DocumentID)
	}
	return &ports.ListingDocument{
		ListingID:       l.ID(),
		AccountID:       l.AccountID(),
		Title:           l.Title(),
		Description:     l.Description(),
		Tags:            l.Tags(),
		PrimaryCategory: l.PrimaryCategory(),
		PhotoIDs:        ids,
		PublishedAt:     l.PublishedAt(),
	}
}

func (h *EventHandlers) UnindexListing(ctx context.Context, e domain.Event) error {
	pl, ok := e.Payload.(domain.ListingPayload)
	if !ok {
		return unexpectedPayload(e)
	}
	return h.index.Remove(ctx, pl.ListingID)
}

// PurgeListing removes a deleted listing from storage.
func (h *EventHandlers) PurgeListing(ctx context.Context, e domain.Event) error {
	pl, ok := e.Payload.(domain.ListingPayload)
	if !ok {
		return unexpectedPayload(e)
	}
	err := h.uow.WithTransaction(ctx, passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		return r.Listings.Delete(ctx, pl.ListingID)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func (h *EventHandlers) DeletePhotoBlob(ctx context.Context, e domain.Event) error {
	pl, ok := e.Payload.(domain.PhotoDeletedPayload)
	if !ok {
		return unexpectedPayload(e)
	}
	return h.blobs.Delete(ctx, pl.DocumentID)
}

// LiftBlock unblocks whatever an accepted appeal was about. A block imposed
// again by someone else after the appeal was filed stays in place.
func (h *EventHandlers) LiftBlock(ctx context.Context, e domain.Event) error {
	pl, ok := e.Payload.(domain.AppealRequestPayload)
	if !ok {
		return unexpectedPayload(e)
	}
	return h.uow.WithTransaction(ctx, passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		switch appeal.Type(pl.Type) {
		case appeal.TypeUser:
			u, err := r.Users.Get(ctx, pl.UserID)
			if err != nil {
				return err
			}
			if !u.IsBlocked() || !sameBlock(u.BlockedBy(), pl.BlockerID) {
				h.logger.Info().Str("appeal_id", pl.AppealRequestID).Str("user_id", pl.UserID).Msg("block under appeal no longer in place")
				return nil
			}
			if err := u.SetBlocked(false, ""); err != nil {
				return err
			}
			_, err = r.Users.Save(ctx, u)
			return err
		case appeal.TypeListing:
			l, err := r.Listings.Get(ctx, pl.ListingID)
			if err != nil {
				return err
			}
			if !l.IsBlocked() || !sameBlock(l.BlockedBy(), pl.BlockerID) {
				h.logger.Info().Str("appeal_id", pl.AppealRequestID).Str("listing_id", pl.ListingID).Msg("block under appeal no longer in place")
				return nil
			}
			if err := l.SetBlocked(false, ""); err != nil {
				return err
			}
			_, err = r.Listings.Save(ctx, l)
			return err
		}
		return fmt.Errorf("lift block: unknown appeal type %q", pl.Type)
	})
}

// sameBlock reports whether the block currently recorded is the one an appeal
// was filed against. Blocks without a recorded blocker match any appeal.
func sameBlock(current, appealed string) bool {
	return current == "" || current == appealed
}
