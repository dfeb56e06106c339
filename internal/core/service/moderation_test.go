package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
	"github.com/sharethrift/marketplace/internal/core/ports"
	"github.com/sharethrift/marketplace/internal/infrastructure/moderation"
)

// pendingListing provisions a member and takes one listing of theirs to
// PENDING, or further if a reviewer is registered.
func pendingListing(t *testing.T, h *harness) (passport.Passport, string) {
	t.Helper()
	ctx := context.Background()
	owner, err := h.resolver.Resolve(ctx, ports.Actor{Kind: passport.KindPersonal, Email: "ada@example.com"})
	require.NoError(t, err)

	var accs []*account.Account
	require.NoError(t, h.uow.WithTransaction(ctx, passport.NewSystem(), func(ctx context.Context, r ports.Repositories) error {
		accs, err = r.Accounts.GetByUserID(ctx, owner.ActorID())
		return err
	}))
	require.Len(t, accs, 1)

	l, err := h.listings.Create(ctx, owner, accs[0].ID(), "Road bike")
	require.NoError(t, err)
	_, err = h.listings.AddPhoto(ctx, owner, l.ID(), 1, nil)
	require.NoError(t, err)
	require.NoError(t, h.listings.RequestPublish(ctx, owner, l.ID()))
	return owner, l.ID()
}

func loadListing(t *testing.T, h *harness, id string) *listing.Listing {
	t.Helper()
	l, err := h.listings.Get(context.Background(), passport.NewSystem(), id)
	require.NoError(t, err)
	return l
}

func moderator() *passport.Admin {
	return passport.NewAdmin(&user.AdminUser{ID: "staff", Role: user.AdminRole{
		Name:        "moderator",
		Permissions: user.AdminPermissions{CanModerateListings: true},
	}})
}

func TestDefaultModerationPublishes(t *testing.T) {
	h := newHarnessWith(t, moderation.Config{})
	_, id := pendingListing(t, h)

	got := loadListing(t, h, id)
	assert.Equal(t, listing.StatePublished, got.StatusCode())
	assert.Equal(t, listing.StatusApproved, got.CurrentStatus())
}

func TestManualModerationWaitsForStaff(t *testing.T) {
	ctx := context.Background()
	h := newHarnessWith(t, moderation.Config{Manual: true})
	owner, id := pendingListing(t, h)

	assert.Equal(t, listing.StatusPending, loadListing(t, h, id).CurrentStatus())

	assert.ErrorIs(t, h.listings.ApprovePublish(ctx, owner, id), domain.ErrPermissionDenied, "owners cannot approve their own drafts")
	assert.Equal(t, listing.StatusPending, loadListing(t, h, id).CurrentStatus())

	require.NoError(t, h.listings.ApprovePublish(ctx, moderator(), id))
	got := loadListing(t, h, id)
	assert.Equal(t, listing.StatePublished, got.StatusCode())
	assert.Equal(t, []listing.Photo{{Order: 1, DocumentID: got.Draft().Photos()[0].DocumentID}}, got.Photos())
	assert.Equal(t, 1, h.bus.count(domain.EventListingPublished))

	assert.ErrorIs(t, h.listings.ApprovePublish(ctx, moderator(), id), domain.ErrInvalidStateTransition)
}

func TestManualModerationRejects(t *testing.T) {
	ctx := context.Background()
	h := newHarnessWith(t, moderation.Config{Manual: true})
	_, id := pendingListing(t, h)

	assert.ErrorIs(t, h.listings.RejectPublish(ctx, moderator(), id, " "), domain.ErrValidation)
	require.NoError(t, h.listings.RejectPublish(ctx, moderator(), id, "blurry photo"))

	got := loadListing(t, h, id)
	assert.Equal(t, listing.StatusRejected, got.CurrentStatus())
	assert.Equal(t, listing.StateUnpublished, got.StatusCode())
}
