package ports

import (
	"context"
	"io"

	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

// Nil pointer fields in the update inputs below are left unchanged.

type UpdateAccountInput struct {
	Name   *string
	Handle *string
}

type AccountService interface {
	Get(ctx context.Context, p passport.Passport, id string) (*account.Account, error)
	CreateInitialAccount(ctx context.Context, p passport.Passport, owner account.Owner) (*account.Account, error)
	UpdateSettings(ctx context.Context, p passport.Passport, id string, in UpdateAccountInput) (*account.Account, error)
	AddRole(ctx context.Context, p passport.Passport, accountID, name string) (*account.Role, error)
	DeleteRole(ctx context.Context, p passport.Passport, accountID, roleID, reassignTo string) error
	UpdateRolePermissions(ctx context.Context, p passport.Passport, accountID, roleID string, perms account.RolePermissions) error
	AddContact(ctx context.Context, p passport.Passport, accountID, userID, roleID string) (*account.Contact, error)
}

type UpdateDraftInput struct {
	Title           *string
	Description     *string
	Tags            *[]string
	PrimaryCategory *string
}

type ListingService interface {
	Create(ctx context.Context, p passport.Passport, accountID, title string) (*listing.Listing, error)
	Get(ctx context.Context, p passport.Passport, id string) (*listing.Listing, error)
	UpdateDraft(ctx context.Context, p passport.Passport, id string, in UpdateDraftInput) (*listing.Listing, error)
	// AddPhoto stores content under the document id the listing assigns to
	// slot order. A nil content only reserves the slot.
	AddPhoto(ctx context.Context, p passport.Passport, id string, order int, content io.Reader) (string, error)
	RemovePhoto(ctx context.Context, p passport.Passport, id string, order int) error
	RequestPublish(ctx context.Context, p passport.Passport, id string) error
	WithdrawPublishRequest(ctx context.Context, p passport.Passport, id string) error
	// ApprovePublish approves a pending draft and publishes it in one scope.
	ApprovePublish(ctx context.Context, p passport.Passport, id string) error
	RejectPublish(ctx context.Context, p passport.Passport, id, reason string) error
	SetBlocked(ctx context.Context, p passport.Passport, id string, blocked bool) error
	Delete(ctx context.Context, p passport.Passport, id string) error
}

type CreateAppealInput struct {
	Type      appeal.Type
	UserID    string
	ListingID string
	Reason    string
	// BlockerID may be empty for user appeals; the user's recorded blocker is used.
	BlockerID string
}

type UpdateAppealInput struct {
	Reason *string
	State  *string
}

type AppealService interface {
	Create(ctx context.Context, p passport.Passport, in CreateAppealInput) (*appeal.Request, error)
	Get(ctx context.Context, p passport.Passport, id string) (*appeal.Request, error)
	List(ctx context.Context, p passport.Passport, f AppealFilter) ([]*appeal.Request, error)
	Update(ctx context.Context, p passport.Passport, id string, in UpdateAppealInput) (*appeal.Request, error)
}

type UserService interface {
	Get(ctx context.Context, id string) (*user.PersonalUser, error)
	Provision(ctx context.Context, email, firstName, lastName string) (*user.PersonalUser, error)
	SetProfile(ctx context.Context, p passport.Passport, id, firstName, lastName string) (*user.PersonalUser, error)
	SetBlocked(ctx context.Context, p passport.Passport, id string, blocked bool) (*user.PersonalUser, error)
}
