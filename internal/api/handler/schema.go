package handler

import (
	"time"

	"github.com/sharethrift/marketplace/internal/core/domain/account"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type adminResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type loginResponse struct {
	Token string        `json:"token"`
	Admin adminResponse `json:"admin"`
}

// --- Accounts ---

type updateAccountRequest struct {
	Name   *string `json:"name"   validate:"omitempty,min=1,max=100"`
	Handle *string `json:"handle" validate:"omitempty,min=3,max=50"`
}

type addRoleRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type rolePermissionsRequest struct {
	Permissions account.RolePermissions `json:"permissions"`
}

type addContactRequest struct {
	UserID string `json:"user_id" validate:"required"`
	RoleID string `json:"role_id"`
}

type roleResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	IsDefault   bool                    `json:"is_default"`
	Permissions account.RolePermissions `json:"permissions"`
	CreatedAt   time.Time               `json:"created_at"`
}

type contactResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RoleID    string    `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

type accountResponse struct {
	ID        string            `json:"id"`
	Version   int64             `json:"version"`
	Name      string            `json:"name"`
	Handle    string            `json:"handle"`
	CreatedBy string            `json:"created_by"`
	Roles     []roleResponse    `json:"roles"`
	Contacts  []contactResponse `json:"contacts"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// --- Listings ---

type createListingRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type updateDraftRequest struct {
	Title           *string   `json:"title"`
	Description     *string   `json:"description"`
	Tags            *[]string `json:"tags"`
	PrimaryCategory *string   `json:"primary_category"`
}

type rejectPublishRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type blockedRequest struct {
	Blocked bool `json:"blocked"`
}

type photoResponse struct {
	Order      int    `json:"order"`
	DocumentID string `json:"document_id"`
}

type draftStatusResponse struct {
	StatusCode   string    `json:"status_code"`
	StatusDetail string    `json:"status_detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type draftResponse struct {
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Tags            []string              `json:"tags"`
	PrimaryCategory string                `json:"primary_category"`
	Photos          []photoResponse       `json:"photos"`
	CurrentStatus   string                `json:"current_status"`
	StatusHistory   []draftStatusResponse `json:"status_history"`
}

type listingLinks struct {
	Self    string `json:"self"`
	Account string `json:"account"`
}

type listingResponse struct {
	ID              string          `json:"id"`
	Version         int64           `json:"version"`
	AccountID       string          `json:"account_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Tags            []string        `json:"tags"`
	PrimaryCategory string          `json:"primary_category"`
	Photos          []photoResponse `json:"photos"`
	StatusCode      string          `json:"status_code"`
	IsBlocked       bool            `json:"is_blocked"`
	BlockedBy       string          `json:"blocked_by,omitempty"`
	PublishedAt     *time.Time      `json:"published_at,omitempty"`
	Draft           *draftResponse  `json:"draft,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Links           listingLinks    `json:"_links"`
}

type addPhotoResponse struct {
	Order      int    `json:"order"`
	DocumentID string `json:"document_id"`
}

type searchListingsResponse struct {
	Tag        string   `json:"tag"`
	ListingIDs []string `json:"listing_ids"`
}

// --- Appeal requests ---

type createAppealRequest struct {
	Type      string `json:"type"       validate:"required,oneof=ListingAppealRequest UserAppealRequest"`
	UserID    string `json:"user_id"    validate:"required"`
	ListingID string `json:"listing_id" validate:"required_if=Type ListingAppealRequest"`
	Reason    string `json:"reason"     validate:"required,max=1000"`
	BlockerID string `json:"blocker_id"`
}

type updateAppealRequest struct {
	Reason *string `json:"reason"`
	State  *string `json:"state" validate:"omitempty,oneof=requested accepted denied"`
}

type appealResponse struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	ListingID string    `json:"listing_id,omitempty"`
	BlockerID string    `json:"blocker_id"`
	Reason    string    `json:"reason"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listAppealsResponse struct {
	Data []appealResponse `json:"data"`
}

// --- Users ---

type updateProfileRequest struct {
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsBlocked bool      `json:"is_blocked"`
	BlockedBy string    `json:"blocked_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
