package user

import (
	"time"

	"github.com/sharethrift/marketplace/internal/core/domain"
)

// AdminPermissions are granted to staff through their AdminRole.
type AdminPermissions struct {
	CanBlockUsers       bool `json:"can_block_users"       bson:"can_block_users"`
	CanModerateListings bool `json:"can_moderate_listings" bson:"can_moderate_listings"`
	CanViewAllUsers     bool `json:"can_view_all_users"    bson:"can_view_all_users"`
}

type AdminRole struct {
	Name        string           `json:"name"        bson:"name"`
	Permissions AdminPermissions `json:"permissions" bson:"permissions"`
}

// AdminUser is a staff actor that logs in with a password. It is an actor
// only: nothing in the marketplace mutates it through a visa.
type AdminUser struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         AdminRole
	IsBlocked    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewAdminUser(id, email, name, passwordHash string, role AdminRole) (*AdminUser, error) {
	e, err := NewEmail(email)
	if err != nil {
		return nil, err
	}
	n, err := NewPersonName("name", name)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, domain.NewValidationError("password", "is required")
	}
	now := time.Now().UTC()
	return &AdminUser{
		ID:           id,
		Email:        string(e),
		Name:         string(n),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
