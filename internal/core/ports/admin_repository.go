package ports

import (
	"context"

	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

// AdminUserRepository persists staff credentials. Admin users are actors, not
// aggregates, so they live outside the unit of work.
type AdminUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*user.AdminUser, error)
	FindByID(ctx context.Context, id string) (*user.AdminUser, error)
	Create(ctx context.Context, u *user.AdminUser) (*user.AdminUser, error)
}
