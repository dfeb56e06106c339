package ports

import (
	"context"

	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

type AuthService interface {
	RegisterAdmin(ctx context.Context, email, name, password string, role user.AdminRole) (*user.AdminUser, error)
	Login(ctx context.Context, email, password string) (string, *user.AdminUser, error)
}

// Actor is what a verified bearer token says about the caller.
type Actor struct {
	Kind      passport.Kind
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

// PassportResolver turns a verified actor into the passport for one request.
// Unknown personal users are provisioned on first sight.
type PassportResolver interface {
	Resolve(ctx context.Context, a Actor) (passport.Passport, error)
}
