package account

import (
	"strings"

	"github.com/sharethrift/marketplace/internal/core/domain"
)

const DefaultRoleName = "Administrator"

// Name is the display name of an account.
type Name string

func NewName(s string) (Name, error) {
	s = domain.NormalizeText(s)
	if err := domain.ValidateVar("name", s, "required,max=200"); err != nil {
		return "", err
	}
	return Name(s), nil
}

// Handle is the account's public, unique slug. Uniqueness is enforced by the
// store; this type only guarantees shape.
type Handle string

func NewHandle(s string) (Handle, error) {
	s = strings.ToLower(domain.NormalizeText(s))
	if err := domain.ValidateVar("handle", s, "required,min=3,max=50"); err != nil {
		return "", err
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return "", domain.NewValidationError("handle", "may only contain a-z, 0-9, '-' and '_'")
		}
	}
	return Handle(s), nil
}

// RoleName is unique within an account, compared case-insensitively.
type RoleName string

func NewRoleName(s string) (RoleName, error) {
	s = domain.NormalizeText(s)
	if err := domain.ValidateVar("role name", s, "required,max=50"); err != nil {
		return "", err
	}
	return RoleName(s), nil
}

func (n RoleName) Equal(other RoleName) bool {
	return strings.EqualFold(string(n), string(other))
}
