package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

const minPasswordLength = 8

// AuthService registers staff users and issues their bearer tokens.
type AuthService struct {
	repo      ports.AdminUserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(repo ports.AdminUserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) RegisterAdmin(ctx context.Context, email, name, password string, role user.AdminRole) (*user.AdminUser, error) {
	if len(password) < minPasswordLength {
		return nil, domain.NewValidationError("password", "must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin, err := user.NewAdminUser(domain.NewID(), email, name, string(hash), role)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, admin)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *user.AdminUser, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if admin.IsBlocked {
		return "", nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(admin)
	if err != nil {
		return "", nil, err
	}

	return token, admin, nil
}

func (s *AuthService) generateToken(admin *user.AdminUser) (string, error) {
	claims := jwt.MapClaims{
		"sub":   admin.ID,
		"kind":  string(passport.KindAdmin),
		"email": admin.Email,
		"name":  admin.Name,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
