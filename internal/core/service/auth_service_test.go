package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

type stubAdminRepo struct {
	users map[string]*user.AdminUser
}

func newStubAdminRepo() *stubAdminRepo {
	return &stubAdminRepo{users: make(map[string]*user.AdminUser)}
}

func cloneAdmin(u *user.AdminUser) *user.AdminUser {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAdminRepo) Create(_ context.Context, u *user.AdminUser) (*user.AdminUser, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.users[u.ID] = cloneAdmin(u)
	return cloneAdmin(u), nil
}

func (r *stubAdminRepo) FindByEmail(_ context.Context, email string) (*user.AdminUser, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneAdmin(u), nil
		}
	}
	return nil, fmt.Errorf("admin %s: %w", email, domain.ErrNotFound)
}

func (r *stubAdminRepo) FindByID(_ context.Context, id string) (*user.AdminUser, error) {
	if u, ok := r.users[id]; ok {
		return cloneAdmin(u), nil
	}
	return nil, fmt.Errorf("admin %s: %w", id, domain.ErrNotFound)
}

var moderatorRole = user.AdminRole{
	Name:        "moderator",
	Permissions: user.AdminPermissions{CanModerateListings: true},
}

func TestAuthService_RegisterAdmin_Success(t *testing.T) {
	repo := newStubAdminRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	admin, err := svc.RegisterAdmin(context.Background(), "Alice@Example.com", "Alice", "password123", moderatorRole)
	if err != nil {
		t.Fatalf("RegisterAdmin returned error: %v", err)
	}
	if admin == nil || admin.ID == "" {
		t.Fatalf("expected admin with id, got %+v", admin)
	}
	if admin.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", admin.Email)
	}
	if admin.PasswordHash == "password123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("password123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if admin.Role.Name != "moderator" || !admin.Role.Permissions.CanModerateListings {
		t.Fatalf("unexpected role: %+v", admin.Role)
	}
}

func TestAuthService_RegisterAdmin_ShortPassword(t *testing.T) {
	svc := NewAuthService(newStubAdminRepo(), "secret", time.Hour)

	_, err := svc.RegisterAdmin(context.Background(), "bob@example.com", "Bob", "short", moderatorRole)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthService_RegisterAdmin_InvalidEmail(t *testing.T) {
	svc := NewAuthService(newStubAdminRepo(), "secret", time.Hour)

	_, err := svc.RegisterAdmin(context.Background(), "not-an-email", "Bob", "password123", moderatorRole)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthService_RegisterAdmin_Duplicate(t *testing.T) {
	svc := NewAuthService(newStubAdminRepo(), "secret", time.Hour)

	if _, err := svc.RegisterAdmin(context.Background(), "bob@example.com", "Bob", "password123", moderatorRole); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.RegisterAdmin(context.Background(), "bob@example.com", "Bobby", "password456", moderatorRole)
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := NewAuthService(newStubAdminRepo(), "secret", time.Hour)

	registered, err := svc.RegisterAdmin(context.Background(), "carol@example.com", "Carol", "s3cretpass", moderatorRole)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, admin, err := svc.Login(context.Background(), "carol@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if admin == nil || admin.ID != registered.ID {
		t.Fatalf("unexpected admin: %+v", admin)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["kind"] != "admin" {
		t.Fatalf("expected kind admin, got %v", claims["kind"])
	}
	if claims["sub"] != registered.ID {
		t.Fatalf("expected sub %s, got %v", registered.ID, claims["sub"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc := NewAuthService(newStubAdminRepo(), "secret", time.Hour)

	_, _ = svc.RegisterAdmin(context.Background(), "dave@example.com", "Dave", "goodpassword", moderatorRole)
	if _, _, err := svc.Login(context.Background(), "dave@example.com", "badpassword"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := NewAuthService(newStubAdminRepo(), "secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_BlockedAdmin(t *testing.T) {
	repo := newStubAdminRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	admin, err := svc.RegisterAdmin(context.Background(), "erin@example.com", "Erin", "password123", moderatorRole)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	repo.users[admin.ID].IsBlocked = true

	if _, _, err := svc.Login(context.Background(), "erin@example.com", "password123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
