package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
)

const collectionAdmins = "admin_users"

type AdminUserRepository struct {
	coll *mongo.Collection
}

func NewAdminUserRepository(db *mongo.Database) *AdminUserRepository {
	return &AdminUserRepository{coll: db.Collection(collectionAdmins)}
}

type adminDoc struct {
	ID           string         `bson:"_id"`
	Email        string         `bson:"email"`
	Name         string         `bson:"name"`
	PasswordHash string         `bson:"password_hash"`
	Role         user.AdminRole `bson:"role"`
	IsBlocked    bool           `bson:"is_blocked"`
	CreatedAt    int64          `bson:"created_at"`
	UpdatedAt    int64          `bson:"updated_at"`
}

func (r *AdminUserRepository) Create(ctx context.Context, u *user.AdminUser) (*user.AdminUser, error) {
	doc := adminDoc{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		IsBlocked:    u.IsBlocked,
		CreatedAt:    u.CreatedAt.Unix(),
		UpdatedAt:    u.UpdatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert admin user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (*user.AdminUser, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *AdminUserRepository) FindByID(ctx context.Context, id string) (*user.AdminUser, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AdminUserRepository) findOne(ctx context.Context, filter bson.M) (*user.AdminUser, error) {
	var d adminDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("admin user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find admin user: %w", err)
	}
	return d.toDomain(), nil
}

func (d adminDoc) toDomain() *user.AdminUser {
	return &user.AdminUser{
		ID:           d.ID,
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		IsBlocked:    d.IsBlocked,
		CreatedAt:    unixToTime(d.CreatedAt),
		UpdatedAt:    unixToTime(d.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
