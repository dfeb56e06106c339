package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/account"
	"github.com/sharethrift/marketplace/internal/core/domain/appeal"
	"github.com/sharethrift/marketplace/internal/core/domain/listing"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

const (
	collectionAccounts = "accounts"
	collectionListings = "listings"
	collectionAppeals  = "appeal_requests"
	collectionUsers    = "personal_users"
)

// findOne decodes the single document matching filter.
func findOne[D any](ctx context.Context, col *mongo.Collection, kind string, filter bson.M) (D, error) {
	var d D
	err := col.FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return d, fmt.Errorf("%s: %w", kind, domain.ErrNotFound)
	}
	if err != nil {
		return d, fmt.Errorf("find %s: %w", kind, err)
	}
	return d, nil
}

func findMany[D any](ctx context.Context, col *mongo.Collection, kind string, filter bson.M) ([]D, error) {
	cur, err := col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return docs, nil
}

// write stores doc as version loaded+1. A new aggregate (loaded == 0) is
// inserted; an existing one is replaced only if the stored version still
// equals loaded. onDuplicate maps unique-index violations.
func write(ctx context.Context, col *mongo.Collection, id string, loaded int64, doc any, onDuplicate error) error {
	if loaded == 0 {
		_, err := col.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "_id_") {
				return domain.ErrConcurrencyConflict
			}
			return onDuplicate
		}
		return err
	}
	res, err := col.ReplaceOne(ctx, bson.M{"_id": id, "version": loaded}, doc)
	if mongo.IsDuplicateKeyError(err) {
		return onDuplicate
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// --- accounts ---

type accountRepo struct{ s *scope }

func (r *accountRepo) col() *mongo.Collection { return r.s.db.Collection(collectionAccounts) }

func (r *accountRepo) hydrate(d accountDoc) *account.Account {
	return account.Rehydrate(d.props(), r.s.passport, r.s.rec)
}

func (r *accountRepo) Get(ctx context.Context, id string) (*account.Account, error) {
	d, err := findOne[accountDoc](ctx, r.col(), "account", bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	return r.hydrate(d), nil
}

func (r *accountRepo) GetByHandle(ctx context.Context, handle string) (*account.Account, error) {
	d, err := findOne[accountDoc](ctx, r.col(), "account", bson.M{"handle": strings.ToLower(handle)})
	if err != nil {
		return nil, err
	}
	return r.hydrate(d), nil
}

func (r *accountRepo) GetByUserID(ctx context.Context, userID string) ([]*account.Account, error) {
	docs, err := findMany[accountDoc](ctx, r.col(), "accounts", bson.M{"contacts.user_id": userID})
	if err != nil {
		return nil, err
	}
	out := make([]*account.Account, 0, len(docs))
	for _, d := range docs {
		out = append(out, r.hydrate(d))
	}
	return out, nil
}

func (r *accountRepo) GetNewInstance(_ context.Context, owner account.Owner) (*account.Account, error) {
	return account.CreateInitialAccountForNewUser(r.s.passport, domain.NewID(), owner, r.s.rec)
}

func (r *accountRepo) Save(ctx context.Context, a *account.Account) (*account.Account, error) {
	p := a.Props()
	p.Version++
	if err := write(ctx, r.col(), a.ID(), a.Version(), toAccountDoc(p), domain.ErrHandleTaken); err != nil {
		return nil, fmt.Errorf("save account %s: %w", a.ID(), err)
	}
	a.SetVersion(p.Version)
	return a, nil
}

// --- listings ---

type listingRepo struct{ s *scope }

func (r *listingRepo) col() *mongo.Collection { return r.s.db.Collection(collectionListings) }

func (r *listingRepo) hydrate(d listingDoc) *listing.Listing {
	return listing.Rehydrate(d.props(), r.s.passport, r.s.rec)
}

func (r *listingRepo) Get(ctx context.Context, id string) (*listing.Listing, error) {
	d, err := findOne[listingDoc](ctx, r.col(), "listing", bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	return r.hydrate(d), nil
}

func (r *listingRepo) GetByAccountID(ctx context.Context, accountID string) ([]*listing.Listing, error) {
	docs, err := findMany[listingDoc](ctx, r.col(), "listings", bson.M{"account_id": accountID})
	if err != nil {
		return nil, err
	}
	out := make([]*listing.Listing, 0, len(docs))
	for _, d := range docs {
		out = append(out, r.hydrate(d))
	}
	return out, nil
}

func (r *listingRepo) GetNewInstance(_ context.Context, accountID, title string) (*listing.Listing, error) {
	return listing.NewDraftListing(r.s.passport, domain.NewID(), accountID, title, r.s.rec)
}

func (r *listingRepo) Save(ctx context.Context, l *listing.Listing) (*listing.Listing, error) {
	p := l.Props()
	p.Version++
	if err := write(ctx, r.col(), l.ID(), l.Version(), toListingDoc(p), domain.ErrConcurrencyConflict); err != nil {
		return nil, fmt.Errorf("save listing %s: %w", l.ID(), err)
	}
	l.SetVersion(p.Version)
	return l, nil
}

func (r *listingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete listing %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// --- appeal requests ---

type appealRepo struct{ s *scope }

func (r *appealRepo) col() *mongo.Collection { return r.s.db.Collection(collectionAppeals) }

func (r *appealRepo) hydrate(d appealDoc) *appeal.Request {
	return appeal.Rehydrate(d.props(), r.s.passport, r.s.rec)
}

func (r *appealRepo) Get(ctx context.Context, id string) (*appeal.Request, error) {
	d, err := findOne[appealDoc](ctx, r.col(), "appeal request", bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	return r.hydrate(d), nil
}

func (r *appealRepo) List(ctx context.Context, f ports.AppealFilter) ([]*appeal.Request, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.State != "" {
		filter["state"] = string(f.State)
	}
	if f.Type != "" {
		filter["type"] = string(f.Type)
	}
	docs, err := findMany[appealDoc](ctx, r.col(), "appeal requests", filter)
	if err != nil {
		return nil, err
	}
	out := make([]*appeal.Request, 0, len(docs))
	for _, d := range docs {
		out = append(out, r.hydrate(d))
	}
	return out, nil
}

func (r *appealRepo) GetNewListingInstance(_ context.Context, userID, listingID, reason, blockerID string) (*appeal.Request, error) {
	return appeal.NewListingAppealRequest(r.s.passport, domain.NewID(), userID, listingID, reason, blockerID, r.s.rec)
}

func (r *appealRepo) GetNewUserInstance(_ context.Context, userID, reason, blockerID string) (*appeal.Request, error) {
	return appeal.NewUserAppealRequest(r.s.passport, domain.NewID(), userID, reason, blockerID, r.s.rec)
}

func (r *appealRepo) Save(ctx context.Context, a *appeal.Request) (*appeal.Request, error) {
	p := a.Props()
	p.Version++
	if err := write(ctx, r.col(), a.ID(), a.Version(), toAppealDoc(p), domain.ErrConcurrencyConflict); err != nil {
		return nil, fmt.Errorf("save appeal request %s: %w", a.ID(), err)
	}
	a.SetVersion(p.Version)
	return a, nil
}

// --- personal users ---

type userRepo struct{ s *scope }

func (r *userRepo) col() *mongo.Collection { return r.s.db.Collection(collectionUsers) }

func (r *userRepo) hydrate(d userDoc) *user.PersonalUser {
	return user.Rehydrate(d.props(), r.s.passport, r.s.rec)
}

func (r *userRepo) Get(ctx context.Context, id string) (*user.PersonalUser, error) {
	d, err := findOne[userDoc](ctx, r.col(), "user", bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	return r.hydrate(d), nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*user.PersonalUser, error) {
	d, err := findOne[userDoc](ctx, r.col(), "user", bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
	if err != nil {
		return nil, err
	}
	return r.hydrate(d), nil
}

func (r *userRepo) GetNewInstance(_ context.Context, email, firstName, lastName string) (*user.PersonalUser, error) {
	return user.NewPersonalUser(r.s.passport, domain.NewID(), email, firstName, lastName, r.s.rec)
}

func (r *userRepo) Save(ctx context.Context, u *user.PersonalUser) (*user.PersonalUser, error) {
	p := u.Props()
	p.Version++
	if err := write(ctx, r.col(), u.ID(), u.Version(), toUserDoc(p), domain.ErrUserExists); err != nil {
		return nil, fmt.Errorf("save user %s: %w", u.ID(), err)
	}
	u.SetVersion(p.Version)
	return u, nil
}
