package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/passport"
	"github.com/sharethrift/marketplace/internal/core/ports"
	"github.com/sharethrift/marketplace/internal/infrastructure/db"
)

const (
	driverName = "mongo"

	// writeConflictCode is the server error raised when two transactions
	// write the same document.
	writeConflictCode = 112
)

// UnitOfWork runs each scope in a MongoDB multi-document transaction, which
// needs a replica set or sharded cluster.
type UnitOfWork struct {
	client *mongo.Client
	db     *mongo.Database
	bus    ports.EventBus
	events ports.EventLog
	logger zerolog.Logger
}

func NewUnitOfWork(client *mongo.Client, database *mongo.Database, bus ports.EventBus, events ports.EventLog, logger zerolog.Logger) *UnitOfWork {
	return &UnitOfWork{client: client, db: database, bus: bus, events: events, logger: logger}
}

// WithTransaction binds fresh repositories to one session. The driver retries
// the callback on transient transaction errors, so each attempt starts with
// its own event recorder and only the committed attempt's events are
// published.
func (u *UnitOfWork) WithTransaction(ctx context.Context, p passport.Passport, fn func(ctx context.Context, repos ports.Repositories) error) (err error) {
	ctx, span := db.StartScope(ctx, driverName)
	defer func() { db.EndScope(span, driverName, err) }()

	sess, err := u.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	var committed *domain.EventRecorder
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		s := &scope{db: u.db, passport: p, rec: domain.NewEventRecorder()}
		repos := ports.Repositories{
			Accounts: &accountRepo{s},
			Listings: &listingRepo{s},
			Appeals:  &appealRepo{s},
			Users:    &userRepo{s},
		}
		if err := fn(sc, repos); err != nil {
			return nil, err
		}
		committed = s.rec
		return nil, nil
	})
	if err != nil {
		if isWriteConflict(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}
		return err
	}
	if committed != nil {
		db.PublishCommitted(ctx, committed, u.events, u.bus, u.logger)
	}
	return nil
}

// isWriteConflict reports whether err, surfacing after the driver gave up
// retrying, came from a concurrent write. Other transient failures, such as
// network errors, stay as they are.
func isWriteConflict(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(writeConflictCode)
}

type scope struct {
	db       *mongo.Database
	passport passport.Passport
	rec      *domain.EventRecorder
}
