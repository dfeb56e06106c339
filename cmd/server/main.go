// Command server runs the marketplace HTTP API and its event workers.
//
// @title                       Marketplace API
// @version                     1.0
// @description                 Accounts, listings and appeal requests with capability-based authorization.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/sharethrift/marketplace/internal/api"
	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/domain/user"
	"github.com/sharethrift/marketplace/internal/core/ports"
	"github.com/sharethrift/marketplace/internal/core/service"
	"github.com/sharethrift/marketplace/internal/infrastructure/db/memory"
	"github.com/sharethrift/marketplace/internal/infrastructure/db/mongo"
	"github.com/sharethrift/marketplace/internal/infrastructure/db/redis"
	"github.com/sharethrift/marketplace/internal/infrastructure/kafka"
	"github.com/sharethrift/marketplace/internal/infrastructure/moderation"
	"github.com/sharethrift/marketplace/internal/infrastructure/queue"
	"github.com/sharethrift/marketplace/internal/infrastructure/telemetry"
	"github.com/sharethrift/marketplace/internal/pkg/config"
	"github.com/sharethrift/marketplace/pkg/logger"
)

const (
	serviceName     = "marketplace"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: serviceName,
		Env:     cfg.Env,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

// storage is what a driver contributes to the wiring.
type storage struct {
	newUnitOfWork func(bus ports.EventBus) ports.UnitOfWork
	admins        ports.AdminUserRepository
	blobs         ports.BlobStore
	mongo         *mongodriver.Database
	close         func(context.Context)
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: serviceName,
		Environment: cfg.Env,
		Endpoint:    cfg.Telemetry.Endpoint,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	store, err := openStorage(ctx, cfg, logger.Component(log, "storage"))
	if err != nil {
		return err
	}
	defer store.close(context.Background())

	// --- Dedup and search: Redis when enabled, in-process otherwise ---
	var (
		rdb   *goredis.Client
		dedup ports.Deduplicator = memory.NewDeduplicator()
		index ports.SearchIndex  = memory.NewSearchIndex()
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.Connect(ctx, redis.Config{
			URL:      cfg.Redis.URL,
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		dedup = redis.NewDeduplicator(rdb, cfg.Redis.DedupTTL)
		index = redis.NewListingIndex(rdb)
	}

	dispatcher := queue.NewDispatcher(queue.Options{
		Workers:      cfg.Events.Workers,
		MaxAttempts:  cfg.Events.MaxAttempts,
		RetryBackoff: cfg.Events.RetryBackoff,
	}, dedup, logger.Component(log, "dispatcher"))
	uow := store.newUnitOfWork(dispatcher)

	// --- Application services ---
	accounts := service.NewAccountService(uow, log)
	listings := service.NewListingService(uow, store.blobs, log)
	appeals := service.NewAppealService(uow, log)
	users := service.NewUserService(uow, log)
	auth := service.NewAuthService(store.admins, cfg.JWTSecret, cfg.TokenTTL)
	resolver := service.NewPassportResolver(uow, store.admins, users, log)

	// --- Event handlers ---
	reviewer := moderation.NewReviewer(moderation.Config{
		Manual:       cfg.Moderation.Manual,
		BlockedTerms: cfg.Moderation.BlockedTerms,
	})
	service.NewEventHandlers(uow, accounts, reviewer, index, store.blobs, logger.Component(log, "event-handlers")).Register(dispatcher)

	if len(cfg.Kafka.Brokers) > 0 {
		fwd, err := kafka.NewForwarder(kafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic}, logger.Component(log, "kafka"))
		if err != nil {
			return err
		}
		defer fwd.Close(context.Background())
		fwd.Register(dispatcher)
	}

	if err := bootstrapAdmin(ctx, cfg.Admin, auth, log); err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		Auth:      auth,
		Resolver:  resolver,
		Accounts:  accounts,
		Listings:  listings,
		Appeals:   appeals,
		Users:     users,
		Search:    index,
		Mongo:     store.mongo,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	g, gctx := errgroup.WithContext(ctx)

	// Workers outlive the HTTP server so that events committed by in-flight
	// requests are still dispatched; they are cancelled only if draining
	// overruns the shutdown deadline.
	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWorkers()
	dispatcher.Start(workerCtx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down http server")
		httpErr := e.Shutdown(shutdownCtx)

		log.Info().Msg("draining event dispatcher")
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("event dispatcher drain incomplete; undelivered events remain in the event log")
		}
		stopWorkers()
		dispatcher.Wait()
		return httpErr
	})

	return g.Wait()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.DriverMemory {
		st := memory.NewStore()
		events := memory.NewEventLog()
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return &storage{
			newUnitOfWork: func(bus ports.EventBus) ports.UnitOfWork {
				return memory.NewUnitOfWork(st, bus, events, log)
			},
			admins: memory.NewAdminUserRepository(),
			blobs:  memory.NewBlobStore(),
			close:  func(context.Context) {},
		}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	blobs, err := mongo.NewBlobStore(db)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	events := mongo.NewEventLog(db)
	return &storage{
		newUnitOfWork: func(bus ports.EventBus) ports.UnitOfWork {
			return mongo.NewUnitOfWork(client, db, bus, events, log)
		},
		admins: mongo.NewAdminUserRepository(db),
		blobs:  blobs,
		mongo:  db,
		close: func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		},
	}, nil
}

// bootstrapAdmin creates the configured staff account if it does not exist.
func bootstrapAdmin(ctx context.Context, cfg config.AdminConfig, auth *service.AuthService, log zerolog.Logger) error {
	if cfg.Email == "" {
		return nil
	}
	role := user.AdminRole{
		Name: "superadmin",
		Permissions: user.AdminPermissions{
			CanBlockUsers:       true,
			CanModerateListings: true,
			CanViewAllUsers:     true,
		},
	}
	_, err := auth.RegisterAdmin(ctx, cfg.Email, cfg.Name, cfg.Password, role)
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("email", cfg.Email).Msg("bootstrap admin created")
	return nil
}
