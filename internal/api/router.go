package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/sharethrift/marketplace/docs"
	"github.com/sharethrift/marketplace/internal/api/handler"
	"github.com/sharethrift/marketplace/internal/api/middleware"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

// photoBodyLimit caps a photo upload, multipart framing included.
const photoBodyLimit = "10M"

// Dependencies is everything the HTTP layer calls into. Mongo, Redis and
// Search are nil when the corresponding backend is not configured.
type Dependencies struct {
	Auth     ports.AuthService
	Resolver ports.PassportResolver
	Accounts ports.AccountService
	Listings ports.ListingService
	Appeals  ports.AppealService
	Users    ports.UserService
	Search   ports.SearchIndex

	Mongo *mongo.Database
	Redis *redis.Client

	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("marketplace"))
	e.Use(requestLogger(d.Logger))

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/auth/admin/login", authHandler.Login)

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret, d.Resolver))

	accounts := handler.NewAccountHandler(d.Accounts)
	v1.GET("/accounts/:id", accounts.Get)
	v1.PATCH("/accounts/:id", accounts.Update)
	v1.POST("/accounts/:id/roles", accounts.AddRole)
	v1.DELETE("/accounts/:id/roles/:roleId", accounts.DeleteRole)
	v1.PUT("/accounts/:id/roles/:roleId/permissions", accounts.UpdateRolePermissions)
	v1.POST("/accounts/:id/contacts", accounts.AddContact)

	listings := handler.NewListingHandler(d.Listings, d.Search)
	v1.POST("/accounts/:id/listings", listings.Create)
	v1.GET("/listings", listings.Search)
	v1.GET("/listings/:id", listings.Get)
	v1.DELETE("/listings/:id", listings.Delete)
	v1.PATCH("/listings/:id/draft", listings.UpdateDraft)
	v1.POST("/listings/:id/photos/:order", listings.AddPhoto, echomiddleware.BodyLimit(photoBodyLimit))
	v1.DELETE("/listings/:id/photos/:order", listings.RemovePhoto)
	v1.POST("/listings/:id/publish-request", listings.RequestPublish)
	v1.DELETE("/listings/:id/publish-request", listings.WithdrawPublishRequest)
	v1.POST("/listings/:id/approval", listings.ApprovePublish)
	v1.POST("/listings/:id/rejection", listings.RejectPublish)
	v1.PUT("/listings/:id/blocked", listings.SetBlocked)

	appeals := handler.NewAppealHandler(d.Appeals)
	v1.POST("/appeal-requests", appeals.Create)
	v1.GET("/appeal-requests", appeals.List)
	v1.GET("/appeal-requests/:id", appeals.Get)
	v1.PATCH("/appeal-requests/:id", appeals.Update)

	users := handler.NewUserHandler(d.Users)
	v1.PATCH("/users/:id/profile", users.UpdateProfile)
	v1.PUT("/users/:id/blocked", users.SetBlocked)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
