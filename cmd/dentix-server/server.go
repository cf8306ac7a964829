package main

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/dentix/dentix/internal/config"
	"github.com/dentix/dentix/internal/domain/admin"
	"github.com/dentix/dentix/internal/domain/clinical"
	"github.com/dentix/dentix/internal/domain/identity"
	"github.com/dentix/dentix/internal/domain/inventory"
	"github.com/dentix/dentix/internal/domain/scheduling"
	"github.com/dentix/dentix/internal/domain/treatment"
	"github.com/dentix/dentix/internal/platform/auth"
	"github.com/dentix/dentix/internal/platform/db"
	"github.com/dentix/dentix/internal/platform/middleware"
	"github.com/dentix/dentix/internal/platform/validation"
)

// newServer wires middleware, public routes and every domain under /api.
// The pool is only touched while serving requests.
func newServer(cfg *config.Config, pool *pgxpool.Pool, tokens *auth.TokenService, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(echomw.RemoveTrailingSlash())

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID, db.TenantHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	v := validation.New()

	// Health, unauthenticated
	startedAt := time.Now()
	e.GET("/health", db.HealthHandler(pool, cfg.Version, startedAt))
	e.GET("/health/db", db.PoolHealthHandler(pool))

	// Auth
	adminSvc := admin.NewService(admin.NewUserRepo(pool), admin.NewConfigRepo(pool), v)
	authHandler := auth.NewHandler(tokens, adminSvc, v)
	authHandler.RegisterPublicRoutes(e, middleware.RateLimit(middleware.LoginRateLimitConfig()))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	api := e.Group("/api",
		middleware.RateLimit(rateLimitCfg),
		auth.JWTMiddleware(auth.JWTConfig{Verifier: tokens}),
		db.TenantMiddleware(),
		db.ConnMiddleware(pool),
		middleware.Audit(logger),
	)
	authHandler.RegisterRoutes(api)
	auth.RegisterRevocationRoutes(api, tokens)

	// Identity
	identity.NewHandler(identity.NewService(identity.NewPatientRepo(pool), v)).RegisterRoutes(api)

	// Scheduling
	schedulingSvc := scheduling.NewService(scheduling.NewAppointmentRepo(pool), scheduling.NewReferences(pool), v)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(api)

	// Treatments
	treatmentSvc := treatment.NewService(treatment.NewTreatmentRepo(pool), treatment.NewReferences(pool), v)
	treatment.NewHandler(treatmentSvc).RegisterRoutes(api)

	// Clinical history
	clinicalSvc := clinical.NewService(clinical.NewHistoryRepo(pool), clinical.NewAttachmentRepo(pool),
		clinical.NewPatientLookup(pool), v)
	clinical.NewHandler(clinicalSvc).RegisterRoutes(api)

	// Inventory
	inventorySvc := inventory.NewService(
		inventory.NewSupplyRepo(pool),
		inventory.NewSupplierRepo(pool),
		inventory.NewPostingRepo(pool),
		inventory.NewStockRepo(pool),
		inventory.NewReferences(pool),
		db.NewTransactor(pool),
		v,
	)
	inventory.NewHandler(inventorySvc).RegisterRoutes(api)

	// Reference data and users
	admin.NewHandler(adminSvc).RegisterRoutes(api)

	return e
}
