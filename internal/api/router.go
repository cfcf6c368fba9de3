package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gigwork/contracts-api/internal/api/handler"
	"github.com/gigwork/contracts-api/internal/api/middleware"
	"github.com/gigwork/contracts-api/internal/core/domain"
	"github.com/gigwork/contracts-api/internal/core/service"
	mongodb "github.com/gigwork/contracts-api/internal/infrastructure/db/mongo"
	redisdb "github.com/gigwork/contracts-api/internal/infrastructure/db/redis"
	"github.com/gigwork/contracts-api/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, dbClient *mongo.Client, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("contracts"))

	// --- Dependencies ---
	store := mongodb.NewStore(dbClient, db, cfg.TxTimeout)
	profileRepo := mongodb.NewProfileRepository(db)
	contractRepo := mongodb.NewContractRepository(db)
	jobRepo := mongodb.NewJobRepository(db)
	reportRepo := mongodb.NewReportRepository(db)
	authRepo := mongodb.NewAuthRepository(db)
	cache := redisdb.NewCache(rdb)

	billingService := service.NewBillingService(store, log)
	reportService := service.NewReportService(reportRepo, cache, log)
	contractService := service.NewContractService(contractRepo, log)
	jobService := service.NewJobLister(jobRepo, log)
	authService := service.NewAuthService(authRepo, profileRepo, cfg.JWTSecret, cfg.TokenTTL)

	billingHandler := handler.NewBillingHandler(billingService)
	reportHandler := handler.NewReportHandler(reportService)
	contractHandler := handler.NewContractHandler(contractService)
	jobHandler := handler.NewJobHandler(jobService)
	authHandler := handler.NewAuthHandler(authService)

	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Authenticated API ---
	v1 := e.Group("/v1", authMiddleware)

	v1.GET("/contracts/:id", contractHandler.Get)
	v1.GET("/contracts", contractHandler.List)
	v1.GET("/jobs/unpaid", jobHandler.ListUnpaid)

	clientOnly := middleware.RBAC(domain.RoleClient)
	v1.POST("/jobs/:job_id/pay", billingHandler.Pay, clientOnly)
	v1.POST("/balances/deposit/:profile_id", billingHandler.Deposit, clientOnly)

	v1.GET("/admin/best-profession", reportHandler.BestProfession)
	v1.GET("/admin/best-clients", reportHandler.BestClients)

	return e
}
