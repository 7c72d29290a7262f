// Package app bootstraps the service: configuration, logging, storage,
// domain services, HTTP server and graceful shutdown.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	adminhandlers "github.com/vantage-service/vantage_service/internal/api/handlers/admin"
	kychandlers "github.com/vantage-service/vantage_service/internal/api/handlers/kyc"
	"github.com/vantage-service/vantage_service/internal/api/middleware"
	"github.com/vantage-service/vantage_service/internal/api/routes"
	"github.com/vantage-service/vantage_service/internal/domain/services/admingate"
	"github.com/vantage-service/vantage_service/internal/domain/services/audit"
	"github.com/vantage-service/vantage_service/internal/domain/services/kyc"
	"github.com/vantage-service/vantage_service/internal/domain/services/review"
	"github.com/vantage-service/vantage_service/internal/domain/services/simulator"
	"github.com/vantage-service/vantage_service/internal/infrastructure/adapters"
	"github.com/vantage-service/vantage_service/internal/infrastructure/config"
	"github.com/vantage-service/vantage_service/internal/infrastructure/database"
	infrarepos "github.com/vantage-service/vantage_service/internal/infrastructure/repositories"
	"github.com/vantage-service/vantage_service/internal/infrastructure/storage"
	"github.com/vantage-service/vantage_service/pkg/logger"
	"github.com/vantage-service/vantage_service/pkg/tracing"
	"github.com/vantage-service/vantage_service/pkg/validation"
)

// Application owns the process lifecycle.
type Application struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *sqlx.DB
	redis  *redis.Client
	server *http.Server

	tracingShutdown func(context.Context) error
}

// NewApplication creates an empty application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize loads configuration and wires every component.
func (app *Application) Initialize() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app.cfg = cfg

	app.log = logger.New(cfg.LogLevel, cfg.Environment)

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	app.db = db

	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	shutdown, err := tracing.InitTracer(context.Background(), tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		CollectorURL: cfg.Tracing.CollectorURL,
		Environment:  cfg.Environment,
		SampleRate:   cfg.Tracing.SampleRate,
	}, app.log.Zap())
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	app.tracingShutdown = shutdown

	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		app.redis = redis.NewClient(opts)
	}

	app.server = app.buildServer()
	return nil
}

func (app *Application) buildServer() *http.Server {
	cfg := app.cfg
	zlog := app.log.Zap()

	// Repositories
	kycRepo := infrarepos.NewKYCRepository(app.db)
	userRepo := infrarepos.NewUserRepository(app.db)
	auditRepo := infrarepos.NewAuditRepository(app.db)
	txRepo := infrarepos.NewTransactionRepository(app.db)
	notifRepo := infrarepos.NewNotificationRepository(app.db)

	// External collaborators
	storageClient := storage.NewClient(cfg.Storage, zlog)
	emailNotifier := adapters.NewEmailNotifier(cfg.Email, zlog)

	// Domain services
	auditService := audit.NewService(auditRepo, zlog)
	gate := admingate.NewService(userRepo, auditService, cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.ImpersonationTTL, zlog)
	kycService := kyc.NewService(kycRepo, userRepo, zlog)
	reviewService := review.NewService(kycRepo, userRepo, gate, auditService, zlog)

	var notifier simulator.Notifier
	if emailNotifier != nil {
		notifier = emailNotifier
	}
	simService := simulator.NewService(userRepo, txRepo, notifRepo, notifier, gate, auditService, zlog)

	// HTTP layer
	validator := validation.New()
	kycHandler := kychandlers.NewHandler(kycService, validator, app.log)
	adminHandler := adminhandlers.NewHandler(reviewService, simService, auditService, gate, storageClient, validator, app.log)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, app.redis, app.log)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	routes.Register(router, kycHandler, adminHandler, rateLimiter, cfg, app.log, app.db)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// Start begins serving HTTP traffic.
func (app *Application) Start() error {
	app.log.Info("server starting",
		zap.Int("port", app.cfg.Server.Port),
		zap.String("environment", app.cfg.Environment),
	)

	go func() {
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.Fatal("server failed", zap.Error(err))
		}
	}()
	return nil
}

// WaitForShutdown blocks until SIGINT or SIGTERM.
func (app *Application) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("shutdown signal received")
}

// Shutdown drains the server and closes resources.
func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	if app.tracingShutdown != nil {
		if err := app.tracingShutdown(ctx); err != nil {
			app.log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.log.Warn("redis close failed", zap.Error(err))
		}
	}

	if err := app.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	app.log.Info("shutdown complete")
	return nil
}
