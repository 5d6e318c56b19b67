package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/api"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/api/handlers"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/cache"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/config"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/database"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/keywords"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/loader"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/logging"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/middleware"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/services"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/telemetry"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const initialLoadTimeout = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	ctx := context.Background()

	// Initialize telemetry first
	provider, err := telemetry.InitTelemetry(ctx, cfg.Telemetry, cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Failed to shutdown telemetry")
		}
	}()
	if provider.LoggerProvider != nil {
		logger.AddHook(logging.NewOTLPHook(provider.LoggerProvider.Logger(telemetry.InstrumentationName), logger.GetLevel()))
	}

	cutoff, err := cfg.Dashboard.Cutoff()
	if err != nil {
		return fmt.Errorf("invalid cutoff date: %w", err)
	}

	db, err := database.NewPostgresConnection(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Redis only shares snapshots between replicas, so it never blocks startup.
	var snapshotCache services.SnapshotCache
	var redisHealth handlers.HealthChecker
	if cfg.Redis.Enabled {
		redisClient, err := database.NewRedisConnection(cfg.Redis, logger)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, continuing without snapshot cache")
		} else {
			defer redisClient.Close()
			snapshotCache = cache.NewRedisSnapshotCache(redisClient.Client, cfg.Redis.KeyName, logger)
			redisHealth = redisClient
		}
	}

	dashboard := services.NewDashboardService(
		loader.New(db.Pool, cfg.Sources, cutoff, logger),
		snapshotCache,
		keywords.Mag7(),
		cfg.Dashboard,
		logger,
	)

	loadCtx, cancelLoad := context.WithTimeout(ctx, initialLoadTimeout)
	err = dashboard.Load(loadCtx)
	cancelLoad()
	if err != nil {
		return fmt.Errorf("initial data load failed: %w", err)
	}

	router := newRouter(cfg, logger, dashboard, db, redisHealth)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"service": cfg.Telemetry.ServiceName,
			"version": cfg.Telemetry.ServiceVersion,
			"port":    cfg.Server.Port,
		}).Info("Application startup")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("Application shutdown")
	}

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited gracefully")
	return nil
}

// dashboardBackend is what the HTTP layer needs from the dashboard service.
type dashboardBackend interface {
	handlers.DashboardService
	handlers.SnapshotSource
}

func newRouter(cfg *config.Config, logger *logrus.Logger, dashboard dashboardBackend, db, redis handlers.HealthChecker) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	api.SetupRoutes(router,
		handlers.NewDashboardHandler(dashboard, logger),
		handlers.NewHealthHandler(db, redis, dashboard, cfg.Telemetry.ServiceVersion),
		middleware.NewAdminMiddleware(cfg.Security.AdminAPIKey),
	)
	return router
}
