package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/architect/elective-advisor/internal/common/database"
	commonHandlers "github.com/architect/elective-advisor/internal/common/handlers"
	"github.com/architect/elective-advisor/internal/common/health"
	"github.com/architect/elective-advisor/internal/common/middleware"
	"github.com/architect/elective-advisor/internal/electives/cache"
	"github.com/architect/elective-advisor/internal/electives/handlers"
	"github.com/architect/elective-advisor/internal/electives/repository"
	"github.com/architect/elective-advisor/internal/electives/services"
	"github.com/architect/elective-advisor/internal/ops"
	"github.com/architect/elective-advisor/internal/realtime"
	"github.com/architect/elective-advisor/pkg/config"
	"github.com/architect/elective-advisor/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Server.Env, cfg.Log.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Initialize database (SQLite for development, PostgreSQL for production)
	if cfg.Database.Type == "sqlite" && cfg.Database.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			logger.L().Fatal("failed to create data directory", zap.Error(err))
		}
	}
	if err := database.InitWithType(cfg.Database.Type, cfg.Database.DSN); err != nil {
		logger.L().Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := repository.Migrate(database.GetDB()); err != nil {
		logger.L().Fatal("failed to migrate database", zap.Error(err))
	}

	healthChecker := health.NewHealthChecker(database.GetDB(), version)

	// Optional Redis population cache
	if cfg.Redis.Enabled {
		populationCache, err := cache.New(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			logger.Warn("redis unavailable, population cache disabled", zap.Error(err))
		} else {
			defer populationCache.Close()
			services.SetPopulationCache(populationCache)
			healthChecker.AddOptional("redis", populationCache)
			logger.Info("population cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
		}
	}

	hub := realtime.NewHub()
	services.SetPublisher(hub)

	if cfg.Server.Env == "production" || cfg.Server.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin engine
	router := gin.New()

	// Apply middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.ErrorHandler())

	// Health check endpoints
	commonHandlers.NewHealthHandler(healthChecker, hub).Register(router)

	// API routes
	handlers.RegisterRoutes(router.Group("/api/v1"), hub.Handler())

	apiServer := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	opsServer := &http.Server{
		Addr:              cfg.Ops.Addr,
		Handler:           ops.NewRouter(healthChecker),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go serve(apiServer, "api", errCh)
	go serve(opsServer, "ops", errCh)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	hub.Close()
	for _, srv := range []*http.Server{apiServer, opsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}
	logger.Info("server stopped")
}

func serve(srv *http.Server, name string, errCh chan<- error) {
	logger.Info("listening", zap.String("server", name), zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		errCh <- err
	}
}
