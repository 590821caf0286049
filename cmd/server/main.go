package main // Entry point package

import (
	"context"
	"errors"
	"log" // used only before the structured logger exists
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // loads .env for local development
	"github.com/labstack/echo/v4" // Echo web framework
	"go.uber.org/zap"

	"github.com/iliyamo/venue-seat-layout/internal/client"
	"github.com/iliyamo/venue-seat-layout/internal/config"
	"github.com/iliyamo/venue-seat-layout/internal/database"
	"github.com/iliyamo/venue-seat-layout/internal/handler"
	"github.com/iliyamo/venue-seat-layout/internal/logger"
	"github.com/iliyamo/venue-seat-layout/internal/middleware"
	"github.com/iliyamo/venue-seat-layout/internal/queue"
	"github.com/iliyamo/venue-seat-layout/internal/repository"
	"github.com/iliyamo/venue-seat-layout/internal/router"
	"github.com/iliyamo/venue-seat-layout/internal/service"
)

const serviceName = "venue-seat-layout"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("ignoring .env: %v", err)
	}
	cfg, err := config.Load() // Load environment config
	if err != nil {
		log.Fatal(err)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		zl.Fatal("database migration failed", zap.Error(err))
	}

	presets := config.DefaultSectionPresets()
	if cfg.SectionPresetsFile != "" {
		if presets, err = config.LoadSectionPresets(cfg.SectionPresetsFile); err != nil {
			zl.Fatal("section presets", zap.String("file", cfg.SectionPresetsFile), zap.Error(err))
		}
	}

	var allocs service.AllocationSource = repository.NewAllocationRepo(db)
	if cfg.AllocationSource == "http" {
		allocs = client.NewAllocationClient(cfg.AllocationAPIURL, cfg.AllocationAPIToken,
			cfg.AllocationAPITimeout, cfg.AllocationAPIRetries, zl.Named("allocations"))
	}

	// Redis is optional: without it the cache and the rate limiter pass
	// every request through.
	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		zl.Warn("redis unavailable; response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, zl.Named("cache"))

	opts := []service.Option{service.WithCache(cache)}
	if cfg.LayoutEventsEnabled {
		opts = append(opts, service.WithEvents(queue.NewPublisher(cfg.RabbitMQURL, zl.Named("publisher"))))
		audit, err := logger.NewFile("logs/layout_audit.log")
		if err != nil {
			zl.Fatal("audit log", zap.Error(err))
		}
		defer func() { _ = audit.Sync() }()
		go func() {
			if err := queue.StartAuditConsumer(ctx, cfg.RabbitMQURL, audit, zl.Named("audit-consumer")); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("audit consumer stopped", zap.Error(err))
			}
		}()
	}

	svc := service.NewLayoutService(
		repository.NewRoomRepo(db),
		repository.NewLayoutRepo(db),
		allocs,
		cfg.Grid,
		zl.Named("layout"),
		opts...,
	)
	ws := service.NewWorkspaces(svc, presets, zl.Named("workspace"))

	e := echo.New() // Create Echo instance
	e.HideBanner = true

	mw := router.Middlewares{
		Cache:     cache.Middleware(),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, zl.Named("ratelimit")),
	}
	router.RegisterRoutes(e, db) // Register application routes
	router.RegisterRooms(e, handler.NewRoomHandler(svc, zl), cfg.JWTSecret, mw)
	router.RegisterWorkspace(e, handler.NewWorkspaceHandler(ws, zl), cfg.JWTSecret, mw)

	addr := ":" + cfg.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
	zl.Info("stopped")
}
