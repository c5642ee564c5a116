package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database, with GORM logging routed through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories and the transaction scope the order flow runs in
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Product display cache: Redis when configured, in-process otherwise
	var displayCache cache.ProductDisplayCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisProductDisplayCache(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		displayCache = redisCache
		log.Info("Redis display cache connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		displayCache = cache.NewInMemoryProductDisplayCache(cfg.Redis.TTL)
	}
	displayLookup := cache.NewCachedDisplayLookup(displayCache, productRepo, log)

	// Application services
	estimator := apporder.DefaultDeliveryEstimator()
	estimator.MinDays = cfg.Delivery.MinDays
	estimator.MaxDays = cfg.Delivery.MaxDays

	checkoutService := apporder.NewCheckoutService(scope, estimator, log)
	statusService := apporder.NewStatusService(scope, log)
	queryService := apporder.NewQueryService(orderRepo).WithDisplayLookup(displayLookup)
	sweepService := apporder.NewDeliverySweepService(scope, orderRepo, log)

	// Background delivery sweeper
	if cfg.Sweep.Enabled {
		sweeperCfg := scheduler.DefaultDeliverySweeperConfig()
		sweeperCfg.CheckInterval = cfg.Sweep.CheckInterval
		sweeper := scheduler.NewDeliverySweeper(sweeperCfg, sweepService, log)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start delivery sweeper", zap.Error(err))
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := sweeper.Stop(stopCtx); err != nil {
				log.Error("Error stopping delivery sweeper", zap.Error(err))
			}
		}()
	}

	// HTTP layer
	jwtService := auth.NewJWTService(cfg.JWT)
	engine := router.New(router.Dependencies{
		Config:            cfg,
		Logger:            log,
		JWTService:        jwtService,
		OrderHandler:      handler.NewOrderHandler(checkoutService, queryService),
		AdminOrderHandler: handler.NewAdminOrderHandler(queryService, statusService),
		SystemHandler:     handler.NewSystemHandler(db, version),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
