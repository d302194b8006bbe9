package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	analyticsapp "github.com/stocktrack/backend/internal/application/analytics"
	catalogapp "github.com/stocktrack/backend/internal/application/catalog"
	inventoryapp "github.com/stocktrack/backend/internal/application/inventory"
	purchaseapp "github.com/stocktrack/backend/internal/application/purchase"
	"github.com/stocktrack/backend/internal/infrastructure/auth"
	"github.com/stocktrack/backend/internal/infrastructure/cache"
	"github.com/stocktrack/backend/internal/infrastructure/config"
	"github.com/stocktrack/backend/internal/infrastructure/event"
	"github.com/stocktrack/backend/internal/infrastructure/logger"
	"github.com/stocktrack/backend/internal/infrastructure/persistence"
	"github.com/stocktrack/backend/internal/interfaces/http/handler"
	"github.com/stocktrack/backend/internal/interfaces/http/middleware"
	"github.com/stocktrack/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting StockTrack backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a zap-backed GORM logger
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

	// Repositories
	variantRepo := persistence.NewGormVariantRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)

	// Application services
	stockService := inventoryapp.NewStockService(variantRepo, movementRepo,
		persistence.NewGormInventoryTransactionScope(db.DB))
	orderService := purchaseapp.NewPurchaseOrderService(orderRepo, receiptRepo, variantRepo,
		persistence.NewGormPurchaseTransactionScope(db.DB))
	productService := catalogapp.NewProductService(productRepo, variantRepo)
	analyticsService := analyticsapp.NewAnalyticsService(variantRepo, movementRepo, productRepo, orderRepo)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Event bus with the tenant notifier as a wildcard subscriber
	eventBus := event.NewInMemoryEventBus(&cfg.Event, log)
	notifier := event.NewTenantNotifier(log)
	eventBus.Subscribe(notifier)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	stockService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)

	// Idempotency store: Redis when reachable, in-memory otherwise
	var idempotencyStore cache.IdempotencyStore
	if redisStore, err := cache.NewRedisIdempotencyStore(&cfg.Redis); err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	} else {
		log.Info("Idempotency store backed by Redis", zap.String("addr", cfg.Redis.Addr()))
		idempotencyStore = redisStore
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// HTTP handlers
	inventoryHandler := handler.NewInventoryHandler(stockService)
	purchaseOrderHandler := handler.NewPurchaseOrderHandler(orderService)
	productHandler := handler.NewProductHandler(productService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	notificationHandler := handler.NewNotificationHandler(notifier)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := middleware.RegisterCustomValidators(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(&cfg.HTTP))

	// Authentication and idempotency apply to the versioned API group only
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithGroupMiddleware(
			middleware.Authenticate(jwtService, log),
			middleware.Idempotency(idempotencyStore, cfg.HTTP.IdempotencyTTL, log),
		),
	)
	r.Register(inventoryHandler).
		Register(purchaseOrderHandler).
		Register(productHandler).
		Register(analyticsHandler).
		Register(notificationHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
