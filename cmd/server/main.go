package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accessapp "github.com/erp/pos-gateway/internal/application/access"
	activityapp "github.com/erp/pos-gateway/internal/application/activity"
	inventoryapp "github.com/erp/pos-gateway/internal/application/inventory"
	"github.com/erp/pos-gateway/internal/application/mutation"
	posapp "github.com/erp/pos-gateway/internal/application/pos"
	syncapp "github.com/erp/pos-gateway/internal/application/sync"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/infrastructure/auth"
	"github.com/erp/pos-gateway/internal/infrastructure/cache"
	"github.com/erp/pos-gateway/internal/infrastructure/config"
	"github.com/erp/pos-gateway/internal/infrastructure/logger"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence"
	"github.com/erp/pos-gateway/internal/infrastructure/scheduler"
	"github.com/erp/pos-gateway/internal/interfaces/http/handler"
	"github.com/erp/pos-gateway/internal/interfaces/http/middleware"
	"github.com/erp/pos-gateway/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
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
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting POS gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	policyRepo := persistence.NewGormPolicyRepository(db.DB)
	grantRepo := persistence.NewGormGrantRepository(db.DB)
	bindingStore := persistence.NewGormRoleBindingStore(db.DB)
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	shiftRepo := persistence.NewGormShiftRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	itemReader := persistence.NewGormItemReader(db.DB)
	stockReader := persistence.NewGormStockReader(db.DB)
	alertRuleRepo := persistence.NewGormAlertRuleRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)
	referenceReader := persistence.NewGormReferenceReader(db.DB)
	documentEngine := persistence.NewGormDocumentEngine(db.DB)

	// Read-through caches
	policyCache := cache.NewPolicyCache(policyRepo, cfg.Policy.CacheTTL)
	profileCache := cache.NewProfileCache(profileRepo, 256, cfg.Policy.CacheTTL)

	// Idempotency store: redis when configured, in-memory otherwise
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		idempotencyStore = store
		log.Info("Redis idempotency store enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Info("In-memory idempotency store enabled")
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Application services
	guardService := accessapp.NewGuardService(policyCache, log)
	reconcileService := accessapp.NewReconcileService(policyCache, grantRepo, bindingStore, log)
	settingsService := accessapp.NewSettingsService(policyRepo, policyCache, log)
	activityService := activityapp.NewService(activityRepo, log)
	mutationController := mutation.NewController(idempotencyStore, cfg.Idempotency.Retention, log)
	sessionService := posapp.NewSessionService(shiftRepo, profileCache, documentEngine, activityService, log)
	invoiceService := posapp.NewInvoiceService(documentEngine, invoiceRepo, shiftRepo, profileCache, activityService, log)
	paymentService := posapp.NewPaymentService(documentEngine, paymentRepo, shiftRepo, profileCache, activityService, log)
	customerService := posapp.NewCustomerService(customerRepo, activityService, log)
	alertService := inventoryapp.NewAlertService(alertRuleRepo, stockReader, policyCache, log)
	syncService := syncapp.NewSyncService(
		policyCache, shiftRepo, profileCache, itemReader, alertRuleRepo,
		customerRepo, invoiceRepo, paymentRepo, referenceReader, log,
	)

	// JWT validation
	jwtService := auth.NewJWTService(cfg.JWT)

	// Reconciliation scheduler
	if cfg.Reconcile.Enabled {
		reconcileScheduler := scheduler.NewReconcileScheduler(scheduler.ReconcileSchedulerConfig{
			Enabled:      cfg.Reconcile.Enabled,
			CronSchedule: cfg.Reconcile.CronSchedule,
			RunAtStartup: cfg.Reconcile.RunAtStartup,
			JobTimeout:   5 * time.Minute,
		}, reconcileService, log)
		if err := reconcileScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start reconcile scheduler", zap.Error(err))
		}
		defer reconcileScheduler.Stop()
		log.Info("Reconcile scheduler started",
			zap.String("schedule", cfg.Reconcile.CronSchedule),
			zap.Bool("run_at_startup", cfg.Reconcile.RunAtStartup),
		)
	}

	// HTTP handlers
	systemHandler := handler.NewSystemHandler(cfg.App.Name)
	discoveryHandler := handler.NewDiscoveryHandler(guardService, profileCache, cfg.Discovery)
	sessionHandler := handler.NewSessionHandler(sessionService, mutationController)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, mutationController)
	paymentHandler := handler.NewPaymentHandler(paymentService, mutationController)
	customerHandler := handler.NewCustomerHandler(customerService, mutationController)
	syncHandler := handler.NewSyncHandler(syncService)
	inventoryHandler := handler.NewInventoryHandler(alertService)
	settingsHandler := handler.NewSettingsHandler(settingsService, reconcileService, mutationController)
	activityHandler := handler.NewActivityHandler(activityService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
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
	engine.Use(middleware.CORS())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// API routes: discovery and health stay reachable without a token,
	// everything else sits behind JWT auth plus the access guard.
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithProtection(
			middleware.JWTAuth(jwtService),
			middleware.Guard(guardService),
		),
	)
	r.Register(systemHandler)
	r.Register(discoveryHandler)
	r.RegisterProtected(sessionHandler)
	r.RegisterProtected(invoiceHandler)
	r.RegisterProtected(paymentHandler)
	r.RegisterProtected(customerHandler)
	r.RegisterProtected(syncHandler)
	r.RegisterProtected(inventoryHandler)
	r.RegisterProtected(settingsHandler)
	r.RegisterProtected(activityHandler)
	r.Setup()

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
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
