package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/bizgrid/backend/internal/application/catalog"
	identityapp "github.com/bizgrid/backend/internal/application/identity"
	inventoryapp "github.com/bizgrid/backend/internal/application/inventory"
	partnerapp "github.com/bizgrid/backend/internal/application/partner"
	tradeapp "github.com/bizgrid/backend/internal/application/trade"
	"github.com/bizgrid/backend/internal/infrastructure/auth"
	"github.com/bizgrid/backend/internal/infrastructure/cache"
	"github.com/bizgrid/backend/internal/infrastructure/config"
	"github.com/bizgrid/backend/internal/infrastructure/event"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/trusted"
	"github.com/bizgrid/backend/internal/infrastructure/scheduler"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"github.com/bizgrid/backend/internal/interfaces/http/handler"
	"github.com/bizgrid/backend/internal/interfaces/http/middleware"
	"github.com/bizgrid/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting BizGrid backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry. All providers fall back to no-ops when disabled.
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}
	providers, err := telemetry.Setup(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	// Export log entries alongside traces so audit lines reach the collector
	log = providers.BridgeLogger(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	meter := providers.Meter("bizgrid")
	metrics, err := telemetry.NewCoreMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register core metrics", zap.Error(err))
	}

	// Database with tenant isolation callbacks installed
	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      logger.GormLevel(cfg.Log.SQLLevel),
		SlowThreshold: cfg.Log.SlowSQLThreshold,
		Tracing: telemetry.DBTracingConfig{
			Enabled:          cfg.Telemetry.DBTraceEnabled,
			DBSystem:         "postgresql",
			IncludeVariables: cfg.App.Env == "development",
		},
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.ObservePool(meter); err != nil {
		log.Warn("Database pool metrics unavailable", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Initialize repositories
	organizationRepo := persistence.NewGormOrganizationRepository(db.DB)
	membershipRepo := persistence.NewGormMembershipRepository(db.DB)
	masterProductRepo := persistence.NewGormMasterProductRepository(db.DB)
	orgProductRepo := persistence.NewGormOrgProductRepository(db.DB)
	taxCodeRepo := persistence.NewGormTaxCodeRepository(db.DB)
	reviewAuditRepo := persistence.NewGormReviewAuditRepository(db.DB)
	masterCustomerRepo := persistence.NewGormMasterCustomerRepository(db.DB)
	customerLinkRepo := persistence.NewGormCustomerLinkRepository(db.DB)
	stockLedgerRepo := persistence.NewGormStockLedgerRepository(db.DB)
	serialUnitRepo := persistence.NewGormSerialUnitRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	// Trusted boundary: the only writers allowed to bypass the tenant guard
	governanceRecorder := trusted.NewGovernanceRecorder(db.DB, log, metrics)
	customerRegistry := trusted.NewMasterCustomerRegistry(db.DB, log, metrics)
	organizationRegistrar := trusted.NewOrganizationRegistrar(db.DB, log, metrics)
	principalDirectory := trusted.NewPrincipalDirectory(db.DB, log, metrics)
	taxCodeAdmin := trusted.NewTaxCodeAdmin(db.DB, log, metrics)

	// Tax code cache, Redis when reachable and in-memory otherwise
	taxCodeCache, err := cache.NewTaxCodeCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create tax code cache", zap.Error(err))
	}
	defer func() {
		if err := taxCodeCache.Close(); err != nil {
			log.Error("Error closing tax code cache", zap.Error(err))
		}
	}()
	cachedTaxCodes := cache.NewCachedTaxCodeRepository(taxCodeRepo, taxCodeCache, cfg.Governance.TaxRateCacheTTL, log)
	invalidatingAdmin := cache.NewInvalidatingTaxCodeAdmin(taxCodeAdmin, taxCodeCache, log)

	// Event bus. Handlers run synchronously after commit.
	eventBus := event.NewInMemoryEventBus(log)
	activityHandler := event.NewActivityLogHandler(log)
	eventBus.Subscribe(activityHandler)
	log.Info("Event handlers registered", zap.Strings("activity_events", activityHandler.EventTypes()))

	// Initialize application services
	governanceService := catalogapp.NewGovernanceService(masterProductRepo, cachedTaxCodes, reviewAuditRepo, governanceRecorder, log)
	governanceService.SetEventPublisher(eventBus)
	orgProductService := catalogapp.NewOrgProductService(orgProductRepo, masterProductRepo, persistence.NewGormCatalogTransactionScope(db.DB), log)
	orgProductService.SetEventPublisher(eventBus)
	taxCodeService := catalogapp.NewTaxCodeService(cachedTaxCodes, invalidatingAdmin, log)
	organizationService := identityapp.NewOrganizationService(organizationRepo, membershipRepo, organizationRegistrar, cfg.Governance.MaxReportingDepth, log)
	customerService := partnerapp.NewCustomerService(customerRegistry, masterCustomerRepo, customerLinkRepo, log)
	inventoryService := inventoryapp.NewInventoryService(orgProductRepo, stockLedgerRepo, serialUnitRepo, persistence.NewGormInventoryTransactionScope(db.DB), log)
	invoiceService := tradeapp.NewInvoiceService(tradeapp.InvoiceServiceDeps{
		Invoices:       invoiceRepo,
		OrgProducts:    orgProductRepo,
		MasterProducts: masterProductRepo,
		StockLedger:    stockLedgerRepo,
		SerialUnits:    serialUnitRepo,
		TaxCodes:       cachedTaxCodes,
		Organizations:  organizationRepo,
		CustomerLinks:  customerLinkRepo,
		Customers:      masterCustomerRepo,
		TxScope:        persistence.NewGormTradeTransactionScope(db.DB),
		Logger:         log,
	})
	invoiceService.SetEventPublisher(eventBus)
	invoiceService.SetMetrics(metrics)

	// Daily legacy governance backfill, off unless governance.backfill_schedule is set
	backfillConfig := scheduler.DefaultGovernanceBackfillSchedulerConfig()
	backfillConfig.Enabled = cfg.Governance.BackfillSchedule
	backfillConfig.RunHour = cfg.Governance.BackfillHour
	backfillConfig.BatchSize = cfg.Governance.BackfillBatchSize
	backfillScheduler := scheduler.NewGovernanceBackfillScheduler(governanceService, log, backfillConfig)
	if err := backfillScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start governance backfill scheduler", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := router.New(router.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
			MaxAge:       12 * time.Hour,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Auth: middleware.AuthConfig{
			Tokens:    jwtService,
			Directory: principalDirectory,
			Logger:    log,
		},
		Meter:  meter,
		Logger: log,
	}, router.Handlers{
		System:         handler.NewSystemHandler(version, db),
		Identity:       handler.NewIdentityHandler(organizationService),
		Customers:      handler.NewCustomerHandler(customerService),
		OrgProducts:    handler.NewOrgProductHandler(orgProductService),
		MasterProducts: handler.NewMasterProductHandler(governanceService),
		TaxCodes:       handler.NewTaxCodeHandler(taxCodeService),
		Inventory:      handler.NewInventoryHandler(inventoryService),
		Invoices:       handler.NewInvoiceHandler(invoiceService),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := backfillScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping governance backfill scheduler", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
