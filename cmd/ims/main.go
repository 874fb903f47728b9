package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/AkramSamirElhayani/IMS/internal/application/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/cache"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/config"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/event"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/logger"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/persistence"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/scheduler"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger; configured values override the environment's defaults
	logCfg := logger.DefaultConfig()
	if cfg.IsProduction() {
		logCfg = logger.ProductionConfig()
	}
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		logCfg.Output = cfg.Log.Output
	}
	logCfg.Service = cfg.App.Name
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting inventory ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("database_driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	// Telemetry: traces and metrics degrade to no-op providers when disabled
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	ledgerMetrics, err := telemetry.NewLedgerMetrics(meterProvider.Meter("ims/ledger"))
	if err != nil {
		log.Fatal("Failed to register ledger metrics", zap.Error(err))
	}

	// Initialize database connection
	dbOpts := []persistence.DatabaseOption{persistence.WithZapLogger(log)}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		if cfg.Database.Driver == config.DriverSQLite {
			dbTracing.DBSystem = "sqlite"
		}
		dbOpts = append(dbOpts, persistence.WithPlugin(telemetry.NewDBTracingPlugin(dbTracing, log)))
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	// PostgreSQL schemas come from cmd/migrate; SQLite is created in place
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate SQLite database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Event bus, journal and unit of work factory
	eventBus := event.NewInMemoryEventBus(log,
		event.WithTracer(tracerProvider.Tracer("ims/event_bus")),
		event.WithPublishObserver(ledgerMetrics),
	)
	uowOpts := []persistence.UnitOfWorkOption{
		persistence.WithUnitOfWorkObserver(ledgerMetrics),
		persistence.WithUnitOfWorkLogger(log),
	}
	serializer := event.NewInventorySerializer()
	var journal *persistence.GormEventJournal
	if cfg.Event.JournalEnabled {
		journal = persistence.NewGormEventJournal(db.DB, serializer)
		uowOpts = append(uowOpts, persistence.WithEventJournal(journal))
	}
	uowFactory := persistence.NewGormUnitOfWorkFactory(db.DB, eventBus, uowOpts...)

	// Idempotency store for handlers with side effects outside the database
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Event, cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.Create(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Application services
	itemService := inventoryapp.NewItemService(uowFactory, log)
	if journal != nil {
		itemService.SetEventJournal(journal, serializer)
	}
	transactionService := inventoryapp.NewTransactionService(uowFactory, inventoryapp.TransactionServiceConfig{
		DefaultLocation:     cfg.Inventory.DefaultLocation,
		RequireWithdrawable: cfg.Inventory.RequireWithdrawable,
	}, log)
	reconciliationService := inventoryapp.NewReconciliationService(uowFactory, log)
	reconciliationService.SetMetrics(ledgerMetrics)
	reportService := inventoryapp.NewInventoryReportService(uowFactory, log)
	reportService.SetMetrics(ledgerMetrics)

	// Event handlers
	// The recompute replaces the cached quantity, so it is subscribed without a dedup wrapper.
	recomputeHandler := inventoryapp.NewLedgerRecomputeHandler(uowFactory, log)
	recomputeHandler.SetMetrics(ledgerMetrics)
	eventBus.Subscribe(recomputeHandler)

	alertHandler := inventoryapp.NewCriticalStockAlertHandler(log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log)).
		WithMetrics(ledgerMetrics)
	dedupedAlerts := event.NewIdempotentHandler(
		"critical-stock-alert",
		alertHandler,
		idempotencyStore,
		log,
		event.WithIdempotencyConfig(storeFactory.IdempotencyConfig()),
	)
	eventBus.Subscribe(dedupedAlerts)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Scheduled jobs
	jobs := scheduler.New(scheduler.Config{JobTimeout: cfg.Scheduler.JobTimeout}, log,
		scheduler.WithJobMetrics(ledgerMetrics),
	)
	if cfg.Scheduler.Enabled {
		if err := jobs.AddJob("ledger-reconcile", cfg.Scheduler.ReconcileSchedule, func(ctx context.Context) error {
			return reconciliationService.ReconcileAll(ctx).Error()
		}); err != nil {
			log.Fatal("Failed to schedule ledger reconciliation", zap.Error(err))
		}
		if err := jobs.AddJob("daily-report", cfg.Scheduler.ReportSchedule, func(ctx context.Context) error {
			return reportService.BuildDailyReport(ctx, time.Now()).Error()
		}); err != nil {
			log.Fatal("Failed to schedule daily report", zap.Error(err))
		}
		jobs.Start(ctx)
	}

	pending := transactionService.GetPendingTransactions(ctx)
	if pending.IsFailure() {
		log.Fatal("Failed to read pending transactions", zap.Error(pending.Error()))
	}
	log.Info("Inventory ledger ready",
		zap.Bool("journal_enabled", journal != nil),
		zap.Bool("scheduler_enabled", cfg.Scheduler.Enabled),
		zap.Strings("jobs", jobs.Jobs()),
		zap.Int("pending_transactions", len(pending.Value)),
	)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Error("Scheduler did not stop cleanly", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus did not stop cleanly", zap.Error(err))
	}
	alertStats := dedupedAlerts.GetMetrics().Stats()
	log.Info("Critical stock alerts handled",
		zap.Int64("processed", alertStats.EventsProcessed),
		zap.Int64("duplicates", alertStats.EventsDuplicate),
		zap.Int64("failed", alertStats.EventsFailed),
	)
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("Inventory ledger exited gracefully")
}
