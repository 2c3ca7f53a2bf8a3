package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/docs"
	"github.com/fieldmed/fieldsales-api/internal/accounting"
	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/config"
	"github.com/fieldmed/fieldsales-api/internal/database"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/http/handler"
	"github.com/fieldmed/fieldsales-api/internal/http/middleware"
	"github.com/fieldmed/fieldsales-api/internal/http/router"
	"github.com/fieldmed/fieldsales-api/internal/jobs"
	"github.com/fieldmed/fieldsales-api/internal/logger"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/fieldmed/fieldsales-api/internal/service"
	"github.com/fieldmed/fieldsales-api/internal/storage"
)

// @title FieldMed Field Sales API
// @version 1.0
// @description Field sales backend for medical reps: visits, debt-gated ordering and role-based profile access
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@fieldmed.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "fieldsales-staging.fieldmed.io"
	case "production":
		docs.SwaggerInfo.Host = "api.fieldmed.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Connect to the accounting ERP (read-only, optional). The app runs
	// without it; debt classification degrades to a zero snapshot when
	// the invoice source is unreadable.
	var erpClient *accounting.Client
	if cfg.Accounting.Enabled {
		erpClient, err = accounting.NewClient(&cfg.Accounting, log)
		if err != nil {
			log.Warn("Accounting ERP connection failed, continuing without it",
				zap.Error(err),
			)
		} else if erpClient != nil {
			log.Info("Accounting ERP connected",
				zap.Int("max_open_conns", cfg.Accounting.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.Accounting.QueryTimeout),
			)
		}
	} else {
		log.Info("Accounting ERP not configured, skipping")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	clinicRepo := repository.NewClinicRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	productRepo := repository.NewProductRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	fileRepo := repository.NewFileRepository(db)
	accessLogRepo := repository.NewAccessLogRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	hierarchy := domain.NewRoleHierarchy()
	debtService := service.NewDebtService(invoiceRepo, clinicRepo, log)
	userService := service.NewUserService(userRepo, hierarchy, log)
	profileService := service.NewProfileService(userRepo, visitRepo, orderRepo, clinicRepo, accessLogRepo, hierarchy, log)
	clinicService := service.NewClinicService(clinicRepo, log)
	catalogService := service.NewCatalogService(productRepo, warehouseRepo, log)
	orderService := service.NewOrderService(orderRepo, clinicRepo, warehouseRepo, productRepo, debtService, log)
	visitService := service.NewVisitService(visitRepo, clinicRepo, userRepo, log)
	fileService := service.NewFileService(fileRepo, visitRepo, fileStorage, log)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)
	invoiceSyncService := service.NewInvoiceSyncService(erpClient, invoiceRepo, clinicRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, log)
	userHandler := handler.NewUserHandler(userService, profileService, log)
	clinicHandler := handler.NewClinicHandler(clinicService, debtService, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	visitHandler := handler.NewVisitHandler(visitService, log)
	fileHandler := handler.NewFileHandler(fileService, cfg.Storage.MaxUploadSizeMB, log)
	auditHandler := handler.NewAuditHandler(auditLogService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		erpClient,
		authMiddleware,
		rateLimiter,
		auditMiddleware,
		authHandler,
		userHandler,
		clinicHandler,
		catalogHandler,
		orderHandler,
		visitHandler,
		fileHandler,
		auditHandler,
	)

	// Initialize and start scheduler for the periodic ERP invoice sync
	var scheduler *jobs.Scheduler
	if cfg.Accounting.Enabled && erpClient.IsEnabled() {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterInvoiceSyncJob(
			scheduler,
			invoiceSyncService,
			log,
			cfg.Accounting.SyncCron,
			cfg.Accounting.SyncTimeoutDuration(),
			true, // sync once at startup so debt data is fresh
		); err != nil {
			log.Error("Failed to register invoice sync job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with invoice sync job",
				zap.String("cron_expr", cfg.Accounting.SyncCron),
				zap.Duration("timeout", cfg.Accounting.SyncTimeoutDuration()),
			)
		}
	} else {
		log.Info("Periodic invoice sync disabled",
			zap.Bool("accounting_enabled", cfg.Accounting.Enabled),
			zap.Bool("erp_client_available", erpClient.IsEnabled()),
		)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close ERP connection if initialized
		if erpClient != nil {
			if err := erpClient.Close(); err != nil {
				log.Warn("Error closing accounting ERP connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
