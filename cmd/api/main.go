package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lankaline/freight-api/internal/auth"
	"github.com/lankaline/freight-api/internal/config"
	"github.com/lankaline/freight-api/internal/database"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/erp"
	"github.com/lankaline/freight-api/internal/http/handler"
	"github.com/lankaline/freight-api/internal/http/middleware"
	"github.com/lankaline/freight-api/internal/http/router"
	"github.com/lankaline/freight-api/internal/jobs"
	"github.com/lankaline/freight-api/internal/logger"
	"github.com/lankaline/freight-api/internal/notify"
	"github.com/lankaline/freight-api/internal/repository"
	"github.com/lankaline/freight-api/internal/service"
	"github.com/lankaline/freight-api/internal/storage"
	"go.uber.org/zap"
)

// @title Lanka Line Freight API
// @version 1.0
// @description Freight forwarding operations API for rate management, bookings and field itineraries

// @contact.name API Support
// @contact.email it@lankaline.lk

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

	// Initialize storage for RO document scans
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize ERP connection (optional, read-only job verification).
	// The app continues without it if not configured.
	erpClient, err := erp.NewClient(&cfg.Erp, log)
	if err != nil {
		log.Warn("ERP connection failed, continuing without job verification",
			zap.Error(err),
		)
		erpClient = nil
	}

	// Initialize repositories
	masterDataRepo := repository.NewMasterDataRepository(db)
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	rateRequestRepo := repository.NewRateRequestRepository(db)
	predefinedRateRepo := repository.NewPredefinedRateRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	itineraryRepo := repository.NewItineraryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Notification dispatcher with per-channel senders. Email and SMS
	// delivery are log-only until the gateway integrations land.
	dispatcher := notify.NewQueueDispatcher(
		cfg.Notify.QueueSize,
		cfg.Notify.Workers,
		map[domain.NotificationChannel]notify.Sender{
			domain.ChannelSystem: notify.NewSystemSender(notificationRepo),
			domain.ChannelEmail:  notify.NewLogEmailSender(log),
			domain.ChannelSMS:    notify.NewLogSMSSender(log),
		},
		log,
	)

	// Initialize services
	masterDataService := service.NewMasterDataService(masterDataRepo, log)
	customerService := service.NewCustomerService(customerRepo, dispatcher, log)
	rateRequestService := service.NewRateRequestService(rateRequestRepo, masterDataRepo, customerRepo, userRepo, dispatcher, log)
	rateCatalogService := service.NewRateCatalogService(predefinedRateRepo, masterDataRepo, userRepo, dispatcher, log)
	var erpVerifier service.ERPVerifier
	if erpClient != nil {
		erpVerifier = erpClient
	}
	bookingService := service.NewBookingService(bookingRepo, rateRequestRepo, predefinedRateRepo, customerRepo, fileStorage, erpVerifier, dispatcher, log)
	itineraryService := service.NewItineraryService(itineraryRepo, userRepo, dispatcher, log)
	notificationService := service.NewNotificationService(notificationRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	rateRequestHandler := handler.NewRateRequestHandler(rateRequestService, log)
	rateCatalogHandler := handler.NewRateCatalogHandler(rateCatalogService, log)
	bookingHandler := handler.NewBookingHandler(bookingService, cfg.Storage.MaxUploadSizeMB, log)
	itineraryHandler := handler.NewItineraryHandler(itineraryService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	masterDataHandler := handler.NewMasterDataHandler(masterDataService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		erpClient,
		authMiddleware,
		rateLimiter,
		rateRequestHandler,
		rateCatalogHandler,
		bookingHandler,
		itineraryHandler,
		customerHandler,
		masterDataHandler,
		notificationHandler,
	)

	// Initialize and start scheduler for the rate expiry sweep
	var scheduler *jobs.Scheduler
	if cfg.Jobs.RateExpiryEnabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterRateExpiryJob(
			scheduler,
			rateCatalogService,
			log,
			cfg.Jobs.RateExpirySchedule,
			cfg.Jobs.RateExpiryTimeoutDuration(),
		); err != nil {
			log.Error("Failed to register rate expiry job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with rate expiry sweep",
				zap.String("cron_expr", cfg.Jobs.RateExpirySchedule),
				zap.Duration("timeout", cfg.Jobs.RateExpiryTimeoutDuration()),
			)
		}
	} else {
		log.Info("Rate expiry sweep disabled")
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

		// Drain queued notifications before exit
		dispatcher.Close()

		if err := erpClient.Close(); err != nil {
			log.Warn("Error closing ERP connection", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
