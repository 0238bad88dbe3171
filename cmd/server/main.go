package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "carhire-backend/internal/api/http"
	"carhire-backend/internal/config"
	"carhire-backend/internal/logger"
	"carhire-backend/internal/repository/postgres"
	"carhire-backend/internal/security"
	"carhire-backend/internal/service"
	"carhire-backend/internal/storage"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Local development overrides; missing .env is fine
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Carhire Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Storage Service
	var storageService storage.DocumentStorage
	switch cfg.Storage.Type {
	case "", "local":
		logger.Info("Using local document storage", "upload_dir", cfg.Storage.UploadDir)
		localStorage, err := storage.NewLocalStorageService(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
		if err != nil {
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
		storageService = localStorage
	default:
		log.Fatalf("Storage type '%s' not yet implemented", cfg.Storage.Type)
	}

	// Initialize outbound collaborators
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.From, cfg.SendGrid.FromName)

	var pushSvc service.PushService
	if cfg.Firebase.CredentialsFile != "" {
		pushSvc, err = service.NewPushService(context.Background(), cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatalf("Failed to initialize push service: %v", err)
		}
	} else {
		logger.Warn("Firebase credentials not configured, push notifications disabled")
		pushSvc = service.NewNoopPushService()
	}

	gateway := service.NewPaymentGateway(cfg.Payment.BaseURL, cfg.Payment.APIKey)
	docSvc := service.NewDocumentService(storageService)

	// Initialize Services
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	orchestrator := service.NewOrchestrator(
		store.ContractRepository,
		store.UserRepository,
		noteSvc,
		emailSvc,
		pushSvc,
		docSvc,
		cfg.Booking.SideEffectWorkers,
		time.Duration(cfg.Booking.SideEffectTimeoutSecs)*time.Second,
	)
	orchestrator.Start()

	checker := service.NewConflictChecker(store.BookingRepository)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.CounterRepository,
		store.AdditionalDriverRepository,
		store.ContractRepository,
		checker,
		orchestrator,
	)
	checkoutSvc := service.NewCheckoutService(
		bookingSvc,
		store.BookingRepository,
		store.UserRepository,
		gateway,
		orchestrator,
		cfg.Booking.CheckoutExpiryMinutes,
	)

	// Initialize HTTP handlers
	router := httpapi.NewRouter(httpapi.Handlers{
		Booking:      httpapi.NewBookingHandler(bookingSvc, checker),
		Checkout:     httpapi.NewCheckoutHandler(checkoutSvc),
		Notification: httpapi.NewNotificationHandler(noteSvc),
		Contract:     httpapi.NewContractHandler(store.ContractRepository, storageService),
	}, tokenManager)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for shutdown signal, then drain in-flight requests and side effects
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutting down", "signal", fmt.Sprintf("%v", sig))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	orchestrator.Stop()
	logger.Info("Shutdown complete")
}
