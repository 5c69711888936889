package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"venue-billing-backend/config"
	"venue-billing-backend/internal/api"
	"venue-billing-backend/internal/db"
	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/mw"
	"venue-billing-backend/internal/notification"
	"venue-billing-backend/internal/report"
	"venue-billing-backend/internal/store"
	"venue-billing-backend/internal/sweeper"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "venued ", log.LstdFlags)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("failed to read .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Printf("database initialized successfully (%s)", cfg.Database.Driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	defaults := model.DefaultSettings(cfg.Billing.Currency, cfg.Billing.CurrencySymbol, cfg.Billing.DueDays)
	appStore := store.NewGormStore(gormDB, defaults)

	var dispatcher notification.Dispatcher
	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Println("VAPID keys are not configured; push notifications are disabled")
	} else {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		pool.Start(ctx)
		dispatcher = pool
	}

	reportCache := mw.NewReportCache(cfg.Server.CacheTTL())

	if cfg.Sweeper.Enabled {
		sw := sweeper.NewService(appStore, dispatcher, cfg.Sweeper.Interval)
		sw.OnChange(reportCache.Flush)
		go sw.Run(ctx)
	} else {
		logger.Println("Sweeper is disabled. Not starting.")
	}

	reportOptions := report.Options{
		Location:          cfg.Reports.Location(),
		WeekStart:         cfg.Reports.Weekday(),
		TopCustomers:      cfg.Reports.TopCustomers,
		UtilizationWindow: time.Duration(cfg.Reports.UtilizationWindowDays) * 24 * time.Hour,
	}
	handler := api.NewHandler(appStore, dispatcher, webpushOptions, reportOptions, cfg.Reports.DailySeriesDays)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(handler, cfg.Server, reportCache),
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
