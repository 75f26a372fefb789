package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"educhain/internal/config"
	"educhain/internal/database"
	"educhain/internal/httpapi"
	"educhain/internal/logging"
	"educhain/internal/repository"
	"educhain/internal/services"
	"educhain/pkg/payment"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
	statsInterval   = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Setup(cfg)

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

// run serves until SIGINT/SIGTERM. Every resource it opens is released
// before it returns, including on startup errors.
func run(cfg *config.Config) error {
	log.Infof("Starting %s v%s", cfg.App.Name, cfg.App.Version)
	log.Infof("Environment: debug=%v, port=%s, host=%s", cfg.App.Debug, cfg.App.Port, cfg.App.Host)

	log.Info("Initializing database connection...")
	db, err := database.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		log.Info("Closing database connections...")
		if err := database.Close(db); err != nil {
			log.Errorf("Error closing database: %v", err)
		}
	}()

	repo := repository.NewInquiryRepository(db)
	if err := repo.CreateTable(context.Background()); err != nil {
		return fmt.Errorf("failed to create inquiries table: %w", err)
	}

	notifier, closeNotifier, err := services.BuildNotifier(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize notifications: %w", err)
	}
	defer closeNotifier()

	log.Info("Initializing services...")
	server := httpapi.NewServer(
		services.NewInquiryService(repo, notifier),
		services.NewDonationService(payment.PendingProvider{}),
		services.NewHealthService(db, cfg.App.Name),
	)

	addr := cfg.App.Addr()
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      httpapi.NewHandler(cfg, server),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     logging.StdLogger("http"),
	}

	statsCtx, stopStats := context.WithCancel(context.Background())
	defer stopStats()
	go reportDBStats(statsCtx, db)

	serverErrors := make(chan error, 1)
	go func() {
		log.Infof("Server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server error: %w", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		log.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("Error during graceful shutdown: %v", err)
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("Shutdown timeout exceeded, forcing close...")
			_ = httpServer.Close()
		}
	}

	log.Info("Server shutdown complete")
	return nil
}

// reportDBStats refreshes the connection pool gauges until ctx is done.
func reportDBStats(ctx context.Context, db *gorm.DB) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		if _, err := database.ReportStats(db); err != nil {
			log.Warnf("failed to read database stats: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
