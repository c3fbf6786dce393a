package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/lesson-booking-backend/internal/app"
	"github.com/nekogravitycat/lesson-booking-backend/internal/config"
	"github.com/nekogravitycat/lesson-booking-backend/internal/db"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/storage"
)

const sweepInterval = time.Minute

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.IsProduction)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Connect DB when configured
	var pool *pgxpool.Pool
	if cfg.DBDSN != "" {
		pool, err = db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			zl.Fatal("failed to connect to db", zap.Error(err))
		}
		defer pool.Close()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			zl.Fatal("failed to prepare db schema", zap.Error(err))
		}
	} else {
		zl.Info("DB_DSN not set, booking requests are kept in memory")
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		zl.Fatal("failed to init storage", zap.Error(err))
	}

	container, err := app.NewContainer(app.Config{
		IsProduction:         cfg.IsProduction,
		ProdOrigins:          cfg.ProdOrigins,
		RateLimit:            cfg.RateLimitPerMin,
		DBPool:               pool,
		Storage:              store,
		Logger:               zl,
		SessionSecret:        cfg.SessionSecret,
		SessionTTL:           cfg.SessionTTL,
		SessionTokenTTL:      cfg.SessionTokenTTL,
		BcryptCost:           cfg.BcryptCost,
		PaymentDelay:         cfg.PaymentDelay,
		ConfirmDelay:         cfg.ConfirmDelay,
		MessageDeliveryDelay: cfg.MessageDeliveryDelay,
		ThreadLoadDelay:      cfg.ThreadLoadDelay,
		LoadMoreDelay:        cfg.LoadMoreDelay,
	})
	if err != nil {
		zl.Fatal("failed to init application", zap.Error(err))
	}

	// Expire idle sessions in the background
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		container.Sessions.Run(ctx, sweepInterval)
	}()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		zl.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	zl.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Warn("server forced to shutdown", zap.Error(err))
	}
	<-sweepDone

	zl.Info("server exited gracefully")
}
