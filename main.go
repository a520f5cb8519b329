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

	"go.uber.org/zap"

	"chem-purchase-assistant/app"
	"chem-purchase-assistant/config"
	"chem-purchase-assistant/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file in development (ignores a missing file)
	// In production, variables should be set directly
	loaded, err := config.LoadDotEnv(".env")
	if err != nil {
		log.Printf("Warning: %v, using system environment variables", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if loaded {
		logger.Info("loaded environment variables from .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize application
	a, err := app.Initialize(ctx, cfg, logger, app.Dependencies{})
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to release resources", zap.Error(err))
		}
	}()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker/Render)
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      a.Handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
