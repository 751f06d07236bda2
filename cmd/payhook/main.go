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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/adapter/secondary/writebehind"
	"github.com/ruudy-sib/payhook/internal/config"
	"github.com/ruudy-sib/payhook/internal/domain/service"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

const appName = "payhook"

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	// Root context with cancellation for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build the dependency injection container.
	c, err := buildContainer(ctx)
	if err != nil {
		return fmt.Errorf("building container: %w", err)
	}

	// Invoke the application, resolving all dependencies and starting services.
	return c.Invoke(func(
		router http.Handler,
		w *writebehind.Worker,
		cfg *config.Config,
		logger *zap.Logger,
		store secondary.RecordStore,
		closeStore storeCloser,
		svc *service.NotificationService,
		publisher secondary.EventPublisher,
	) error {
		defer func() {
			// Clean up resources on shutdown. Events still in flight are
			// delivered before their publishers close.
			svc.WaitForEvents()
			if err := publisher.Close(); err != nil {
				logger.Error("error closing event publishers", zap.Error(err))
			}
			if err := closeStore(); err != nil {
				logger.Error("error closing record store", zap.Error(err))
			}
			_ = logger.Sync()
		}()

		logger.Info("starting application",
			zap.String("app", appName),
			zap.String("version", version),
			zap.String("environment", cfg.Environment),
			zap.String("http_addr", cfg.HTTPAddr),
			zap.String("store", store.Name()),
			zap.String("fallback_write_mode", cfg.FallbackWriteMode),
		)

		if !cfg.GatewayConfigured() {
			logger.Warn("GATEWAY_SECURED_KEY or GATEWAY_MERCHANT_ID not set, notifications will be rejected")
		}

		// Start the write-behind worker.
		workerCtx, workerCancel := context.WithCancel(ctx)
		defer workerCancel()

		workerDone := w.Start(workerCtx)

		// Start the HTTP server.
		server := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := listen(server, logger)

		// Wait for shutdown signal.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		var runErr error
		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		case runErr = <-errCh:
			logger.Error("service error", zap.Error(runErr))
		}

		// Graceful shutdown with timeout. The server stops first so no new
		// writes are queued while the worker drains.
		logger.Info("shutting down gracefully")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", zap.Error(err))
		}

		workerCancel()
		<-workerDone
		cancel()

		logger.Info("shutdown complete")
		return runErr
	})
}

// listen serves in the background. The returned channel yields the error
// that stopped the server, unless it was a regular Shutdown.
func listen(server *http.Server, logger *zap.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	return errCh
}
