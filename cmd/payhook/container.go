package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/dig"
	"go.uber.org/zap"

	httphandler "github.com/ruudy-sib/payhook/internal/adapter/primary/http"
	"github.com/ruudy-sib/payhook/internal/adapter/secondary/dynamostore"
	"github.com/ruudy-sib/payhook/internal/adapter/secondary/httpproducer"
	"github.com/ruudy-sib/payhook/internal/adapter/secondary/kafkaproducer"
	"github.com/ruudy-sib/payhook/internal/adapter/secondary/producerfactory"
	"github.com/ruudy-sib/payhook/internal/adapter/secondary/redisstore"
	"github.com/ruudy-sib/payhook/internal/adapter/secondary/writebehind"
	"github.com/ruudy-sib/payhook/internal/config"
	"github.com/ruudy-sib/payhook/internal/domain/service"
	"github.com/ruudy-sib/payhook/internal/port/primary"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// storeCloser releases the connection behind the record store.
type storeCloser func() error

// storeResult is everything the selected backend contributes to the graph.
type storeResult struct {
	dig.Out

	Store  secondary.RecordStore
	Checks []secondary.HealthChecker
	Closer storeCloser
}

func buildContainer(ctx context.Context) (*dig.Container, error) {
	c := dig.New()

	// --- Configuration ---
	if err := c.Provide(config.New); err != nil {
		return nil, err
	}

	// --- Logger ---
	if err := c.Provide(newLogger); err != nil {
		return nil, err
	}

	// --- Secondary Adapters (infrastructure) ---

	// Record store, selected by STORE_BACKEND
	if err := c.Provide(func(cfg *config.Config, logger *zap.Logger) (storeResult, error) {
		return newStore(ctx, cfg, logger)
	}); err != nil {
		return nil, err
	}

	// Write-behind worker (implements secondary.WriteQueue)
	if err := c.Provide(func(store secondary.RecordStore, cfg *config.Config, logger *zap.Logger) *writebehind.Worker {
		return writebehind.NewWorker(store, cfg.WriteQueueSize, cfg.WriteDrainTimeout, logger)
	}); err != nil {
		return nil, err
	}

	if err := c.Provide(func(w *writebehind.Worker) secondary.WriteQueue {
		return w
	}); err != nil {
		return nil, err
	}

	// Payment event publishers fanned out behind one port
	if err := c.Provide(func(cfg *config.Config, logger *zap.Logger) secondary.EventPublisher {
		return producerfactory.NewFromConfig(cfg, kafkaproducer.NewProducer, httpproducer.NewProducer, logger)
	}); err != nil {
		return nil, err
	}

	// --- Domain Services ---

	if err := c.Provide(func(
		store secondary.RecordStore,
		queue secondary.WriteQueue,
		cfg *config.Config,
		logger *zap.Logger,
	) *service.Reconciler {
		return service.NewReconciler(store, queue, service.ReconcilerOptions{
			FallbackFields:      cfg.FallbackFields,
			PaymentMethod:       cfg.PaymentMethodTag,
			AsyncFallbackWrites: cfg.FallbackWriteMode == config.FallbackWriteAsync,
		}, logger)
	}); err != nil {
		return nil, err
	}

	if err := c.Provide(func(
		reconciler *service.Reconciler,
		publisher secondary.EventPublisher,
		cfg *config.Config,
		logger *zap.Logger,
	) *service.NotificationService {
		return service.NewNotificationService(reconciler, publisher, service.GatewayCredentials{
			SecuredKey: cfg.GatewaySecuredKey,
			MerchantID: cfg.GatewayMerchantID,
		}, cfg.DeepLinkScheme, logger)
	}); err != nil {
		return nil, err
	}

	// Bind concrete NotificationService to the primary port interface
	if err := c.Provide(func(s *service.NotificationService) primary.NotificationService {
		return s
	}); err != nil {
		return nil, err
	}

	// --- Primary Adapters ---

	// HTTP router
	if err := c.Provide(func(
		cfg *config.Config,
		svc primary.NotificationService,
		store secondary.RecordStore,
		checks []secondary.HealthChecker,
		logger *zap.Logger,
	) http.Handler {
		return httphandler.NewRouter(cfg, svc, store, checks, logger)
	}); err != nil {
		return nil, err
	}

	return c, nil
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storeResult, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		client, err := redisstore.NewClient(ctx, cfg, logger)
		if err != nil {
			return storeResult{}, err
		}
		return storeResult{
			Store:  redisstore.NewRecordStore(client, cfg.StoreRoot, logger),
			Checks: []secondary.HealthChecker{redisstore.NewHealthCheck(client)},
			Closer: client.Close,
		}, nil

	case config.StoreBackendDynamoDB:
		client, err := dynamostore.NewClient(ctx, cfg, logger)
		if err != nil {
			return storeResult{}, err
		}
		return storeResult{
			Store:  dynamostore.NewRecordStore(client, cfg, logger),
			Checks: []secondary.HealthChecker{dynamostore.NewHealthCheck(client, cfg.StoreRoot)},
			Closer: func() error { return nil },
		}, nil

	default:
		return storeResult{}, fmt.Errorf("unknown STORE_BACKEND %q (want %q or %q)",
			cfg.StoreBackend, config.StoreBackendRedis, config.StoreBackendDynamoDB)
	}
}
