package payhook

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httphandler "github.com/ruudy-sib/payhook/internal/adapter/primary/http"
	"github.com/ruudy-sib/payhook/internal/adapter/secondary/httpproducer"
	"github.com/ruudy-sib/payhook/internal/adapter/secondary/kafkaproducer"
	"github.com/ruudy-sib/payhook/internal/adapter/secondary/producerfactory"
	"github.com/ruudy-sib/payhook/internal/adapter/secondary/redisstore"
	"github.com/ruudy-sib/payhook/internal/adapter/secondary/writebehind"
	"github.com/ruudy-sib/payhook/internal/config"
	"github.com/ruudy-sib/payhook/internal/domain"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
	"github.com/ruudy-sib/payhook/internal/domain/service"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// Errors returned by HandleNotification, usable with errors.Is.
var (
	ErrMissingField      = domain.ErrMissingField
	ErrConfiguration     = domain.ErrConfiguration
	ErrInvalidSignature  = domain.ErrInvalidSignature
	ErrInvalidIdentifier = domain.ErrInvalidIdentifier
	ErrRecordNotFound    = domain.ErrRecordNotFound
	ErrStoreUnavailable  = domain.ErrStoreUnavailable
)

// Receiver is a payment-notification receiver that can be embedded in other
// Go applications. Records live in Redis.
type Receiver struct {
	service     *service.NotificationService
	worker      *writebehind.Worker
	publisher   secondary.EventPublisher
	handler     http.Handler
	redisClient goredis.UniversalClient
	logger      *zap.Logger
	config      *Config

	mu         sync.Mutex
	stopWorker context.CancelFunc
	workerDone <-chan error
	closed     bool
}

// Config holds configuration for a Receiver.
type Config struct {
	// Gateway credentials used to verify notifications
	GatewaySecuredKey string
	GatewayMerchantID string

	// PaymentMethodTag is written to settled records (default "payfast")
	PaymentMethodTag string

	// DeepLinkScheme is the scheme of redirect targets (default "challanapp")
	DeepLinkScheme string

	// StoreRoot is the path prefix of records (default "challans")
	StoreRoot string

	// FallbackFields are queried when the direct lookup misses
	FallbackFields []string

	// SyncFallbackWrites waits for fallback writes instead of queueing them
	SyncFallbackWrites bool

	// Redis mode: "standalone" (default), "sentinel", "cluster"
	RedisMode string

	// Standalone Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Sentinel Redis (RedisMode = "sentinel")
	RedisMasterName    string
	RedisSentinelAddrs []string

	// Cluster Redis (RedisMode = "cluster")
	RedisClusterAddrs []string

	// Payment events (both optional)
	KafkaBrokers      []string
	KafkaPaymentTopic string
	EventsWebhookURL  string

	// Logger (if nil, a default logger will be created)
	Logger *zap.Logger
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PaymentMethodTag:  "payfast",
		DeepLinkScheme:    "challanapp",
		StoreRoot:         "challans",
		FallbackFields:    []string{"challanId", "challan_id", "challanNumber"},
		RedisAddr:         "localhost:6379",
		KafkaPaymentTopic: "payment-events",
	}
}

// Result describes how a notification was applied.
type Result struct {
	// Outcome is "updated_primary", "updated_fallback" or "payment_failed"
	Outcome string

	BasketID       string
	RecordKey      string
	StatusCode     string
	TransactionRef string

	// Deferred is true when the record write was queued
	Deferred bool
}

// New creates a new Receiver with the given configuration.
func New(cfg *Config) (*Receiver, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Create logger if not provided
	logger := cfg.Logger
	if logger == nil {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
	}

	internalCfg := cfg.toInternal()

	redisClient, err := redisstore.NewClient(context.Background(), internalCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating redis client: %w", err)
	}

	store := redisstore.NewRecordStore(redisClient, internalCfg.StoreRoot, logger)
	wrk := writebehind.NewWorker(store, internalCfg.WriteQueueSize, internalCfg.WriteDrainTimeout, logger)
	publisher := producerfactory.NewFromConfig(internalCfg, kafkaproducer.NewProducer, httpproducer.NewProducer, logger)

	reconciler := service.NewReconciler(store, wrk, service.ReconcilerOptions{
		FallbackFields:      internalCfg.FallbackFields,
		PaymentMethod:       internalCfg.PaymentMethodTag,
		AsyncFallbackWrites: internalCfg.FallbackWriteMode == config.FallbackWriteAsync,
	}, logger)

	svc := service.NewNotificationService(reconciler, publisher, service.GatewayCredentials{
		SecuredKey: internalCfg.GatewaySecuredKey,
		MerchantID: internalCfg.GatewayMerchantID,
	}, internalCfg.DeepLinkScheme, logger)

	handler := httphandler.NewRouter(internalCfg, svc, store,
		[]secondary.HealthChecker{redisstore.NewHealthCheck(redisClient)}, logger)

	return &Receiver{
		service:     svc,
		worker:      wrk,
		publisher:   publisher,
		handler:     handler,
		redisClient: redisClient,
		logger:      logger,
		config:      cfg,
	}, nil
}

// Start runs the write-behind worker in the background until ctx is
// cancelled or Close is called. It returns once the worker accepts writes.
// Until then fallback writes are applied synchronously, so a receiver that
// is never started still settles every record it reports as updated.
func (r *Receiver) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("payhook receiver is closed")
	}
	if r.workerDone != nil {
		return fmt.Errorf("payhook receiver already started")
	}

	r.logger.Info("starting payhook receiver")
	workerCtx, cancel := context.WithCancel(ctx)
	r.stopWorker = cancel
	r.workerDone = r.worker.Start(workerCtx)
	return nil
}

// Handler returns the HTTP handler serving the webhook, redirect and health
// routes, ready to be mounted in another router.
func (r *Receiver) Handler() http.Handler {
	return r.handler
}

// HandleNotification verifies and applies a notification given as raw
// gateway fields.
func (r *Receiver) HandleNotification(ctx context.Context, fields map[string]string) (Result, error) {
	res, err := r.service.HandleNotification(ctx, entity.Notification(fields))
	if err != nil {
		return Result{}, err
	}
	return Result{
		Outcome:        string(res.Outcome),
		BasketID:       res.BasketID,
		RecordKey:      res.RecordKey,
		StatusCode:     res.StatusCode,
		TransactionRef: res.TransactionRef,
		Deferred:       res.Deferred,
	}, nil
}

// SuccessRedirect builds the client deep link for a completed payment.
func (r *Receiver) SuccessRedirect(basketID, transactionID string) string {
	return r.service.SuccessRedirect(basketID, transactionID)
}

// FailureRedirect builds the client deep link for a failed payment.
func (r *Receiver) FailureRedirect(basketID, errCode, errMsg string) string {
	return r.service.FailureRedirect(basketID, errCode, errMsg)
}

// ComputeDigest returns the validation hash the gateway is expected to send
// for identifier and statusCode.
func (r *Receiver) ComputeDigest(identifier, statusCode string) string {
	return Sign(identifier, statusCode, r.config.GatewaySecuredKey, r.config.GatewayMerchantID)
}

// Sign computes a validation hash the way the gateway does. Useful for
// simulating notifications.
func Sign(identifier, statusCode, securedKey, merchantID string) string {
	return service.ComputeDigest(identifier, statusCode, securedKey, merchantID)
}

// Close stops the worker and waits for queued writes to drain, waits for
// payment events in flight, then releases the publishers and Redis.
func (r *Receiver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	r.logger.Info("shutting down payhook receiver",
		zap.Int("pending_writes", r.worker.Pending()),
	)

	if r.workerDone != nil {
		r.stopWorker()
		<-r.workerDone
	}
	r.service.WaitForEvents()

	var errs []error

	if err := r.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing publishers: %w", err))
	}

	if err := r.redisClient.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing redis client: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}

// toInternal converts the public config, filling defaults for empty fields.
func (c *Config) toInternal() *config.Config {
	def := DefaultConfig()

	out := &config.Config{
		GatewaySecuredKey:  c.GatewaySecuredKey,
		GatewayMerchantID:  c.GatewayMerchantID,
		PaymentMethodTag:   orDefault(c.PaymentMethodTag, def.PaymentMethodTag),
		DeepLinkScheme:     orDefault(c.DeepLinkScheme, def.DeepLinkScheme),
		StoreBackend:       config.StoreBackendRedis,
		StoreRoot:          orDefault(c.StoreRoot, def.StoreRoot),
		FallbackFields:     c.FallbackFields,
		FallbackWriteMode:  config.FallbackWriteAsync,
		WriteQueueSize:     256,
		WriteDrainTimeout:  10 * time.Second,
		RedisMode:          c.RedisMode,
		RedisAddr:          orDefault(c.RedisAddr, def.RedisAddr),
		RedisPassword:      c.RedisPassword,
		RedisDB:            c.RedisDB,
		RedisMasterName:    c.RedisMasterName,
		RedisSentinelAddrs: c.RedisSentinelAddrs,
		RedisClusterAddrs:  c.RedisClusterAddrs,
		KafkaBrokers:       c.KafkaBrokers,
		KafkaPaymentTopic:  orDefault(c.KafkaPaymentTopic, def.KafkaPaymentTopic),
		EventsWebhookURL:   c.EventsWebhookURL,
	}
	if len(out.FallbackFields) == 0 {
		out.FallbackFields = def.FallbackFields
	}
	if c.SyncFallbackWrites {
		out.FallbackWriteMode = config.FallbackWriteSync
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
