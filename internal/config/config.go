package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable with STORE_BACKEND.
const (
	StoreBackendRedis    = "redis"
	StoreBackendDynamoDB = "dynamodb"
)

// Fallback write modes selectable with FALLBACK_WRITE_MODE.
const (
	FallbackWriteAsync = "async"
	FallbackWriteSync  = "sync"
)

// Config holds all application configuration values.
type Config struct {
	// HTTP server
	HTTPAddr           string
	CorsAllowedOrigins []string

	// Payment gateway
	GatewaySecuredKey string
	GatewayMerchantID string
	PaymentMethodTag  string
	DeepLinkScheme    string

	// Record store
	StoreBackend      string // "redis" (default) or "dynamodb"
	StoreRoot         string // root path for redis, table name for dynamodb
	FallbackFields    []string
	FallbackWriteMode string // "async" (default) or "sync"
	WriteQueueSize    int
	WriteDrainTimeout time.Duration

	// Redis
	RedisMode          string // "standalone" (default), "sentinel", "cluster"
	RedisAddr          string // standalone: host:port
	RedisPassword      string
	RedisDB            int
	RedisMasterName    string   // sentinel: master name
	RedisSentinelAddrs []string // sentinel: sentinel node addresses
	RedisClusterAddrs  []string // cluster: cluster node addresses

	// DynamoDB
	DynamoRegion             string
	DynamoEndpoint           string
	DynamoKeyAttribute       string
	DynamoPartitionAttribute string            // optional hash key; DynamoKeyAttribute becomes the range key
	DynamoFieldIndexes       map[string]string // field -> GSI name

	// Payment events
	KafkaBrokers      []string
	KafkaPaymentTopic string
	EventsWebhookURL  string

	// Application
	Environment string
	LogLevel    string
}

// New creates a Config populated from environment variables with sensible defaults.
func New() *Config {
	cfg := &Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		GatewaySecuredKey:  getEnv("GATEWAY_SECURED_KEY", ""),
		GatewayMerchantID:  getEnv("GATEWAY_MERCHANT_ID", ""),
		PaymentMethodTag:   getEnv("PAYMENT_METHOD_TAG", "payfast"),
		DeepLinkScheme:     getEnv("DEEP_LINK_SCHEME", "challanapp"),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", StoreBackendRedis)),
		StoreRoot:          getEnv("STORE_ROOT", "challans"),
		FallbackFields:     splitCSV(getEnv("FALLBACK_FIELDS", "challanId,challan_id,challanNumber")),
		FallbackWriteMode:  strings.ToLower(getEnv("FALLBACK_WRITE_MODE", FallbackWriteAsync)),
		WriteQueueSize:     getEnvInt("WRITE_QUEUE_SIZE", 256),
		WriteDrainTimeout:  getEnvDuration("WRITE_DRAIN_TIMEOUT", 10*time.Second),
		RedisMode:          getEnv("REDIS_MODE", "standalone"),
		RedisAddr:          getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		DynamoRegion:       getEnv("DYNAMODB_REGION", "us-east-1"),
		DynamoEndpoint:     getEnv("DYNAMODB_ENDPOINT", ""),
		DynamoKeyAttribute: getEnv("DYNAMODB_KEY_ATTRIBUTE", "id"),
		DynamoFieldIndexes: parsePairs(getEnv("DYNAMODB_FIELD_INDEXES", "")),
		KafkaBrokers:       splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaPaymentTopic:  getEnv("KAFKA_PAYMENT_TOPIC", "payment-events"),
		EventsWebhookURL:   getEnv("EVENTS_WEBHOOK_URL", ""),
		Environment:        getEnv("ENVIRONMENT", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	// Hosting platforms hand out a bare port number.
	if port := getEnv("PORT", ""); port != "" {
		cfg.HTTPAddr = ":" + port
	}

	if v := getEnv("REDIS_MASTER_NAME", ""); v != "" {
		cfg.RedisMasterName = v
	}
	if v := getEnv("REDIS_SENTINEL_ADDRS", ""); v != "" {
		cfg.RedisSentinelAddrs = splitCSV(v)
	}
	if v := getEnv("REDIS_CLUSTER_ADDRS", ""); v != "" {
		cfg.RedisClusterAddrs = splitCSV(v)
	}
	if v := getEnv("DYNAMODB_PARTITION_ATTRIBUTE", ""); v != "" {
		cfg.DynamoPartitionAttribute = v
	}

	if cfg.WriteQueueSize <= 0 {
		cfg.WriteQueueSize = 256
	}
	if cfg.FallbackWriteMode != FallbackWriteSync {
		cfg.FallbackWriteMode = FallbackWriteAsync
	}

	return cfg
}

// GatewayConfigured reports whether both gateway credentials are present.
func (c *Config) GatewayConfigured() bool {
	return c.GatewaySecuredKey != "" && c.GatewayMerchantID != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		value = strings.TrimSpace(value)
		if value != "" {
			return value
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parsePairs reads "field=index,field2=index2".
func parsePairs(value string) map[string]string {
	out := make(map[string]string)
	for _, pair := range splitCSV(value) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
