package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// HealthCheck implements secondary.HealthChecker for the Redis record store.
// On a cluster every shard must answer, since a fallback scan visits all masters.
type HealthCheck struct {
	client redis.UniversalClient
}

// NewHealthCheck creates a Redis health checker.
func NewHealthCheck(client redis.UniversalClient) secondary.HealthChecker {
	return &HealthCheck{client: client}
}

// Name returns the name of this health check.
func (h *HealthCheck) Name() string {
	return "redis"
}

// Check pings Redis, or each cluster shard, to verify connectivity.
func (h *HealthCheck) Check(ctx context.Context) error {
	cluster, ok := h.client.(*redis.ClusterClient)
	if !ok {
		return h.client.Ping(ctx).Err()
	}
	return cluster.ForEachShard(ctx, func(ctx context.Context, node *redis.Client) error {
		if err := node.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("shard %s: %w", node.Options().Addr, err)
		}
		return nil
	})
}
