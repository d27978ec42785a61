package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// PluginModule owns the Redis connection behind the rate limiter.
type PluginModule struct {
	container types.ServiceContainer
	redisAddr string
	keyPrefix string
	client    *redis.Client
	limiter   *Limiter
	logger    types.Logger
}

var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
)

// NewPluginModule creates a rate limiter plugin for the Redis server at redisAddr.
func NewPluginModule(redisAddr string, logger types.Logger) *PluginModule {
	return &PluginModule{
		redisAddr: redisAddr,
		keyPrefix: "ratelimit:",
		logger:    logger.WithModule("ratelimit"),
	}
}

// Name returns the module name.
func (m *PluginModule) Name() string {
	return "ratelimit"
}

// Start connects to Redis.
func (m *PluginModule) Start(ctx context.Context) error {
	m.client = redis.NewClient(&redis.Options{
		Addr:         m.redisAddr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err := m.client.Ping(ctx).Err(); err != nil {
		m.client.Close()
		m.client = nil
		return fmt.Errorf("failed to connect to Redis at %s: %w", m.redisAddr, err)
	}

	m.limiter = NewLimiter(m.client, m.keyPrefix)
	m.logger.Info("Plugin started", "redis", m.redisAddr)
	return nil
}

// Stop closes the Redis connection.
func (m *PluginModule) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
	}
	m.logger.Info("Plugin stopped")
	return nil
}

// SetContainer sets the service container for this plugin.
func (m *PluginModule) SetContainer(container types.ServiceContainer) {
	m.container = container
}

// Container returns the service container for this plugin.
func (m *PluginModule) Container() types.ServiceContainer {
	return m.container
}

// Port returns the limiter, or nil before Start.
func (m *PluginModule) Port() Allower {
	if m.limiter == nil {
		return nil
	}
	return m.limiter
}

// Health pings Redis.
func (m *PluginModule) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{Healthy: false, Message: "redis client not initialized"}
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"redis_addr": m.redisAddr},
	}
}
