package cache

import (
	"context"
	"fmt"

	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks an idempotency store from configuration
type IdempotencyStoreFactory struct {
	eventConfig           config.EventConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption is a functional option for the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the in-memory store.
// Default is true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(eventCfg config.EventConfig, redisCfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		eventConfig:           eventCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the configured store
func (f *IdempotencyStoreFactory) Create(ctx context.Context) (shared.IdempotencyStore, error) {
	if f.eventConfig.IdempotencyBackend != config.BackendRedis {
		f.logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis idempotency store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis idempotency store unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store; duplicates across instances are possible",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}

// IdempotencyConfig converts the event configuration for handler wrappers
func (f *IdempotencyStoreFactory) IdempotencyConfig() shared.IdempotencyConfig {
	return shared.IdempotencyConfig{
		TTL:     f.eventConfig.IdempotencyTTL,
		Enabled: f.eventConfig.IdempotencyEnabled,
	}
}
