package cache

import (
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tessera/internal/config"
	"go.uber.org/fx"
)

// NewRedisClient returns nil when no redis address is configured; dependents
// treat a nil client as cache-disabled.
func NewRedisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

func NewBalanceCacheFromConfig(client *redis.Client, cfg config.Config) *BalanceCache {
	return NewBalanceCache(client, time.Duration(cfg.BalanceCacheTTL)*time.Second)
}

var Module = fx.Module("cache",
	fx.Provide(NewRedisClient),
	fx.Provide(NewBalanceCacheFromConfig),
)
