package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	balancedomain "github.com/smallbiznis/tessera/internal/balance/domain"
)

// BalanceCache is a short-TTL read cache for display-path balance lookups.
// It is nil-safe: without a redis client every Get is a miss and writes are
// dropped, so the engine degrades to direct ledger reads.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &BalanceCache{client: client, ttl: ttl}
}

func balanceKey(tenantID snowflake.ID, customerID string) string {
	return fmt.Sprintf("tessera:balance:%s:%s", tenantID.String(), customerID)
}

func (c *BalanceCache) Get(ctx context.Context, tenantID snowflake.ID, customerID string) (*balancedomain.Balance, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, balanceKey(tenantID, customerID)).Bytes()
	if err != nil {
		return nil, false
	}
	var balance balancedomain.Balance
	if err := json.Unmarshal(raw, &balance); err != nil {
		return nil, false
	}
	return &balance, true
}

func (c *BalanceCache) Set(ctx context.Context, balance *balancedomain.Balance) {
	if c == nil || c.client == nil || balance == nil {
		return
	}
	raw, err := json.Marshal(balance)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, balanceKey(balance.TenantID, balance.CustomerID), raw, c.ttl).Err()
}

func (c *BalanceCache) Invalidate(ctx context.Context, tenantID snowflake.ID, customerID string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, balanceKey(tenantID, customerID)).Err()
}
