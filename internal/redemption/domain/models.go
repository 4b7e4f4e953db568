package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
)

// RedemptionResult is returned to the point-of-sale integration on success.
type RedemptionResult struct {
	StickerID       snowflake.ID `json:"sticker_id"`
	TenantID        snowflake.ID `json:"tenant_id"`
	CustomerID      string       `json:"customer_id"`
	Code            string       `json:"code"`
	DiscountPercent int          `json:"discount_percent"`
	ConsumedAt      time.Time    `json:"consumed_at"`
}

type Service interface {
	// Redeem validates the presented code for this tenant and atomically
	// marks the sticker consumed. Exactly one concurrent attempt succeeds;
	// the rest fail with ErrStickerAlreadyConsumed. Codes never validate
	// across tenants.
	Redeem(ctx context.Context, cfg tenantdomain.Config, code string) (*RedemptionResult, error)
}
