package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusConsumed Status = "consumed"
	StatusExpired  Status = "expired"
)

// Sticker is an issued, redeemable discount code tied to a tier crossing.
// Status only moves forward: active→consumed or active→expired.
type Sticker struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID `gorm:"not null;index;uniqueIndex:ux_stickers_tenant_code,priority:1;uniqueIndex:ux_stickers_tenant_customer_tier_cycle,priority:1" json:"tenant_id"`
	CustomerID      string       `gorm:"not null;uniqueIndex:ux_stickers_tenant_customer_tier_cycle,priority:2" json:"customer_id"`
	TierIndex       int          `gorm:"not null;uniqueIndex:ux_stickers_tenant_customer_tier_cycle,priority:3" json:"tier_index"`
	CycleSeq        int64        `gorm:"not null;uniqueIndex:ux_stickers_tenant_customer_tier_cycle,priority:4" json:"cycle_seq"`
	DiscountPercent int          `gorm:"not null" json:"discount_percent"`
	Code            string       `gorm:"not null;uniqueIndex:ux_stickers_tenant_code,priority:2" json:"code"`
	Status          Status       `gorm:"type:text;not null;default:'active'" json:"status"`
	IssuedAt        time.Time    `gorm:"not null" json:"issued_at"`
	ExpiresAt       time.Time    `gorm:"not null" json:"expires_at"`
	ConsumedAt      *time.Time   `json:"consumed_at,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// Replayed marks an idempotent re-issue that returned the sticker
	// created by an earlier attempt for the same crossing.
	Replayed bool `gorm:"-" json:"-"`
}

func (Sticker) TableName() string { return "stickers" }

// EffectiveStatus classifies the sticker at read time: an active sticker past
// its expiry reads as expired even before the transition is persisted.
func (s *Sticker) EffectiveStatus(now time.Time) Status {
	if s.Status == StatusActive && now.After(s.ExpiresAt) {
		return StatusExpired
	}
	return s.Status
}
