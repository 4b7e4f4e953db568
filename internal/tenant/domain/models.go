package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Tenant is one isolated loyalty program instance.
type Tenant struct {
	ID                     snowflake.ID      `gorm:"primaryKey" json:"id"`
	Slug                   string            `gorm:"not null;uniqueIndex:ux_tenants_slug" json:"slug"`
	Name                   string            `gorm:"not null" json:"name"`
	StickerValiditySeconds int64             `gorm:"not null" json:"sticker_validity_seconds"`
	Metadata               datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	Active                 bool              `gorm:"not null;default:true" json:"active"`
	CreatedAt              time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt              time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Tenant) TableName() string { return "tenants" }

// TenantAction maps a customer action type to the points it awards.
type TenantAction struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID `gorm:"not null;index;uniqueIndex:ux_tenant_actions_tenant_action,priority:1" json:"tenant_id"`
	ActionType string       `gorm:"not null;uniqueIndex:ux_tenant_actions_tenant_action,priority:2" json:"action_type"`
	Points     int64        `gorm:"not null" json:"points"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TenantAction) TableName() string { return "tenant_actions" }

// TenantTier is one row of the ordered discount tier table.
type TenantTier struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID `gorm:"not null;index;uniqueIndex:ux_tenant_tiers_tenant_position,priority:1" json:"tenant_id"`
	Position        int          `gorm:"not null;uniqueIndex:ux_tenant_tiers_tenant_position,priority:2" json:"position"`
	Threshold       int64        `gorm:"not null" json:"threshold"`
	DiscountPercent int          `gorm:"not null" json:"discount_percent"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TenantTier) TableName() string { return "tenant_tiers" }

// Tier is one (threshold, discount) pair of a config snapshot.
type Tier struct {
	Threshold       int64 `json:"threshold"`
	DiscountPercent int   `json:"discount_percent"`
}

// Config is an immutable point-in-time snapshot of a tenant's configuration.
// Callers must use a single snapshot for the duration of one operation;
// concurrent configuration updates never mutate a snapshot already handed out.
type Config struct {
	TenantID        snowflake.ID     `json:"tenant_id"`
	Slug            string           `json:"slug"`
	Name            string           `json:"name"`
	ActionPoints    map[string]int64 `json:"action_points"`
	Tiers           []Tier           `json:"tiers"`
	StickerValidity time.Duration    `json:"sticker_validity"`
}

// PointsFor resolves the points awarded for an action type.
func (c Config) PointsFor(actionType string) (int64, bool) {
	points, ok := c.ActionPoints[actionType]
	return points, ok
}

type CreateTenantRequest struct {
	Slug                   string           `json:"slug"`
	Name                   string           `json:"name"`
	ActionPoints           map[string]int64 `json:"action_points"`
	Tiers                  []Tier           `json:"tiers"`
	StickerValiditySeconds int64            `json:"sticker_validity_seconds"`
}

type UpdateConfigRequest struct {
	Name                   string           `json:"name"`
	ActionPoints           map[string]int64 `json:"action_points"`
	Tiers                  []Tier           `json:"tiers"`
	StickerValiditySeconds int64            `json:"sticker_validity_seconds"`
}
