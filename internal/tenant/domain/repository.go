package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant, actions []TenantAction, tiers []TenantTier) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Tenant, error)
	UpdateTenant(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	Actions(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]TenantAction, error)
	Tiers(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]TenantTier, error)
	ReplaceActions(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, actions []TenantAction) error
	ReplaceTiers(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, tiers []TenantTier) error
}
