package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tenant *domain.Tenant, actions []domain.TenantAction, tiers []domain.TenantTier) error {
	if err := db.WithContext(ctx).Exec(
		`INSERT INTO tenants (id, slug, name, sticker_validity_seconds, metadata, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tenant.ID,
		tenant.Slug,
		tenant.Name,
		tenant.StickerValiditySeconds,
		tenant.Metadata,
		tenant.Active,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	).Error; err != nil {
		return err
	}
	if err := insertActions(ctx, db, actions); err != nil {
		return err
	}
	return insertTiers(ctx, db, tiers)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, name, sticker_validity_seconds, metadata, active, created_at, updated_at
		 FROM tenants WHERE id = ?`,
		id,
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, name, sticker_validity_seconds, metadata, active, created_at, updated_at
		 FROM tenants WHERE slug = ?`,
		slug,
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) UpdateTenant(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenants SET name = ?, sticker_validity_seconds = ?, metadata = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		tenant.Name,
		tenant.StickerValiditySeconds,
		tenant.Metadata,
		tenant.Active,
		tenant.UpdatedAt,
		tenant.ID,
	).Error
}

func (r *repo) Actions(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.TenantAction, error) {
	var actions []domain.TenantAction
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, action_type, points, created_at
		 FROM tenant_actions WHERE tenant_id = ? ORDER BY action_type`,
		tenantID,
	).Scan(&actions).Error
	if err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *repo) Tiers(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.TenantTier, error) {
	var tiers []domain.TenantTier
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, position, threshold, discount_percent, created_at
		 FROM tenant_tiers WHERE tenant_id = ? ORDER BY position`,
		tenantID,
	).Scan(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *repo) ReplaceActions(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, actions []domain.TenantAction) error {
	if err := db.WithContext(ctx).Exec(
		`DELETE FROM tenant_actions WHERE tenant_id = ?`, tenantID,
	).Error; err != nil {
		return err
	}
	return insertActions(ctx, db, actions)
}

func (r *repo) ReplaceTiers(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, tiers []domain.TenantTier) error {
	if err := db.WithContext(ctx).Exec(
		`DELETE FROM tenant_tiers WHERE tenant_id = ?`, tenantID,
	).Error; err != nil {
		return err
	}
	return insertTiers(ctx, db, tiers)
}

func insertActions(ctx context.Context, db *gorm.DB, actions []domain.TenantAction) error {
	for _, action := range actions {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO tenant_actions (id, tenant_id, action_type, points, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			action.ID,
			action.TenantID,
			action.ActionType,
			action.Points,
			action.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func insertTiers(ctx context.Context, db *gorm.DB, tiers []domain.TenantTier) error {
	for _, tier := range tiers {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO tenant_tiers (id, tenant_id, position, threshold, discount_percent, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			tier.ID,
			tier.TenantID,
			tier.Position,
			tier.Threshold,
			tier.DiscountPercent,
			tier.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}
