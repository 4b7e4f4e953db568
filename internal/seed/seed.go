package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const defaultTenantName = "Default"

var defaultActions = map[string]int64{
	"video_completion": 10,
	"like":             1,
	"comment":          2,
	"review":           5,
}

var defaultTiers = []struct {
	Threshold       int64
	DiscountPercent int
}{
	{50, 5},
	{200, 10},
	{500, 15},
}

const defaultValiditySeconds = 30 * 24 * 3600

// EnsureDefaultTenant seeds a bootstrap tenant so a fresh install is usable
// without an onboarding call.
func EnsureDefaultTenant(db *gorm.DB, slug string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if slug == "" {
		return errors.New("seed tenant slug is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.WithContext(ctx).Raw(
			`SELECT COUNT(1) FROM tenants WHERE slug = ?`, slug,
		).Scan(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		now := time.Now().UTC()
		tenantID := node.Generate()
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO tenants (id, slug, name, sticker_validity_seconds, metadata, active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, '{}', ?, ?, ?)`,
			tenantID, slug, defaultTenantName, defaultValiditySeconds, true, now, now,
		).Error; err != nil {
			return err
		}

		for actionType, points := range defaultActions {
			if err := tx.WithContext(ctx).Exec(
				`INSERT INTO tenant_actions (id, tenant_id, action_type, points, created_at)
				 VALUES (?, ?, ?, ?, ?)`,
				node.Generate(), tenantID, actionType, points, now,
			).Error; err != nil {
				return err
			}
		}

		for i, tier := range defaultTiers {
			if err := tx.WithContext(ctx).Exec(
				`INSERT INTO tenant_tiers (id, tenant_id, position, threshold, discount_percent, created_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				node.Generate(), tenantID, i, tier.Threshold, tier.DiscountPercent, now,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
