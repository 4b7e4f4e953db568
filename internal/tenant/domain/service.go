package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service is the tenant registry. Reads are snapshot-consistent: the returned
// Config is a value and stays stable for the duration of one operation.
type Service interface {
	GetConfig(ctx context.Context, tenantID snowflake.ID) (Config, error)
	GetConfigBySlug(ctx context.Context, slug string) (Config, error)
	Create(ctx context.Context, req CreateTenantRequest) (Config, error)
	UpdateConfig(ctx context.Context, tenantID snowflake.ID, req UpdateConfigRequest) (Config, error)
}

// ValidateTiers enforces the tier table invariant: strictly increasing in
// both threshold and discount percent, thresholds positive, discounts within
// (0, 100].
func ValidateTiers(tiers []Tier) error {
	for i, tier := range tiers {
		if tier.Threshold <= 0 {
			return ErrInvalidTierTable
		}
		if tier.DiscountPercent <= 0 || tier.DiscountPercent > 100 {
			return ErrInvalidTierTable
		}
		if i > 0 {
			prev := tiers[i-1]
			if tier.Threshold <= prev.Threshold || tier.DiscountPercent <= prev.DiscountPercent {
				return ErrInvalidTierTable
			}
		}
	}
	return nil
}
