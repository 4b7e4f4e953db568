package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/sticker/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sticker *domain.Sticker) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO stickers (
			id, tenant_id, customer_id, tier_index, cycle_seq, discount_percent,
			code, status, issued_at, expires_at, consumed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sticker.ID,
		sticker.TenantID,
		sticker.CustomerID,
		sticker.TierIndex,
		sticker.CycleSeq,
		sticker.DiscountPercent,
		sticker.Code,
		string(sticker.Status),
		sticker.IssuedAt,
		sticker.ExpiresAt,
		sticker.ConsumedAt,
		sticker.CreatedAt,
	).Error
}

func (r *repo) FindByCycle(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string, tierIndex int, cycleSeq int64) (*domain.Sticker, error) {
	var sticker domain.Sticker
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, customer_id, tier_index, cycle_seq, discount_percent,
		        code, status, issued_at, expires_at, consumed_at, created_at
		 FROM stickers
		 WHERE tenant_id = ? AND customer_id = ? AND tier_index = ? AND cycle_seq = ?`,
		tenantID,
		customerID,
		tierIndex,
		cycleSeq,
	).Scan(&sticker).Error
	if err != nil {
		return nil, err
	}
	if sticker.ID == 0 {
		return nil, nil
	}
	return &sticker, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (*domain.Sticker, error) {
	var sticker domain.Sticker
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, customer_id, tier_index, cycle_seq, discount_percent,
		        code, status, issued_at, expires_at, consumed_at, created_at
		 FROM stickers
		 WHERE tenant_id = ? AND code = ?`,
		tenantID,
		code,
	).Scan(&sticker).Error
	if err != nil {
		return nil, err
	}
	if sticker.ID == 0 {
		return nil, nil
	}
	return &sticker, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string, limit int) ([]*domain.Sticker, error) {
	var stickers []*domain.Sticker
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, customer_id, tier_index, cycle_seq, discount_percent,
		        code, status, issued_at, expires_at, consumed_at, created_at
		 FROM stickers
		 WHERE tenant_id = ? AND customer_id = ?
		 ORDER BY issued_at DESC, id DESC
		 LIMIT ?`,
		tenantID,
		customerID,
		limit,
	).Scan(&stickers).Error
	if err != nil {
		return nil, err
	}
	return stickers, nil
}

// Consume is the compare-and-swap on the sticker row: the status and expiry
// checks run inside the UPDATE itself, so two concurrent attempts can never
// both match.
func (r *repo) Consume(ctx context.Context, db *gorm.DB, stickerID snowflake.ID, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE stickers SET status = 'consumed', consumed_at = ?
		 WHERE id = ? AND status = 'active' AND expires_at > ?`,
		now.UTC(),
		stickerID,
		now.UTC(),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) MarkExpired(ctx context.Context, db *gorm.DB, stickerID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE stickers SET status = 'expired' WHERE id = ? AND status = 'active'`,
		stickerID,
	).Error
}

func (r *repo) ExpireOverdue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE stickers SET status = 'expired' WHERE status = 'active' AND expires_at <= ?`,
		now.UTC(),
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
