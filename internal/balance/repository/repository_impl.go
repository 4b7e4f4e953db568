package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/balance/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) GetOrCreateCycle(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string) (*domain.CustomerCycle, error) {
	if err := db.WithContext(ctx).Exec(
		`INSERT INTO customer_cycles (tenant_id, customer_id, cycle_seq, points_offset, updated_at)
		 VALUES (?, ?, 1, 0, ?)
		 ON CONFLICT (tenant_id, customer_id) DO NOTHING`,
		tenantID,
		customerID,
		time.Now().UTC(),
	).Error; err != nil {
		return nil, err
	}
	return r.GetCycle(ctx, db, tenantID, customerID)
}

func (r *repo) GetCycle(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string) (*domain.CustomerCycle, error) {
	var cycle domain.CustomerCycle
	err := db.WithContext(ctx).Raw(
		`SELECT tenant_id, customer_id, cycle_seq, points_offset, updated_at
		 FROM customer_cycles WHERE tenant_id = ? AND customer_id = ?`,
		tenantID,
		customerID,
	).Scan(&cycle).Error
	if err != nil {
		return nil, err
	}
	if cycle.TenantID == 0 {
		return nil, nil
	}
	return &cycle, nil
}

// AdvanceCycle is the optimistic-concurrency point of the aggregation: the
// WHERE clause on cycle_seq makes two concurrent aggregators for the same
// customer impossible to both succeed.
func (r *repo) AdvanceCycle(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string, fromSeq, newOffset int64, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE customer_cycles SET cycle_seq = ?, points_offset = ?, updated_at = ?
		 WHERE tenant_id = ? AND customer_id = ? AND cycle_seq = ?`,
		fromSeq+1,
		newOffset,
		now.UTC(),
		tenantID,
		customerID,
		fromSeq,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
