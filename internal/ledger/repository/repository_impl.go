package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert relies on the store-level unique index on
// (tenant_id, customer_id, idempotency_key) for replay protection.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.LedgerEntry) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO ledger_entries (
			id, tenant_id, customer_id, action_type, points, idempotency_key, occurred_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, customer_id, idempotency_key) DO NOTHING`,
		entry.ID,
		entry.TenantID,
		entry.CustomerID,
		entry.ActionType,
		entry.Points,
		entry.IdempotencyKey,
		entry.OccurredAt,
		entry.CreatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByIdempotencyKey(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID, key string) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, customer_id, action_type, points, idempotency_key, occurred_at, created_at
		 FROM ledger_entries
		 WHERE tenant_id = ? AND customer_id = ? AND idempotency_key = ?`,
		tenantID,
		customerID,
		key,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) SumPoints(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string, since *time.Time) (int64, error) {
	var total int64
	stmt := `SELECT COALESCE(SUM(points), 0) FROM ledger_entries WHERE tenant_id = ? AND customer_id = ?`
	args := []any{tenantID, customerID}
	if since != nil {
		stmt += ` AND occurred_at >= ?`
		args = append(args, since.UTC())
	}
	if err := db.WithContext(ctx).Raw(stmt, args...).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// List pages by snowflake ID, which is time-ordered, so the cursor stays
// stable while new entries keep arriving.
func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string, beforeID snowflake.ID, limit int) ([]*domain.LedgerEntry, error) {
	stmt := `SELECT id, tenant_id, customer_id, action_type, points, idempotency_key, occurred_at, created_at
		 FROM ledger_entries
		 WHERE tenant_id = ? AND customer_id = ?`
	args := []any{tenantID, customerID}
	if beforeID != 0 {
		stmt += ` AND id < ?`
		args = append(args, beforeID)
	}
	stmt += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	var entries []*domain.LedgerEntry
	if err := db.WithContext(ctx).Raw(stmt, args...).Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
