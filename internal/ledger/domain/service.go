package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
	"gorm.io/gorm"
)

type Service interface {
	// Append records a point-earning event. Replaying an idempotency key
	// returns the original entry with Duplicate set; it is not an error.
	Append(ctx context.Context, req AppendRequest) (*LedgerEntry, error)

	// SumPoints returns the exact sum of points awarded at append time,
	// optionally restricted to entries at or after since.
	SumPoints(ctx context.Context, tenantID snowflake.ID, customerID string, since *time.Time) (int64, error)

	// History lists point-earning entries, newest first, with cursor
	// pagination.
	History(ctx context.Context, tenantID snowflake.ID, customerID string, page pagination.Pagination) ([]*LedgerEntry, pagination.PageInfo, error)
}

type Repository interface {
	// Insert appends the entry. inserted is false when the idempotency key
	// was already recorded for this tenant and customer.
	Insert(ctx context.Context, db *gorm.DB, entry *LedgerEntry) (inserted bool, err error)
	FindByIdempotencyKey(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID, key string) (*LedgerEntry, error)
	SumPoints(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string, since *time.Time) (int64, error)

	// List returns up to limit entries newest first, strictly older than
	// beforeID when it is non-zero.
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string, beforeID snowflake.ID, limit int) ([]*LedgerEntry, error)
}
