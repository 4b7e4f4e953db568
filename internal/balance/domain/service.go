package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/tessera/internal/ledger/domain"
	stickerdomain "github.com/smallbiznis/tessera/internal/sticker/domain"
	"gorm.io/gorm"
)

// ErrAggregationConflict surfaces when concurrent aggregations for the same
// customer exhaust the internal retries. The caller may retry; issuance stays
// exactly-once regardless.
var ErrAggregationConflict = errors.New("balance aggregation conflict")

type Service interface {
	// OnNewEntry recomputes the customer's balance from the ledger and
	// issues stickers for every tier threshold crossed, in ascending order.
	// Replayed entries and retried aggregations never double-issue.
	OnNewEntry(ctx context.Context, entry *ledgerdomain.LedgerEntry) ([]*stickerdomain.Sticker, error)

	// GetBalance serves the display-path balance; it may be answered from a
	// short-TTL cache and must not be used on the issuing path.
	GetBalance(ctx context.Context, tenantID snowflake.ID, customerID string) (*Balance, error)
}

type Repository interface {
	// GetOrCreateCycle returns the cycle row, creating the initial one
	// (seq 1, offset 0) on first sight of the customer.
	GetOrCreateCycle(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string) (*CustomerCycle, error)

	// GetCycle returns the cycle row without creating it; nil when absent.
	GetCycle(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string) (*CustomerCycle, error)

	// AdvanceCycle conditionally moves the cycle forward from fromSeq. A
	// false return means another aggregator advanced it first.
	AdvanceCycle(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string, fromSeq, newOffset int64, now time.Time) (bool, error)
}
