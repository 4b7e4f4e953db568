package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	"gorm.io/gorm"
)

type Service interface {
	// Issue creates the sticker for one tier crossing. Re-issuing the same
	// (tenant, customer, tier, cycle) returns the original sticker with
	// Replayed set.
	Issue(ctx context.Context, cfg tenantdomain.Config, customerID string, tierIndex int, cycleSeq int64) (*Sticker, error)

	// IssueInTx is Issue running inside a caller-owned transaction, so
	// aggregation and issuance commit or roll back together.
	IssueInTx(ctx context.Context, tx *gorm.DB, cfg tenantdomain.Config, customerID string, tierIndex int, cycleSeq int64) (*Sticker, error)

	// List returns the customer's stickers, newest first, with effective
	// status classified at read time.
	List(ctx context.Context, tenantID snowflake.ID, customerID string, limit int) ([]*Sticker, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sticker *Sticker) error
	FindByCycle(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string, tierIndex int, cycleSeq int64) (*Sticker, error)
	FindByCode(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (*Sticker, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, customerID string, limit int) ([]*Sticker, error)

	// Consume transitions active→consumed iff the sticker is still active
	// and unexpired at the moment of the update. Returns false when the
	// conditional write matched no row.
	Consume(ctx context.Context, db *gorm.DB, stickerID snowflake.ID, now time.Time) (bool, error)

	// MarkExpired best-effort persists active→expired.
	MarkExpired(ctx context.Context, db *gorm.DB, stickerID snowflake.ID) error

	// ExpireOverdue sweeps all active stickers past expiry, for reporting.
	ExpireOverdue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}
