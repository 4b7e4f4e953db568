package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// LedgerEntry is one immutable point-earning event. Entries are append-only:
// once written they are never edited or deleted.
type LedgerEntry struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID `gorm:"not null;index;uniqueIndex:ux_ledger_entries_idempotency,priority:1" json:"tenant_id"`
	CustomerID     string       `gorm:"not null;uniqueIndex:ux_ledger_entries_idempotency,priority:2" json:"customer_id"`
	ActionType     string       `gorm:"not null" json:"action_type"`
	Points         int64        `gorm:"not null" json:"points"`
	IdempotencyKey string       `gorm:"not null;uniqueIndex:ux_ledger_entries_idempotency,priority:3" json:"idempotency_key"`
	OccurredAt     time.Time    `gorm:"not null" json:"occurred_at"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// Duplicate marks an idempotency-key replay: the returned entry is the
	// original one and no balance effect happened.
	Duplicate bool `gorm:"-" json:"-"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

// AppendRequest is an inbound action event.
type AppendRequest struct {
	TenantID       snowflake.ID
	CustomerID     string
	ActionType     string
	IdempotencyKey string
	OccurredAt     time.Time
}
