package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CustomerCycle tracks the earning cycle for one (tenant, customer): the
// cycle sequence plus the cumulative points consumed by past issuances.
// points-since-last-sticker = lifetime points − PointsOffset, so surplus
// above an issued threshold carries over instead of being lost.
type CustomerCycle struct {
	TenantID     snowflake.ID `gorm:"primaryKey" json:"tenant_id"`
	CustomerID   string       `gorm:"primaryKey" json:"customer_id"`
	CycleSeq     int64        `gorm:"not null;default:1" json:"cycle_seq"`
	PointsOffset int64        `gorm:"not null;default:0" json:"points_offset"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CustomerCycle) TableName() string { return "customer_cycles" }

// Balance is a derived projection, always reconstructable from the ledger;
// it is never the source of truth.
type Balance struct {
	TenantID           snowflake.ID `json:"tenant_id"`
	CustomerID         string       `json:"customer_id"`
	LifetimePoints     int64        `json:"lifetime_points"`
	PointsSinceSticker int64        `json:"points_since_last_sticker"`
	CycleSeq           int64        `json:"cycle_seq"`
	Level              LevelInfo    `json:"level"`
}

// LevelInfo names the customer's standing band over lifetime points.
type LevelInfo struct {
	Name            string  `json:"name"`
	MinPoints       int64   `json:"min_points"`
	NextLevel       string  `json:"next_level,omitempty"`
	PointsToNext    int64   `json:"points_to_next,omitempty"`
	ProgressPercent float64 `json:"progress_percent"`
}

type level struct {
	name      string
	minPoints int64
}

var levels = []level{
	{"starter", 0},
	{"bronze", 50},
	{"silver", 200},
	{"gold", 500},
	{"diamond", 1000},
}

// LevelFor classifies lifetime points into a level with progress toward the
// next one.
func LevelFor(points int64) LevelInfo {
	if points < 0 {
		points = 0
	}

	idx := 0
	for i, l := range levels {
		if points >= l.minPoints {
			idx = i
		}
	}

	info := LevelInfo{
		Name:      levels[idx].name,
		MinPoints: levels[idx].minPoints,
	}
	if idx < len(levels)-1 {
		next := levels[idx+1]
		info.NextLevel = next.name
		info.PointsToNext = next.minPoints - points
		span := next.minPoints - levels[idx].minPoints
		info.ProgressPercent = float64(points-levels[idx].minPoints) / float64(span) * 100
	} else {
		info.ProgressPercent = 100
	}
	return info
}
