package reconciler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/tessera/internal/clock"
	"github.com/smallbiznis/tessera/internal/config"
	stickerdomain "github.com/smallbiznis/tessera/internal/sticker/domain"
	stickerrepo "github.com/smallbiznis/tessera/internal/sticker/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestRunOnce_ExpiresOverdueStickers(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := gdb.AutoMigrate(&stickerdomain.Sticker{}); err != nil {
		t.Fatal(err)
	}

	node, _ := snowflake.NewNode(1)
	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	repo := stickerrepo.Provide()
	tenantID := node.Generate()

	insert := func(tierIndex int, code string, validity time.Duration, status stickerdomain.Status) snowflake.ID {
		sticker := &stickerdomain.Sticker{
			ID:              node.Generate(),
			TenantID:        tenantID,
			CustomerID:      "cust-1",
			TierIndex:       tierIndex,
			CycleSeq:        1,
			DiscountPercent: 5,
			Code:            code,
			Status:          status,
			IssuedAt:        fc.Now(),
			ExpiresAt:       fc.Now().Add(validity),
			CreatedAt:       fc.Now(),
		}
		if err := repo.Insert(context.Background(), gdb, sticker); err != nil {
			t.Fatal(err)
		}
		return sticker.ID
	}

	overdueID := insert(0, "MAR-OVERDUE2", time.Minute, stickerdomain.StatusActive)
	freshID := insert(1, "MAR-FRESH222", time.Hour, stickerdomain.StatusActive)
	consumedID := insert(2, "MAR-USED2222", time.Minute, stickerdomain.StatusConsumed)

	fc.Advance(10 * time.Minute)

	rec := New(Params{
		DB:    gdb,
		Log:   zap.NewNop(),
		Clock: fc,
		Repo:  repo,
		Cfg:   config.Config{ReconcileInterval: 60},
	})
	rec.RunOnce(context.Background())

	status := func(id snowflake.ID) stickerdomain.Status {
		var s string
		if err := gdb.Raw(`SELECT status FROM stickers WHERE id = ?`, id).Scan(&s).Error; err != nil {
			t.Fatal(err)
		}
		return stickerdomain.Status(s)
	}

	assert.Equal(t, stickerdomain.StatusExpired, status(overdueID))
	assert.Equal(t, stickerdomain.StatusActive, status(freshID))
	assert.Equal(t, stickerdomain.StatusConsumed, status(consumedID))
}
