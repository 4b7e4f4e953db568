package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/tessera/internal/tenant/domain"
	tenantrepo "github.com/smallbiznis/tessera/internal/tenant/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := gdb.AutoMigrate(
		&domain.Tenant{},
		&domain.TenantAction{},
		&domain.TenantTier{},
	); err != nil {
		t.Fatal(err)
	}

	node, _ := snowflake.NewNode(1)
	return New(Params{
		DB:    gdb,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  tenantrepo.Provide(),
	})
}

func TestCreate_AppliesDefaults(t *testing.T) {
	svc := newTestService(t)

	cfg, err := svc.Create(context.Background(), domain.CreateTenantRequest{
		Slug: "Marmalade",
		Name: "Marmalade Shop",
	})
	assert.NoError(t, err)
	assert.Equal(t, "marmalade", cfg.Slug)
	assert.Equal(t, defaultActionPoints, cfg.ActionPoints)
	assert.Equal(t, defaultTiers, cfg.Tiers)
	assert.Equal(t, defaultStickerValidity, cfg.StickerValidity)
}

func TestCreate_DuplicateSlug(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateTenantRequest{Slug: "marmalade", Name: "First"})
	assert.NoError(t, err)

	_, err = svc.Create(context.Background(), domain.CreateTenantRequest{Slug: "marmalade", Name: "Second"})
	assert.ErrorIs(t, err, domain.ErrTenantExists)
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name    string
		req     domain.CreateTenantRequest
		wantErr error
	}{
		{
			name:    "empty slug",
			req:     domain.CreateTenantRequest{Name: "Shop"},
			wantErr: domain.ErrInvalidSlug,
		},
		{
			name:    "slug with spaces",
			req:     domain.CreateTenantRequest{Slug: "my shop", Name: "Shop"},
			wantErr: domain.ErrInvalidSlug,
		},
		{
			name:    "empty name",
			req:     domain.CreateTenantRequest{Slug: "shop"},
			wantErr: domain.ErrInvalidName,
		},
		{
			name: "non-increasing tiers",
			req: domain.CreateTenantRequest{
				Slug: "shop",
				Name: "Shop",
				Tiers: []domain.Tier{
					{Threshold: 100, DiscountPercent: 10},
					{Threshold: 200, DiscountPercent: 10},
				},
			},
			wantErr: domain.ErrInvalidTierTable,
		},
		{
			name: "non-positive action points",
			req: domain.CreateTenantRequest{
				Slug:         "shop",
				Name:         "Shop",
				ActionPoints: map[string]int64{"like": 0},
			},
			wantErr: domain.ErrInvalidPoints,
		},
		{
			name: "negative validity",
			req: domain.CreateTenantRequest{
				Slug:                   "shop",
				Name:                   "Shop",
				StickerValiditySeconds: -60,
			},
			wantErr: domain.ErrInvalidValidity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetConfigBySlug_Roundtrip(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateTenantRequest{
		Slug:         "marmalade",
		Name:         "Marmalade Shop",
		ActionPoints: map[string]int64{"like": 1, "review": 5},
		Tiers: []domain.Tier{
			{Threshold: 100, DiscountPercent: 5},
			{Threshold: 250, DiscountPercent: 10},
		},
		StickerValiditySeconds: 3600,
	})
	assert.NoError(t, err)

	cfg, err := svc.GetConfigBySlug(context.Background(), "marmalade")
	assert.NoError(t, err)
	assert.Equal(t, created.TenantID, cfg.TenantID)
	assert.Equal(t, created.ActionPoints, cfg.ActionPoints)
	assert.Equal(t, created.Tiers, cfg.Tiers)
	assert.Equal(t, time.Hour, cfg.StickerValidity)
}

func TestGetConfig_NotFound(t *testing.T) {
	svc := newTestService(t)

	node, _ := snowflake.NewNode(7)
	_, err := svc.GetConfig(context.Background(), node.Generate())
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)

	_, err = svc.GetConfigBySlug(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestUpdateConfig_ReplacesTiersAndActions(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateTenantRequest{
		Slug: "marmalade",
		Name: "Marmalade Shop",
	})
	assert.NoError(t, err)

	newTiers := []domain.Tier{
		{Threshold: 100, DiscountPercent: 5},
		{Threshold: 250, DiscountPercent: 10},
	}
	updated, err := svc.UpdateConfig(context.Background(), created.TenantID, domain.UpdateConfigRequest{
		Name:                   "Marmalade & Co",
		ActionPoints:           map[string]int64{"purchase": 20},
		Tiers:                  newTiers,
		StickerValiditySeconds: 7200,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Marmalade & Co", updated.Name)
	assert.Equal(t, map[string]int64{"purchase": 20}, updated.ActionPoints)
	assert.Equal(t, newTiers, updated.Tiers)
	assert.Equal(t, 2*time.Hour, updated.StickerValidity)

	// A fresh read sees the new snapshot.
	cfg, err := svc.GetConfig(context.Background(), created.TenantID)
	assert.NoError(t, err)
	assert.Equal(t, newTiers, cfg.Tiers)
}

func TestUpdateConfig_RejectsInvalidTiers(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateTenantRequest{
		Slug: "marmalade",
		Name: "Marmalade Shop",
	})
	assert.NoError(t, err)

	_, err = svc.UpdateConfig(context.Background(), created.TenantID, domain.UpdateConfigRequest{
		Tiers: []domain.Tier{
			{Threshold: 200, DiscountPercent: 10},
			{Threshold: 100, DiscountPercent: 5},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTierTable)

	// The stored config is untouched.
	cfg, err := svc.GetConfig(context.Background(), created.TenantID)
	assert.NoError(t, err)
	assert.Equal(t, defaultTiers, cfg.Tiers)
}

func TestValidSlug(t *testing.T) {
	assert.True(t, validSlug("marmalade"))
	assert.True(t, validSlug("my-shop-2"))
	assert.False(t, validSlug(""))
	assert.False(t, validSlug("My-Shop"))
	assert.False(t, validSlug("shop!"))
}
