package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/tessera/internal/ledger/domain"
	ledgerrepo "github.com/smallbiznis/tessera/internal/ledger/repository"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// -- Mocks --

type tenantMock struct {
	mock.Mock
}

func (m *tenantMock) GetConfig(ctx context.Context, tenantID snowflake.ID) (tenantdomain.Config, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(tenantdomain.Config), args.Error(1)
}

func (m *tenantMock) GetConfigBySlug(context.Context, string) (tenantdomain.Config, error) {
	return tenantdomain.Config{}, nil
}
func (m *tenantMock) Create(context.Context, tenantdomain.CreateTenantRequest) (tenantdomain.Config, error) {
	return tenantdomain.Config{}, nil
}
func (m *tenantMock) UpdateConfig(context.Context, snowflake.ID, tenantdomain.UpdateConfigRequest) (tenantdomain.Config, error) {
	return tenantdomain.Config{}, nil
}

// -- Helpers --

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := gdb.AutoMigrate(&domain.LedgerEntry{}); err != nil {
		t.Fatal(err)
	}
	return gdb
}

func newTestService(t *testing.T, tenants tenantdomain.Service) (domain.Service, *gorm.DB) {
	t.Helper()
	gdb := newTestDB(t)
	node, _ := snowflake.NewNode(1)
	svc := New(Params{
		DB:      gdb,
		Log:     zap.NewNop(),
		GenID:   node,
		Tenants: tenants,
		Repo:    ledgerrepo.Provide(),
	})
	return svc, gdb
}

func testConfig(tenantID snowflake.ID) tenantdomain.Config {
	return tenantdomain.Config{
		TenantID: tenantID,
		Slug:     "marmalade",
		Name:     "Marmalade",
		ActionPoints: map[string]int64{
			"video_completion": 10,
			"like":             1,
			"review":           5,
		},
		Tiers:           []tenantdomain.Tier{{Threshold: 100, DiscountPercent: 5}},
		StickerValidity: time.Hour,
	}
}

// -- Tests --

func TestAppend_ResolvesPointsFromConfig(t *testing.T) {
	node, _ := snowflake.NewNode(2)
	tenantID := node.Generate()

	tenants := new(tenantMock)
	tenants.On("GetConfig", mock.Anything, tenantID).Return(testConfig(tenantID), nil)

	svc, _ := newTestService(t, tenants)

	entry, err := svc.Append(context.Background(), domain.AppendRequest{
		TenantID:       tenantID,
		CustomerID:     "cust-1",
		ActionType:     "review",
		IdempotencyKey: "evt-1",
		OccurredAt:     time.Now(),
	})
	assert.NoError(t, err)
	assert.False(t, entry.Duplicate)
	assert.Equal(t, int64(5), entry.Points)

	total, err := svc.SumPoints(context.Background(), tenantID, "cust-1", nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestAppend_IdempotencyKeyReplay(t *testing.T) {
	node, _ := snowflake.NewNode(2)
	tenantID := node.Generate()

	tenants := new(tenantMock)
	tenants.On("GetConfig", mock.Anything, tenantID).Return(testConfig(tenantID), nil)

	svc, _ := newTestService(t, tenants)

	first, err := svc.Append(context.Background(), domain.AppendRequest{
		TenantID:       tenantID,
		CustomerID:     "cust-1",
		ActionType:     "video_completion",
		IdempotencyKey: "evt-42",
		OccurredAt:     time.Now(),
	})
	assert.NoError(t, err)
	assert.False(t, first.Duplicate)

	replay, err := svc.Append(context.Background(), domain.AppendRequest{
		TenantID:       tenantID,
		CustomerID:     "cust-1",
		ActionType:     "video_completion",
		IdempotencyKey: "evt-42",
		OccurredAt:     time.Now(),
	})
	assert.NoError(t, err)
	assert.True(t, replay.Duplicate)
	assert.Equal(t, first.ID, replay.ID)

	// The replay must not have changed the balance.
	total, err := svc.SumPoints(context.Background(), tenantID, "cust-1", nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), total)
}

func TestAppend_SameKeyDifferentCustomers(t *testing.T) {
	node, _ := snowflake.NewNode(2)
	tenantID := node.Generate()

	tenants := new(tenantMock)
	tenants.On("GetConfig", mock.Anything, tenantID).Return(testConfig(tenantID), nil)

	svc, _ := newTestService(t, tenants)

	for _, customer := range []string{"cust-1", "cust-2"} {
		entry, err := svc.Append(context.Background(), domain.AppendRequest{
			TenantID:       tenantID,
			CustomerID:     customer,
			ActionType:     "like",
			IdempotencyKey: "shared-key",
			OccurredAt:     time.Now(),
		})
		assert.NoError(t, err)
		assert.False(t, entry.Duplicate, "key is scoped per customer, not global")
	}
}

func TestAppend_UnknownActionType(t *testing.T) {
	node, _ := snowflake.NewNode(2)
	tenantID := node.Generate()

	tenants := new(tenantMock)
	tenants.On("GetConfig", mock.Anything, tenantID).Return(testConfig(tenantID), nil)

	svc, _ := newTestService(t, tenants)

	_, err := svc.Append(context.Background(), domain.AppendRequest{
		TenantID:       tenantID,
		CustomerID:     "cust-1",
		ActionType:     "teleport",
		IdempotencyKey: "evt-1",
		OccurredAt:     time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownActionType)
}

func TestAppend_Validation(t *testing.T) {
	node, _ := snowflake.NewNode(2)
	tenantID := node.Generate()

	tenants := new(tenantMock)
	tenants.On("GetConfig", mock.Anything, tenantID).Return(testConfig(tenantID), nil)

	svc, _ := newTestService(t, tenants)

	tests := []struct {
		name    string
		req     domain.AppendRequest
		wantErr error
	}{
		{
			name: "empty customer",
			req: domain.AppendRequest{
				TenantID:       tenantID,
				CustomerID:     "  ",
				ActionType:     "like",
				IdempotencyKey: "k",
				OccurredAt:     time.Now(),
			},
			wantErr: domain.ErrInvalidCustomer,
		},
		{
			name: "empty action type",
			req: domain.AppendRequest{
				TenantID:       tenantID,
				CustomerID:     "cust-1",
				IdempotencyKey: "k",
				OccurredAt:     time.Now(),
			},
			wantErr: domain.ErrInvalidActionType,
		},
		{
			name: "empty idempotency key",
			req: domain.AppendRequest{
				TenantID:   tenantID,
				CustomerID: "cust-1",
				ActionType: "like",
				OccurredAt: time.Now(),
			},
			wantErr: domain.ErrInvalidIdempotencyKey,
		},
		{
			name: "zero occurred_at",
			req: domain.AppendRequest{
				TenantID:       tenantID,
				CustomerID:     "cust-1",
				ActionType:     "like",
				IdempotencyKey: "k",
			},
			wantErr: domain.ErrInvalidOccurredAt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Append(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSumPoints_SinceFilter(t *testing.T) {
	node, _ := snowflake.NewNode(2)
	tenantID := node.Generate()

	tenants := new(tenantMock)
	tenants.On("GetConfig", mock.Anything, tenantID).Return(testConfig(tenantID), nil)

	svc, _ := newTestService(t, tenants)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []string{"video_completion", "review", "like"} {
		_, err := svc.Append(context.Background(), domain.AppendRequest{
			TenantID:       tenantID,
			CustomerID:     "cust-1",
			ActionType:     action,
			IdempotencyKey: fmt.Sprintf("evt-%d", i),
			OccurredAt:     base.Add(time.Duration(i) * time.Hour),
		})
		assert.NoError(t, err)
	}

	total, err := svc.SumPoints(context.Background(), tenantID, "cust-1", nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(16), total)

	since := base.Add(time.Hour)
	recent, err := svc.SumPoints(context.Background(), tenantID, "cust-1", &since)
	assert.NoError(t, err)
	assert.Equal(t, int64(6), recent)
}

func TestHistory_CursorPagination(t *testing.T) {
	node, _ := snowflake.NewNode(2)
	tenantID := node.Generate()

	tenants := new(tenantMock)
	tenants.On("GetConfig", mock.Anything, tenantID).Return(testConfig(tenantID), nil)

	svc, _ := newTestService(t, tenants)

	for i := 0; i < 5; i++ {
		_, err := svc.Append(context.Background(), domain.AppendRequest{
			TenantID:       tenantID,
			CustomerID:     "cust-1",
			ActionType:     "like",
			IdempotencyKey: fmt.Sprintf("evt-%d", i),
			OccurredAt:     time.Now(),
		})
		assert.NoError(t, err)
	}

	var seen []snowflake.ID
	page := pagination.Pagination{PageSize: 2}
	pages := 0
	for {
		entries, info, err := svc.History(context.Background(), tenantID, "cust-1", page)
		assert.NoError(t, err)
		for _, entry := range entries {
			seen = append(seen, entry.ID)
		}
		pages++
		if !info.HasMore {
			break
		}
		assert.NotEmpty(t, info.NextPageToken)
		page.PageToken = info.NextPageToken
	}

	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 5)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, int64(seen[i-1]), int64(seen[i]), "newest first, no overlap across pages")
	}
}

func TestHistory_BadPageToken(t *testing.T) {
	node, _ := snowflake.NewNode(2)
	tenants := new(tenantMock)
	svc, _ := newTestService(t, tenants)

	_, _, err := svc.History(context.Background(), node.Generate(), "cust-1", pagination.Pagination{
		PageToken: "not-base64!",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}
