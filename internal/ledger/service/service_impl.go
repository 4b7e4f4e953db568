package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/ledger/domain"
	"github.com/smallbiznis/tessera/internal/metrics"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Tenants tenantdomain.Service
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	tenants tenantdomain.Service
	repo    domain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("ledger.service"),
		genID:   p.GenID,
		tenants: p.Tenants,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

// Append resolves the points value from the tenant config snapshot at append
// time and stores it on the entry, so historical point values stay stable
// even if the tenant later changes its action mapping.
func (s *Service) Append(ctx context.Context, req domain.AppendRequest) (*domain.LedgerEntry, error) {
	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" {
		return nil, domain.ErrInvalidCustomer
	}

	actionType := strings.TrimSpace(req.ActionType)
	if actionType == "" {
		return nil, domain.ErrInvalidActionType
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		return nil, domain.ErrInvalidIdempotencyKey
	}

	if req.OccurredAt.IsZero() {
		return nil, domain.ErrInvalidOccurredAt
	}

	cfg, err := s.tenants.GetConfig(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	points, ok := cfg.PointsFor(actionType)
	if !ok {
		return nil, domain.ErrUnknownActionType
	}

	entry := &domain.LedgerEntry{
		ID:             s.genID.Generate(),
		TenantID:       req.TenantID,
		CustomerID:     customerID,
		ActionType:     actionType,
		Points:         points,
		IdempotencyKey: key,
		OccurredAt:     req.OccurredAt.UTC(),
		CreatedAt:      time.Now().UTC(),
	}

	inserted, err := s.repo.Insert(ctx, s.db, entry)
	if err != nil {
		return nil, err
	}
	if !inserted {
		original, err := s.repo.FindByIdempotencyKey(ctx, s.db, req.TenantID, customerID, key)
		if err != nil {
			return nil, err
		}
		if original == nil {
			// The conflicting row vanished between insert and read; entries
			// are never deleted, so treat as a transient store error.
			return nil, gorm.ErrRecordNotFound
		}
		original.Duplicate = true
		s.metrics.IncDuplicateEvent(cfg.Slug)
		s.log.Debug("idempotency key replayed",
			zap.String("tenant_id", req.TenantID.String()),
			zap.String("customer_id", customerID),
			zap.String("idempotency_key", key),
		)
		return original, nil
	}

	s.metrics.IncEntryAppended(cfg.Slug, actionType)
	s.log.Info("ledger entry appended",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("customer_id", customerID),
		zap.String("action_type", actionType),
		zap.Int64("points", points),
	)
	return entry, nil
}

func (s *Service) SumPoints(ctx context.Context, tenantID snowflake.ID, customerID string, since *time.Time) (int64, error) {
	return s.repo.SumPoints(ctx, s.db, tenantID, customerID, since)
}

func (s *Service) History(ctx context.Context, tenantID snowflake.ID, customerID string, page pagination.Pagination) ([]*domain.LedgerEntry, pagination.PageInfo, error) {
	limit := page.PageSize
	if limit <= 0 {
		limit = 50
	}

	var beforeID snowflake.ID
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, pagination.PageInfo{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, pagination.PageInfo{}, domain.ErrInvalidPageToken
		}
		beforeID = id
	}

	// Fetch one extra row to learn whether another page exists.
	entries, err := s.repo.List(ctx, s.db, tenantID, customerID, beforeID, limit+1)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	info := pagination.PageInfo{}
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		info.HasMore = true
		info.NextPageToken = token
	}
	return entries, info, nil
}
