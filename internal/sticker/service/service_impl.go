package service

import (
	"context"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/clock"
	"github.com/smallbiznis/tessera/internal/events"
	"github.com/smallbiznis/tessera/internal/metrics"
	"github.com/smallbiznis/tessera/internal/sticker/domain"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	"github.com/smallbiznis/tessera/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxCodeAttempts caps code regeneration after collisions. Exhausting it
// surfaces ErrIssuanceConflict instead of looping.
const maxCodeAttempts = 3

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Outbox  *events.Outbox   `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	outbox  *events.Outbox
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("sticker.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		outbox:  p.Outbox,
		metrics: p.Metrics,
	}
}

func (s *Service) Issue(ctx context.Context, cfg tenantdomain.Config, customerID string, tierIndex int, cycleSeq int64) (*domain.Sticker, error) {
	var sticker *domain.Sticker
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		issued, err := s.IssueInTx(ctx, tx, cfg, customerID, tierIndex, cycleSeq)
		if err != nil {
			return err
		}
		sticker = issued
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !sticker.Replayed {
		s.outbox.Publish(ctx, events.TypeStickerIssued, sticker.TenantID, sticker.CustomerID, events.StickerIssued{
			StickerID:       sticker.ID,
			TierIndex:       sticker.TierIndex,
			DiscountPercent: sticker.DiscountPercent,
			Code:            sticker.Code,
			ExpiresAt:       sticker.ExpiresAt,
		})
	}
	return sticker, nil
}

func (s *Service) IssueInTx(ctx context.Context, tx *gorm.DB, cfg tenantdomain.Config, customerID string, tierIndex int, cycleSeq int64) (*domain.Sticker, error) {
	if tierIndex < 0 || tierIndex >= len(cfg.Tiers) {
		return nil, domain.ErrInvalidTierIndex
	}
	tier := cfg.Tiers[tierIndex]

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		now := s.clock.Now()
		sticker := &domain.Sticker{
			ID:              s.genID.Generate(),
			TenantID:        cfg.TenantID,
			CustomerID:      customerID,
			TierIndex:       tierIndex,
			CycleSeq:        cycleSeq,
			DiscountPercent: tier.DiscountPercent,
			Code:            GenerateCode(cfg.Slug),
			Status:          domain.StatusActive,
			IssuedAt:        now,
			ExpiresAt:       now.Add(cfg.StickerValidity),
			CreatedAt:       now,
		}

		err := s.repo.Insert(ctx, tx, sticker)
		if err == nil {
			s.metrics.IncStickerIssued(cfg.Slug, strconv.Itoa(tierIndex))
			s.log.Info("sticker issued",
				zap.String("tenant_id", cfg.TenantID.String()),
				zap.String("customer_id", customerID),
				zap.Int("tier_index", tierIndex),
				zap.Int64("cycle_seq", cycleSeq),
				zap.String("code", sticker.Code),
			)
			return sticker, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}

		// A duplicate key is either an idempotent replay of this crossing or
		// a code collision; only the former has a row for this cycle.
		existing, findErr := s.repo.FindByCycle(ctx, tx, cfg.TenantID, customerID, tierIndex, cycleSeq)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil {
			existing.Replayed = true
			return existing, nil
		}

		s.log.Warn("sticker code collision, regenerating",
			zap.String("tenant_id", cfg.TenantID.String()),
			zap.Int("attempt", attempt+1),
		)
	}

	return nil, domain.ErrIssuanceConflict
}

func (s *Service) List(ctx context.Context, tenantID snowflake.ID, customerID string, limit int) ([]*domain.Sticker, error) {
	if limit <= 0 {
		limit = 50
	}
	stickers, err := s.repo.List(ctx, s.db, tenantID, customerID, limit)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for _, sticker := range stickers {
		sticker.Status = sticker.EffectiveStatus(now)
	}
	return stickers, nil
}
