package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/tessera/internal/clock"
	"github.com/smallbiznis/tessera/internal/events"
	"github.com/smallbiznis/tessera/internal/metrics"
	"github.com/smallbiznis/tessera/internal/redemption/domain"
	stickerdomain "github.com/smallbiznis/tessera/internal/sticker/domain"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    stickerdomain.Repository
	Outbox  *events.Outbox   `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    stickerdomain.Repository
	outbox  *events.Outbox
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("redemption.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		outbox:  p.Outbox,
		metrics: p.Metrics,
	}
}

func (s *Service) Redeem(ctx context.Context, cfg tenantdomain.Config, code string) (*domain.RedemptionResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, stickerdomain.ErrStickerNotFound
	}

	sticker, err := s.repo.FindByCode(ctx, s.db, cfg.TenantID, code)
	if err != nil {
		return nil, err
	}
	if sticker == nil {
		s.countOutcome(cfg.Slug, "not_found")
		return nil, stickerdomain.ErrStickerNotFound
	}

	now := s.clock.Now()
	switch sticker.EffectiveStatus(now) {
	case stickerdomain.StatusConsumed:
		s.countOutcome(cfg.Slug, "already_consumed")
		return nil, stickerdomain.ErrStickerAlreadyConsumed
	case stickerdomain.StatusExpired:
		// Lazy expiration: persist the transition best-effort so reporting
		// catches up, but the refusal never depends on the write landing.
		if sticker.Status == stickerdomain.StatusActive {
			if err := s.repo.MarkExpired(ctx, s.db, sticker.ID); err != nil {
				s.log.Warn("failed to persist sticker expiration",
					zap.String("sticker_id", sticker.ID.String()),
					zap.Error(err),
				)
			}
		}
		s.countOutcome(cfg.Slug, "expired")
		return nil, stickerdomain.ErrStickerExpired
	}

	consumed, err := s.repo.Consume(ctx, s.db, sticker.ID, now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		// Lost the race: re-read to tell a concurrent consumption apart
		// from the clock crossing expires_at under us.
		current, err := s.repo.FindByCode(ctx, s.db, cfg.TenantID, code)
		if err != nil {
			return nil, err
		}
		if current != nil && current.Status == stickerdomain.StatusConsumed {
			s.countOutcome(cfg.Slug, "already_consumed")
			return nil, stickerdomain.ErrStickerAlreadyConsumed
		}
		s.countOutcome(cfg.Slug, "expired")
		return nil, stickerdomain.ErrStickerExpired
	}

	s.countOutcome(cfg.Slug, "success")
	s.log.Info("sticker redeemed",
		zap.String("tenant_id", cfg.TenantID.String()),
		zap.String("tenant", cfg.Slug),
		zap.String("customer_id", sticker.CustomerID),
		zap.String("code", code),
		zap.Int("discount_percent", sticker.DiscountPercent),
	)

	s.outbox.Publish(ctx, events.TypeStickerRedeemed, cfg.TenantID, sticker.CustomerID, events.StickerRedeemed{
		StickerID:       sticker.ID,
		DiscountPercent: sticker.DiscountPercent,
		Code:            sticker.Code,
		ConsumedAt:      now,
	})

	return &domain.RedemptionResult{
		StickerID:       sticker.ID,
		TenantID:        cfg.TenantID,
		CustomerID:      sticker.CustomerID,
		Code:            sticker.Code,
		DiscountPercent: sticker.DiscountPercent,
		ConsumedAt:      now,
	}, nil
}

// countOutcome labels the tenant by slug, matching the ledger and issuance
// counters.
func (s *Service) countOutcome(tenant, outcome string) {
	s.metrics.IncRedemption(tenant, outcome)
}
