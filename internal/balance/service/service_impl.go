package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/balance/domain"
	"github.com/smallbiznis/tessera/internal/cache"
	"github.com/smallbiznis/tessera/internal/clock"
	"github.com/smallbiznis/tessera/internal/events"
	ledgerdomain "github.com/smallbiznis/tessera/internal/ledger/domain"
	stickerdomain "github.com/smallbiznis/tessera/internal/sticker/domain"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxAggregateAttempts bounds retries when a concurrent aggregation for the
// same customer wins the cycle advance.
const maxAggregateAttempts = 3

var errCycleConflict = errors.New("cycle advanced concurrently")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Tenants    tenantdomain.Service
	LedgerRepo ledgerdomain.Repository
	Issuer     stickerdomain.Service
	Repo       domain.Repository
	Cache      *cache.BalanceCache `optional:"true"`
	Outbox     *events.Outbox      `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	tenants    tenantdomain.Service
	ledgerRepo ledgerdomain.Repository
	issuer     stickerdomain.Service
	repo       domain.Repository
	cache      *cache.BalanceCache
	outbox     *events.Outbox
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("balance.service"),
		clock:      p.Clock,
		tenants:    p.Tenants,
		ledgerRepo: p.LedgerRepo,
		issuer:     p.Issuer,
		repo:       p.Repo,
		cache:      p.Cache,
		outbox:     p.Outbox,
	}
}

// OnNewEntry walks the tenant's tier table against the recomputed balance.
// The whole read-walk-issue-advance sequence runs in one transaction so a
// crash or a lost cycle race leaves no partial issuance behind.
func (s *Service) OnNewEntry(ctx context.Context, entry *ledgerdomain.LedgerEntry) ([]*stickerdomain.Sticker, error) {
	cfg, err := s.tenants.GetConfig(ctx, entry.TenantID)
	if err != nil {
		return nil, err
	}
	if len(cfg.Tiers) == 0 {
		return nil, nil
	}

	var issued []*stickerdomain.Sticker
	for attempt := 0; attempt < maxAggregateAttempts; attempt++ {
		issued, err = s.aggregateOnce(ctx, cfg, entry.CustomerID)
		if err == nil {
			break
		}
		if !errors.Is(err, errCycleConflict) {
			return nil, err
		}
		s.log.Debug("cycle conflict, retrying aggregation",
			zap.String("tenant_id", entry.TenantID.String()),
			zap.String("customer_id", entry.CustomerID),
			zap.Int("attempt", attempt+1),
		)
	}
	if err != nil {
		return nil, domain.ErrAggregationConflict
	}

	s.cache.Invalidate(ctx, entry.TenantID, entry.CustomerID)

	for _, sticker := range issued {
		if sticker.Replayed {
			continue
		}
		s.outbox.Publish(ctx, events.TypeStickerIssued, sticker.TenantID, sticker.CustomerID, events.StickerIssued{
			StickerID:       sticker.ID,
			TierIndex:       sticker.TierIndex,
			DiscountPercent: sticker.DiscountPercent,
			Code:            sticker.Code,
			ExpiresAt:       sticker.ExpiresAt,
		})
	}
	return issued, nil
}

func (s *Service) aggregateOnce(ctx context.Context, cfg tenantdomain.Config, customerID string) ([]*stickerdomain.Sticker, error) {
	var issued []*stickerdomain.Sticker

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cycle, err := s.repo.GetOrCreateCycle(ctx, tx, cfg.TenantID, customerID)
		if err != nil {
			return err
		}

		lifetime, err := s.ledgerRepo.SumPoints(ctx, tx, cfg.TenantID, customerID, nil)
		if err != nil {
			return err
		}

		since := lifetime - cycle.PointsOffset
		crossed := crossedTiers(cfg.Tiers, since)
		if len(crossed) == 0 {
			return nil
		}

		for _, tierIndex := range crossed {
			sticker, err := s.issuer.IssueInTx(ctx, tx, cfg, customerID, tierIndex, cycle.CycleSeq)
			if err != nil {
				return err
			}
			issued = append(issued, sticker)
		}

		highest := cfg.Tiers[crossed[len(crossed)-1]].Threshold
		advanced, err := s.repo.AdvanceCycle(ctx, tx, cfg.TenantID, customerID, cycle.CycleSeq, cycle.PointsOffset+highest, s.clock.Now())
		if err != nil {
			return err
		}
		if !advanced {
			return errCycleConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// crossedTiers reports the indexes of every tier whose threshold is within
// pointsSince, ascending; a single bulk event may cross several at once.
func crossedTiers(tiers []tenantdomain.Tier, pointsSince int64) []int {
	var crossed []int
	for i, tier := range tiers {
		if tier.Threshold <= pointsSince {
			crossed = append(crossed, i)
		}
	}
	return crossed
}

func (s *Service) GetBalance(ctx context.Context, tenantID snowflake.ID, customerID string) (*domain.Balance, error) {
	if cached, ok := s.cache.Get(ctx, tenantID, customerID); ok {
		return cached, nil
	}

	cycle, err := s.repo.GetCycle(ctx, s.db, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	lifetime, err := s.ledgerRepo.SumPoints(ctx, s.db, tenantID, customerID, nil)
	if err != nil {
		return nil, err
	}

	cycleSeq := int64(1)
	offset := int64(0)
	if cycle != nil {
		cycleSeq = cycle.CycleSeq
		offset = cycle.PointsOffset
	}

	balance := &domain.Balance{
		TenantID:           tenantID,
		CustomerID:         customerID,
		LifetimePoints:     lifetime,
		PointsSinceSticker: lifetime - offset,
		CycleSeq:           cycleSeq,
		Level:              domain.LevelFor(lifetime),
	}

	s.cache.Set(ctx, balance)
	return balance, nil
}
