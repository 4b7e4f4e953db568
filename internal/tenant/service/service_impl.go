package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/tenant/domain"
	"github.com/smallbiznis/tessera/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Defaults applied at onboarding when the request leaves them unset, matching
// the stock configuration handed to new sites.
var (
	defaultActionPoints = map[string]int64{
		"video_completion": 10,
		"like":             1,
		"comment":          2,
		"review":           5,
	}
	defaultTiers = []domain.Tier{
		{Threshold: 50, DiscountPercent: 5},
		{Threshold: 200, DiscountPercent: 10},
		{Threshold: 500, DiscountPercent: 15},
	}
	defaultStickerValidity = 30 * 24 * time.Hour
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) GetConfig(ctx context.Context, tenantID snowflake.ID) (domain.Config, error) {
	tenant, err := s.repo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return domain.Config{}, err
	}
	if tenant == nil || !tenant.Active {
		return domain.Config{}, domain.ErrConfigNotFound
	}
	return s.buildConfig(ctx, tenant)
}

func (s *Service) GetConfigBySlug(ctx context.Context, slug string) (domain.Config, error) {
	tenant, err := s.repo.FindBySlug(ctx, s.db, strings.TrimSpace(slug))
	if err != nil {
		return domain.Config{}, err
	}
	if tenant == nil || !tenant.Active {
		return domain.Config{}, domain.ErrConfigNotFound
	}
	return s.buildConfig(ctx, tenant)
}

func (s *Service) Create(ctx context.Context, req domain.CreateTenantRequest) (domain.Config, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !validSlug(slug) {
		return domain.Config{}, domain.ErrInvalidSlug
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Config{}, domain.ErrInvalidName
	}

	actionPoints := req.ActionPoints
	if len(actionPoints) == 0 {
		actionPoints = defaultActionPoints
	}
	if err := validateActionPoints(actionPoints); err != nil {
		return domain.Config{}, err
	}

	tiers := req.Tiers
	if len(tiers) == 0 {
		tiers = defaultTiers
	}
	if err := domain.ValidateTiers(tiers); err != nil {
		return domain.Config{}, err
	}

	validitySeconds := req.StickerValiditySeconds
	if validitySeconds == 0 {
		validitySeconds = int64(defaultStickerValidity / time.Second)
	}
	if validitySeconds < 0 {
		return domain.Config{}, domain.ErrInvalidValidity
	}

	now := time.Now().UTC()
	tenant := domain.Tenant{
		ID:                     s.genID.Generate(),
		Slug:                   slug,
		Name:                   name,
		StickerValiditySeconds: validitySeconds,
		Metadata:               datatypes.JSONMap{},
		Active:                 true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx,
			&tenant,
			s.buildActions(tenant.ID, actionPoints, now),
			s.buildTiers(tenant.ID, tiers, now),
		)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Config{}, domain.ErrTenantExists
		}
		return domain.Config{}, err
	}

	s.log.Info("tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", slug),
	)

	return domain.Config{
		TenantID:        tenant.ID,
		Slug:            slug,
		Name:            name,
		ActionPoints:    actionPoints,
		Tiers:           tiers,
		StickerValidity: time.Duration(validitySeconds) * time.Second,
	}, nil
}

func (s *Service) UpdateConfig(ctx context.Context, tenantID snowflake.ID, req domain.UpdateConfigRequest) (domain.Config, error) {
	tenant, err := s.repo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return domain.Config{}, err
	}
	if tenant == nil || !tenant.Active {
		return domain.Config{}, domain.ErrConfigNotFound
	}

	if req.ActionPoints != nil {
		if err := validateActionPoints(req.ActionPoints); err != nil {
			return domain.Config{}, err
		}
	}
	if req.Tiers != nil {
		if err := domain.ValidateTiers(req.Tiers); err != nil {
			return domain.Config{}, err
		}
	}
	if req.StickerValiditySeconds < 0 {
		return domain.Config{}, domain.ErrInvalidValidity
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if name := strings.TrimSpace(req.Name); name != "" {
			tenant.Name = name
		}
		if req.StickerValiditySeconds > 0 {
			tenant.StickerValiditySeconds = req.StickerValiditySeconds
		}
		tenant.UpdatedAt = now
		if err := s.repo.UpdateTenant(ctx, tx, tenant); err != nil {
			return err
		}
		if req.ActionPoints != nil {
			if err := s.repo.ReplaceActions(ctx, tx, tenant.ID, s.buildActions(tenant.ID, req.ActionPoints, now)); err != nil {
				return err
			}
		}
		if req.Tiers != nil {
			if err := s.repo.ReplaceTiers(ctx, tx, tenant.ID, s.buildTiers(tenant.ID, req.Tiers, now)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Config{}, err
	}

	s.log.Info("tenant config updated", zap.String("tenant_id", tenant.ID.String()))
	return s.buildConfig(ctx, tenant)
}

func (s *Service) buildConfig(ctx context.Context, tenant *domain.Tenant) (domain.Config, error) {
	actions, err := s.repo.Actions(ctx, s.db, tenant.ID)
	if err != nil {
		return domain.Config{}, err
	}
	tierRows, err := s.repo.Tiers(ctx, s.db, tenant.ID)
	if err != nil {
		return domain.Config{}, err
	}

	actionPoints := make(map[string]int64, len(actions))
	for _, action := range actions {
		actionPoints[action.ActionType] = action.Points
	}

	tiers := make([]domain.Tier, 0, len(tierRows))
	for _, row := range tierRows {
		tiers = append(tiers, domain.Tier{
			Threshold:       row.Threshold,
			DiscountPercent: row.DiscountPercent,
		})
	}
	if err := domain.ValidateTiers(tiers); err != nil {
		s.log.Error("stored tier table violates invariant",
			zap.String("tenant_id", tenant.ID.String()),
		)
		return domain.Config{}, err
	}

	return domain.Config{
		TenantID:        tenant.ID,
		Slug:            tenant.Slug,
		Name:            tenant.Name,
		ActionPoints:    actionPoints,
		Tiers:           tiers,
		StickerValidity: time.Duration(tenant.StickerValiditySeconds) * time.Second,
	}, nil
}

func (s *Service) buildActions(tenantID snowflake.ID, actionPoints map[string]int64, now time.Time) []domain.TenantAction {
	actions := make([]domain.TenantAction, 0, len(actionPoints))
	for actionType, points := range actionPoints {
		actions = append(actions, domain.TenantAction{
			ID:         s.genID.Generate(),
			TenantID:   tenantID,
			ActionType: actionType,
			Points:     points,
			CreatedAt:  now,
		})
	}
	return actions
}

func (s *Service) buildTiers(tenantID snowflake.ID, tiers []domain.Tier, now time.Time) []domain.TenantTier {
	rows := make([]domain.TenantTier, 0, len(tiers))
	for i, tier := range tiers {
		rows = append(rows, domain.TenantTier{
			ID:              s.genID.Generate(),
			TenantID:        tenantID,
			Position:        i,
			Threshold:       tier.Threshold,
			DiscountPercent: tier.DiscountPercent,
			CreatedAt:       now,
		})
	}
	return rows
}

func validateActionPoints(actionPoints map[string]int64) error {
	for actionType, points := range actionPoints {
		if strings.TrimSpace(actionType) == "" {
			return domain.ErrInvalidActionType
		}
		if points <= 0 {
			return domain.ErrInvalidPoints
		}
	}
	return nil
}

func validSlug(slug string) bool {
	if slug == "" || len(slug) > 50 {
		return false
	}
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}
