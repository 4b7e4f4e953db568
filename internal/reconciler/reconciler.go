package reconciler

import (
	"context"
	"time"

	"github.com/smallbiznis/tessera/internal/clock"
	"github.com/smallbiznis/tessera/internal/config"
	stickerdomain "github.com/smallbiznis/tessera/internal/sticker/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reconciler periodically persists active→expired for stickers past their
// expiry. It exists for reporting only: redemption classifies expiration
// lazily at read time and never depends on this sweep having run.
type Reconciler struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     stickerdomain.Repository
	interval time.Duration
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  stickerdomain.Repository
	Cfg   config.Config
}

func New(p Params) *Reconciler {
	return &Reconciler{
		db:       p.DB,
		log:      p.Log.Named("reconciler"),
		clock:    p.Clock,
		repo:     p.Repo,
		interval: time.Duration(p.Cfg.ReconcileInterval) * time.Second,
	}
}

func (r *Reconciler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

func (r *Reconciler) RunOnce(ctx context.Context) {
	count, err := r.repo.ExpireOverdue(ctx, r.db, r.clock.Now())
	if err != nil {
		r.log.Warn("expiration sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		r.log.Info("expired overdue stickers", zap.Int64("count", count))
	}
}

var Module = fx.Module("reconciler",
	fx.Provide(New),
	fx.Invoke(register),
)

func register(lc fx.Lifecycle, cfg config.Config, rec *Reconciler) {
	if cfg.ReconcileInterval <= 0 {
		return
	}

	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go rec.RunForever(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
