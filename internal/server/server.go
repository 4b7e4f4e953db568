package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/tessera/internal/balance"
	balancedomain "github.com/smallbiznis/tessera/internal/balance/domain"
	"github.com/smallbiznis/tessera/internal/cache"
	"github.com/smallbiznis/tessera/internal/clock"
	"github.com/smallbiznis/tessera/internal/config"
	"github.com/smallbiznis/tessera/internal/events"
	"github.com/smallbiznis/tessera/internal/ledger"
	ledgerdomain "github.com/smallbiznis/tessera/internal/ledger/domain"
	"github.com/smallbiznis/tessera/internal/metrics"
	"github.com/smallbiznis/tessera/internal/redemption"
	redemptiondomain "github.com/smallbiznis/tessera/internal/redemption/domain"
	"github.com/smallbiznis/tessera/internal/sticker"
	stickerdomain "github.com/smallbiznis/tessera/internal/sticker/domain"
	"github.com/smallbiznis/tessera/internal/tenant"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	events.Module,
	metrics.Module,
	cache.Module,
	clock.Module,
	tenant.Module,
	ledger.Module,
	sticker.Module,
	balance.Module,
	redemption.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if reg := m.Registry(); reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	return r
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	tenantSvc     tenantdomain.Service
	ledgerSvc     ledgerdomain.Service
	balanceSvc    balancedomain.Service
	stickerSvc    stickerdomain.Service
	redemptionSvc redemptiondomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	TenantSvc     tenantdomain.Service
	LedgerSvc     ledgerdomain.Service
	BalanceSvc    balancedomain.Service
	StickerSvc    stickerdomain.Service
	RedemptionSvc redemptiondomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		tenantSvc:     p.TenantSvc,
		ledgerSvc:     p.LedgerSvc,
		balanceSvc:    p.BalanceSvc,
		stickerSvc:    p.StickerSvc,
		redemptionSvc: p.RedemptionSvc,
	}
}

func registerRoutes(s *Server) {
	s.RegisterAPIRoutes()
}

// RegisterAPIRoutes mounts the loyalty API. Tenant-scoped routes resolve the
// slug to a config snapshot once per request.
func (s *Server) RegisterAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/tenants", s.CreateTenant)

	scoped := v1.Group("/tenants/:slug")
	scoped.Use(s.TenantMiddleware())
	{
		scoped.GET("/config", s.GetTenantConfig)
		scoped.PUT("/config", s.UpdateTenantConfig)
		scoped.POST("/events", s.IngestEvent)
		scoped.POST("/redemptions", s.RedeemSticker)
		scoped.GET("/customers/:customer_id/balance", s.GetBalance)
		scoped.GET("/customers/:customer_id/history", s.GetHistory)
		scoped.GET("/customers/:customer_id/stickers", s.ListStickers)
	}
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
