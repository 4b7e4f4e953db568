package migration

import (
	"github.com/smallbiznis/tessera/internal/config"
	"github.com/smallbiznis/tessera/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if cfg.DBType != "postgres" {
			// Embedded migrations are written for postgres; other dialects
			// manage their schema out of band.
			log.Named("migrations").Warn("skipping embedded migrations",
				zap.String("db_type", cfg.DBType),
			)
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.DefaultTenantSlug != "" {
			return seed.EnsureDefaultTenant(conn, cfg.DefaultTenantSlug)
		}
		return nil
	}),
)
