package redemption

import (
	"github.com/smallbiznis/tessera/internal/redemption/service"
	"go.uber.org/fx"
)

var Module = fx.Module("redemption.service",
	fx.Provide(service.New),
)
