package balance

import (
	"github.com/smallbiznis/tessera/internal/balance/repository"
	"github.com/smallbiznis/tessera/internal/balance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("balance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
