package sticker

import (
	"github.com/smallbiznis/tessera/internal/sticker/repository"
	"github.com/smallbiznis/tessera/internal/sticker/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sticker.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
