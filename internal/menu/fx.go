package menu

import (
	"github.com/expediterhq/expediter/internal/menu/repository"
	"github.com/expediterhq/expediter/internal/menu/service"
	"go.uber.org/fx"
)

var Module = fx.Module("menu.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
