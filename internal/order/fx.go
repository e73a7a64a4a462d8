package order

import (
	"github.com/expediterhq/expediter/internal/order/repository"
	"github.com/expediterhq/expediter/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
