package payment

import (
	"github.com/expediterhq/expediter/internal/config"
	"github.com/expediterhq/expediter/internal/payment/gateway"
	"github.com/expediterhq/expediter/internal/payment/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewGatewayRegistry(cfg config.Config, log *zap.Logger) *gateway.Registry {
	return gateway.NewRegistry(
		gateway.NewTerminalGateway(cfg.TerminalEndpoint, log),
		gateway.NewCashGateway(),
	)
}

var Module = fx.Module("payment.service",
	fx.Provide(NewGatewayRegistry),
	fx.Provide(service.New),
)
