package realtime

import (
	"context"

	"github.com/expediterhq/expediter/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       config.Config
	Log       *zap.Logger
}

// NewPublisher wires the hub directly for single-instance runs and through
// the redis bridge when a redis address is configured.
func NewPublisher(p Params, hub *Hub) Publisher {
	bridge := NewBridge(hub, p.Cfg.RedisAddr, p.Cfg.RedisPassword, p.Log)
	if bridge == nil {
		return hub
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			bridge.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			return bridge.Stop()
		},
	})
	return bridge
}

var Module = fx.Module("realtime",
	fx.Provide(NewHub),
	fx.Provide(NewPublisher),
)
