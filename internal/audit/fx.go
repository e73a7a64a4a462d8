package audit

import (
	"github.com/expediterhq/expediter/internal/audit/repository"
	"github.com/expediterhq/expediter/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
