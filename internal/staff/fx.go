package staff

import (
	"github.com/expediterhq/expediter/internal/cache"
	"github.com/expediterhq/expediter/internal/staff/repository"
	"github.com/expediterhq/expediter/internal/staff/service"
	"go.uber.org/fx"
)

var Module = fx.Module("staff.service",
	fx.Provide(cache.NewStaffResolverCache),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
