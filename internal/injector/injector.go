//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/sharedgroups/internal/config"
	"github.com/zeusync/sharedgroups/internal/core/events/bus"
	"github.com/zeusync/sharedgroups/internal/core/observability/log"
)

var CoreSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideManager,
	NewApp,
)

func InitializeApp(c *config.Config) *App {
	wire.Build(CoreSet)
	return nil
}
