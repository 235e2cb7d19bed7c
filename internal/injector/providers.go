package injector

import (
	"github.com/zeusync/sharedgroups/internal/config"
	"github.com/zeusync/sharedgroups/internal/core/events/bus"
	"github.com/zeusync/sharedgroups/internal/core/observability/log"
	"github.com/zeusync/sharedgroups/internal/core/sharedgroup"
)

// App bundles the services wired for one tool run.
type App struct {
	Config  *config.Config
	Log     log.Log
	Bus     bus.EventBus
	Manager *sharedgroup.Manager
}

func ProvideLogger(c *config.Config) *log.Logger {
	return c.Logger()
}

func ProvideManager(l log.Log, b bus.EventBus) *sharedgroup.Manager {
	return sharedgroup.NewManager(sharedgroup.WithLogger(l), sharedgroup.WithEventBus(b))
}

func NewApp(c *config.Config, l log.Log, b bus.EventBus, m *sharedgroup.Manager) *App {
	return &App{Config: c, Log: l, Bus: b, Manager: m}
}
