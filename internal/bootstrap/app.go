// Package bootstrap wires the fleet manager's concrete adapters into the
// application services via google/wire, mirroring the provider-set style
// used elsewhere in this codebase's ancestry.
package bootstrap

import (
	"context"

	"github.com/toolmesh/fleet/internal/application/supervisor"
	domainlogging "github.com/toolmesh/fleet/internal/domain/logging"
	"github.com/toolmesh/fleet/internal/infrastructure/config"
	"github.com/toolmesh/fleet/internal/infrastructure/eventbus"
	"github.com/toolmesh/fleet/internal/infrastructure/metrics"
)

// App is the fully wired fleet manager, ready to load configuration and
// supervise subordinates.
type App struct {
	Supervisor *supervisor.Supervisor
	Bus        *eventbus.Bus
	Logger     domainlogging.Logger
	Metrics    *metrics.Collector
	Loader     *config.Loader
}

// Run loads configPath, registers every configured subordinate, and starts
// the fleet. It blocks until ctx is cancelled, then shuts the fleet down
// gracefully.
func (a *App) Run(ctx context.Context, configPath string) error {
	servers, err := a.Loader.Load(configPath)
	if err != nil {
		return err
	}

	for _, cfg := range servers {
		if err := a.Supervisor.AddServer(cfg); err != nil {
			return err
		}
	}

	a.Supervisor.Start(ctx)
	<-ctx.Done()
	a.Supervisor.Shutdown(context.Background())
	return nil
}
