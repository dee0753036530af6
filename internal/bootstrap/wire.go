//go:build wireinject

package bootstrap

import (
	"github.com/google/wire"

	"github.com/toolmesh/fleet/internal/domain/event"
	"github.com/toolmesh/fleet/internal/infrastructure/config"
	"github.com/toolmesh/fleet/internal/infrastructure/eventbus"
	"github.com/toolmesh/fleet/internal/infrastructure/metrics"
)

// InitializeApp builds a fully wired App. This file is never compiled into
// the real binary (see the wireinject build tag above); `wire` generates
// wire_gen.go from it.
func InitializeApp() (*App, error) {
	wire.Build(
		eventbus.New,
		wire.Bind(new(event.Publisher), new(*eventbus.Bus)),
		newZerologLogger,
		newRegistry,
		metrics.NewCollector,
		config.NewLoader,
		newClock,
		newSupervisor,
		wire.Struct(new(App), "*"),
	)
	return nil, nil
}
