package bootstrap

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/toolmesh/fleet/internal/application/supervisor"
	"github.com/toolmesh/fleet/internal/domain/event"
	domainlogging "github.com/toolmesh/fleet/internal/domain/logging"
	"github.com/toolmesh/fleet/internal/domain/shared"
	"github.com/toolmesh/fleet/internal/infrastructure/logging"
	"github.com/toolmesh/fleet/internal/infrastructure/metrics"
)

// newZerologLogger provides the default structured logger.
func newZerologLogger() domainlogging.Logger {
	return logging.New(logging.Config{Level: domainlogging.LevelInfo})
}

// newRegistry provides the Prometheus registry the metrics collector
// registers against.
func newRegistry() prometheus.Registerer {
	return prometheus.NewRegistry()
}

// newClock provides the production clock.
func newClock() shared.Clock {
	return shared.DefaultClock
}

// newSupervisor wires the logger and metrics collector into the Supervisor
// so every Lifecycle it constructs logs and records telemetry through them.
func newSupervisor(publisher event.Publisher, clock shared.Clock, logger domainlogging.Logger, collector *metrics.Collector) *supervisor.Supervisor {
	return supervisor.New(publisher, clock,
		supervisor.WithLogger(logger),
		supervisor.WithRecorder(collector),
	)
}
