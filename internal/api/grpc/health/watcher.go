// Package health reports readiness of the session stores over the gRPC health protocol.
package health

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/admin-session/internal/logger"
)

// ServiceName is the health service name of the session API.
const ServiceName = "session"

// Pinger is a dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check names a dependency probed by Watcher.
type Check struct {
	Name   string
	Pinger Pinger
}

// Watcher flips the serving status when any dependency becomes unreachable.
type Watcher struct {
	server   *health.Server
	checks   []Check
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger
}

// DefaultInterval replaces a non-positive probe interval.
const DefaultInterval = 15 * time.Second

// NewWatcher creates a Watcher. Without checks the service is always SERVING.
func NewWatcher(server *health.Server, interval time.Duration, logger *logger.Logger, checks ...Check) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	timeout := interval / 2
	if timeout <= 0 || timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &Watcher{server: server, checks: checks, interval: interval, timeout: timeout, logger: logger}
}

// Run probes immediately and then every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	w.Probe(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Probe(ctx)
		}
	}
}

// Probe pings every dependency once and updates the serving status.
func (w *Watcher) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for _, c := range w.checks {
		pingCtx, cancel := context.WithTimeout(ctx, w.timeout)
		err := c.Pinger.Ping(pingCtx)
		cancel()
		if err != nil {
			w.logger.Warn("Health watcher: dependency unreachable", "dependency", c.Name, "error", err.Error())
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	w.server.SetServingStatus("", status)
	w.server.SetServingStatus(ServiceName, status)
	return status
}
