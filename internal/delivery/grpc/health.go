package grpc

import (
	"context"
	"time"

	"movie_explorer/internal/storage"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name reported to grpc.health.v1 clients alongside the
// overall ("") status.
const ServiceName = "movie_explorer.MovieExplorer"

const probeKey = "movie-explorer-health-probe"

// HealthHandler reports SERVING while the storage backend answers reads.
type HealthHandler struct {
	server *health.Server
	store  storage.Backend
	log    *logrus.Logger
}

func NewHealthHandler(store storage.Backend, logger *logrus.Logger) *HealthHandler {
	h := &HealthHandler{
		server: health.NewServer(),
		store:  store,
		log:    logger,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register attaches the health service and reflection to srv.
func (h *HealthHandler) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, h.server)
	reflection.Register(srv)
}

// Probe reads a key from storage and updates the reported status.
func (h *HealthHandler) Probe(ctx context.Context) bool {
	if _, _, err := h.store.Get(ctx, probeKey); err != nil {
		h.log.Warnf("Health: Storage probe failed: %v", err)
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return false
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
	return true
}

// Watch probes every interval until ctx is done.
func (h *HealthHandler) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, interval)
			h.Probe(probeCtx)
			cancel()
		}
	}
}

// Shutdown flips every service to NOT_SERVING ahead of GracefulStop.
func (h *HealthHandler) Shutdown() {
	h.server.Shutdown()
}

func (h *HealthHandler) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}
