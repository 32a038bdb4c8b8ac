package router

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dtroode/admin-session/internal/api/grpc/middleware"
	"github.com/dtroode/admin-session/internal/logger"
)

// Router represents a gRPC router for the operational surface of the session service.
type Router struct {
	health *health.Server
	logger *logger.Logger
}

// New creates new gRPC Router instance serving the given health server.
func New(healthServer *health.Server, logger *logger.Logger) *Router {
	return &Router{health: healthServer, logger: logger}
}

// Register registers the health and reflection services with logging and recovery interceptors.
//
// Returns the configured gRPC server instance.
func (r *Router) Register() *grpc.Server {
	recov := middleware.NewRecovery(r.logger)
	loggingOpts := []logging.Option{
		logging.WithLogOnEvents(logging.FinishCall),
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.UnaryServerInterceptor(middleware.InterceptorLogger(r.logger), loggingOpts...),
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandlerContext(recov.HandlePanic)),
		),
		grpc.ChainStreamInterceptor(
			logging.StreamServerInterceptor(middleware.InterceptorLogger(r.logger), loggingOpts...),
			recovery.StreamServerInterceptor(recovery.WithRecoveryHandlerContext(recov.HandlePanic)),
		),
	)
	healthpb.RegisterHealthServer(s, r.health)
	reflection.Register(s)

	return s
}
