package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"github.com/dtroode/admin-session/internal/model"
)

var _ model.Server = (*GRPCServer)(nil)

// GRPCServer wraps a gRPC server with address and lifecycle methods.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	addr   string
}

// NewGRPCServer creates a GRPCServer with given server and address.
// healthServer may be nil; when set it is switched to NOT_SERVING on Stop.
func NewGRPCServer(
	server *grpc.Server,
	healthServer *health.Server,
	addr string,
) *GRPCServer {
	return &GRPCServer{server: server, health: healthServer, addr: addr}
}

// Start starts serving on the configured address using the provided security layer.
func (s *GRPCServer) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.server.Serve(listener)
}

// Stop gracefully stops the server.
func (s *GRPCServer) Stop(_ context.Context) error {
	if s.health != nil {
		s.health.Shutdown()
	}
	s.server.GracefulStop()
	return nil
}

// Address returns the configured listen address.
func (s *GRPCServer) Address() string {
	return s.addr
}

func (s *GRPCServer) Name() string {
	return "grpc"
}
