package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/admin-session/internal/mocks"
)

func TestGRPCServer_AddressAndName(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), nil, ":0")
	assert.Equal(t, ":0", s.Address())
	assert.Equal(t, "grpc", s.Name())
}

func TestGRPCServer_Stop(t *testing.T) {
	hs := health.NewServer()
	s := NewGRPCServer(grpc.NewServer(), hs, ":0")

	err := s.Stop(context.Background())
	assert.NoError(t, err)

	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestGRPCServer_Start_ListenError(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), nil, ":0")
	sec := mocks.NewSecurityLayer(t)
	sec.On("Listen", "tcp", ":0").Return(nil, assert.AnError).Once()

	require.ErrorIs(t, s.Start(sec), assert.AnError)
}

func TestGRPCServer_Start_ListensAndServes(t *testing.T) {
	t.Parallel()

	gs := grpc.NewServer()
	srv := NewGRPCServer(gs, nil, ":0")
	sec := mocks.NewSecurityLayer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan struct{})
	sec.On("Listen", "tcp", ":0").Return(ln, nil).Run(func(args mock.Arguments) { close(done) })

	go func() { _ = srv.Start(sec) }()
	<-done
	time.Sleep(10 * time.Millisecond)
	_ = srv.Stop(context.Background())
}
