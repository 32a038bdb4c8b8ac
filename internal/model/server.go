package model

import (
	"context"
	"net"
)

// SecurityLayer opens listeners for servers, plain or TLS.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a network server managed by cmd/main.go.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
	Name() string
}
