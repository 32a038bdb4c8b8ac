package middleware

import (
	"context"
	"log/slog"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/admin-session/internal/logger"
)

// InterceptorLogger adapts the application logger to go-grpc-middleware logging.
func InterceptorLogger(l *logger.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(lvl), "gRPC "+msg, fields...)
	})
}

// Recovery converts handler panics to codes.Internal and logs them.
type Recovery struct {
	logger *logger.Logger
}

// NewRecovery creates a new Recovery handler.
func NewRecovery(logger *logger.Logger) *Recovery {
	return &Recovery{logger: logger}
}

// HandlePanic is a recovery.RecoveryHandlerFuncContext.
func (r *Recovery) HandlePanic(ctx context.Context, p any) error {
	r.logger.ErrorContext(ctx, "gRPC handler panicked", "panic", p)
	return status.Error(codes.Internal, "internal error")
}
