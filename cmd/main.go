package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	grpchealth "google.golang.org/grpc/health"

	"github.com/dtroode/admin-session/internal/api/grpc/health"
	grpcRouter "github.com/dtroode/admin-session/internal/api/grpc/router"
	grpcServer "github.com/dtroode/admin-session/internal/api/grpc/server"
	httpctx "github.com/dtroode/admin-session/internal/api/http/context"
	httpRouter "github.com/dtroode/admin-session/internal/api/http/router"
	httpServer "github.com/dtroode/admin-session/internal/api/http/server"
	"github.com/dtroode/admin-session/internal/audit"
	"github.com/dtroode/admin-session/internal/config"
	"github.com/dtroode/admin-session/internal/logger"
	"github.com/dtroode/admin-session/internal/model"
	"github.com/dtroode/admin-session/internal/password"
	"github.com/dtroode/admin-session/internal/repository/memory"
	"github.com/dtroode/admin-session/internal/repository/postgres"
	redisrepo "github.com/dtroode/admin-session/internal/repository/redis"
	"github.com/dtroode/admin-session/internal/server"
	"github.com/dtroode/admin-session/internal/service"
	"github.com/dtroode/admin-session/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig(".env")
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, logger.WithFormat(cfg.LogFormat))

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	checks := []health.Check{{Name: "database", Pinger: db}}

	refreshTokenRepo, storeChecks, closeStore, err := newRefreshTokenStore(ctx, cfg, db)
	if err != nil {
		logger.Fatal("failed to initialize refresh token store", "error", err, "store", cfg.Session.Store)
	}
	defer closeStore()
	checks = append(checks, storeChecks...)

	tokenManager, err := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if err != nil {
		logger.Fatal("failed to initialize token manager", "error", err)
	}

	auditSink, closeAudit := newAuditSink(cfg, logger)
	defer closeAudit()

	userRepo := postgres.NewUserRepository(db)
	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, logger)
	sessionService := service.NewSession(
		userRepo,
		password.NewVerifier(),
		tokenService,
		cfg.CookiePolicy(),
		logger,
		service.WithRotateOnRenew(cfg.Session.RotateOnRenew),
		service.WithAuditSink(auditSink),
	)

	var wg sync.WaitGroup

	if sweeper, ok := refreshTokenRepo.(model.ExpiredTokenSweeper); ok {
		janitor := service.NewJanitor(sweeper, cfg.Session.SweepInterval, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			janitor.Run(ctx)
		}()
	}

	healthServer := grpchealth.NewServer()
	watcher := health.NewWatcher(healthServer, cfg.GRPC.HealthInterval, logger, checks...)
	wg.Add(1)
	go func() {
		defer wg.Done()
		watcher.Run(ctx)
	}()

	httpHandler := httpRouter.New(
		sessionService,
		tokenService,
		httpctx.NewManager(),
		cfg.CookiePolicy(),
		cfg.HTTP.RequestTimeout,
		logger,
	).Register()

	servers := []model.Server{
		httpServer.NewHTTPServer(httpHandler, fmt.Sprintf(":%s", cfg.HTTP.Port)),
		grpcServer.NewGRPCServer(grpcRouter.New(healthServer, logger).Register(), healthServer, fmt.Sprintf(":%s", cfg.GRPC.Port)),
	}
	securityLayers := map[string]model.SecurityLayer{
		"http": server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName),
		"grpc": server.NewPlainListener(),
	}

	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "server", s.Name(), "address", s.Address())
			if err := s.Start(securityLayers[s.Name()]); err != nil {
				logger.Error("failed to start server", "server", s.Name(), "error", err)
				stop()
			}
		}(s)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "server", s.Name(), "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

// newRefreshTokenStore builds the store selected by SESSION_STORE together with its health checks.
func newRefreshTokenStore(ctx context.Context, cfg *config.Config, db *postgres.Connection) (model.RefreshTokenStore, []health.Check, func(), error) {
	switch cfg.Session.Store {
	case config.StoreRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		repo := redisrepo.NewRefreshTokenRepository(client, redisrepo.WithKeyPrefix(cfg.Redis.KeyPrefix))
		if err := repo.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, nil, err
		}
		return repo, []health.Check{{Name: "redis", Pinger: repo}}, func() { client.Close() }, nil
	case config.StorePostgres:
		return postgres.NewRefreshTokenRepository(db, nil), nil, func() {}, nil
	default:
		return memory.NewRefreshTokenRepository(nil), nil, func() {}, nil
	}
}

// newAuditSink publishes to AMQP when configured and falls back to the log otherwise.
func newAuditSink(cfg *config.Config, logger *logger.Logger) (model.AuditSink, func()) {
	if cfg.Audit.AMQPURL == "" {
		return audit.NewLogSink(logger), func() {}
	}

	sink, err := audit.DialAMQP(cfg.Audit.AMQPURL, cfg.Audit.Exchange)
	if err != nil {
		logger.Error("failed to connect audit broker, falling back to log sink", "error", err)
		return audit.NewLogSink(logger), func() {}
	}
	return sink, func() {
		if err := sink.Close(); err != nil {
			logger.Error("failed to close audit sink", "error", err)
		}
	}
}
