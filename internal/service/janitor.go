package service

import (
	"context"
	"time"

	"github.com/dtroode/admin-session/internal/logger"
	"github.com/dtroode/admin-session/internal/model"
)

// Janitor periodically removes expired refresh tokens from stores without native expiry.
type Janitor struct {
	sweeper  model.ExpiredTokenSweeper
	interval time.Duration
	logger   *logger.Logger
}

// DefaultSweepInterval is used when NewJanitor receives a non-positive interval.
const DefaultSweepInterval = 10 * time.Minute

func NewJanitor(sweeper model.ExpiredTokenSweeper, interval time.Duration, logger *logger.Logger) *Janitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Janitor{sweeper: sweeper, interval: interval, logger: logger}
}

// Run sweeps every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass and returns the number of removed records.
func (j *Janitor) Sweep(ctx context.Context) int64 {
	n, err := j.sweeper.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("Janitor: failed to delete expired refresh tokens", "error", err.Error())
		return 0
	}
	if n > 0 {
		j.logger.Info("Janitor: expired refresh tokens deleted", "count", n)
	}
	return n
}
