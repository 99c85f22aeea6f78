package bansweep

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type expiredDeactivator interface {
	DeactivateExpired(ctx context.Context) (int64, error)
}

type banCacheFlusher interface {
	FlushAll(ctx context.Context) error
}

// Job deactivates temporary bans whose expiry has passed. Ban reads
// treat expired rows as inactive anyway; the sweep keeps the table
// honest and drops stale cache entries.
type Job struct {
	bans     expiredDeactivator
	banCache banCacheFlusher
	interval time.Duration
	logger   *zap.Logger
}

func New(bans expiredDeactivator, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		bans:     bans,
		interval: interval,
		logger:   logger,
	}
}

func (j *Job) AttachBanCache(flusher banCacheFlusher) {
	j.banCache = flusher
}

func (j *Job) Run(ctx context.Context) error {
	if j.bans == nil {
		return nil
	}

	rows, err := j.bans.DeactivateExpired(ctx)
	if err != nil {
		return fmt.Errorf("deactivate expired bans: %w", err)
	}
	if rows == 0 {
		return nil
	}

	if j.banCache != nil {
		if flushErr := j.banCache.FlushAll(ctx); flushErr != nil {
			j.logger.Warn("flush ban cache failed", zap.Error(flushErr))
		}
	}

	j.logger.Info("expired bans deactivated", zap.Int64("count", rows))
	return nil
}

// RunLoop runs the sweep immediately, then on every tick until the
// context is cancelled.
func (j *Job) RunLoop(ctx context.Context) error {
	if err := j.Run(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				return err
			}
		}
	}
}
