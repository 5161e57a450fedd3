package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refetcher is what the refresher drives.
type Refetcher interface {
	Refetch(ctx context.Context) error
}

// Refresher runs dashboard refetch rounds on a cron schedule.
type Refresher struct {
	cron    *cron.Cron
	target  Refetcher
	timeout time.Duration
	logger  *zap.Logger
}

// NewRefresher parses schedule (standard 5-field cron syntax or a
// descriptor such as "@every 5m") and registers the refetch job.
func NewRefresher(schedule string, target Refetcher, timeout time.Duration, logger *zap.Logger) (*Refresher, error) {
	r := &Refresher{
		cron:    cron.New(),
		target:  target,
		timeout: timeout,
		logger:  logger,
	}
	if _, err := r.cron.AddFunc(schedule, r.tick); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Refresher) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.target.Refetch(ctx); err != nil {
		r.logger.Warn("scheduled dashboard refresh failed", zap.Error(err))
		return
	}
	r.logger.Debug("scheduled dashboard refresh done")
}

func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and returns a context done once a running job finishes.
func (r *Refresher) Stop() context.Context {
	return r.cron.Stop()
}
