package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Sweeper interface {
	SweepOverdue(ctx context.Context) (int, error)
}

// Runner calls SweepOverdue once at start and then on every tick until ctx is done.
type Runner struct {
	svc      Sweeper
	interval time.Duration
	log      *zap.Logger
}

func NewRunner(svc Sweeper, interval time.Duration, log *zap.Logger) *Runner {
	return &Runner{
		svc:      svc,
		interval: interval,
		log:      log.Named("sweeper"),
	}
}

func (r *Runner) Run(ctx context.Context) error {
	if r.interval <= 0 {
		r.log.Info("sweeper disabled")
		return nil
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("sweeper stopped")
			return nil
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	n, err := r.svc.SweepOverdue(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.log.Error("sweep", zap.Error(err))
		}
		return
	}
	r.log.Debug("sweep", zap.Int("swept", n))
}
