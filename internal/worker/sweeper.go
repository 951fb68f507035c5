package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Sweep finishes interrupted event request conversions.
type Sweep interface {
	SweepConvertedRequests(ctx context.Context) (*model.SweepResult, error)
}

// SweeperArgs contains the mandatory arguments of a Sweeper.
type SweeperArgs struct {
	Sweep    Sweep
	Interval time.Duration
}

// NewSweeper creates a new Sweeper.
func NewSweeper(args SweeperArgs) (*Sweeper, error) {
	if args.Sweep == nil {
		return nil, errors.New("sweep is nil")
	}
	if args.Interval <= 0 {
		return nil, errors.New("sweep interval must be positive")
	}
	return &Sweeper{sweep: args.Sweep, interval: args.Interval}, nil
}

// Sweeper runs the recovery sweep periodically.
type Sweeper struct {
	sweep    Sweep
	interval time.Duration
}

// Start sweeps once right away and then on every tick until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.WithField("interval", s.interval.String()).Info("sweeper started")
	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep. Failures are logged; the next tick retries.
func (s *Sweeper) RunOnce(ctx context.Context) {
	res, err := s.sweep.SweepConvertedRequests(ctx)
	if res != nil {
		metrics.ObserveSweep(res.Inspected, res.Removed)
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.WithError(err).Error("event request sweep failed")
		return
	}
	if res.Removed > 0 {
		log.WithField("inspected", res.Inspected).
			WithField("removed", res.Removed).
			Info("event request sweep completed")
	}
}
