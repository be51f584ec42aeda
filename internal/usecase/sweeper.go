package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const sweepLockName = "hold-sweeper"

// Sweeper periodically deletes expired holds. Hold activeness never
// depends on it; it only keeps the table small.
type Sweeper struct {
	holds    HoldService
	interval time.Duration
	opts     *options
	log      *zap.Logger

	group singleflight.Group

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(holds HoldService, interval time.Duration, log *zap.Logger, opts ...Option) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		holds:    holds,
		interval: interval,
		opts:     buildOptions(log, opts),
		log:      log.With(zap.String("service", "sweeper")),
	}
}

// Start launches the ticker loop. Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	ticker := s.opts.clock.NewTicker(s.interval)

	go func(done chan struct{}) {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
					s.log.Error("Hold sweep failed", zap.Error(err))
				}
			}
		}
	}(s.done)

	s.log.Info("Sweeper started", zap.Duration("interval", s.interval))
}

// Stop cancels the loop and waits for an in-progress sweep to return.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info("Sweeper stopped")
}

// Sweep runs one cleanup. Concurrent callers in this process share a single
// run; across instances the distributed lock lets only one of them sweep.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	v, err, _ := s.group.Do(sweepLockName, func() (any, error) {
		ok, err := s.opts.locker.TryLock(ctx, sweepLockName, s.interval)
		if err != nil {
			s.log.Warn("Sweep lock unavailable, sweeping locally", zap.Error(err))
		} else if !ok {
			s.log.Debug("Another instance is sweeping")
			return int64(0), nil
		} else {
			defer func() {
				if err := s.opts.locker.Unlock(context.WithoutCancel(ctx), sweepLockName); err != nil {
					s.log.Warn("Failed to release sweep lock", zap.Error(err))
				}
			}()
		}

		return s.holds.CleanupExpiredHolds(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}
