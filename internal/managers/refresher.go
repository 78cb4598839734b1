package managers

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/interviewdeck/internal/api"
	"github.com/abhisek/interviewdeck/internal/events"
)

// Refresher runs every manager's Poll on a fixed interval.
type Refresher struct {
	set      *Set
	interval time.Duration
	logger   *zap.Logger

	running     atomic.Bool
	unreachable atomic.Bool
}

// NewRefresher creates a Refresher for set.
func NewRefresher(set *Set, interval time.Duration, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		set:      set,
		interval: interval,
		logger:   logger.With(zap.String("module", "refresher")),
	}
}

// Run refreshes immediately, then every interval until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	r.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh polls every manager once and concurrently. A refresh that is
// still running when the next one is due makes the next one a no-op.
func (r *Refresher) Refresh(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	defer r.running.Store(false)

	polls := map[string]func(context.Context) error{
		"recording":     r.set.Recording.Poll,
		"transcription": r.set.Transcription.Poll,
		"screenshot":    r.set.Screenshot.Poll,
	}

	var transportErrs atomic.Int32
	var g errgroup.Group
	for name, poll := range polls {
		g.Go(func() error {
			err := poll(ctx)
			if err == nil || errors.Is(err, context.Canceled) {
				return nil
			}
			var tErr *api.TransportError
			if errors.As(err, &tErr) {
				transportErrs.Add(1)
			}
			r.logger.Debug("refresh failed", zap.String("poll", name), zap.Error(err))
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return
	}
	down := transportErrs.Load() == int32(len(polls))
	if down && !r.unreachable.Swap(true) {
		r.set.Shell.notify(events.PanelShell, events.LevelWarn, "Backend unreachable at %s.", r.set.Shell.client.BaseURL())
	}
	if !down && r.unreachable.Swap(false) {
		r.set.Shell.notify(events.PanelShell, events.LevelInfo, "Backend connection restored.")
	}
}
