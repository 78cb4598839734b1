// Package poller turns "start a job, then keep asking whether it is done"
// backends into completion callbacks. One scheduler loop serves every
// active job key.
package poller

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config holds poll timing.
type Config struct {
	// Interval is the time between checks of one key. Default: 2s.
	Interval time.Duration

	// Timeout bounds the life of one registration. Default: 60s.
	Timeout time.Duration

	// Resolution is how often Run ticks. Default: 250ms.
	Resolution time.Duration
}

// DefaultConfig returns the standard poll timing.
func DefaultConfig() Config {
	return Config{
		Interval:   2 * time.Second,
		Timeout:    60 * time.Second,
		Resolution: 250 * time.Millisecond,
	}
}

// Outcome is how a registration ended.
type Outcome string

const (
	OutcomeCompleted  Outcome = "completed"
	OutcomeFailed     Outcome = "failed"
	OutcomeTimedOut   Outcome = "timed_out"
	OutcomeCancelled  Outcome = "cancelled"
	OutcomeSuperseded Outcome = "superseded"
)

// Observer is told about registration lifecycles.
type Observer interface {
	JobStarted(key string)
	JobFinished(key string, outcome Outcome, elapsed time.Duration, err error)
}

// Job describes one poll. Check reports done=true once the result is in
// place. The callbacks run one at a time, after the registration has been
// removed.
type Job struct {
	Check      func(ctx context.Context) (done bool, err error)
	OnComplete func()
	OnError    func(err error)
	OnTimeout  func()
}

type registration struct {
	gen       uint64
	job       Job
	started   time.Time
	nextCheck time.Time
	deadline  time.Time
	checking  bool
}

// Scheduler owns every active registration.
type Scheduler struct {
	cfg      Config
	now      func() time.Time
	logger   *zap.Logger
	observer Observer

	mu   sync.Mutex
	gen  uint64
	jobs map[string]*registration

	// cbMu serializes callbacks and orders them against Start, Cancel and
	// CancelAll. It is taken before mu.
	cbMu sync.Mutex
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithObserver attaches a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

// New creates a Scheduler. Zero Config fields take their defaults.
func New(cfg Config, opts ...Option) *Scheduler {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Resolution <= 0 {
		cfg.Resolution = def.Resolution
	}
	s := &Scheduler{
		cfg:    cfg,
		now:    time.Now,
		logger: zap.NewNop(),
		jobs:   make(map[string]*registration),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Config returns the scheduler's timing.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Start registers job under key. An existing registration for key is
// removed first and its in-flight check, if any, is discarded. Start waits
// for a callback that is being delivered, so callbacks must not call Start,
// Cancel or CancelAll themselves.
//
// The first check happens one Interval after Start, not immediately.
func (s *Scheduler) Start(key string, job Job) {
	now := s.now()

	s.cbMu.Lock()
	s.mu.Lock()
	prev, superseded := s.jobs[key]
	s.gen++
	s.jobs[key] = &registration{
		gen:       s.gen,
		job:       job,
		started:   now,
		nextCheck: now.Add(s.cfg.Interval),
		deadline:  now.Add(s.cfg.Timeout),
	}
	s.mu.Unlock()
	s.cbMu.Unlock()

	if superseded {
		s.finished(key, OutcomeSuperseded, now.Sub(prev.started), nil)
	}
	s.logger.Debug("poll started", zap.String("key", key))
	if s.observer != nil {
		s.observer.JobStarted(key)
	}
}

// Cancel removes the registration for key without calling any callback.
func (s *Scheduler) Cancel(key string) bool {
	s.cbMu.Lock()
	s.mu.Lock()
	reg, ok := s.jobs[key]
	delete(s.jobs, key)
	s.mu.Unlock()
	s.cbMu.Unlock()

	if ok {
		s.finished(key, OutcomeCancelled, s.now().Sub(reg.started), nil)
	}
	return ok
}

// CancelAll removes every registration and returns how many there were.
// A callback being delivered is allowed to finish first; once CancelAll
// returns, no callback of a removed registration runs.
func (s *Scheduler) CancelAll() int {
	s.cbMu.Lock()
	s.mu.Lock()
	old := s.jobs
	s.jobs = make(map[string]*registration)
	s.mu.Unlock()
	s.cbMu.Unlock()

	now := s.now()
	for key, reg := range old {
		s.finished(key, OutcomeCancelled, now.Sub(reg.started), nil)
	}
	return len(old)
}

// Active reports whether key has a registration.
func (s *Scheduler) Active(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[key]
	return ok
}

// Len returns the number of registrations.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Keys returns the registered keys, sorted.
func (s *Scheduler) Keys() []string {
	s.mu.Lock()
	keys := make([]string, 0, len(s.jobs))
	for k := range s.jobs {
		keys = append(keys, k)
	}
	s.mu.Unlock()
	slices.Sort(keys)
	return keys
}

// Run ticks every Resolution until ctx is done. Checks run in the
// background, so a slow check delays neither other keys nor deadlines.
// Run returns once the checks it started have returned.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Resolution)
	defer ticker.Stop()

	var inflight errgroup.Group
	defer inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.dispatch(ctx, s.now(), &inflight)
		}
	}
}

// Tick is one step of Run at time now. Unlike Run it waits for the checks
// it started, and for their callbacks.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	var g errgroup.Group
	s.dispatch(ctx, now, &g)
	_ = g.Wait()
}

type expiry struct {
	key string
	gen uint64
}

// dispatch expires registrations past their deadline and starts the
// checks that are due. A deadline reached on the same tick as a check
// wins. A key with a check still in flight is not checked again.
func (s *Scheduler) dispatch(ctx context.Context, now time.Time, g *errgroup.Group) {
	var expired []expiry

	s.mu.Lock()
	for key, reg := range s.jobs {
		if !now.Before(reg.deadline) {
			expired = append(expired, expiry{key: key, gen: reg.gen})
			continue
		}
		if reg.checking || now.Before(reg.nextCheck) {
			continue
		}
		reg.checking = true
		reg.nextCheck = now.Add(s.cfg.Interval)
		g.Go(func() error {
			done, err := reg.job.Check(ctx)
			s.resume(key, reg.gen, done, err)
			return nil
		})
	}
	s.mu.Unlock()

	for _, e := range expired {
		s.settle(e.key, e.gen, OutcomeTimedOut, nil)
	}
}

// resume applies one check result.
func (s *Scheduler) resume(key string, gen uint64, done bool, err error) {
	switch {
	case err != nil:
		s.settle(key, gen, OutcomeFailed, err)
	case done:
		s.settle(key, gen, OutcomeCompleted, nil)
	default:
		s.mu.Lock()
		if reg, ok := s.jobs[key]; ok && reg.gen == gen {
			reg.checking = false
		}
		s.mu.Unlock()
	}
}

// settle ends registration gen of key with outcome. A registration that
// was superseded or cancelled in the meantime is dropped without calling
// back. The observer hears about the outcome after the callback returned.
func (s *Scheduler) settle(key string, gen uint64, outcome Outcome, err error) {
	reg, ok := s.deliver(key, gen, outcome, err)
	if !ok {
		s.logger.Debug("stale poll result dropped", zap.String("key", key))
		return
	}
	s.logger.Debug("poll "+string(outcome), zap.String("key", key), zap.Error(err))
	s.finished(key, outcome, s.now().Sub(reg.started), err)
}

// deliver removes the registration and runs its callback while holding
// cbMu, the lock Start and the cancel methods take before they remove
// anything. Removal and delivery are therefore one step for them.
func (s *Scheduler) deliver(key string, gen uint64, outcome Outcome, err error) (*registration, bool) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()

	s.mu.Lock()
	reg, ok := s.jobs[key]
	if !ok || reg.gen != gen {
		s.mu.Unlock()
		return nil, false
	}
	delete(s.jobs, key)
	s.mu.Unlock()

	job := reg.job
	switch {
	case outcome == OutcomeCompleted && job.OnComplete != nil:
		job.OnComplete()
	case outcome == OutcomeFailed && job.OnError != nil:
		job.OnError(err)
	case outcome == OutcomeTimedOut && job.OnTimeout != nil:
		job.OnTimeout()
	}
	return reg, true
}

func (s *Scheduler) finished(key string, outcome Outcome, elapsed time.Duration, err error) {
	if s.observer != nil {
		s.observer.JobFinished(key, outcome, elapsed, err)
	}
}
