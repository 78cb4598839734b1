package managers

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/poller"
	"github.com/abhisek/interviewdeck/internal/store"
)

// JobLog is a poller.Observer that records job lifecycles in the audit
// store, the log and on the bus.
type JobLog struct {
	repo   store.EventRepo
	bus    *events.Bus
	logger *zap.Logger
}

// NewJobLog creates a JobLog. repo may be nil.
func NewJobLog(repo store.EventRepo, bus *events.Bus, logger *zap.Logger) *JobLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobLog{repo: repo, bus: bus, logger: logger.With(zap.String("module", "jobs"))}
}

var _ poller.Observer = (*JobLog)(nil)

func (j *JobLog) JobStarted(key string) {
	j.logger.Debug("job started", zap.String("key", key))
}

func (j *JobLog) JobFinished(key string, outcome poller.Outcome, elapsed time.Duration, err error) {
	kind, _, _ := strings.Cut(key, ":")
	data := store.JobEventData{
		Key:       key,
		Kind:      kind,
		Outcome:   string(outcome),
		ElapsedMs: elapsed.Milliseconds(),
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	j.logger.Info("job finished",
		zap.String("key", key),
		zap.String("outcome", data.Outcome),
		zap.Duration("elapsed", elapsed),
		zap.Error(err),
	)

	if j.repo != nil {
		if appendErr := j.repo.AppendJobEvent(context.Background(), data); appendErr != nil {
			j.logger.Warn("failed to record job event", zap.Error(appendErr))
		}
	}
	if j.bus != nil {
		j.bus.Emit(events.TopicJobFinished, events.JobFinished{
			Key:     key,
			Outcome: data.Outcome,
			Elapsed: elapsed,
			Err:     data.ErrorMessage,
		})
	}
}
