// Package managers binds dashboard actions to backend jobs. Each manager
// owns one panel: it starts jobs, hands them to the poller and writes
// results into the state store.
package managers

import (
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/abhisek/interviewdeck/internal/api"
	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/poller"
	"github.com/abhisek/interviewdeck/internal/state"
)

// ErrMissingPrerequisite is returned when an action is attempted before the
// state it needs exists. A Notice has already been emitted.
var ErrMissingPrerequisite = errors.New("missing prerequisite")

// Deps are the collaborators shared by every manager.
type Deps struct {
	Client    *api.Client
	State     *state.Store
	Scheduler *poller.Scheduler
	Logger    *zap.Logger

	// Recording defaults sent with every start request.
	DeviceName    string
	RecordSeconds int
}

// Set holds one of each manager.
type Set struct {
	Recording     *Recording
	Transcription *Transcription
	Screenshot    *Screenshot
	Question      *Question
	Solution      *Solution
	Followup      *Followup
	Shell         *Shell
}

// New builds every manager over d.
func New(d Deps) *Set {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	b := base{
		client: d.Client,
		state:  d.State,
		sched:  d.Scheduler,
		logger: d.Logger,
	}
	transcription := &Transcription{base: b.named("transcription")}
	return &Set{
		Recording: &Recording{
			base:          b.named("recording"),
			deviceName:    d.DeviceName,
			recordSeconds: d.RecordSeconds,
		},
		Transcription: transcription,
		Screenshot: &Screenshot{
			base:      b.named("screenshot"),
			questions: cache.New(1*time.Hour, 10*time.Minute),
		},
		Question: &Question{base: b.named("question")},
		Solution: &Solution{base: b.named("solution")},
		Followup: &Followup{
			base:          b.named("followup"),
			transcription: transcription,
		},
		Shell: &Shell{base: b.named("shell")},
	}
}

type base struct {
	client *api.Client
	state  *state.Store
	sched  *poller.Scheduler
	logger *zap.Logger
}

func (b base) named(module string) base {
	b.logger = b.logger.With(zap.String("module", module))
	return b
}

func (b base) notify(panel events.Panel, level events.Level, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	switch level {
	case events.LevelError:
		b.logger.Error(text, zap.String("panel", string(panel)))
	case events.LevelWarn:
		b.logger.Warn(text, zap.String("panel", string(panel)))
	default:
		b.logger.Info(text, zap.String("panel", string(panel)))
	}
	b.state.Bus().Emit(events.TopicNotice, events.Notice{Panel: panel, Level: level, Text: text})
}

// describe renders an error for a Notice: the backend message for API
// errors, a short transport hint otherwise.
func describe(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var tErr *api.TransportError
	if errors.As(err, &tErr) {
		return "request to backend failed"
	}
	return err.Error()
}
