package managers

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/interviewdeck/internal/api"
	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/model"
	"github.com/abhisek/interviewdeck/internal/poller"
	"github.com/abhisek/interviewdeck/internal/state"
)

// SolutionPollKey returns the poll registration key for a solution job.
func SolutionPollKey(storageKey string) string {
	return "solution:" + storageKey
}

// Solution requests generated solutions.
type Solution struct {
	base
}

// CanRequestSolution reports whether a question and its storage key exist
// and no job is already generating.
func (s *Solution) CanRequestSolution() bool {
	return s.state.String(state.QuestionExtracted) != "" &&
		s.state.StorageKey() != "" &&
		!s.state.Bool(state.SolutionGenerating)
}

// Request starts a solution job with provider p and polls for its result.
func (s *Solution) Request(ctx context.Context, p api.SolutionProvider) error {
	question := s.state.String(state.QuestionExtracted)
	storageKey := s.state.StorageKey()
	if question == "" || storageKey == "" {
		s.notify(events.PanelSolution, events.LevelWarn, "Capture a screenshot or extract a question first.")
		return ErrMissingPrerequisite
	}

	s.state.Update(state.SolutionGenerating, true)
	s.state.Update(state.SolutionCurrent, (*model.CombinedSolution)(nil))

	err := s.client.StartSolution(ctx, p, api.SolutionRequest{
		Question:       question,
		ScreenshotPath: storageKey,
		StorageKey:     storageKey,
	})
	if err != nil {
		s.state.Update(state.SolutionGenerating, false)
		s.notify(events.PanelSolution, events.LevelError, "Failed to start solution: %s", describe(err))
		return err
	}

	s.notify(events.PanelSolution, events.LevelInfo, "Generating solution with %s...", p)
	s.poll(storageKey)
	return nil
}

func (s *Solution) poll(storageKey string) {
	poller.Watch(s.sched, SolutionPollKey(storageKey),
		func(ctx context.Context) (*model.CombinedSolution, bool, error) {
			sol, err := s.client.SolutionStatus(ctx, storageKey)
			if err != nil {
				return nil, false, err
			}
			return sol, sol.Ready(), nil
		},
		poller.Handlers[*model.CombinedSolution]{
			OnComplete: func(sol *model.CombinedSolution) {
				s.state.Update(state.SolutionCurrent, sol)
				s.state.Update(state.SolutionGenerating, false)
				s.notify(events.PanelSolution, events.LevelInfo, "Solution ready.")
			},
			OnError: func(err error) {
				s.logger.Warn("solution poll failed", zap.String("key", storageKey), zap.Error(err))
				s.state.Update(state.SolutionGenerating, false)
				s.notify(events.PanelSolution, events.LevelError, "Error retrieving solution. Please try again.")
			},
			OnTimeout: func() {
				if !s.state.Bool(state.SolutionGenerating) {
					return
				}
				s.state.Update(state.SolutionGenerating, false)
				s.notify(events.PanelSolution, events.LevelError, "Could not generate solution. Please try again.")
			},
		},
	)
}
