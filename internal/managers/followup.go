package managers

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/interviewdeck/internal/api"
	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/model"
	"github.com/abhisek/interviewdeck/internal/poller"
	"github.com/abhisek/interviewdeck/internal/state"
)

// FollowupPollKey returns the poll registration key for a follow-up job.
// Providers whose results are keyed by id poll under the id.
func FollowupPollKey(storageKey string, p api.FollowupProvider, id string) string {
	if p.ByID() {
		return "followup-id:" + id
	}
	return "followup:" + storageKey + ":" + string(p)
}

// Followup requests follow-up answers built from the recent transcript.
type Followup struct {
	base
	transcription *Transcription
}

// CanRequestFollowup reports whether a question and a previous solution
// exist and no job is already generating.
func (f *Followup) CanRequestFollowup() bool {
	return f.state.String(state.QuestionExtracted) != "" &&
		f.state.StorageKey() != "" &&
		f.state.CurrentSolution().Code() != "" &&
		!f.state.Bool(state.SolutionGenerating)
}

// Request starts a follow-up job with provider p and polls for its result.
func (f *Followup) Request(ctx context.Context, p api.FollowupProvider) error {
	question := f.state.String(state.QuestionExtracted)
	storageKey := f.state.StorageKey()
	code := f.state.CurrentSolution().Code()
	if question == "" || storageKey == "" || code == "" {
		f.notify(events.PanelFollowup, events.LevelWarn, "Missing required information: a follow-up needs a question and a previous solution.")
		return ErrMissingPrerequisite
	}

	transcript, err := f.transcription.Recent(ctx)
	if err != nil {
		f.notify(events.PanelFollowup, events.LevelError, "Failed to load recent transcript: %s", describe(err))
		return err
	}
	if transcript == "" {
		f.notify(events.PanelFollowup, events.LevelWarn, "No recent transcript to build a follow-up from.")
		return ErrMissingPrerequisite
	}

	// Results for composite-key providers accumulate under one prefix, so
	// remember the newest one that already exists and wait for a newer key.
	// Without that baseline an older result would complete the poll, so a
	// failed listing fails the request.
	var baseline string
	if !p.ByID() {
		idx, err := f.client.Solutions(ctx)
		if err != nil {
			f.logger.Warn("listing existing follow-ups failed", zap.String("key", storageKey), zap.Error(err))
			f.notify(events.PanelFollowup, events.LevelError, "Failed to start follow-up: %s", describe(err))
			return err
		}
		baseline, _ = poller.LatestKey(idx.Keys(), api.FollowupPrefix(storageKey, p))
	}

	id := uuid.NewString()
	f.state.Update(state.SolutionGenerating, true)
	err = f.client.StartFollowup(ctx, p, api.FollowupRequest{
		Problem:         question,
		Code:            code,
		ReactQuestion:   question,
		CurrentSolution: code,
		Transcript:      transcript,
		ScreenshotPath:  storageKey,
		StorageKey:      storageKey,
		FollowupID:      id,
	})
	if err != nil {
		f.state.Update(state.SolutionGenerating, false)
		f.notify(events.PanelFollowup, events.LevelError, "Failed to start follow-up: %s", describe(err))
		return err
	}

	f.notify(events.PanelFollowup, events.LevelInfo, "Generating follow-up with %s...", p)
	f.poll(storageKey, p, id, baseline)
	return nil
}

func (f *Followup) poll(storageKey string, p api.FollowupProvider, id, baseline string) {
	pollKey := FollowupPollKey(storageKey, p, id)
	poller.Watch(f.sched, pollKey,
		func(ctx context.Context) (model.FollowupSolution, bool, error) {
			idx, err := f.client.Solutions(ctx)
			if err != nil {
				return model.FollowupSolution{}, false, err
			}
			if p.ByID() {
				sol, ok := idx.FollowupByID(id)
				sol.Key = id
				return sol, ok, nil
			}
			key, ok := poller.LatestKey(idx.Keys(), api.FollowupPrefix(storageKey, p))
			if !ok || key == baseline {
				return model.FollowupSolution{}, false, nil
			}
			sol, err := api.DecodeFollowup(idx.Solutions[key])
			if err != nil {
				return model.FollowupSolution{}, false, err
			}
			sol.Key = key
			return sol, true, nil
		},
		poller.Handlers[model.FollowupSolution]{
			OnComplete: func(sol model.FollowupSolution) {
				sol.Provider = string(p)
				f.state.Update(state.SolutionFollowup, &sol)
				f.state.Update(state.SolutionGenerating, false)
				f.state.Update(state.UIActiveTab, state.TabFollowup)
				f.state.Bus().Emit(events.TopicFollowupAvailable, events.FollowupAvailable{Provider: string(p), Solution: sol})
				f.notify(events.PanelFollowup, events.LevelInfo, "Follow-up ready.")
			},
			OnError: func(err error) {
				f.logger.Warn("follow-up poll failed", zap.String("key", pollKey), zap.Error(err))
				f.state.Update(state.SolutionGenerating, false)
				f.notify(events.PanelFollowup, events.LevelError, "Error retrieving follow-up solution. Please try again.")
			},
			OnTimeout: func() {
				if !f.state.Bool(state.SolutionGenerating) {
					return
				}
				f.state.Update(state.SolutionGenerating, false)
				f.notify(events.PanelFollowup, events.LevelError, "Could not generate follow-up solution. Please try again.")
			},
		},
	)
}
