package managers

import (
	"context"
	"slices"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/abhisek/interviewdeck/internal/api"
	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/model"
	"github.com/abhisek/interviewdeck/internal/state"
)

// Screenshot manages captures and the screenshot selection.
type Screenshot struct {
	base

	// questions caches extracted question text by screenshot path.
	questions *cache.Cache
}

// Capture takes a screenshot and extracts its question with provider p.
// The new screenshot becomes the current one.
func (s *Screenshot) Capture(ctx context.Context, p api.CaptureProvider) error {
	res, err := s.client.Capture(ctx, p, api.CaptureRequest{
		QuestionType: p.QuestionType(),
		Notes:        s.state.String(state.QuestionNotes),
	})
	if err != nil {
		s.notify(events.PanelScreenshot, events.LevelError, "Screenshot capture failed: %s", describe(err))
		return err
	}

	shot := res.Screenshot
	items := s.state.Screenshots()
	if !slices.ContainsFunc(items, func(it model.Screenshot) bool { return it.Path == shot.Path }) {
		items = append(items, shot)
		s.state.Update(state.ScreenshotItems, items)
	}
	s.state.Update(state.ScreenshotManualSelected, false)
	s.state.Update(state.ScreenshotCurrentPath, shot.Path)
	s.state.Update(state.QuestionType, p.QuestionType())
	s.state.Update(state.SolutionCurrent, (*model.CombinedSolution)(nil))

	if res.ExtractedQuestion != "" {
		s.questions.Set(shot.Path, res.ExtractedQuestion, cache.DefaultExpiration)
	}
	s.state.Update(state.QuestionExtracted, res.ExtractedQuestion)

	s.notify(events.PanelScreenshot, events.LevelInfo, "Captured %s.", shot.Filename())
	return nil
}

// Select makes path the current screenshot, loads its extracted question
// and any solution already stored for it.
func (s *Screenshot) Select(ctx context.Context, path string) error {
	s.state.Update(state.ScreenshotManualSelected, true)
	s.state.Update(state.ScreenshotCurrentPath, path)
	s.state.Update(state.SolutionCurrent, (*model.CombinedSolution)(nil))

	question, err := s.question(ctx, path)
	if err != nil {
		s.notify(events.PanelScreenshot, events.LevelWarn, "Could not load question for %s: %s", model.Filename(path), describe(err))
	}
	if s.state.String(state.ScreenshotCurrentPath) != path {
		return nil // selection moved on while we waited
	}
	s.state.Update(state.QuestionExtracted, question)

	lookup, err := s.client.SolutionForFile(ctx, model.Filename(path))
	if err != nil {
		s.logger.Debug("no stored solution", zap.String("path", path), zap.Error(err))
		return nil
	}
	if s.state.String(state.ScreenshotCurrentPath) != path {
		return nil
	}
	if lookup.Ready() {
		sol := lookup.CombinedSolution
		s.state.Update(state.SolutionCurrent, &sol)
	}
	return nil
}

// SelectOffset moves the selection by delta within the screenshot list.
func (s *Screenshot) SelectOffset(ctx context.Context, delta int) error {
	items := s.state.Screenshots()
	if len(items) == 0 {
		return nil
	}
	current := s.state.String(state.ScreenshotCurrentPath)
	i := slices.IndexFunc(items, func(it model.Screenshot) bool { return it.Path == current })
	if i < 0 {
		i = len(items) - 1
	} else {
		i = min(max(i+delta, 0), len(items)-1)
	}
	return s.Select(ctx, items[i].Path)
}

func (s *Screenshot) question(ctx context.Context, path string) (string, error) {
	if q, ok := s.questions.Get(path); ok {
		return q.(string), nil
	}
	q, err := s.client.ExtractedQuestion(ctx, model.Filename(path))
	if err != nil {
		return "", err
	}
	if q != "" {
		s.questions.Set(path, q, cache.DefaultExpiration)
	}
	return q, nil
}

// Poll refreshes the screenshot list. Unless the user pinned a selection,
// a newly listed screenshot becomes current and its extracted question is
// loaded once the backend has it.
func (s *Screenshot) Poll(ctx context.Context) error {
	list, err := s.client.Screenshots(ctx)
	if err != nil {
		return err
	}
	known := len(s.state.Screenshots())
	s.state.Update(state.ScreenshotItems, list)

	if s.state.Bool(state.ScreenshotManualSelected) || len(list) == 0 {
		return nil
	}

	current := s.state.String(state.ScreenshotCurrentPath)
	if current == "" || len(list) > known {
		latest := list[len(list)-1]
		if latest.Path != current {
			current = latest.Path
			s.state.Update(state.ScreenshotCurrentPath, current)
			if latest.QuestionType != "" {
				s.state.Update(state.QuestionType, latest.QuestionType)
			}
			s.state.Update(state.QuestionExtracted, "")
			s.state.Update(state.SolutionCurrent, (*model.CombinedSolution)(nil))
		}
	}

	if s.state.String(state.QuestionExtracted) != "" {
		return nil
	}
	if q, ok := s.questions.Get(current); ok {
		s.state.Update(state.QuestionExtracted, q.(string))
		return nil
	}
	questions, err := s.client.ExtractedQuestions(ctx)
	if err != nil {
		return err
	}
	q, ok := questions[current]
	if !ok || q == "" {
		return nil
	}
	s.questions.Set(current, q, cache.DefaultExpiration)
	if s.state.String(state.ScreenshotCurrentPath) == current && !s.state.Bool(state.ScreenshotManualSelected) {
		s.state.Update(state.QuestionExtracted, q)
	}
	return nil
}
