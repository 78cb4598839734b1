package managers

import (
	"context"
	"slices"

	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/model"
	"github.com/abhisek/interviewdeck/internal/state"
)

// DefaultTranscriptKey is the storage key used when the backend does not
// return one for a transcript question.
const DefaultTranscriptKey = "transcript_latest"

// QuestionTypes lists the selectable question types.
var QuestionTypes = []string{model.QuestionCoding, model.QuestionDesign, model.QuestionReact}

// Question manages the question panel.
type Question struct {
	base
}

// ExtractFromTranscript asks the backend for a question found in the recent
// transcript. The screenshot selection is cleared and pinned so the
// screenshot poll does not switch back to the latest capture.
func (q *Question) ExtractFromTranscript(ctx context.Context) error {
	res, err := q.client.ExtractFromTranscript(ctx)
	if err != nil {
		q.notify(events.PanelQuestion, events.LevelError, "Failed to extract question from transcript: %s", describe(err))
		return err
	}
	key := res.StorageKey
	if key == "" {
		key = DefaultTranscriptKey
	}
	q.state.Update(state.ScreenshotCurrentPath, "")
	q.state.Update(state.ScreenshotManualSelected, true)
	q.state.Update(state.QuestionStorageKey, key)
	q.state.Update(state.QuestionExtracted, res.ExtractedQuestion)
	q.state.Update(state.SolutionCurrent, (*model.CombinedSolution)(nil))
	q.notify(events.PanelQuestion, events.LevelInfo, "Question extracted from transcript.")
	return nil
}

// MarkQuestion records a new question with the selected type and notes.
func (q *Question) MarkQuestion(ctx context.Context) error {
	marked, err := q.client.MarkQuestion(ctx, q.state.String(state.QuestionType), q.state.String(state.QuestionNotes))
	if err != nil {
		q.notify(events.PanelQuestion, events.LevelError, "Failed to mark question: %s", describe(err))
		return err
	}
	q.state.Update(state.QuestionCurrent, marked)
	q.state.Update(state.QuestionNotes, "")
	q.notify(events.PanelQuestion, events.LevelInfo, "Question #%d marked.", marked.ID)
	return nil
}

// MarkFollowup attaches a follow-up to the marked question.
func (q *Question) MarkFollowup(ctx context.Context) error {
	if q.state.CurrentQuestion() == nil {
		q.notify(events.PanelQuestion, events.LevelWarn, "Mark a question before adding a follow-up.")
		return ErrMissingPrerequisite
	}
	f, err := q.client.MarkFollowup(ctx, q.state.String(state.QuestionNotes))
	if err != nil {
		q.notify(events.PanelQuestion, events.LevelError, "Failed to mark follow-up: %s", describe(err))
		return err
	}

	current := q.state.CurrentQuestion()
	if current == nil {
		return nil
	}
	updated := *current
	updated.Followups = append(slices.Clone(current.Followups), *f)
	q.state.Update(state.QuestionCurrent, &updated)
	q.state.Update(state.QuestionNotes, "")
	q.notify(events.PanelQuestion, events.LevelInfo, "Follow-up #%d added.", f.ID)
	return nil
}

// SetType selects the question type. Unknown types are ignored.
func (q *Question) SetType(t string) bool {
	if !slices.Contains(QuestionTypes, t) {
		return false
	}
	q.state.Update(state.QuestionType, t)
	return true
}

// CycleType advances to the next question type.
func (q *Question) CycleType() string {
	i := slices.Index(QuestionTypes, q.state.String(state.QuestionType))
	next := QuestionTypes[(i+1)%len(QuestionTypes)]
	q.state.Update(state.QuestionType, next)
	return next
}

// SetNotes stores the notes sent with the next mark.
func (q *Question) SetNotes(notes string) {
	q.state.Update(state.QuestionNotes, notes)
}
