package state

import (
	"slices"

	"github.com/abhisek/interviewdeck/internal/model"
)

// Bool returns the bool at path, or false.
func (s *Store) Bool(path string) bool {
	v, _ := s.Get(path)
	b, _ := v.(bool)
	return b
}

// String returns the string at path, or "".
func (s *Store) String(path string) string {
	v, _ := s.Get(path)
	switch t := v.(type) {
	case string:
		return t
	case model.Speaker:
		return string(t)
	}
	return ""
}

// Int returns the int at path, or 0.
func (s *Store) Int(path string) int {
	v, _ := s.Get(path)
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	}
	return 0
}

// Speaker returns the current speaker.
func (s *Store) Speaker() model.Speaker {
	if sp := model.Speaker(s.String(RecordingSpeaker)); sp != "" {
		return sp
	}
	return model.SpeakerInterviewer
}

// Screenshots returns a copy of the screenshot list.
func (s *Store) Screenshots() []model.Screenshot {
	v, _ := s.Get(ScreenshotItems)
	items, _ := v.([]model.Screenshot)
	return slices.Clone(items)
}

// Transcriptions returns a copy of the transcription history.
func (s *Store) Transcriptions() []model.Transcription {
	v, _ := s.Get(RecordingTranscriptions)
	items, _ := v.([]model.Transcription)
	return slices.Clone(items)
}

// CurrentSolution returns the current solution, or nil.
func (s *Store) CurrentSolution() *model.CombinedSolution {
	v, _ := s.Get(SolutionCurrent)
	sol, _ := v.(*model.CombinedSolution)
	return sol
}

// Followup returns the last follow-up received, or nil.
func (s *Store) Followup() *model.FollowupSolution {
	v, _ := s.Get(SolutionFollowup)
	f, _ := v.(*model.FollowupSolution)
	return f
}

// CurrentQuestion returns the marked question, or nil.
func (s *Store) CurrentQuestion() *model.Question {
	v, _ := s.Get(QuestionCurrent)
	q, _ := v.(*model.Question)
	return q
}

// StorageKey returns the key solution jobs are stored under: the current
// screenshot path when one is selected, otherwise the transcript storage key.
func (s *Store) StorageKey() string {
	if p := s.String(ScreenshotCurrentPath); p != "" {
		return p
	}
	return s.String(QuestionStorageKey)
}
