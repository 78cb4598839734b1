package backend

import (
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/interviewdeck/internal/model"
)

// ErrNoActiveQuestion is returned by MarkFollowup before any question was marked.
var ErrNoActiveQuestion = errors.New("no active question to add follow-up to")

// Session is the interview record served by the backend. All access is
// serialized by one mutex.
type Session struct {
	mu  sync.Mutex
	now func() time.Time

	questions          []model.Question
	currentQuestion    int
	screenshots        []model.Screenshot
	extractedQuestions map[string]string
	solutions          map[string]json.RawMessage
	reactSolutions     map[string]string
	followupSolutions  map[string]json.RawMessage
}

// NewSession returns an empty session.
func NewSession(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	s := &Session{now: now}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.questions = []model.Question{}
	s.currentQuestion = 0
	s.screenshots = []model.Screenshot{}
	s.extractedQuestions = map[string]string{}
	s.solutions = map[string]json.RawMessage{}
	s.reactSolutions = map[string]string{}
	s.followupSolutions = map[string]json.RawMessage{}
}

// Reset drops every record.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) timestamp() string {
	return s.now().Format(model.TimestampLayout)
}

// AddScreenshot records a capture.
func (s *Session) AddScreenshot(path, questionType, notes string) model.Screenshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	shot := model.Screenshot{
		Path:         path,
		Timestamp:    s.timestamp(),
		QuestionType: questionType,
		Notes:        notes,
	}
	s.screenshots = append(s.screenshots, shot)
	return shot
}

// Screenshots returns the captures in order.
func (s *Session) Screenshots() []model.Screenshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.screenshots)
}

// SetExtractedQuestion stores the question text for a storage key. Empty
// text is ignored.
func (s *Session) SetExtractedQuestion(key, question string) {
	if question == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractedQuestions[key] = question
}

// ExtractedQuestion returns the question stored for key, or "".
func (s *Session) ExtractedQuestion(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extractedQuestions[key]
}

// ExtractedQuestions returns a copy of every extracted question.
func (s *Session) ExtractedQuestions() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.extractedQuestions)
}

// StoreSolution stores a structured solution under key.
func (s *Session) StoreSolution(key string, sol model.StructuredSolution) error {
	raw, err := json.Marshal(sol)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.solutions[key] = raw
	return nil
}

// StoreReactSolution stores a React solution under key; its code also
// becomes the raw react_solution entry.
func (s *Session) StoreReactSolution(key string, sol model.StructuredSolution) error {
	raw, err := json.Marshal(sol)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.solutions[key] = raw
	s.reactSolutions[key] = sol.Code
	return nil
}

// ClearSolution drops the result stored under key. Follow-ups are kept.
func (s *Session) ClearSolution(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.solutions, key)
	delete(s.reactSolutions, key)
}

// StoreFollowup stores a follow-up answer under the composite key
// "<storageKey>:<jobType>:<unix seconds>" and returns that key. A result
// stored within the same second as an earlier one gets the next free
// timestamp so ordering by key stays newest-last.
func (s *Session) StoreFollowup(storageKey, jobType string, f model.FollowupSolution) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.IsFollowup = true
	f.Timestamp = s.timestamp()
	raw, err := json.Marshal(f)
	if err != nil {
		return "", err
	}

	prefix := storageKey + ":" + jobType + ":"
	ts := s.now().Unix()
	for k := range s.solutions {
		if rest, ok := strings.CutPrefix(k, prefix); ok {
			if prev, err := strconv.ParseInt(rest, 10, 64); err == nil && prev >= ts {
				ts = prev + 1
			}
		}
	}
	key := prefix + strconv.FormatInt(ts, 10)
	s.solutions[key] = raw
	return key, nil
}

// StoreFollowupText stores a raw text follow-up under a follow-up id.
func (s *Session) StoreFollowupText(id, text string) error {
	raw, err := json.Marshal(text)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.followupSolutions[id] = raw
	return nil
}

// SolutionResult is the stored result for one storage key.
type SolutionResult struct {
	Solution      json.RawMessage `json:"solution"`
	ReactSolution *string         `json:"react_solution"`
}

// Solution returns the result for key. Both fields are null while no job
// has finished for it.
func (s *Session) Solution(key string) SolutionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := SolutionResult{Solution: json.RawMessage("null")}
	if raw, ok := s.solutions[key]; ok {
		res.Solution = raw
	}
	if code, ok := s.reactSolutions[key]; ok {
		res.ReactSolution = &code
	}
	return res
}

// RelatedFollowups returns the composite-keyed results stored for key.
func (s *Session) RelatedFollowups(key string) map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]json.RawMessage{}
	for k, v := range s.solutions {
		if strings.HasPrefix(k, key+":") {
			out[k] = v
		}
	}
	return out
}

// SolutionIndex is the body of GET /api/solutions.
type SolutionIndex struct {
	Solutions         map[string]json.RawMessage `json:"solutions"`
	ReactSolutions    map[string]string          `json:"react_solutions"`
	FollowupSolutions map[string]json.RawMessage `json:"followup_solutions"`
}

// Index returns a copy of every stored result.
func (s *Session) Index() SolutionIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SolutionIndex{
		Solutions:         maps.Clone(s.solutions),
		ReactSolutions:    maps.Clone(s.reactSolutions),
		FollowupSolutions: maps.Clone(s.followupSolutions),
	}
}

// MarkQuestion records a new question and makes it current.
func (s *Session) MarkQuestion(questionType, notes string) model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	if questionType == "" {
		questionType = model.QuestionCoding
	}
	q := model.Question{
		ID:        len(s.questions) + 1,
		Type:      questionType,
		Notes:     notes,
		Timestamp: s.timestamp(),
		Followups: []model.Followup{},
	}
	s.questions = append(s.questions, q)
	s.currentQuestion = q.ID
	return q
}

// MarkFollowup attaches a follow-up to the current question.
func (s *Session) MarkFollowup(notes string) (model.Followup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentQuestion == 0 {
		return model.Followup{}, ErrNoActiveQuestion
	}
	i := slices.IndexFunc(s.questions, func(q model.Question) bool { return q.ID == s.currentQuestion })
	if i < 0 {
		return model.Followup{}, ErrNoActiveQuestion
	}
	f := model.Followup{
		ID:        len(s.questions[i].Followups) + 1,
		Notes:     notes,
		Timestamp: s.timestamp(),
	}
	s.questions[i].Followups = append(s.questions[i].Followups, f)
	return f, nil
}
