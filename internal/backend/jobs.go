package backend

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/interviewdeck/internal/api"
	"github.com/abhisek/interviewdeck/internal/llm"
	"github.com/abhisek/interviewdeck/internal/model"
)

// captureRoute describes one capture endpoint.
type captureRoute struct {
	provider string
	kind     Kind
	// codingOnly routes extract only when the requested type is coding.
	codingOnly bool
}

var captureRoutes = map[string]captureRoute{
	"/screenshot":                    {provider: llm.ProviderAnthropic, kind: KindCoding, codingOnly: true},
	"/extract-with-gemini":           {provider: llm.ProviderGemini, kind: KindCoding, codingOnly: true},
	"/extract-with-openai":           {provider: llm.ProviderOpenAI, kind: KindCoding, codingOnly: true},
	"/get-design-question":           {provider: llm.ProviderGemini, kind: KindDesign},
	"/extract-react-question":        {provider: llm.ProviderGemini, kind: KindReact},
	"/extract-react-question-openai": {provider: llm.ProviderOpenAI, kind: KindReact},
}

// solutionRoute describes one solution job endpoint.
type solutionRoute struct {
	provider string
	kind     Kind
	label    string
}

var solutionRoutes = map[string]solutionRoute{
	"/solution":                    {provider: llm.ProviderAnthropic, kind: KindCoding, label: "Claude"},
	"/solution-with-openai":        {provider: llm.ProviderOpenAI, kind: KindCoding, label: "OpenAI"},
	"/solution-with-gemini":        {provider: llm.ProviderGemini, kind: KindCoding, label: "Gemini"},
	"/react-solution-with-gemini":  {provider: llm.ProviderGemini, kind: KindReact, label: "React Gemini"},
	"/react-solution-with-claude":  {provider: llm.ProviderAnthropic, kind: KindReact, label: "React Claude"},
	"/react-solution2-with-gemini": {provider: llm.ProviderGemini, kind: KindReact, label: "React Gemini solution2"},
}

// followupRoute describes one follow-up job endpoint.
type followupRoute struct {
	provider string
	client   api.FollowupProvider
	label    string
}

var followupRoutes = map[string]followupRoute{
	"/solution/followup":                   {provider: llm.ProviderAnthropic, client: api.FollowupClaude, label: "Claude"},
	"/solution/followup-with-gemini":       {provider: llm.ProviderGemini, client: api.FollowupGemini, label: "Gemini"},
	"/solution/followup-with-claude-react": {provider: llm.ProviderAnthropic, client: api.FollowupClaudeReact, label: "Claude React"},
	"/solution/react-followup-with-gemini": {provider: llm.ProviderGemini, client: api.FollowupGeminiReact, label: "Gemini React"},
}

func (s *Server) handleCapture(c captureRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			QuestionType string `json:"question_type"`
			Notes        string `json:"notes"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if body.QuestionType == "" {
			body.QuestionType = string(c.kind)
		}
		if s.capturer == nil {
			writeError(w, http.StatusServiceUnavailable, "Screenshot capture is not configured")
			return
		}

		ctx := r.Context()
		shotPath, err := s.capturer.Capture(ctx)
		if err != nil {
			s.logger.Error("screenshot capture failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		shot := s.session.AddScreenshot(shotPath, body.QuestionType, body.Notes)

		var extracted *string
		if !c.codingOnly || body.QuestionType == model.QuestionCoding {
			q, err := s.solver.ExtractQuestion(ctx, c.provider, c.kind, shotPath)
			if err != nil {
				s.logger.Error("question extraction failed", zap.String("screenshot", shotPath), zap.Error(err))
				writeError(w, llm.HTTPStatus(err), llm.Describe(err))
				return
			}
			if q != "" {
				s.session.SetExtractedQuestion(shotPath, q)
				extracted = &q
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":             "success",
			"screenshot":         shot,
			"extracted_question": extracted,
		})
	}
}

func (s *Server) handleTranscriptQuestion(w http.ResponseWriter, r *http.Request) {
	var lines []string
	if s.recorder != nil {
		for _, t := range s.recorder.Recent() {
			lines = append(lines, t.Text)
		}
	}
	transcript := strings.TrimSpace(strings.Join(lines, "\n"))
	if transcript == "" {
		writeError(w, http.StatusBadRequest, "No recent transcript available")
		return
	}

	q, err := s.solver.QuestionFromTranscript(r.Context(), llm.ProviderGemini, transcript)
	if err != nil {
		s.logger.Error("transcript extraction failed", zap.Error(err))
		writeError(w, llm.HTTPStatus(err), llm.Describe(err))
		return
	}
	if q == "" {
		writeError(w, http.StatusUnprocessableEntity, "No question found in the recent transcript")
		return
	}

	key := "transcript_" + strconv.FormatInt(s.session.now().Unix(), 10)
	s.session.SetExtractedQuestion(key, q)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "success",
		"extracted_question": q,
		"storage_key":        key,
	})
}

func (s *Server) handleSolution(route string, j solutionRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body api.SolutionRequest
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if body.Question == "" || body.ScreenshotPath == "" {
			writeError(w, http.StatusBadRequest, "Missing question or screenshot_path")
			return
		}
		key := body.StorageKey
		if key == "" {
			key = body.ScreenshotPath
		}

		if !s.startJob(route+"|"+key, "solution", func(ctx context.Context) error {
			sol, err := s.solver.Solve(ctx, j.provider, j.kind, body.Question)
			if err != nil {
				return err
			}
			if j.kind == KindReact {
				return s.session.StoreReactSolution(key, sol)
			}
			return s.session.StoreSolution(key, sol)
		}) {
			writeSuccess(w, j.label+" solution request already running", nil)
			return
		}
		writeSuccess(w, j.label+" solution request submitted", nil)
	}
}

func (s *Server) handleFollowup(route string, j followupRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body api.FollowupRequest
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		key := body.StorageKey
		if key == "" {
			key = body.ScreenshotPath
		}

		if j.client.ByID() {
			s.startReactFollowup(w, route, j, body, key)
			return
		}

		if body.Problem == "" || body.Code == "" || body.Transcript == "" || key == "" {
			writeError(w, http.StatusBadRequest, "Missing required parameters for follow-up")
			return
		}
		s.startJob(route+"|"+key, "followup", func(ctx context.Context) error {
			f, err := s.solver.Followup(ctx, j.provider, body.Problem, body.Code, body.Transcript)
			if err != nil {
				return err
			}
			stored, err := s.session.StoreFollowup(key, j.client.JobType(), f)
			if err != nil {
				return err
			}
			s.logger.Info("follow-up stored", zap.String("key", stored))
			return nil
		})
		writeSuccess(w, j.label+" follow-up solution request submitted", nil)
	}
}

func (s *Server) startReactFollowup(w http.ResponseWriter, route string, j followupRoute, body api.FollowupRequest, key string) {
	question := body.ReactQuestion
	if question == "" {
		question = body.Problem
	}
	current := body.CurrentSolution
	if current == "" {
		current = body.Code
	}
	if question == "" || current == "" || body.Transcript == "" || key == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters for "+j.label+" follow-up")
		return
	}
	id := body.FollowupID
	if id == "" {
		id = uuid.NewString()
	}

	s.startJob(route+"|"+id, "followup", func(ctx context.Context) error {
		text, err := s.solver.ReactFollowup(ctx, j.provider, question, current, body.Transcript)
		if err != nil {
			return err
		}
		return s.session.StoreFollowupText(id, text)
	})
	writeSuccess(w, j.label+" follow-up solution request submitted", map[string]any{"followup_id": id})
}
