package managers

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interviewdeck/internal/api"
	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/model"
	"github.com/abhisek/interviewdeck/internal/state"
)

var pending = map[string]any{"solution": nil, "react_solution": nil}

func TestSolutionRequestCompletes(t *testing.T) {
	h := newHarness(t)
	h.withQuestion("s/1.png", "Two sum")
	h.reply("POST /api/solution-with-gemini", success)

	var ready atomic.Bool
	h.on("GET /api/solution/status", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s/1.png", r.URL.Query().Get("key"))
		if ready.Load() {
			writeJSON(w, http.StatusOK, map[string]any{"solution": map[string]any{"code": "return i, j"}})
			return
		}
		writeJSON(w, http.StatusOK, pending)
	})

	require.NoError(t, h.set.Solution.Request(context.Background(), api.SolutionGemini))
	assert.True(t, h.state.Bool(state.SolutionGenerating))
	assert.False(t, h.set.Solution.CanRequestSolution())
	assert.Equal(t, "Two sum", h.body("POST /api/solution-with-gemini")["question"])
	assert.Equal(t, "s/1.png", h.body("POST /api/solution-with-gemini")["screenshot_path"])

	// The first check happens one interval after start.
	h.tick(time.Second)
	assert.Equal(t, 0, h.hitCount("GET /api/solution/status"))
	h.tick(time.Second)
	assert.Equal(t, 1, h.hitCount("GET /api/solution/status"))
	assert.True(t, h.state.Bool(state.SolutionGenerating))

	ready.Store(true)
	h.tick(2 * time.Second)
	require.NotNil(t, h.state.CurrentSolution())
	assert.Equal(t, "return i, j", h.state.CurrentSolution().Code())
	assert.False(t, h.state.Bool(state.SolutionGenerating))
	assert.Equal(t, 0, h.sched.Len())
	assert.Equal(t, "Solution ready.", h.lastNotice().Text)
}

func TestSolutionRequestTimesOut(t *testing.T) {
	h := newHarness(t)
	h.withQuestion("s/1.png", "Two sum")
	h.reply("POST /api/solution", success)
	h.reply("GET /api/solution/status", pending)

	require.NoError(t, h.set.Solution.Request(context.Background(), api.SolutionClaude))
	for range 29 {
		h.tick(2 * time.Second)
	}
	assert.Equal(t, 29, h.hitCount("GET /api/solution/status"))
	assert.True(t, h.state.Bool(state.SolutionGenerating))

	h.tick(2 * time.Second)
	assert.Equal(t, 29, h.hitCount("GET /api/solution/status"), "deadline wins over a due check")
	assert.False(t, h.state.Bool(state.SolutionGenerating))
	assert.Equal(t, 0, h.sched.Len())
	n := h.lastNotice()
	assert.Equal(t, events.LevelError, n.Level)
	assert.Equal(t, "Could not generate solution. Please try again.", n.Text)
}

func TestSolutionStartFailureRegistersNothing(t *testing.T) {
	h := newHarness(t)
	h.withQuestion("s/1.png", "Two sum")
	h.on("POST /api/solution", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "message": "model overloaded"})
	})

	err := h.set.Solution.Request(context.Background(), api.SolutionClaude)
	require.Error(t, err)
	assert.Equal(t, 0, h.sched.Len())
	assert.False(t, h.state.Bool(state.SolutionGenerating))
	assert.Contains(t, h.lastNotice().Text, "model overloaded")
}

func TestSolutionRequestNeedsQuestion(t *testing.T) {
	h := newHarness(t)
	err := h.set.Solution.Request(context.Background(), api.SolutionClaude)
	assert.ErrorIs(t, err, ErrMissingPrerequisite)
	assert.Equal(t, 0, h.hitCount("POST /api/solution"))
	assert.Equal(t, "Capture a screenshot or extract a question first.", h.lastNotice().Text)
}

func TestSolutionRequestTwiceKeepsOneRegistration(t *testing.T) {
	h := newHarness(t)
	h.withQuestion("s/1.png", "Two sum")
	h.reply("POST /api/solution", success)
	h.reply("POST /api/solution-with-openai", success)
	h.reply("GET /api/solution/status", pending)

	ctx := context.Background()
	require.NoError(t, h.set.Solution.Request(ctx, api.SolutionClaude))
	h.tick(time.Second)
	require.NoError(t, h.set.Solution.Request(ctx, api.SolutionOpenAI))

	assert.Equal(t, []string{SolutionPollKey("s/1.png")}, h.sched.Keys())

	// The replacement restarted the interval.
	h.tick(time.Second)
	assert.Equal(t, 0, h.hitCount("GET /api/solution/status"))
	h.tick(time.Second)
	assert.Equal(t, 1, h.hitCount("GET /api/solution/status"))
}

func TestResetAllCancelsPollsAndRestoresDefaults(t *testing.T) {
	h := newHarness(t)
	h.withQuestion("s/1.png", "Two sum")
	h.state.Update(state.UIActiveTab, state.TabCode)
	h.reply("POST /api/solution", success)
	h.reply("POST /api/reset", success)
	h.reply("GET /api/solution/status", map[string]any{"solution": map[string]any{"code": "late"}})

	ctx := context.Background()
	require.NoError(t, h.set.Solution.Request(ctx, api.SolutionClaude))
	require.NoError(t, h.set.Shell.ResetAll(ctx))

	assert.Equal(t, 0, h.sched.Len())
	assert.Equal(t, "", h.state.String(state.QuestionExtracted))
	assert.Equal(t, "", h.state.StorageKey())
	assert.Equal(t, state.TabExplanation, h.state.String(state.UIActiveTab))
	assert.False(t, h.state.Bool(state.SolutionGenerating))

	h.tick(2 * time.Second)
	assert.Equal(t, 0, h.hitCount("GET /api/solution/status"))
	assert.Nil(t, h.state.CurrentSolution())
}

func TestResetAllFailureKeepsState(t *testing.T) {
	h := newHarness(t)
	h.withQuestion("s/1.png", "Two sum")
	h.on("POST /api/reset", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "message": "disk full"})
	})

	require.Error(t, h.set.Shell.ResetAll(context.Background()))
	assert.Equal(t, "Two sum", h.state.String(state.QuestionExtracted))
	assert.Equal(t, "Reset failed: disk full", h.lastNotice().Text)
}

// withSolution puts a question and a finished solution into state.
func (h *harness) withSolution(path, question, code string) {
	h.withQuestion(path, question)
	h.state.Update(state.SolutionCurrent, &model.CombinedSolution{Solution: &model.StructuredSolution{Code: code}})
}

func TestFollowupNeedsSolution(t *testing.T) {
	h := newHarness(t)
	h.withQuestion("s/1.png", "Two sum")

	err := h.set.Followup.Request(context.Background(), api.FollowupClaude)
	assert.ErrorIs(t, err, ErrMissingPrerequisite)
	assert.False(t, h.set.Followup.CanRequestFollowup())
	assert.Equal(t, 0, h.hitCount("POST /api/solution/followup"))
	assert.True(t, strings.HasPrefix(h.lastNotice().Text, "Missing required information"))
}

func TestFollowupNeedsTranscript(t *testing.T) {
	h := newHarness(t)
	h.withSolution("s/1.png", "Two sum", "x")
	h.reply("GET /api/transcriptions/recent", []model.Transcription{})

	err := h.set.Followup.Request(context.Background(), api.FollowupClaude)
	assert.ErrorIs(t, err, ErrMissingPrerequisite)
	assert.Equal(t, 0, h.hitCount("POST /api/solution/followup"))
	assert.Equal(t, events.LevelWarn, h.lastNotice().Level)
}

func TestFollowupCompositeKeyWaitsForNewerResult(t *testing.T) {
	h := newHarness(t)
	h.withSolution("s/1.png", "Two sum", "def two_sum(): pass")
	h.state.Update(state.SolutionGenerating, false)
	h.reply("GET /api/transcriptions/recent", []model.Transcription{{Text: "What if the input is sorted?"}})
	h.reply("POST /api/solution/followup-with-gemini", success)

	solutions := map[string]any{
		"s/1.png":                            map[string]any{"code": "def two_sum(): pass"},
		"s/1.png:gemini-followup:1700000000": map[string]any{"explanation": "old answer"},
	}
	h.on("GET /api/solutions", func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()
		writeJSON(w, http.StatusOK, solutions)
	})

	var available []events.FollowupAvailable
	h.bus.On(events.TopicFollowupAvailable, func(ev events.Event) {
		available = append(available, ev.(events.FollowupAvailable))
	})

	require.NoError(t, h.set.Followup.Request(context.Background(), api.FollowupGemini))
	body := h.body("POST /api/solution/followup-with-gemini")
	assert.Equal(t, "What if the input is sorted?", body["transcript"])
	assert.Equal(t, "def two_sum(): pass", body["code"])
	assert.Equal(t, "s/1.png", body["storage_key"])
	assert.Equal(t, []string{"followup:s/1.png:gemini"}, h.sched.Keys())

	// Only the pre-existing result is listed: keep waiting.
	h.tick(2 * time.Second)
	assert.Nil(t, h.state.Followup())
	assert.True(t, h.state.Bool(state.SolutionGenerating))

	h.mu.Lock()
	solutions["s/1.png:gemini-followup:1700000042"] = map[string]any{"explanation": "binary search"}
	h.mu.Unlock()
	h.tick(2 * time.Second)

	f := h.state.Followup()
	require.NotNil(t, f)
	assert.Equal(t, "binary search", f.Explanation)
	assert.Equal(t, "gemini", f.Provider)
	assert.Equal(t, "s/1.png:gemini-followup:1700000042", f.Key)
	assert.False(t, h.state.Bool(state.SolutionGenerating))
	assert.Equal(t, state.TabFollowup, h.state.String(state.UIActiveTab))
	require.Len(t, available, 1)
	assert.Equal(t, "gemini", available[0].Provider)
}

func TestFollowupByID(t *testing.T) {
	h := newHarness(t)
	h.withSolution("s/1.png", "Build a counter", "const C = () => null")
	h.reply("GET /api/transcriptions/recent", []model.Transcription{{Text: "Add a reset button"}})
	h.reply("POST /api/solution/followup-with-claude-react", success)

	var id string
	h.on("GET /api/solutions", func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"solutions":          map[string]any{},
			"react_solutions":    map[string]any{},
			"followup_solutions": map[string]any{id: "Use useState for the count."},
		})
	})

	require.NoError(t, h.set.Followup.Request(context.Background(), api.FollowupClaudeReact))
	sent, _ := h.body("POST /api/solution/followup-with-claude-react")["followup_id"].(string)
	require.NotEmpty(t, sent)
	h.mu.Lock()
	id = sent
	h.mu.Unlock()
	assert.Equal(t, []string{FollowupPollKey("s/1.png", api.FollowupClaudeReact, id)}, h.sched.Keys())

	h.tick(2 * time.Second)
	f := h.state.Followup()
	require.NotNil(t, f)
	assert.Equal(t, "Use useState for the count.", f.Raw)
	assert.Equal(t, id, f.Key)
	assert.Equal(t, "claude-react", f.Provider)
}

func TestFollowupPollErrorClearsGenerating(t *testing.T) {
	h := newHarness(t)
	h.withSolution("s/1.png", "Two sum", "x")
	h.reply("GET /api/transcriptions/recent", []model.Transcription{{Text: "and negatives?"}})
	h.reply("POST /api/solution/followup", success)
	h.reply("GET /api/solutions", map[string]any{})

	require.NoError(t, h.set.Followup.Request(context.Background(), api.FollowupClaude))
	h.on("GET /api/solutions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "message": "boom"})
	})
	h.tick(2 * time.Second)

	assert.False(t, h.state.Bool(state.SolutionGenerating))
	assert.Equal(t, 0, h.sched.Len())
	assert.Equal(t, "Error retrieving follow-up solution. Please try again.", h.lastNotice().Text)
}

func TestFollowupStartFailureRegistersNothing(t *testing.T) {
	h := newHarness(t)
	h.withSolution("s/1.png", "Two sum", "x")
	h.reply("GET /api/transcriptions/recent", []model.Transcription{{Text: "and negatives?"}})
	h.reply("GET /api/solutions", map[string]any{})
	h.on("POST /api/solution/followup-with-gemini", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "error", "message": "rate limited"})
	})

	err := h.set.Followup.Request(context.Background(), api.FollowupGemini)
	require.Error(t, err)
	assert.Equal(t, 0, h.sched.Len())
	assert.False(t, h.state.Bool(state.SolutionGenerating))
	n := h.lastNotice()
	assert.Equal(t, events.LevelError, n.Level)
	assert.Contains(t, n.Text, "rate limited")
}

func TestFollowupBaselineFailureStartsNothing(t *testing.T) {
	h := newHarness(t)
	h.withSolution("s/1.png", "Two sum", "x")
	h.reply("GET /api/transcriptions/recent", []model.Transcription{{Text: "and negatives?"}})
	h.on("GET /api/solutions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, map[string]any{"status": "error", "message": "backend restarting"})
	})
	h.reply("POST /api/solution/followup-with-gemini", success)

	err := h.set.Followup.Request(context.Background(), api.FollowupGemini)
	require.Error(t, err)
	assert.Equal(t, 0, h.hitCount("POST /api/solution/followup-with-gemini"))
	assert.Equal(t, 0, h.sched.Len())
	assert.False(t, h.state.Bool(state.SolutionGenerating))
	assert.Contains(t, h.lastNotice().Text, "Failed to start follow-up")
}

func TestFollowupRequestTimesOut(t *testing.T) {
	h := newHarness(t)
	h.withSolution("s/1.png", "Two sum", "x")
	h.reply("GET /api/transcriptions/recent", []model.Transcription{{Text: "and negatives?"}})
	h.reply("POST /api/solution/followup", success)
	h.reply("GET /api/solutions", map[string]any{"solutions": map[string]any{}})

	require.NoError(t, h.set.Followup.Request(context.Background(), api.FollowupClaude))
	require.Equal(t, 1, h.sched.Len())
	for range 30 {
		h.tick(2 * time.Second)
	}

	assert.False(t, h.state.Bool(state.SolutionGenerating))
	assert.Equal(t, 0, h.sched.Len())
	assert.Nil(t, h.state.Followup())
	n := h.lastNotice()
	assert.Equal(t, events.LevelError, n.Level)
	assert.Equal(t, "Could not generate follow-up solution. Please try again.", n.Text)
}
