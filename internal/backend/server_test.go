package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interviewdeck/internal/api"
	"github.com/abhisek/interviewdeck/internal/llm"
)

type testBackend struct {
	server   *Server
	client   *api.Client
	mock     *llm.MockProvider
	store    string
	recorder *Recorder
	script   string
}

// cannedReply answers by schema, the way a real provider would shape output.
func cannedReply(req llm.Request) llm.MockResponse {
	if req.Schema == nil {
		return llm.MockResponse{Content: json.RawMessage("Use useReducer for the cart.")}
	}
	switch req.Schema.Name {
	case QuestionSchema.Name:
		return llm.MockResponse{Content: json.RawMessage(`{"question":"Two Sum"}`)}
	case SolutionSchema.Name:
		return llm.MockResponse{Content: json.RawMessage(`{"explanation":"hash map","code":"def two_sum(): pass","complexity":"O(n)","strategy":"one pass"}`)}
	case ReactSolutionSchema.Name:
		return llm.MockResponse{Content: json.RawMessage(`{"explanation":"hooks","code":"function App() {}"}`)}
	case FollowupSchema.Name:
		return llm.MockResponse{Content: json.RawMessage(`{"explanation":"sort first","solution":"two pointers","code":"def f(): pass"}`)}
	}
	return llm.MockResponse{Content: json.RawMessage(`{}`)}
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()

	shots := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(shots, "capture.png"), []byte("\x89PNG\r\n\x1a\n"), 0o644))
	store := filepath.ToSlash(filepath.Join(t.TempDir(), "screenshots"))
	script := filepath.Join(t.TempDir(), "transcript.txt")

	mock := llm.NewMockProvider()
	mock.Respond = cannedReply
	providers := llm.NewStaticRegistry("mock", map[string]llm.Provider{"mock": mock})

	rec := NewRecorder(script, nil, nil)
	cfg := DefaultConfig()
	cfg.Version = "v1.2.0"
	cfg.ScreenshotDir = store
	s := New(cfg, rec, &DirCapturer{Source: shots, Store: filepath.FromSlash(store)}, providers, nil)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		srv.Close()
		s.Close()
	})

	return &testBackend{
		server:   s,
		client:   api.New(srv.URL, api.WithTimeout(5*time.Second)),
		mock:     mock,
		store:    store,
		recorder: rec,
		script:   script,
	}
}

func TestServer_Health(t *testing.T) {
	b := newTestBackend(t)

	h, err := b.client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "success", h.Status)
	assert.Equal(t, "v1.2.0", h.Version)
}

func TestServer_UnknownRouteIsJSON404(t *testing.T) {
	b := newTestBackend(t)

	resp, err := http.Get(b.client.BaseURL() + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body["status"])
}

func TestServer_CaptureExtractsQuestion(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	res, err := b.client.Capture(ctx, api.CaptureGemini, api.CaptureRequest{QuestionType: "coding"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Screenshot.Path, b.store+"/screenshot_"))
	assert.Equal(t, "Two Sum", res.ExtractedQuestion)

	call, ok := b.mock.LastCall()
	require.True(t, ok)
	require.Len(t, call.Messages, 1)
	require.Len(t, call.Messages[0].Images, 1)
	assert.Equal(t, "image/png", call.Messages[0].Images[0].MIMEType)

	q, err := b.client.ExtractedQuestion(ctx, res.Screenshot.Filename())
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", q)

	shots, err := b.client.Screenshots(ctx)
	require.NoError(t, err)
	require.Len(t, shots, 1)
	assert.Equal(t, res.Screenshot.Path, shots[0].Path)
}

func TestServer_CaptureCodingRouteSkipsOtherTypes(t *testing.T) {
	b := newTestBackend(t)

	res, err := b.client.Capture(context.Background(), api.CaptureClaude, api.CaptureRequest{QuestionType: "design"})
	require.NoError(t, err)
	assert.Empty(t, res.ExtractedQuestion)
	assert.Equal(t, 0, b.mock.CallCount())
}

func TestServer_SolutionJob(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	key := b.store + "/shot.png"

	status, err := b.client.SolutionStatus(ctx, key)
	require.NoError(t, err)
	assert.False(t, status.Ready())

	require.NoError(t, b.client.StartSolution(ctx, api.SolutionClaude, api.SolutionRequest{
		Question:       "Two Sum",
		ScreenshotPath: key,
	}))
	b.server.Wait()

	status, err = b.client.SolutionStatus(ctx, key)
	require.NoError(t, err)
	require.True(t, status.Ready())
	assert.Equal(t, "hash map", status.Solution.Explanation)
	assert.Equal(t, "O(n)", status.Solution.Complexity)
	assert.Nil(t, status.ReactSolution)

	lookup, err := b.client.SolutionForFile(ctx, "shot.png")
	require.NoError(t, err)
	assert.Equal(t, key, lookup.Screenshot)
	assert.Equal(t, "def two_sum(): pass", lookup.Code())
}

func TestServer_ReactSolutionUsesStorageKey(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.client.StartSolution(ctx, api.SolutionReactClaude, api.SolutionRequest{
		Question:       "Build a cart",
		ScreenshotPath: b.store + "/shot.png",
		StorageKey:     "transcript_1700000000",
	}))
	b.server.Wait()

	status, err := b.client.SolutionStatus(ctx, "transcript_1700000000")
	require.NoError(t, err)
	require.NotNil(t, status.ReactSolution)
	assert.Equal(t, "function App() {}", *status.ReactSolution)
	assert.Equal(t, "function App() {}", status.Code())

	call, _ := b.mock.LastCall()
	assert.Equal(t, ReactSolutionSchema.Name, call.Schema.Name)
}

func TestServer_SolutionValidation(t *testing.T) {
	b := newTestBackend(t)

	err := b.client.StartSolution(context.Background(), api.SolutionGemini, api.SolutionRequest{Question: "q"})
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Missing question or screenshot_path", apiErr.Message)
}

func TestServer_FailedSolutionStaysAbsent(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	b.mock.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})

	require.NoError(t, b.client.StartSolution(ctx, api.SolutionOpenAI, api.SolutionRequest{Question: "q", ScreenshotPath: "k"}))
	b.server.Wait()

	status, err := b.client.SolutionStatus(ctx, "k")
	require.NoError(t, err)
	assert.False(t, status.Ready())
}

func TestServer_CompositeFollowup(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	key := b.store + "/shot.png"

	require.NoError(t, b.client.StartFollowup(ctx, api.FollowupGemini, api.FollowupRequest{
		Problem:        "Two Sum",
		Code:           "def two_sum(): pass",
		Transcript:     "what if the input is sorted",
		ScreenshotPath: key,
	}))
	b.server.Wait()

	idx, err := b.client.Solutions(ctx)
	require.NoError(t, err)

	prefix := api.FollowupPrefix(key, api.FollowupGemini)
	var found string
	for _, k := range idx.Keys() {
		if strings.HasPrefix(k, prefix) {
			found = k
		}
	}
	require.NotEmpty(t, found, "no follow-up under %s", prefix)

	f, ok := idx.Followup(found)
	require.True(t, ok)
	assert.Equal(t, "sort first", f.Explanation)
	assert.Equal(t, "two pointers", f.Solution)
	assert.True(t, f.IsFollowup)

	lookup, err := b.client.SolutionForFile(ctx, "shot.png")
	require.NoError(t, err)
	assert.Contains(t, lookup.FollowupSolutions, found)
}

func TestServer_FollowupByID(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.client.StartFollowup(ctx, api.FollowupClaudeReact, api.FollowupRequest{
		ReactQuestion:   "Build a cart",
		CurrentSolution: "function App() {}",
		Transcript:      "how would you handle quantities",
		ScreenshotPath:  b.store + "/shot.png",
		FollowupID:      "f-1",
	}))
	b.server.Wait()

	idx, err := b.client.Solutions(ctx)
	require.NoError(t, err)
	f, ok := idx.FollowupByID("f-1")
	require.True(t, ok)
	assert.Equal(t, "Use useReducer for the cart.", f.Text())

	call, _ := b.mock.LastCall()
	assert.Nil(t, call.Schema)
}

func TestServer_FollowupValidation(t *testing.T) {
	b := newTestBackend(t)

	err := b.client.StartFollowup(context.Background(), api.FollowupClaude, api.FollowupRequest{Problem: "p", Code: "c"})
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Missing required parameters for follow-up", apiErr.Message)
}

func TestServer_CaptureReportsProviderError(t *testing.T) {
	b := newTestBackend(t)
	b.mock.AddResponse(llm.MockResponse{Err: &llm.ErrRateLimit{Provider: llm.ProviderGemini}})

	_, err := b.client.Capture(context.Background(), api.CaptureGemini, api.CaptureRequest{QuestionType: "coding"})
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "gemini is rate limiting requests. Try again shortly.", apiErr.Message)
}

func TestServer_MarkQuestionAndReset(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	_, err := b.client.MarkFollowup(ctx, "early")
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "No active question to add follow-up to", apiErr.Message)

	q, err := b.client.MarkQuestion(ctx, "design", "url shortener")
	require.NoError(t, err)
	assert.Equal(t, 1, q.ID)
	assert.Equal(t, "design", q.Type)

	f, err := b.client.MarkFollowup(ctx, "custom aliases")
	require.NoError(t, err)
	assert.Equal(t, 1, f.ID)

	require.NoError(t, b.client.StartSolution(ctx, api.SolutionClaude, api.SolutionRequest{Question: "q", ScreenshotPath: "k"}))
	b.server.Wait()

	require.NoError(t, b.client.Reset(ctx))

	idx, err := b.client.Solutions(ctx)
	require.NoError(t, err)
	assert.Empty(t, idx.Solutions)

	_, err = b.client.MarkFollowup(ctx, "after reset")
	require.ErrorAs(t, err, &apiErr)
}

func TestServer_RecordingAndTranscriptQuestion(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	_, err := b.client.ExtractFromTranscript(ctx)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "No recent transcript available", apiErr.Message)

	status, err := b.client.StartRecording(ctx, api.StartRecordingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "recording_started", status)

	on, err := b.client.RecordingStatus(ctx)
	require.NoError(t, err)
	assert.True(t, on)

	appendLines(t, b.script, "given an array find two numbers that add up to a target\n")
	require.Eventually(t, func() bool {
		recent, err := b.client.RecentTranscriptions(ctx)
		return err == nil && len(recent) == 1
	}, 2*time.Second, 20*time.Millisecond)

	tq, err := b.client.ExtractFromTranscript(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", tq.ExtractedQuestion)
	assert.True(t, strings.HasPrefix(tq.StorageKey, "transcript_"))

	questions, err := b.client.ExtractedQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", questions[tq.StorageKey])

	status, err = b.client.StopRecording(ctx)
	require.NoError(t, err)
	assert.Equal(t, "recording_stopped", status)

	status, err = b.client.StopRecording(ctx)
	require.NoError(t, err)
	assert.Equal(t, "not_recording", status)
}
