package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/abhisek/interviewdeck/internal/model"
)

// StartRecordingRequest is the body of POST /api/recording/start.
type StartRecordingRequest struct {
	DeviceName    string `json:"device_name"`
	RecordSeconds int    `json:"record_seconds"`
	Duration      *int   `json:"duration"`
}

// StartRecording asks the backend to begin capturing audio and returns the
// backend's status word ("recording_started", "already_recording").
func (c *Client) StartRecording(ctx context.Context, req StartRecordingRequest) (string, error) {
	var env envelope
	if err := c.post(ctx, "/api/recording/start", req, &env); err != nil {
		return "", err
	}
	return env.Status, nil
}

// StopRecording stops audio capture.
func (c *Client) StopRecording(ctx context.Context) (string, error) {
	var env envelope
	if err := c.post(ctx, "/api/recording/stop", nil, &env); err != nil {
		return "", err
	}
	return env.Status, nil
}

// RecordingStatus reports whether the backend is recording.
func (c *Client) RecordingStatus(ctx context.Context) (bool, error) {
	var out struct {
		IsRecording bool `json:"is_recording"`
	}
	if err := c.get(ctx, "/api/recording/status", &out); err != nil {
		return false, err
	}
	return out.IsRecording, nil
}

// CaptureRequest is the body of every capture endpoint.
type CaptureRequest struct {
	QuestionType string `json:"question_type"`
	Notes        string `json:"notes"`
}

// CaptureResult is the response of a capture endpoint.
type CaptureResult struct {
	Screenshot        model.Screenshot `json:"screenshot"`
	ExtractedQuestion string           `json:"extracted_question"`
}

// Capture takes a screenshot and extracts the question with provider p.
func (c *Client) Capture(ctx context.Context, p CaptureProvider, req CaptureRequest) (*CaptureResult, error) {
	endpoint, err := p.Endpoint()
	if err != nil {
		return nil, err
	}
	var out CaptureResult
	if err := c.post(ctx, endpoint, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TranscriptQuestion is the response of the transcript extraction endpoint.
type TranscriptQuestion struct {
	ExtractedQuestion string `json:"extracted_question"`
	StorageKey        string `json:"storage_key"`
}

// ExtractFromTranscript extracts a question from the recent transcript.
func (c *Client) ExtractFromTranscript(ctx context.Context) (*TranscriptQuestion, error) {
	var out TranscriptQuestion
	if err := c.post(ctx, "/api/extract-question-from-transcript", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractedQuestion returns the question extracted for one screenshot file.
func (c *Client) ExtractedQuestion(ctx context.Context, filename string) (string, error) {
	var out struct {
		Question string `json:"question"`
	}
	if err := c.get(ctx, "/api/extracted_question/"+url.PathEscape(filename), &out); err != nil {
		return "", err
	}
	return out.Question, nil
}

// ExtractedQuestions returns every extracted question keyed by screenshot path.
func (c *Client) ExtractedQuestions(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	if err := c.get(ctx, "/api/extracted_questions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Screenshots lists captured screenshots in capture order.
func (c *Client) Screenshots(ctx context.Context) ([]model.Screenshot, error) {
	var out []model.Screenshot
	if err := c.get(ctx, "/api/screenshots", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SolutionRequest is the body of every solution job endpoint.
type SolutionRequest struct {
	Question       string `json:"question"`
	ScreenshotPath string `json:"screenshot_path"`
	StorageKey     string `json:"storage_key,omitempty"`
}

// StartSolution submits a solution job. A nil error means the job was
// accepted, not that it finished.
func (c *Client) StartSolution(ctx context.Context, p SolutionProvider, req SolutionRequest) error {
	endpoint, err := p.Endpoint()
	if err != nil {
		return err
	}
	return c.post(ctx, endpoint, req, nil)
}

// SolutionStatus returns the job result stored under key. The result is
// not Ready while the job is still running.
func (c *Client) SolutionStatus(ctx context.Context, key string) (*model.CombinedSolution, error) {
	var out model.CombinedSolution
	if err := c.get(ctx, "/api/solution/status?key="+url.QueryEscape(key), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SolutionLookup is the response of GET /api/solution/:filename.
type SolutionLookup struct {
	Screenshot string `json:"screenshot"`
	model.CombinedSolution
	FollowupSolutions map[string]json.RawMessage `json:"followup_solutions"`
}

// SolutionForFile returns any stored solution for a screenshot file.
func (c *Client) SolutionForFile(ctx context.Context, filename string) (*SolutionLookup, error) {
	var out SolutionLookup
	if err := c.get(ctx, "/api/solution/"+url.PathEscape(filename), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FollowupRequest is the body of every follow-up job endpoint. It carries
// the field names of both backend generations.
type FollowupRequest struct {
	Problem         string `json:"problem"`
	Code            string `json:"code"`
	ReactQuestion   string `json:"react_question"`
	CurrentSolution string `json:"current_solution"`
	Transcript      string `json:"transcript"`
	ScreenshotPath  string `json:"screenshot_path"`
	StorageKey      string `json:"storage_key"`
	FollowupID      string `json:"followup_id"`
}

// StartFollowup submits a follow-up job.
func (c *Client) StartFollowup(ctx context.Context, p FollowupProvider, req FollowupRequest) error {
	endpoint, err := p.Endpoint()
	if err != nil {
		return err
	}
	return c.post(ctx, endpoint, req, nil)
}

// Solutions returns the index of every stored result.
func (c *Client) Solutions(ctx context.Context) (*SolutionIndex, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/solutions", &raw); err != nil {
		return nil, err
	}
	idx, err := ParseSolutionIndex(raw)
	if err != nil {
		return nil, &TransportError{Endpoint: "/api/solutions", Err: err}
	}
	return idx, nil
}

// Transcriptions returns the full transcription history.
func (c *Client) Transcriptions(ctx context.Context) ([]model.Transcription, error) {
	var out []model.Transcription
	if err := c.get(ctx, "/api/transcriptions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecentTranscriptions returns transcriptions from the last two minutes.
func (c *Client) RecentTranscriptions(ctx context.Context) ([]model.Transcription, error) {
	var out []model.Transcription
	if err := c.get(ctx, "/api/transcriptions/recent", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestTranscription returns the newest transcription, zero when none.
func (c *Client) LatestTranscription(ctx context.Context) (model.Transcription, error) {
	var out model.Transcription
	err := c.get(ctx, "/api/transcriptions/latest", &out)
	return out, err
}

// MarkQuestion records a new interview question.
func (c *Client) MarkQuestion(ctx context.Context, questionType, notes string) (*model.Question, error) {
	var out struct {
		Question model.Question `json:"question"`
	}
	body := map[string]string{"question_type": questionType, "notes": notes}
	if err := c.post(ctx, "/api/question/mark", body, &out); err != nil {
		return nil, err
	}
	return &out.Question, nil
}

// MarkFollowup attaches a follow-up to the current question.
func (c *Client) MarkFollowup(ctx context.Context, notes string) (*model.Followup, error) {
	var out struct {
		Followup model.Followup `json:"followup"`
	}
	if err := c.post(ctx, "/api/question/followup", map[string]string{"notes": notes}, &out); err != nil {
		return nil, err
	}
	return &out.Followup, nil
}

// Reset clears every interview record on the backend.
func (c *Client) Reset(ctx context.Context) error {
	return c.post(ctx, "/api/reset", nil, nil)
}
