package api

import "fmt"

// CaptureProvider selects the screenshot + extraction endpoint.
type CaptureProvider string

const (
	CaptureClaude CaptureProvider = "claude"
	CaptureGemini CaptureProvider = "gemini"
	CaptureOpenAI CaptureProvider = "openai"
	CaptureDesign CaptureProvider = "design"
	CaptureReact  CaptureProvider = "react"
)

var captureEndpoints = map[CaptureProvider]string{
	CaptureClaude: "/api/screenshot",
	CaptureGemini: "/api/extract-with-gemini",
	CaptureOpenAI: "/api/extract-with-openai",
	CaptureDesign: "/api/get-design-question",
	CaptureReact:  "/api/extract-react-question",
}

// CaptureProviders lists every capture provider in menu order.
var CaptureProviders = []CaptureProvider{
	CaptureClaude, CaptureGemini, CaptureOpenAI, CaptureDesign, CaptureReact,
}

// Endpoint returns the capture route for p.
func (p CaptureProvider) Endpoint() (string, error) {
	if e, ok := captureEndpoints[p]; ok {
		return e, nil
	}
	return "", fmt.Errorf("unknown capture provider %q", p)
}

// QuestionType returns the question type the provider extracts.
func (p CaptureProvider) QuestionType() string {
	switch p {
	case CaptureDesign:
		return "design"
	case CaptureReact:
		return "react"
	}
	return "coding"
}

// SolutionProvider selects the solution job endpoint.
type SolutionProvider string

const (
	SolutionClaude       SolutionProvider = "claude"
	SolutionOpenAI       SolutionProvider = "openai"
	SolutionGemini       SolutionProvider = "gemini"
	SolutionReactGemini  SolutionProvider = "react-gemini"
	SolutionReactClaude  SolutionProvider = "react-claude"
	SolutionReact2Gemini SolutionProvider = "react2-gemini"
)

var solutionEndpoints = map[SolutionProvider]string{
	SolutionClaude:       "/api/solution",
	SolutionOpenAI:       "/api/solution-with-openai",
	SolutionGemini:       "/api/solution-with-gemini",
	SolutionReactGemini:  "/api/react-solution-with-gemini",
	SolutionReactClaude:  "/api/react-solution-with-claude",
	SolutionReact2Gemini: "/api/react-solution2-with-gemini",
}

// SolutionProviders lists every solution provider in menu order.
var SolutionProviders = []SolutionProvider{
	SolutionClaude, SolutionOpenAI, SolutionGemini,
	SolutionReactGemini, SolutionReactClaude, SolutionReact2Gemini,
}

// Endpoint returns the job start route for p.
func (p SolutionProvider) Endpoint() (string, error) {
	if e, ok := solutionEndpoints[p]; ok {
		return e, nil
	}
	return "", fmt.Errorf("unknown solution provider %q", p)
}

// React reports whether the provider produces a raw React component.
func (p SolutionProvider) React() bool {
	switch p {
	case SolutionReactGemini, SolutionReactClaude, SolutionReact2Gemini:
		return true
	}
	return false
}

// FollowupProvider selects the follow-up job endpoint.
type FollowupProvider string

const (
	FollowupClaude      FollowupProvider = "claude"
	FollowupGemini      FollowupProvider = "gemini"
	FollowupClaudeReact FollowupProvider = "claude-react"
	FollowupGeminiReact FollowupProvider = "gemini-react"
)

type followupRoute struct {
	endpoint string
	jobType  string // composite key segment; empty when results are keyed by id
}

var followupRoutes = map[FollowupProvider]followupRoute{
	FollowupClaude:      {endpoint: "/api/solution/followup", jobType: "followup"},
	FollowupGemini:      {endpoint: "/api/solution/followup-with-gemini", jobType: "gemini-followup"},
	FollowupClaudeReact: {endpoint: "/api/solution/followup-with-claude-react"},
	FollowupGeminiReact: {endpoint: "/api/solution/react-followup-with-gemini", jobType: "gemini-react-followup"},
}

// FollowupProviders lists every follow-up provider in menu order.
var FollowupProviders = []FollowupProvider{
	FollowupClaude, FollowupGemini, FollowupClaudeReact, FollowupGeminiReact,
}

// Endpoint returns the job start route for p.
func (p FollowupProvider) Endpoint() (string, error) {
	if r, ok := followupRoutes[p]; ok {
		return r.endpoint, nil
	}
	return "", fmt.Errorf("unknown follow-up provider %q", p)
}

// JobType returns the composite key segment results are stored under.
// It is empty for providers whose results are keyed by follow-up id.
func (p FollowupProvider) JobType() string {
	return followupRoutes[p].jobType
}

// ByID reports whether results are found in followup_solutions[id].
func (p FollowupProvider) ByID() bool {
	r, ok := followupRoutes[p]
	return ok && r.jobType == ""
}

// FollowupPrefix returns the composite key prefix for results of p stored
// under storageKey, "<storageKey>:<jobType>:".
func FollowupPrefix(storageKey string, p FollowupProvider) string {
	return storageKey + ":" + p.JobType() + ":"
}

// FollowupProviderForJobType maps a composite key segment back to its provider.
func FollowupProviderForJobType(jobType string) (FollowupProvider, bool) {
	for p, r := range followupRoutes {
		if r.jobType != "" && r.jobType == jobType {
			return p, true
		}
	}
	return "", false
}
