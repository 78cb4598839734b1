package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/abhisek/interviewdeck/internal/llm"
	"github.com/abhisek/interviewdeck/internal/model"
)

// LLM purposes recorded with every request.
const (
	PurposeExtract  = "extract"
	PurposeSolution = "solution"
	PurposeFollowup = "followup"
)

// SolverConfig holds generation settings.
type SolverConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultSolverConfig returns the standard generation settings.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{MaxTokens: 4096, Temperature: 0.2}
}

// Solver runs the AI calls behind every backend job.
type Solver struct {
	providers *llm.Registry
	cfg       SolverConfig
}

// NewSolver creates a Solver over the provider registry.
func NewSolver(providers *llm.Registry, cfg SolverConfig) *Solver {
	return &Solver{providers: providers, cfg: cfg}
}

type questionOutput struct {
	Question string `json:"question"`
}

// ExtractQuestion reads the question from the screenshot at imagePath.
func (s *Solver) ExtractQuestion(ctx context.Context, provider string, kind Kind, imagePath string) (string, error) {
	img, err := llm.LoadImage(filepath.FromSlash(imagePath))
	if err != nil {
		return "", err
	}
	var out questionOutput
	err = s.generate(llm.WithPurpose(ctx, PurposeExtract), provider, llm.Request{
		System:   extractSystemPrompt,
		Messages: []llm.Message{llm.UserMessage(buildExtractMessage(kind), img)},
		Schema:   QuestionSchema,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("question extraction: %w", err)
	}
	return out.Question, nil
}

// QuestionFromTranscript finds the latest question asked in transcript.
func (s *Solver) QuestionFromTranscript(ctx context.Context, provider, transcript string) (string, error) {
	var out questionOutput
	err := s.generate(llm.WithPurpose(ctx, PurposeExtract), provider, llm.Request{
		System:   transcriptSystemPrompt,
		Messages: []llm.Message{llm.UserMessage(buildTranscriptMessage(transcript))},
		Schema:   QuestionSchema,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("transcript extraction: %w", err)
	}
	return out.Question, nil
}

// Solve generates a solution for question.
func (s *Solver) Solve(ctx context.Context, provider string, kind Kind, question string) (model.StructuredSolution, error) {
	schema := SolutionSchema
	if kind == KindReact {
		schema = ReactSolutionSchema
	}
	var out model.StructuredSolution
	err := s.generate(llm.WithPurpose(ctx, PurposeSolution), provider, llm.Request{
		System:   solutionSystemPrompt,
		Messages: []llm.Message{llm.UserMessage(buildSolutionMessage(kind, question))},
		Schema:   schema,
	}, &out)
	if err != nil {
		return model.StructuredSolution{}, fmt.Errorf("solution generation: %w", err)
	}
	return out, nil
}

// Followup answers a follow-up found in transcript.
func (s *Solver) Followup(ctx context.Context, provider, problem, code, transcript string) (model.FollowupSolution, error) {
	var out model.FollowupSolution
	err := s.generate(llm.WithPurpose(ctx, PurposeFollowup), provider, llm.Request{
		System:   solutionSystemPrompt,
		Messages: []llm.Message{llm.UserMessage(buildFollowupMessage(problem, code, transcript))},
		Schema:   FollowupSchema,
	}, &out)
	if err != nil {
		return model.FollowupSolution{}, fmt.Errorf("follow-up generation: %w", err)
	}
	return out, nil
}

// ReactFollowup answers a React follow-up as plain text.
func (s *Solver) ReactFollowup(ctx context.Context, provider, question, current, transcript string) (string, error) {
	raw, err := s.complete(llm.WithPurpose(ctx, PurposeFollowup), provider, llm.Request{
		System:   solutionSystemPrompt,
		Messages: []llm.Message{llm.UserMessage(buildReactFollowupMessage(question, current, transcript))},
	})
	if err != nil {
		return "", fmt.Errorf("react follow-up generation: %w", err)
	}
	// Unschematized replies are plain text; some providers quote them.
	var text string
	if json.Unmarshal(raw, &text) != nil {
		text = string(raw)
	}
	return strings.TrimSpace(text), nil
}

func (s *Solver) generate(ctx context.Context, provider string, req llm.Request, out any) error {
	raw, err := s.complete(ctx, provider, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (s *Solver) complete(ctx context.Context, provider string, req llm.Request) (json.RawMessage, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, err
	}
	req.MaxTokens = s.cfg.MaxTokens
	req.Temperature = s.cfg.Temperature

	resp, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Content, nil
}
