package backend

import "github.com/abhisek/interviewdeck/internal/llm"

// QuestionSchema is the response schema for question extraction.
var QuestionSchema = &llm.Schema{
	Name:        "interview-question",
	Description: "The interview question found in a screenshot or transcript",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The full question text including constraints and examples. Empty when no question is present.",
			},
		},
		"required":             []any{"question"},
		"additionalProperties": false,
	},
}

// SolutionSchema is the response schema for coding and design solutions.
var SolutionSchema = &llm.Schema{
	Name:        "interview-solution",
	Description: "A solution to an interview question, split into dashboard sections",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "How the approach works, in a few short paragraphs",
			},
			"code": map[string]any{
				"type":        "string",
				"description": "Complete working code. Empty for design questions.",
			},
			"complexity": map[string]any{
				"type":        "string",
				"description": "Time and space complexity with one line of reasoning each",
			},
			"strategy": map[string]any{
				"type":        "string",
				"description": "What to say to the interviewer while presenting the solution",
			},
		},
		"required":             []any{"explanation", "code", "complexity", "strategy"},
		"additionalProperties": false,
	},
}

// ReactSolutionSchema is the response schema for React component solutions.
var ReactSolutionSchema = &llm.Schema{
	Name:        "react-solution",
	Description: "A React component answering a front-end interview question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "Short description of the component structure and state",
			},
			"code": map[string]any{
				"type":        "string",
				"description": "The complete component source",
			},
		},
		"required":             []any{"explanation", "code"},
		"additionalProperties": false,
	},
}

// FollowupSchema is the response schema for follow-up answers.
var FollowupSchema = &llm.Schema{
	Name:        "followup-solution",
	Description: "An updated solution addressing the interviewer's follow-up",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "What the follow-up asks for and how the solution changes",
			},
			"solution": map[string]any{
				"type":        "string",
				"description": "The answer to say out loud",
			},
			"code": map[string]any{
				"type":        "string",
				"description": "The updated code, or empty when no code change is needed",
			},
		},
		"required":             []any{"explanation", "solution", "code"},
		"additionalProperties": false,
	},
}
