package state

import "github.com/abhisek/interviewdeck/internal/model"

// Branch roots. Reset overwrites each one with its default.
const (
	BranchRecording   = "recording"
	BranchScreenshots = "screenshots"
	BranchQuestion    = "question"
	BranchSolution    = "solution"
	BranchUI          = "ui"
)

// Leaf paths.
const (
	RecordingIsRecording    = "recording.isRecording"
	RecordingCount          = "recording.transcriptionCount"
	RecordingSpeaker        = "recording.currentSpeaker"
	RecordingTranscriptions = "recording.transcriptions"

	ScreenshotItems          = "screenshots.items"
	ScreenshotManualSelected = "screenshots.manuallySelectedScreenshot"
	ScreenshotCurrentPath    = "screenshots.currentScreenshotPath"

	QuestionCurrent    = "question.current"
	QuestionExtracted  = "question.currentExtractedQuestion"
	QuestionType       = "question.type"
	QuestionNotes      = "question.notes"
	QuestionStorageKey = "question.currentStorageKey"

	SolutionGenerating = "solution.isGenerating"
	SolutionCurrent    = "solution.currentSolution"
	SolutionFollowup   = "solution.followup"

	UILeftCollapsed = "ui.leftPanelCollapsed"
	UIActiveTab     = "ui.activeTab"
)

// Dashboard tabs stored under UIActiveTab.
const (
	TabExplanation = "explanation"
	TabCode        = "code"
	TabComplexity  = "complexity"
	TabStrategy    = "strategy"
	TabFollowup    = "followup"
	TabTranscript  = "transcript"
)

// Tabs lists the dashboard tabs in display order.
var Tabs = []string{TabExplanation, TabCode, TabComplexity, TabStrategy, TabFollowup, TabTranscript}

// Defaults returns a fresh default tree. Every call allocates new maps.
func Defaults() map[string]any {
	return map[string]any{
		BranchRecording: map[string]any{
			"isRecording":        false,
			"transcriptionCount": 0,
			"currentSpeaker":     model.SpeakerInterviewer,
			"transcriptions":     []model.Transcription{},
		},
		BranchScreenshots: map[string]any{
			"items":                      []model.Screenshot{},
			"manuallySelectedScreenshot": false,
			"currentScreenshotPath":      "",
		},
		BranchQuestion: map[string]any{
			"current":                  (*model.Question)(nil),
			"currentExtractedQuestion": "",
			"type":                     model.QuestionCoding,
			"notes":                    "",
			"currentStorageKey":        "",
		},
		BranchSolution: map[string]any{
			"isGenerating":    false,
			"currentSolution": (*model.CombinedSolution)(nil),
			"followup":        (*model.FollowupSolution)(nil),
		},
		BranchUI: map[string]any{
			"leftPanelCollapsed": false,
			"activeTab":          TabExplanation,
		},
	}
}

// branchOrder fixes the order Reset writes branches in.
var branchOrder = []string{BranchRecording, BranchScreenshots, BranchQuestion, BranchSolution, BranchUI}
