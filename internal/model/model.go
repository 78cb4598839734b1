// Package model holds the wire and state types shared by the dashboard,
// the backend client and the reference backend.
package model

import (
	"bytes"
	"encoding/json"
	"path"
	"strings"
)

// Speaker identifies who produced a transcription line.
type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerInterviewee Speaker = "interviewee"
)

// Other returns the opposite speaker.
func (s Speaker) Other() Speaker {
	if s == SpeakerInterviewee {
		return SpeakerInterviewer
	}
	return SpeakerInterviewee
}

// QuestionType values accepted by the capture endpoints.
const (
	QuestionCoding = "coding"
	QuestionDesign = "design"
	QuestionReact  = "react"
)

// Screenshot is an immutable capture record. Path doubles as the storage key.
type Screenshot struct {
	Path         string `json:"path"`
	Timestamp    string `json:"timestamp"`
	QuestionType string `json:"question_type"`
	Notes        string `json:"notes,omitempty"`
}

// Filename returns the last path element, as used by the per-file endpoints.
func (s Screenshot) Filename() string {
	return Filename(s.Path)
}

// Filename returns the last element of a storage path.
func Filename(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}

// StructuredSolution is a generated answer split by dashboard tab.
type StructuredSolution struct {
	Explanation string `json:"explanation,omitempty"`
	Solution    string `json:"solution,omitempty"`
	Code        string `json:"code,omitempty"`
	Complexity  string `json:"complexity,omitempty"`
	Strategy    string `json:"strategy,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare string. Older backends
// store plain text for some providers; it lands in Solution.
func (s *StructuredSolution) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = StructuredSolution{Solution: text}
		return nil
	}
	type plain StructuredSolution
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = StructuredSolution(p)
	return nil
}

// CombinedSolution is the job result for one storage key.
type CombinedSolution struct {
	Solution      *StructuredSolution `json:"solution"`
	ReactSolution *string             `json:"react_solution"`
}

// Ready reports whether the result is present. An empty React string
// counts as absent.
func (c *CombinedSolution) Ready() bool {
	if c == nil {
		return false
	}
	return c.Solution != nil || (c.ReactSolution != nil && *c.ReactSolution != "")
}

// Code returns the code a follow-up builds on. React code wins.
func (c *CombinedSolution) Code() string {
	if c == nil {
		return ""
	}
	if c.ReactSolution != nil && *c.ReactSolution != "" {
		return *c.ReactSolution
	}
	if c.Solution != nil {
		return c.Solution.Code
	}
	return ""
}

// FollowupSolution is a follow-up answer produced from the recent transcript.
type FollowupSolution struct {
	Provider    string `json:"provider,omitempty"`
	Key         string `json:"key,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	Solution    string `json:"solution,omitempty"`
	Code        string `json:"code,omitempty"`
	Raw         string `json:"raw,omitempty"`
	IsFollowup  bool   `json:"is_followup,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// Text returns the most complete human readable body.
func (f *FollowupSolution) Text() string {
	if f == nil {
		return ""
	}
	var parts []string
	for _, s := range []string{f.Explanation, f.Solution, f.Raw} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Transcription is one recognised chunk of audio.
type Transcription struct {
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
	Speaker   Speaker `json:"speaker,omitempty"`
}

// Followup is a follow-up marker attached to a marked question.
type Followup struct {
	ID        int    `json:"id"`
	Notes     string `json:"notes"`
	Timestamp string `json:"timestamp"`
}

// Question is a marked interview question.
type Question struct {
	ID        int        `json:"id"`
	Type      string     `json:"type"`
	Notes     string     `json:"notes"`
	Timestamp string     `json:"timestamp"`
	Followups []Followup `json:"followups"`
}

// TimestampLayout is the layout the backend uses for all timestamps.
const TimestampLayout = "2006-01-02 15:04:05"
