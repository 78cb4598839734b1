// Package events is the dashboard's publish/subscribe registry.
package events

import (
	"time"

	"github.com/abhisek/interviewdeck/internal/model"
)

// Topic names a channel on the Bus.
type Topic string

const (
	// TopicStateChanged fires after every effective state write.
	TopicStateChanged Topic = "state:changed"

	// TopicFollowupAvailable fires when a follow-up poll finds a result.
	TopicFollowupAvailable Topic = "solution:followupAvailable"

	// TopicNotice carries user visible messages for a panel.
	TopicNotice Topic = "ui:notice"

	// TopicJobFinished fires when a poll registration ends for any reason.
	TopicJobFinished Topic = "job:finished"
)

// PathTopic returns the per-path change topic, "<path>:changed".
func PathTopic(path string) Topic {
	return Topic(path + ":changed")
}

// Event is the closed set of payloads carried by the Bus.
type Event interface {
	isEvent()
}

// PathChanged is emitted on PathTopic(Path).
type PathChanged struct {
	Path  string
	Value any
	Old   any
}

// StateChanged is emitted on TopicStateChanged.
type StateChanged struct {
	Path  string
	Value any
	Old   any
}

// FollowupAvailable is emitted on TopicFollowupAvailable.
type FollowupAvailable struct {
	Provider string
	Solution model.FollowupSolution
}

// Panel is the dashboard region a Notice targets.
type Panel string

const (
	PanelRecording  Panel = "recording"
	PanelScreenshot Panel = "screenshot"
	PanelQuestion   Panel = "question"
	PanelSolution   Panel = "solution"
	PanelFollowup   Panel = "followup"
	PanelShell      Panel = "shell"
)

// Level grades a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Notice is a user visible message.
type Notice struct {
	Panel Panel
	Level Level
	Text  string
}

// JobFinished reports the end of a poll registration.
type JobFinished struct {
	Key     string
	Outcome string
	Elapsed time.Duration
	Err     string
}

func (PathChanged) isEvent()       {}
func (StateChanged) isEvent()      {}
func (FollowupAvailable) isEvent() {}
func (Notice) isEvent()            {}
func (JobFinished) isEvent()       {}
