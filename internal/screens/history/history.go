// Package history lists finished solution and follow-up jobs from the
// audit store.
package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/interviewdeck/internal/poller"
	"github.com/abhisek/interviewdeck/internal/router"
	"github.com/abhisek/interviewdeck/internal/screens/dashboard"
	"github.com/abhisek/interviewdeck/internal/store"
	"github.com/abhisek/interviewdeck/internal/ui/layout"
	"github.com/abhisek/interviewdeck/internal/ui/theme"
)

// pageSize caps how many jobs one load fetches.
const pageSize = 100

type historyLoadedMsg struct {
	Jobs []store.JobEvent
	Err  error
}

// HistoryScreen displays finished poll jobs, newest first.
type HistoryScreen struct {
	eventRepo store.EventRepo
	jobs      []store.JobEvent
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ router.Screen = (*HistoryScreen)(nil)
var _ router.KeyHinter = (*HistoryScreen)(nil)

// New creates a new HistoryScreen. A nil repo shows an empty history.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{}
		}
		jobs, err := repo.QueryJobEvents(context.Background(), store.QueryOpts{Limit: pageSize})
		return historyLoadedMsg{Jobs: jobs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Job History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "r", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.jobs = msg.Jobs
		s.expanded = make(map[int]bool)
		s.selected = min(s.selected, max(len(s.jobs)-1, 0))
		return s, nil

	case dashboard.JobFinishedMsg:
		return s, s.load()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.jobs)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		case "r":
			return s, s.load()
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.jobs) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No finished jobs yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, job := range s.jobs {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		elapsed := (time.Duration(job.ElapsedMs) * time.Millisecond).Round(100 * time.Millisecond)
		line := fmt.Sprintf("%s%s  %-9s %-10s %6s  %s",
			prefix, job.Timestamp.Local().Format("15:04:05"), job.Kind, job.Outcome, elapsed, target(job.Key))

		style := lipgloss.NewStyle().Foreground(outcomeColor(job.Outcome))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := "    key " + job.Key
			if job.ErrorMessage != "" {
				detail += "\n    error " + job.ErrorMessage
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// target strips the kind prefix from a poll key.
func target(key string) string {
	if _, rest, ok := strings.Cut(key, ":"); ok {
		return rest
	}
	return key
}

func outcomeColor(outcome string) color.Color {
	switch poller.Outcome(outcome) {
	case poller.OutcomeCompleted:
		return theme.Success
	case poller.OutcomeFailed, poller.OutcomeTimedOut:
		return theme.Error
	case poller.OutcomeSuperseded, poller.OutcomeCancelled:
		return theme.TextDim
	default:
		return theme.Text
	}
}
