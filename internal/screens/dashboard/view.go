package dashboard

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/model"
	"github.com/abhisek/interviewdeck/internal/state"
	"github.com/abhisek/interviewdeck/internal/ui/components"
	"github.com/abhisek/interviewdeck/internal/ui/layout"
	"github.com/abhisek/interviewdeck/internal/ui/theme"
)

const (
	leftWidth        = 38
	leftWidthCompact = 30
)

var tabLabels = map[string]string{
	state.TabExplanation: "Explanation",
	state.TabCode:        "Code",
	state.TabComplexity:  "Complexity",
	state.TabStrategy:    "Strategy",
	state.TabFollowup:    "Follow-up",
	state.TabTranscript:  "Transcript",
}

func (s *Screen) View(width, height int) string {
	right := width
	var left string
	if !s.state.Bool(state.UILeftCollapsed) {
		lw := leftWidth
		if layout.IsCompactWidth(width) {
			lw = leftWidthCompact
		}
		left = s.renderLeft(lw, height)
		right = width - lw
	}
	main := s.renderMain(right, height)
	if left == "" {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, main)
}

// panel frames body with a title; width and height include the border.
func panel(title, body string, width, height int) string {
	inner := max(width-4, 1)
	content := theme.PanelTitle.Render(title) + "\n" + body
	return theme.Panel.
		Width(width).
		Height(max(height, 3)).
		MaxHeight(max(height, 3)).
		Render(lipgloss.NewStyle().Width(inner).Render(content))
}

func (s *Screen) noticeLine(p events.Panel) string {
	n, ok := s.notices[p]
	if !ok {
		return ""
	}
	return "\n" + renderNotice(n)
}

func renderNotice(n events.Notice) string {
	switch n.Level {
	case events.LevelError:
		return theme.Failure.Render("✗ " + n.Text)
	case events.LevelWarn:
		return theme.Warn.Render("! " + n.Text)
	}
	return theme.Info.Render("✓ " + n.Text)
}

func (s *Screen) renderLeft(width, height int) string {
	recH := 6
	qH := max(height/2, 10)
	shotH := max(height-recH-qH, 5)
	return lipgloss.JoinVertical(lipgloss.Left,
		panel("Recording", s.recordingBody(), width, recH),
		panel("Screenshots", s.screenshotBody(shotH-3), width, shotH),
		panel("Question", s.questionBody(), width, qH),
	)
}

func (s *Screen) recordingBody() string {
	status := theme.Hint.Render("○ idle")
	if s.state.Bool(state.RecordingIsRecording) {
		status = theme.Recording.Render("● REC")
	}
	return fmt.Sprintf("%s  %s\n%d lines, next: %s",
		status,
		theme.Hint.Render("[r]"),
		s.state.Int(state.RecordingCount),
		s.state.Speaker(),
	) + s.noticeLine(events.PanelRecording)
}

func (s *Screen) screenshotBody(rows int) string {
	items := s.state.Screenshots()
	if len(items) == 0 {
		return theme.Hint.Render("No screenshots. [c] to capture.") + s.noticeLine(events.PanelScreenshot)
	}
	current := s.state.String(state.ScreenshotCurrentPath)
	rows = max(rows-1, 1)
	start := max(len(items)-rows, 0)

	var b strings.Builder
	for _, it := range items[start:] {
		line := fmt.Sprintf("%s  %s", it.Filename(), it.QuestionType)
		if it.Path == current {
			b.WriteString(theme.Selected.Render("▸ " + line))
		} else {
			b.WriteString(theme.Unselected.Render("  " + line))
		}
		b.WriteString("\n")
	}
	if s.state.Bool(state.ScreenshotManualSelected) {
		b.WriteString(theme.Hint.Render("pinned  [ ] to move"))
	}
	return strings.TrimRight(b.String(), "\n") + s.noticeLine(events.PanelScreenshot)
}

func (s *Screen) questionBody() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Type: %s %s\n", theme.Selected.Render(s.state.String(state.QuestionType)), theme.Hint.Render("[y]"))
	if key := s.state.StorageKey(); key != "" {
		fmt.Fprintf(&b, "Key:  %s\n", theme.Hint.Render(model.Filename(key)))
	}
	if q := s.state.CurrentQuestion(); q != nil {
		fmt.Fprintf(&b, "Marked #%d, %d follow-ups\n", q.ID, len(q.Followups))
	}
	if s.mode == modeNotes {
		b.WriteString("Notes: " + s.notes.View() + "\n")
	} else if notes := s.state.String(state.QuestionNotes); notes != "" {
		b.WriteString("Notes: " + notes + "\n")
	}
	b.WriteString("\n")
	if q := s.state.String(state.QuestionExtracted); q != "" {
		b.WriteString(theme.Body.Render(q))
	} else {
		b.WriteString(theme.Hint.Render("No question yet. Capture a screenshot or [t] extract from the transcript."))
	}
	return b.String() + s.noticeLine(events.PanelQuestion)
}

func (s *Screen) renderMain(width, height int) string {
	active := s.state.String(state.UIActiveTab)
	tabs := make([]components.Tab, len(state.Tabs))
	for i, id := range state.Tabs {
		tabs[i] = components.Tab{ID: id, Label: tabLabels[id], Badge: id == state.TabFollowup && s.followupUnseen}
	}

	header := components.TabBar(tabs, active) + "\n" + s.statusLine(width-4)
	bodyRows := max(height-2-lipgloss.Height(header)-1, 1)

	var body string
	switch s.mode {
	case modeMenu:
		body = s.menu.View()
	case modeConfirmReset:
		body = theme.Warn.Render("Reset the interview? This clears every screenshot, question, solution and transcription on the backend.") +
			"\n\n" + components.ButtonRow([]string{"Reset", "Cancel"}, s.confirm)
	default:
		body = s.window(s.tabContent(active), width-4, bodyRows)
	}

	return theme.Panel.
		Width(width).
		Height(height).
		MaxHeight(height).
		Render(header + "\n\n" + body)
}

func (s *Screen) statusLine(width int) string {
	if !s.generatingSince.IsZero() && s.state.Bool(state.SolutionGenerating) {
		return components.Countdown{
			Elapsed: s.now().Sub(s.generatingSince),
			Total:   s.pollTimeout,
			Width:   width,
		}.View()
	}
	if s.lastNotice != nil {
		return renderNotice(*s.lastNotice)
	}
	return theme.Hint.Render("Ready.")
}

// window wraps text to width and returns the rows starting at the scroll
// offset. The offset is clamped to the content.
func (s *Screen) window(text string, width, rows int) string {
	wrapped := lipgloss.NewStyle().Width(max(width, 1)).Render(text)
	lines := strings.Split(wrapped, "\n")
	s.scroll = min(s.scroll, max(len(lines)-rows, 0))
	end := min(s.scroll+rows, len(lines))
	return strings.Join(lines[s.scroll:end], "\n")
}

func (s *Screen) tabContent(tab string) string {
	switch tab {
	case state.TabTranscript:
		return s.transcriptContent()
	case state.TabFollowup:
		return s.followupContent()
	}

	sol := s.state.CurrentSolution()
	if !sol.Ready() {
		if s.state.Bool(state.SolutionGenerating) {
			return theme.Hint.Render("Generating solution...")
		}
		return theme.Hint.Render("No solution yet. [s] to generate one.")
	}

	var st model.StructuredSolution
	if sol.Solution != nil {
		st = *sol.Solution
	}
	switch tab {
	case state.TabCode:
		if code := sol.Code(); code != "" {
			return theme.Code.Render(code)
		}
	case state.TabComplexity:
		if st.Complexity != "" {
			return st.Complexity
		}
	case state.TabStrategy:
		if st.Strategy != "" {
			return st.Strategy
		}
	default:
		text := st.Explanation
		if st.Solution != "" {
			text = strings.TrimSpace(text + "\n\n" + st.Solution)
		}
		if text != "" {
			return text
		}
		if sol.ReactSolution != nil {
			return theme.Hint.Render("React component generated. See the Code tab.")
		}
	}
	return theme.Hint.Render("Nothing for this tab.")
}

func (s *Screen) followupContent() string {
	f := s.state.Followup()
	if f == nil {
		return theme.Hint.Render("No follow-up yet. [f] to answer the latest follow-up from the transcript.")
	}
	var b strings.Builder
	if f.Provider != "" {
		b.WriteString(theme.Hint.Render("via "+f.Provider) + "\n\n")
	}
	b.WriteString(f.Text())
	if f.Code != "" {
		b.WriteString("\n\n" + theme.Code.Render(f.Code))
	}
	return b.String()
}

func (s *Screen) transcriptContent() string {
	list := s.state.Transcriptions()
	if len(list) == 0 {
		return theme.Hint.Render("No transcriptions. [r] to start recording.")
	}
	var b strings.Builder
	for _, t := range list {
		who := ""
		if t.Speaker != "" {
			who = string(t.Speaker) + ": "
		}
		b.WriteString(theme.Hint.Render(t.Timestamp) + "  " + who + t.Text + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
