// Package dashboard is the main interview screen: recording, screenshots
// and the question on the left, solution tabs on the right.
package dashboard

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/interviewdeck/internal/api"
	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/managers"
	"github.com/abhisek/interviewdeck/internal/router"
	"github.com/abhisek/interviewdeck/internal/state"
	"github.com/abhisek/interviewdeck/internal/ui/components"
	"github.com/abhisek/interviewdeck/internal/ui/layout"
)

// Options configures the dashboard.
type Options struct {
	Managers *managers.Set
	State    *state.Store

	// Context bounds every action the dashboard starts.
	Context context.Context

	// PollTimeout sizes the generation countdown.
	PollTimeout time.Duration

	// History builds the job history screen. Nil disables it.
	History func() router.Screen

	Now func() time.Time
}

type mode int

const (
	modeNormal mode = iota
	modeMenu
	modeNotes
	modeConfirmReset
)

// actionDoneMsg reports that a background action returned.
type actionDoneMsg struct {
	name string
	err  error
}

type tickMsg time.Time

// Screen implements router.Screen for the dashboard.
type Screen struct {
	set   *managers.Set
	state *state.Store
	ctx   context.Context
	now   func() time.Time

	pollTimeout time.Duration
	history     func() router.Screen

	mode    mode
	menu    components.Menu
	notes   components.TextInput
	confirm int // 0 = yes, 1 = no

	notices    map[events.Panel]events.Notice
	lastNotice *events.Notice

	generatingSince time.Time
	followupUnseen  bool
	scroll          int
	busy            map[string]bool
}

var _ router.Screen = (*Screen)(nil)
var _ router.KeyHinter = (*Screen)(nil)

// New creates the dashboard.
func New(opts Options) *Screen {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Screen{
		set:         opts.Managers,
		state:       opts.State,
		ctx:         ctx,
		now:         now,
		pollTimeout: opts.PollTimeout,
		history:     opts.History,
		notices:     map[events.Panel]events.Notice{},
		busy:        map[string]bool{},
	}
}

func (s *Screen) Init() tea.Cmd {
	return tick()
}

func (s *Screen) Title() string {
	return "Dashboard"
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// run executes fn off the update loop. A second run of the same action
// while the first is still going is ignored.
func (s *Screen) run(name string, fn func(ctx context.Context) error) tea.Cmd {
	if s.busy[name] {
		return nil
	}
	s.busy[name] = true
	ctx := s.ctx
	return func() tea.Msg {
		return actionDoneMsg{name: name, err: fn(ctx)}
	}
}

func (s *Screen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return s, tick()

	case actionDoneMsg:
		// Managers surface failures as notices; nothing more to show.
		delete(s.busy, msg.name)
		return s, nil

	case StateChangedMsg:
		s.onStateChanged(msg)
		return s, nil

	case NoticeMsg:
		n := msg.Notice
		s.notices[n.Panel] = n
		s.lastNotice = &n
		return s, nil

	case FollowupMsg:
		if s.state.String(state.UIActiveTab) != state.TabFollowup {
			s.followupUnseen = true
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.mode == modeNotes {
		var cmd tea.Cmd
		s.notes, cmd = s.notes.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) onStateChanged(msg StateChangedMsg) {
	switch msg.Path {
	case state.SolutionGenerating:
		if on, _ := msg.Value.(bool); on {
			s.generatingSince = s.now()
		} else {
			s.generatingSince = time.Time{}
		}
	case state.UIActiveTab:
		s.scroll = 0
		if msg.Value == state.TabFollowup {
			s.followupUnseen = false
		}
	case state.SolutionCurrent:
		s.scroll = 0
	case state.BranchSolution:
		// Reset writes whole branches.
		s.generatingSince = time.Time{}
		s.followupUnseen = false
	}
}

func (s *Screen) handleKey(msg tea.KeyMsg) (router.Screen, tea.Cmd) {
	switch s.mode {
	case modeMenu:
		return s.handleMenuKey(msg)
	case modeNotes:
		return s.handleNotesKey(msg)
	case modeConfirmReset:
		return s.handleConfirmKey(msg)
	}

	set := s.set
	switch key := msg.String(); key {
	case "r":
		return s, s.run("recording", set.Recording.Toggle)
	case "c":
		s.openMenu(captureMenu(s))
	case "s":
		s.openMenu(solutionMenu(s))
	case "f":
		s.openMenu(followupMenu(s))
	case "t":
		return s, s.run("transcript-question", set.Question.ExtractFromTranscript)
	case "m":
		return s, s.run("mark-question", set.Question.MarkQuestion)
	case "M":
		return s, s.run("mark-followup", set.Question.MarkFollowup)
	case "y":
		set.Question.CycleType()
	case "n":
		s.notes = components.NewTextInput("Notes for the next mark or capture", s.state.String(state.QuestionNotes), 200)
		s.mode = modeNotes
		return s, s.notes.Init()
	case "[":
		return s, s.run("select", func(ctx context.Context) error { return set.Screenshot.SelectOffset(ctx, -1) })
	case "]":
		return s, s.run("select", func(ctx context.Context) error { return set.Screenshot.SelectOffset(ctx, 1) })
	case "tab", "right", "l":
		set.Shell.CycleTab(1)
	case "shift+tab", "left", "h":
		set.Shell.CycleTab(-1)
	case "1", "2", "3", "4", "5", "6":
		set.Shell.SetTab(state.Tabs[key[0]-'1'])
	case "up", "k":
		s.scroll = max(s.scroll-1, 0)
	case "down", "j":
		s.scroll++
	case "p":
		set.Shell.TogglePanel()
	case "R":
		s.confirm = 1
		s.mode = modeConfirmReset
	case "H":
		if s.history != nil {
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: s.history()} }
		}
	case "q":
		return s, tea.Quit
	}
	return s, nil
}

func (s *Screen) openMenu(m components.Menu) {
	s.menu = m
	s.mode = modeMenu
}

func (s *Screen) handleMenuKey(msg tea.KeyMsg) (router.Screen, tea.Cmd) {
	if msg.String() == "esc" {
		s.mode = modeNormal
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	if s.menu.Chosen || msg.String() == "enter" {
		s.mode = modeNormal
	}
	return s, cmd
}

func (s *Screen) handleNotesKey(msg tea.KeyMsg) (router.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.mode = modeNormal
		return s, nil
	case "enter":
		s.set.Question.SetNotes(s.notes.Value())
		s.mode = modeNormal
		return s, nil
	}
	var cmd tea.Cmd
	s.notes, cmd = s.notes.Update(msg)
	return s, cmd
}

func (s *Screen) handleConfirmKey(msg tea.KeyMsg) (router.Screen, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "h", "l", "tab":
		s.confirm = 1 - s.confirm
		return s, nil
	case "y", "Y":
		s.confirm = 0
	case "n", "N", "esc":
		s.mode = modeNormal
		return s, nil
	case "enter":
	default:
		return s, nil
	}
	s.mode = modeNormal
	if s.confirm != 0 {
		return s, nil
	}
	s.notices = map[events.Panel]events.Notice{}
	s.lastNotice = nil
	return s, s.run("reset", s.set.Shell.ResetAll)
}

func captureMenu(s *Screen) components.Menu {
	items := make([]components.MenuItem, 0, len(api.CaptureProviders))
	for _, p := range api.CaptureProviders {
		items = append(items, components.MenuItem{
			Label: string(p),
			Hint:  p.QuestionType(),
			Action: func() tea.Cmd {
				return s.run("capture", func(ctx context.Context) error { return s.set.Screenshot.Capture(ctx, p) })
			},
		})
	}
	return components.NewMenu("Capture screenshot with", items)
}

func solutionMenu(s *Screen) components.Menu {
	ready := s.set.Solution.CanRequestSolution()
	items := make([]components.MenuItem, 0, len(api.SolutionProviders))
	for _, p := range api.SolutionProviders {
		hint := ""
		if p.React() {
			hint = "react"
		}
		items = append(items, components.MenuItem{
			Label:    string(p),
			Hint:     hint,
			Disabled: !ready,
			Action: func() tea.Cmd {
				return s.run("solution", func(ctx context.Context) error { return s.set.Solution.Request(ctx, p) })
			},
		})
	}
	title := "Generate solution with"
	if !ready {
		title = "Generate solution (needs a question; one job at a time)"
	}
	return components.NewMenu(title, items)
}

func followupMenu(s *Screen) components.Menu {
	ready := s.set.Followup.CanRequestFollowup()
	items := make([]components.MenuItem, 0, len(api.FollowupProviders))
	for _, p := range api.FollowupProviders {
		items = append(items, components.MenuItem{
			Label:    string(p),
			Disabled: !ready,
			Action: func() tea.Cmd {
				return s.run("followup", func(ctx context.Context) error { return s.set.Followup.Request(ctx, p) })
			},
		})
	}
	title := "Answer follow-up with"
	if !ready {
		title = "Answer follow-up (needs a question and a solution)"
	}
	return components.NewMenu(title, items)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeMenu:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "1-9/Enter", Description: "Start"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeNotes:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save notes"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeConfirmReset:
		return []layout.KeyHint{
			{Key: "Y", Description: "Reset everything"},
			{Key: "N", Description: "Keep"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "r", Description: "Record"},
		{Key: "c", Description: "Capture"},
		{Key: "t", Description: "From transcript"},
		{Key: "s", Description: "Solve"},
		{Key: "f", Description: "Follow-up"},
		{Key: "Tab", Description: "Tabs"},
		{Key: "R", Description: "Reset"},
	}
	if s.history != nil {
		hints = append(hints, layout.KeyHint{Key: "H", Description: "History"})
	}
	return hints
}
