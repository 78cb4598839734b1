package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

type stubScreen struct {
	title   string
	initRan bool
	keys    int
	other   int
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		s.keys++
	} else {
		s.other++
	}
	return s, nil
}

func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

type tickMsg struct{}

func TestPushPop(t *testing.T) {
	dash := &stubScreen{title: "Dashboard"}
	r := New(dash)

	hist := &stubScreen{title: "Job History"}
	r.Update(PushScreenMsg{Screen: hist})
	if r.Depth() != 2 || r.Active() != hist {
		t.Fatalf("expected history on top, depth %d", r.Depth())
	}
	if !hist.initRan {
		t.Error("pushed screen was not initialized")
	}
	if got := r.View(80, 24); got != "Job History" {
		t.Errorf("View() = %q", got)
	}

	r.Update(PopScreenMsg{})
	if r.Active() != dash {
		t.Fatalf("expected dashboard after pop, got %q", r.Active().Title())
	}
}

func TestPopKeepsRoot(t *testing.T) {
	r := New(&stubScreen{title: "Dashboard"})
	r.Pop()
	r.Update(PopScreenMsg{})
	if r.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", r.Depth())
	}
}

func TestKeysGoToTopOnly(t *testing.T) {
	dash := &stubScreen{title: "Dashboard"}
	hist := &stubScreen{title: "Job History"}
	r := New(dash)
	r.Push(hist)

	r.Update(tea.KeyPressMsg{Code: 'j', Text: "j"})
	if hist.keys != 1 || dash.keys != 0 {
		t.Errorf("keys: history=%d dashboard=%d", hist.keys, dash.keys)
	}
}

func TestOtherMessagesReachCoveredScreens(t *testing.T) {
	dash := &stubScreen{title: "Dashboard"}
	hist := &stubScreen{title: "Job History"}
	r := New(dash)
	r.Push(hist)

	r.Update(tickMsg{})
	if dash.other != 1 || hist.other != 1 {
		t.Errorf("tick: dashboard=%d history=%d, want 1 each", dash.other, hist.other)
	}
}
