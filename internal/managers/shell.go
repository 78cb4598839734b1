package managers

import (
	"context"
	"slices"

	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/state"
)

// Shell owns dashboard-wide actions.
type Shell struct {
	base
}

// TogglePanel collapses or expands the left panel.
func (s *Shell) TogglePanel() {
	s.state.Update(state.UILeftCollapsed, !s.state.Bool(state.UILeftCollapsed))
}

// SetTab activates tab. Unknown tabs are ignored.
func (s *Shell) SetTab(tab string) bool {
	if !slices.Contains(state.Tabs, tab) {
		return false
	}
	s.state.Update(state.UIActiveTab, tab)
	return true
}

// CycleTab moves the active tab by delta, wrapping around.
func (s *Shell) CycleTab(delta int) string {
	n := len(state.Tabs)
	i := slices.Index(state.Tabs, s.state.String(state.UIActiveTab))
	if i < 0 {
		i = 0
	}
	next := state.Tabs[((i+delta)%n+n)%n]
	s.state.Update(state.UIActiveTab, next)
	return next
}

// ResetAll clears the backend session, then cancels every poll and
// restores default state. Nothing local changes if the backend refuses.
func (s *Shell) ResetAll(ctx context.Context) error {
	if err := s.client.Reset(ctx); err != nil {
		s.notify(events.PanelShell, events.LevelError, "Reset failed: %s", describe(err))
		return err
	}
	s.sched.CancelAll()
	s.state.Reset()
	s.notify(events.PanelShell, events.LevelInfo, "Interview reset.")
	return nil
}
