// Package router keeps the stack of dashboard screens.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/interviewdeck/internal/ui/layout"
)

// Screen is one full-window view. View renders only the area between the
// header and the footer.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHinter is implemented by screens that list their keys in the footer.
type KeyHinter interface {
	KeyHints() []layout.KeyHint
}

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen Screen
}

// PopScreenMsg closes the top screen.
type PopScreenMsg struct{}

// Router delivers messages to a stack of screens. The bottom screen is
// never popped.
type Router struct {
	stack []Screen
}

func New(root Screen) *Router {
	return &Router{stack: []Screen{root}}
}

// Push opens s and returns its Init command.
func (r *Router) Push(s Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes the top screen unless it is the root.
func (r *Router) Pop() {
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

// Active is the top screen.
func (r *Router) Active() Screen {
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

// Update handles navigation and routes msg. Input goes to the top screen
// only. Anything else reaches every screen, so a screen covered by another
// keeps its timers running and still sees the results it is waiting for.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		r.Pop()
		return nil
	case tea.KeyMsg, tea.MouseMsg, tea.PasteMsg:
		top := len(r.stack) - 1
		var cmd tea.Cmd
		r.stack[top], cmd = r.stack[top].Update(msg)
		return cmd
	}

	cmds := make([]tea.Cmd, len(r.stack))
	for i, s := range r.stack {
		r.stack[i], cmds[i] = s.Update(msg)
	}
	return tea.Batch(cmds...)
}

// View renders the top screen.
func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
