package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/interviewdeck/internal/ui/theme"
)

// MenuItem is one provider choice.
type MenuItem struct {
	Label    string
	Hint     string // dimmed after the label
	Action   func() tea.Cmd
	Disabled bool
}

// Menu picks an item with the arrow keys and Enter, or directly by its
// number. Disabled items are shown but skipped.
type Menu struct {
	Title    string
	Items    []MenuItem
	Selected int

	// Chosen is set once an item's action has run.
	Chosen bool
}

func NewMenu(title string, items []MenuItem) Menu {
	m := Menu{Title: title, Items: items, Selected: -1}
	m.move(1)
	return m
}

// move selects the next enabled item in direction dir, wrapping around.
func (m *Menu) move(dir int) {
	n := len(m.Items)
	for step := 1; step <= n; step++ {
		i := ((m.Selected+dir*step)%n + n) % n
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	switch k := key.String(); k {
	case "up", "k", "shift+tab":
		m.move(-1)
	case "down", "j", "tab":
		m.move(1)
	case "enter":
		return m.choose(m.Selected)
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			return m.choose(int(k[0] - '1'))
		}
	}
	return m, nil
}

func (m Menu) choose(i int) (Menu, tea.Cmd) {
	if i < 0 || i >= len(m.Items) || m.Items[i].Disabled {
		return m, nil
	}
	m.Selected = i
	m.Chosen = true
	if m.Items[i].Action == nil {
		return m, nil
	}
	return m, m.Items[i].Action()
}

func (m Menu) View() string {
	var b strings.Builder
	if m.Title != "" {
		b.WriteString(theme.PanelTitle.Render(m.Title) + "\n\n")
	}
	disabled := lipgloss.NewStyle().Foreground(theme.Border)
	for i, item := range m.Items {
		marker, style := "  ", theme.Unselected
		switch {
		case item.Disabled:
			style = disabled
		case i == m.Selected:
			marker, style = "▸ ", theme.Selected
		}
		line := style.Render(fmt.Sprintf("  %s%d  %s", marker, i+1, item.Label))
		if item.Hint != "" {
			line += "  " + theme.Hint.Render(item.Hint)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
