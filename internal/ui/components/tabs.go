package components

import (
	"strings"

	"github.com/abhisek/interviewdeck/internal/ui/theme"
)

// Tab is one entry of a tab bar.
type Tab struct {
	ID    string
	Label string
	// Badge marks a tab with unseen content.
	Badge bool
}

// TabBar renders tabs in a row with the active one highlighted.
func TabBar(tabs []Tab, active string) string {
	parts := make([]string, len(tabs))
	for i, t := range tabs {
		label := t.Label
		if t.Badge {
			label += " •"
		}
		if t.ID == active {
			parts[i] = theme.TabActive.Render(label)
		} else {
			parts[i] = theme.TabInactive.Render(label)
		}
	}
	return strings.Join(parts, " ")
}
