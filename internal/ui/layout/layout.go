// Package layout draws the dashboard chrome: a header bar with the active
// screen and backend status, and a footer listing key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/interviewdeck/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// Below this width the question list shrinks.
	CompactWidth = 100
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool { return width < CompactWidth }

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// TooSmall is shown instead of the dashboard until the terminal is resized.
func TooSmall(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("The dashboard needs at least %dx%d.\n\nCurrent size: %dx%d", MinWidth, MinHeight, width, height))
}

// Frame is the chrome around the active screen.
type Frame struct {
	Title  string
	Status string // right side of the header
	Hints  []KeyHint
}

// Render draws the frame at width x height and fills the space between
// header and footer with body, which receives the size left for it.
func (f Frame) Render(width, height int, body func(width, height int) string) string {
	header := f.header(width)
	footer := f.footer(width)

	h := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := lipgloss.NewStyle().Width(width).Height(h).Render(body(width, h))
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (f Frame) header(width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  interviewdeck")
	title := theme.Body.Render(f.Title)
	status := theme.Subtle.Render(f.Status)

	// Two columns of border, two of padding.
	inner := max(width-4, 0)
	bw, tw, sw := lipgloss.Width(brand), lipgloss.Width(title), lipgloss.Width(status)
	gapL := max((inner-tw)/2-bw, 1)
	gapR := max(inner-bw-gapL-tw-sw, 1)

	return bar(brand+strings.Repeat(" ", gapL)+title+strings.Repeat(" ", gapR)+status, width)
}

func (f Frame) footer(width int) string {
	parts := make([]string, len(f.Hints))
	for i, h := range f.Hints {
		parts[i] = lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) + " " + theme.Subtle.Render(h.Description)
	}
	return bar("  "+strings.Join(parts, "   "), width)
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}
