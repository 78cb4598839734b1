// Package theme holds the dashboard palette and shared styles.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette: dark slate background, blue for focus, rose for anything live
// or broken.
var (
	Primary   = lipgloss.Color("#60A5FA")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F59E0B")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0F172A")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

func fg(c color.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

// Text styles.
var (
	Body   = fg(Text)
	Subtle = fg(TextDim)
	Hint   = fg(TextDim).Italic(true)
	Code   = fg(Secondary)
)

// Panels hold the question list and the solution view.
var (
	Panel      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 1)
	PanelTitle = fg(Primary).Bold(true)
)

// Item and notice states.
var (
	Selected   = fg(Primary).Bold(true)
	Unselected = fg(Text)
	Recording  = fg(Error).Bold(true)
	Info       = fg(Success)
	Warn       = fg(Accent)
	Failure    = fg(Error).Bold(true)
)

// Widgets.
var (
	ProgressFilled = lipgloss.NewStyle().Background(Secondary)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)

	TabActive   = lipgloss.NewStyle().Foreground(BgDark).Background(Primary).Bold(true).Padding(0, 1)
	TabInactive = fg(TextDim).Padding(0, 1)

	ButtonActive   = lipgloss.NewStyle().Background(Primary).Foreground(BgDark).Bold(true).Padding(0, 2)
	ButtonInactive = lipgloss.NewStyle().Background(BgCard).Foreground(Text).Padding(0, 2)
)
