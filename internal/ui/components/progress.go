package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/interviewdeck/internal/ui/theme"
)

// Countdown is a bar that fills as a job approaches its deadline.
type Countdown struct {
	Elapsed time.Duration
	Total   time.Duration
	Width   int
}

// Fraction returns Elapsed/Total clamped to [0, 1].
func (c Countdown) Fraction() float64 {
	if c.Total <= 0 {
		return 0
	}
	f := float64(c.Elapsed) / float64(c.Total)
	return min(max(f, 0), 1)
}

// View renders the bar followed by the elapsed and total seconds.
func (c Countdown) View() string {
	suffix := fmt.Sprintf(" %ds/%ds", int(c.Elapsed.Seconds()), int(c.Total.Seconds()))
	barWidth := max(c.Width-len(suffix), 4)

	filled := int(float64(barWidth) * c.Fraction())
	return theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)) +
		theme.Hint.Render(suffix)
}
