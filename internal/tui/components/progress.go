package components

import (
	"fmt"

	"github.com/theirongolddev/mchango/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a solid bar for pct in [0, 100] followed by the
// rounded percentage. Values outside the range are clamped.
func ProgressBar(pct float64, width int, color lipgloss.Color) string {
	t := theme.Active
	frac := clampFrac(pct / 100)

	if width < 4 {
		width = 4
	}
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(frac) + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%3.0f%%", frac*100))
}

// GoalBar renders a labeled progress bar with "current / target" below it.
func GoalBar(label, amounts string, pct float64, width int, color lipgloss.Color) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	barW := width - 5 // room for " 100%"
	return labelStyle.Render(label) + "\n" +
		ProgressBar(pct, barW, color) + "\n" +
		amountStyle.Render(amounts)
}

func clampFrac(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
