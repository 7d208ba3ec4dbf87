package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/mchango/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// ToastLevel selects the toast color.
type ToastLevel int

// Toast levels.
const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
)

// Status is what the bottom bar reports.
type Status struct {
	LastUpdated time.Time
	Refreshing  bool
	AutoRefresh bool
	Toast       string
	ToastLevel  ToastLevel
}

// RenderStatusBar renders the bottom status bar. A toast replaces the key
// hints while it lasts.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [?]help  [/]search  [n]ew payment  [s]hare  [r]efresh  [q]uit"
	if s.Toast != "" {
		color := t.Accent
		switch s.ToastLevel {
		case ToastSuccess:
			color = t.Green
		case ToastError:
			color = t.Red
		}
		left = " " + lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true).Render(s.Toast)
	}

	var right []string
	switch {
	case s.Refreshing:
		right = append(right, "refreshing…")
	case !s.LastUpdated.IsZero():
		right = append(right, fmt.Sprintf("updated %s", s.LastUpdated.Format("15:04:05")))
	}
	if s.AutoRefresh {
		right = append(right, "auto")
	}
	rightStr := strings.Join(right, " · ") + " "

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 0 {
		padding = 0
	}

	return style.Render(left + strings.Repeat(" ", padding) + rightStr)
}
