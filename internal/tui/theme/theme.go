// Package theme defines color themes for the mchango dashboard.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Background   lipgloss.Color // Main app background
	Surface      lipgloss.Color // Card/panel backgrounds
	SurfaceHover lipgloss.Color // Selected department row
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // Focused card border
	TextDim      lipgloss.Color // Hints, disabled
	TextMuted    lipgloss.Color // Labels, metadata
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color // Active tab, links
	AccentBright lipgloss.Color
	Brand        lipgloss.Color // Overall progress bar
	BarOdd       lipgloss.Color // Department bars alternate between these two
	BarEven      lipgloss.Color
	Green        lipgloss.Color // Success toasts
	Orange       lipgloss.Color // Warnings
	Red          lipgloss.Color // Error toasts
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme: warm dark surfaces with the
// organisation's maroon, gold and green on the progress bars.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	SurfaceHover: lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#F7A306"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#F7A306"),
	AccentBright: lipgloss.Color("#FFC53D"),
	Brand:        lipgloss.Color("#A31F1F"),
	BarOdd:       lipgloss.Color("#F7A306"),
	BarEven:      lipgloss.Color("#3A8A5C"),
	Green:        lipgloss.Color("#879A39"),
	Orange:       lipgloss.Color("#DA702C"),
	Red:          lipgloss.Color("#D14D41"),
}

// Campus is a light theme in the printed-poster colors.
var Campus = Theme{
	Name:         "campus",
	Background:   lipgloss.Color("#FFFCF0"),
	Surface:      lipgloss.Color("#F2F0E5"),
	SurfaceHover: lipgloss.Color("#E6E4D9"),
	Border:       lipgloss.Color("#CECDC3"),
	BorderAccent: lipgloss.Color("#800000"),
	TextDim:      lipgloss.Color("#B7B5AC"),
	TextMuted:    lipgloss.Color("#6F6E69"),
	TextPrimary:  lipgloss.Color("#100F0F"),
	Accent:       lipgloss.Color("#800000"),
	AccentBright: lipgloss.Color("#A31F1F"),
	Brand:        lipgloss.Color("#800000"),
	BarOdd:       lipgloss.Color("#F7A306"),
	BarEven:      lipgloss.Color("#1F5130"),
	Green:        lipgloss.Color("#66800B"),
	Orange:       lipgloss.Color("#BC5215"),
	Red:          lipgloss.Color("#AF3029"),
}

// Terminal uses ANSI colors so it follows the user's terminal palette.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("3"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("3"),
	AccentBright: lipgloss.Color("11"),
	Brand:        lipgloss.Color("1"),
	BarOdd:       lipgloss.Color("3"),
	BarEven:      lipgloss.Color("2"),
	Green:        lipgloss.Color("2"),
	Orange:       lipgloss.Color("11"),
	Red:          lipgloss.Color("9"),
}

// All lists every available theme.
var All = []Theme{FlexokiDark, Campus, Terminal}

// ByName returns the theme with the given name, or FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// ForProfile picks the named theme, falling back to Terminal when the
// output has at most 16 colors.
func ForProfile(name string, p termenv.Profile) Theme {
	if p == termenv.ANSI || p == termenv.Ascii {
		return Terminal
	}
	return ByName(name)
}

// BarColor returns the progress bar color for the i-th department.
// Negative indices are the overall bar.
func (t Theme) BarColor(i int) lipgloss.Color {
	if i < 0 {
		return t.Brand
	}
	if i%2 == 0 {
		return t.BarOdd
	}
	return t.BarEven
}
