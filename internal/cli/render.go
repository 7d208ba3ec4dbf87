package cli

import (
	"strings"

	"github.com/theirongolddev/mchango/internal/directory"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
)

// Theme colors (Flexoki Dark, plus the brand palette)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")

	ColorMaroon    = lipgloss.Color("#800000")
	ColorBrown     = lipgloss.Color("#F7A306")
	ColorDarkGreen = lipgloss.Color("#1F5130")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorText)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorTextMuted)
	amountStyle = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorOrange)
	dimStyle    = lipgloss.NewStyle().Foreground(ColorTextDim)

	cellStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorText)
)

// Column kinds decide alignment and coloring of a column's cells.
type ColumnKind int

const (
	KindText    ColumnKind = iota // left aligned
	KindAccount                   // left aligned, N/A highlighted
	KindAmount                    // right aligned currency
	KindNumber                    // right aligned counts and percentages
)

// Column is one table column.
type Column struct {
	Header string
	Kind   ColumnKind
}

// Table is a contribution report. Footer, when set, is the totals row and
// renders bold under a rule.
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]string
	Footer  []string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

// RenderTable renders t with lipgloss/table. Amount and number columns are
// right aligned, and unassigned accounts stand out in the warning color.
func RenderTable(t Table) string {
	if len(t.Columns) == 0 {
		return ""
	}

	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Header
	}
	rows := t.Rows
	if len(t.Footer) > 0 {
		rows = append(rows[:len(rows):len(rows)], t.Footer)
	}

	rendered := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return t.cell(col, headerStyle)
			case row == len(t.Rows):
				if t.kind(col) == KindAmount {
					return t.cell(col, amountStyle)
				}
				return t.cell(col, lipgloss.NewStyle().Bold(true))
			case t.kind(col) == KindAccount && col < len(t.Rows[row]) && t.Rows[row][col] == directory.NotAssigned:
				return t.cell(col, warnStyle)
			}
			return t.cell(col, lipgloss.NewStyle())
		}).
		Render()

	lines := strings.Split(rendered, "\n")
	if len(t.Footer) > 0 && len(lines) >= 3 {
		// Rule between the last department and the totals row.
		rule := dimStyle.Render("├" + ruleFor(columnWidths(lines[0]), "┼") + "┤")
		at := len(lines) - 2
		lines = append(lines[:at], append([]string{rule}, lines[at:]...)...)
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	return b.String()
}

func (t Table) kind(col int) ColumnKind {
	if col < len(t.Columns) {
		return t.Columns[col].Kind
	}
	return KindText
}

func (t Table) cell(col int, s lipgloss.Style) lipgloss.Style {
	s = cellStyle.Inherit(s)
	switch t.kind(col) {
	case KindAmount, KindNumber:
		return s.Align(lipgloss.Right)
	default:
		return s.Align(lipgloss.Left)
	}
}

// columnWidths reads the column widths off a rendered top border.
func columnWidths(top string) []int {
	top = strings.TrimSuffix(strings.TrimPrefix(ansi.Strip(top), "╭"), "╮")
	var widths []int
	for _, seg := range strings.Split(top, "┬") {
		widths = append(widths, ansi.StringWidth(seg))
	}
	return widths
}

func ruleFor(widths []int, join string) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return strings.Join(parts, join)
}

// RenderProgressBar renders a text progress bar for a 0-100 percentage,
// colored by the brand palette slot.
func RenderProgressBar(pct float64, width int, color lipgloss.Color) string {
	pct = max(0, min(pct, 100))
	filled := min(int(pct/100*float64(width)), width)

	barStyle := lipgloss.NewStyle().Foreground(color)
	return barStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
}

// BrandColor returns the alternating department bar color. A negative index is the
// overall bar; departments alternate brown and dark green.
func BrandColor(index int) lipgloss.Color {
	if index < 0 {
		return ColorMaroon
	}
	if index%2 == 0 {
		return ColorBrown
	}
	return ColorDarkGreen
}

// RenderNotice renders a one-line warning, used for transient failures.
func RenderNotice(msg string) string {
	return warnStyle.Render(msg)
}

// RenderMuted renders secondary text.
func RenderMuted(msg string) string {
	return mutedStyle.Render(msg)
}

// RenderAmount renders a currency string in the amount style.
func RenderAmount(s string) string {
	return amountStyle.Render(s)
}
