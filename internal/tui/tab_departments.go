package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/mchango/internal/model"
	"github.com/theirongolddev/mchango/internal/pipeline"
	"github.com/theirongolddev/mchango/internal/tui/components"
	"github.com/theirongolddev/mchango/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// DepartmentHeading is the row title, e.g. "Choir (Account: 1000)".
func DepartmentHeading(r model.DepartmentRow) string {
	return fmt.Sprintf("%s (Account: %s)", r.Name, r.Account)
}

// MoreLabel is the expand/collapse control under a department's users.
func MoreLabel(hidden int, expanded bool) string {
	if expanded {
		return "Show Less"
	}
	return fmt.Sprintf("Show More (%d more)", hidden)
}

func (a App) renderDepartmentsTab(cw, h int) string {
	t := theme.Active
	if a.board == nil {
		return a.renderNoData(cw)
	}

	var out strings.Builder

	// Search line
	searchStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)
	switch {
	case a.searching:
		out.WriteString(" " + a.search.View())
	case a.search.Value() != "":
		out.WriteString(searchStyle.Render(fmt.Sprintf(" Filter: %q  [esc] clear", a.search.Value())))
	default:
		out.WriteString(searchStyle.Render(" [/] search departments and contributors"))
	}
	out.WriteString("\n")

	rows := a.visibleRows()
	if len(rows) == 0 {
		out.WriteString(components.ContentCard("", "No departments match.", cw, false))
		return out.String()
	}

	// Keep the selected card on screen: render from the cursor back as far
	// as the height allows.
	sel := min(a.cursor, len(rows)-1)
	cards := make([]string, len(rows))
	for i, r := range rows {
		cards[i] = a.renderDepartmentCard(r, cw, i == sel)
	}
	start := 0
	used := lipgloss.Height(cards[sel])
	for i := sel - 1; i >= 0; i-- {
		ch := lipgloss.Height(cards[i])
		if used+ch > h-1 {
			start = i + 1
			break
		}
		used += ch
	}
	out.WriteString(strings.Join(cards[start:], "\n"))
	return out.String()
}

func (a App) renderDepartmentCard(r model.DepartmentRow, cw int, selected bool) string {
	t := theme.Active
	inner := components.CardInnerWidth(cw)

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	amtStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	totalStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	linkStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	users, hidden := pipeline.VisibleUsers(r, a.expand)

	var b strings.Builder
	b.WriteString(totalStyle.Render("Total: " + a.cur.Format(r.Total)))
	for _, u := range users {
		amt := a.cur.Format(u.Amount)
		nameW := inner - lipgloss.Width(amt) - 2
		b.WriteString("\n")
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(u.Name, nameW))))
		b.WriteString("  ")
		b.WriteString(amtStyle.Render(amt))
	}
	if hidden > 0 || (a.expand.Expanded(r.Name) && len(r.Users) > pipeline.CollapsedUsers) {
		b.WriteString("\n")
		b.WriteString(linkStyle.Render(MoreLabel(hidden, a.expand.Expanded(r.Name))))
	}

	return components.ContentCard(DepartmentHeading(r), b.String(), cw, selected)
}
