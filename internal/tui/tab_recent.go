package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/mchango/internal/transtime"
	"github.com/theirongolddev/mchango/internal/tui/components"
	"github.com/theirongolddev/mchango/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// invalidDate is shown for timestamps that do not parse.
const invalidDate = "Invalid Date"

func (a App) renderRecentTab(cw int) string {
	t := theme.Active
	if a.board == nil {
		return a.renderNoData(cw)
	}
	txs := a.board.Recent.Transactions

	title := fmt.Sprintf("Recent Transactions (since %s)", a.opts.Static.Cutoff.Format("January 2, 2006"))
	if len(txs) == 0 {
		return components.ContentCard(title, "No transactions since the cutoff.", cw, false)
	}

	inner := components.CardInnerWidth(cw)
	amtW := 16
	dateW := 30
	nameW := (inner - amtW - dateW - 3) / 2
	deptW := inner - amtW - dateW - nameW - 3

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	amtStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	sp := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-*s", deptW, "Department")) + sp +
		headStyle.Render(fmt.Sprintf("%-*s", nameW, "Name")) + sp +
		headStyle.Render(fmt.Sprintf("%*s", amtW, "Amount")) + sp +
		headStyle.Render(fmt.Sprintf("%-*s", dateW, "Date")))

	for _, tx := range txs {
		b.WriteString("\n")
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-*s", deptW, truncStr(tx.DepartmentName, deptW))) + sp +
			rowStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(tx.UserName, nameW))) + sp +
			amtStyle.Render(fmt.Sprintf("%*s", amtW, a.cur.Format(tx.TransAmount))) + sp +
			dimStyle.Render(fmt.Sprintf("%-*s", dateW, transtime.FormatOr(tx.TransTime, invalidDate))))
	}
	return components.ContentCard(title, b.String(), cw, false)
}
