package tui

import (
	"strconv"
	"strings"

	"github.com/theirongolddev/mchango/internal/cli"
	"github.com/theirongolddev/mchango/internal/pipeline"
	"github.com/theirongolddev/mchango/internal/tui/components"
	"github.com/theirongolddev/mchango/internal/tui/theme"
)

func (a App) renderProgressTab(cw int) string {
	t := theme.Active
	if a.board == nil {
		return a.renderNoData(cw)
	}
	b := a.board

	contributors := 0
	for _, r := range b.Rows {
		contributors += len(r.Users)
	}

	metrics := []components.Metric{
		{Label: "Grand Total", Value: a.cur.Format(b.Publicity.GrandTotal), Note: "of " + a.cur.FormatWhole(a.opts.Static.Targets.Overall)},
		{Label: "Departments", Value: strconv.Itoa(len(b.Rows))},
		{Label: "Contributors", Value: cli.FormatNumber(int64(contributors))},
		{Label: "Recent", Value: strconv.Itoa(len(b.Recent.Transactions)), Note: "since " + a.opts.Static.Cutoff.Format("Jan 2")},
	}

	var out strings.Builder
	out.WriteString(components.MetricRow(metrics, cw))
	out.WriteString("\n")

	barW := components.CardInnerWidth(cw)
	var bars []string
	for i, p := range b.Progress {
		color := t.BarColor(i - 1) // first row is the overall goal
		amounts := a.cur.FormatWhole(p.Current) + " of " + a.cur.FormatWhole(p.Target)
		bars = append(bars, components.GoalBar(p.Label, amounts, p.Percent, barW, color))
	}

	title := "Progress"
	if len(b.Progress) > 0 && b.Progress[0].Label == pipeline.OverallLabel {
		title = "Progress toward " + a.cur.FormatWhole(b.Progress[0].Target)
	}
	out.WriteString(components.ContentCard(title, strings.Join(bars, "\n\n"), cw, false))
	return out.String()
}

// renderNoData is shown when the first fetch failed.
func (a App) renderNoData(cw int) string {
	msg := "No contribution data yet. Press r to retry."
	if a.loadErr != nil {
		msg = toastFetchFailed + ": " + a.loadErr.Error() + "\n\nPress r to retry."
	}
	return components.ContentCard("", msg, cw, false)
}
