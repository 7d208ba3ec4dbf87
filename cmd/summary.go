package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/mchango/internal/cli"
	"github.com/theirongolddev/mchango/internal/pipeline"
	"github.com/theirongolddev/mchango/internal/tui"

	"github.com/spf13/cobra"
)

var (
	flagSearch   string
	flagAllUsers bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Department totals and top contributors",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "Filter by department or contributor name")
	summaryCmd.Flags().BoolVarP(&flagAllUsers, "all", "a", false, "List every contributor instead of the top five")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	d, err := loadDeps()
	if err != nil {
		return err
	}
	board, err := fetchBoard(cmd.Context(), d)
	if err != nil {
		return err
	}

	rows := board.Departments(flagSearch)
	if len(rows) == 0 {
		if flagSearch != "" {
			fmt.Printf("\n  No departments match %q.\n", flagSearch)
		} else {
			fmt.Println("\n  No contributions yet.")
		}
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(d.static.Organization + " CONTRIBUTIONS"))
	fmt.Println()
	fmt.Printf("  %s\n\n", tui.PaybillBanner(d.static.Paybill))

	table := cli.Table{
		Columns: []cli.Column{
			{Header: "Department"},
			{Header: "Account", Kind: cli.KindAccount},
			{Header: "Total", Kind: cli.KindAmount},
			{Header: "Target", Kind: cli.KindAmount},
			{Header: "Progress", Kind: cli.KindNumber},
			{Header: "Contributors", Kind: cli.KindNumber},
		},
		Footer: []string{
			"Grand Total", "",
			d.cur.Format(board.Publicity.GrandTotal),
			d.cur.FormatWhole(d.static.Targets.Overall),
			cli.FormatPercent(pipeline.ProgressPercent(board.Publicity.GrandTotal, d.static.Targets.Overall)),
			"",
		},
	}
	for _, r := range rows {
		target := d.static.Targets.For(r.Name)
		table.Rows = append(table.Rows, []string{
			r.Name,
			r.Account,
			d.cur.Format(r.Total),
			d.cur.FormatWhole(target),
			cli.FormatPercent(pipeline.ProgressPercent(r.Total, target)),
			strconv.Itoa(len(r.Users)),
		})
	}
	fmt.Print(cli.RenderTable(table))

	expand := pipeline.ExpandState{}
	for _, r := range rows {
		if flagAllUsers {
			expand = expand.Toggle(r.Name)
		}
		users, hidden := pipeline.VisibleUsers(r, expand)
		if len(users) == 0 {
			continue
		}

		fmt.Printf("\n  %s\n", tui.DepartmentHeading(r))
		for _, u := range users {
			fmt.Printf("    %-32s %s\n", u.Name, cli.RenderAmount(d.cur.Format(u.Amount)))
		}
		if hidden > 0 {
			fmt.Println(cli.RenderMuted(fmt.Sprintf("    Show More (%d more) with --all", hidden)))
		}
	}
	fmt.Println()
	return nil
}
