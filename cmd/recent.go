package cmd

import (
	"fmt"

	"github.com/theirongolddev/mchango/internal/cli"
	"github.com/theirongolddev/mchango/internal/pipeline"
	"github.com/theirongolddev/mchango/internal/transtime"

	"github.com/spf13/cobra"
)

var (
	flagRecentLimit int
	flagRecentSince string
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Newest contributions since the cutoff date",
	RunE:  runRecent,
}

func init() {
	recentCmd.Flags().IntVarP(&flagRecentLimit, "limit", "l", 0, "Maximum rows (default from config)")
	recentCmd.Flags().StringVar(&flagRecentSince, "since", "", "Cutoff date YYYY-MM-DD (default from config)")
	rootCmd.AddCommand(recentCmd)
}

func runRecent(cmd *cobra.Command, _ []string) error {
	d, err := loadDeps()
	if err != nil {
		return err
	}
	if flagRecentSince != "" {
		cutoff, err := transtime.ParseCutoff(flagRecentSince)
		if err != nil {
			return fmt.Errorf("--since: %w", err)
		}
		d.static.Cutoff = cutoff
	}
	if flagRecentLimit > 0 {
		d.static.RecentLimit = flagRecentLimit
	}

	board, err := fetchBoard(cmd.Context(), d)
	if err != nil {
		return err
	}
	recent := pipeline.RecentTransactions(board.Publicity.Transactions, d.static.Cutoff, d.static.RecentLimit)

	if len(recent.Transactions) == 0 {
		fmt.Printf("\n  No transactions since %s.\n", d.static.Cutoff.Format(transtime.CutoffLayout))
		return nil
	}

	table := cli.Table{
		Title:   fmt.Sprintf("Recent Transactions (since %s)", d.static.Cutoff.Format(transtime.CutoffLayout)),
		Columns: []cli.Column{
			{Header: "Department"},
			{Header: "Name"},
			{Header: "Amount", Kind: cli.KindAmount},
			{Header: "Date"},
		},
	}
	for _, tx := range recent.Transactions {
		table.Rows = append(table.Rows, []string{
			tx.DepartmentName,
			tx.UserName,
			d.cur.Format(tx.TransAmount),
			transtime.FormatOr(tx.TransTime, "Invalid Date"),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(table))
	if recent.Dropped > 0 {
		fmt.Println(cli.RenderNotice(fmt.Sprintf("  %d transactions had malformed timestamps and were skipped", recent.Dropped)))
	}
	return nil
}
