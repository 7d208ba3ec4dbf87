package cmd

import (
	"fmt"

	"github.com/theirongolddev/mchango/internal/cli"

	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Progress toward the overall and department targets",
	RunE:  runProgress,
}

func init() {
	rootCmd.AddCommand(progressCmd)
}

func runProgress(cmd *cobra.Command, _ []string) error {
	d, err := loadDeps()
	if err != nil {
		return err
	}
	board, err := fetchBoard(cmd.Context(), d)
	if err != nil {
		return err
	}

	const barWidth = 40
	fmt.Println()
	for i, p := range board.Progress {
		// The first row is the overall goal.
		color := cli.BrandColor(i - 1)
		fmt.Printf("  %s\n", p.Label)
		fmt.Printf("  %s %s\n", cli.RenderProgressBar(p.Percent, barWidth, color), cli.FormatPercent(p.Percent))
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  %s of %s", d.cur.FormatWhole(p.Current), d.cur.FormatWhole(p.Target))))
		fmt.Println()
	}
	return nil
}
