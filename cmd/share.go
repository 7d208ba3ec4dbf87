package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/mchango/internal/contribution"
	"github.com/theirongolddev/mchango/internal/directory"
	"github.com/theirongolddev/mchango/internal/model"
	"github.com/theirongolddev/mchango/internal/share"

	"github.com/spf13/cobra"
)

var (
	flagShareAccount string
	flagShareAmount  string
	flagShareName    string
	flagShareOut     string
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Share a department's payment details",
	Long: "Render the share card and hand it to the configured share command,\n" +
		"falling back to text and then the clipboard. With --out the card is\n" +
		"written to a PNG file instead.",
	RunE: runShare,
}

func init() {
	shareCmd.Flags().StringVar(&flagShareAccount, "account", "", "Account code or department name (required)")
	shareCmd.Flags().StringVar(&flagShareAmount, "amount", "0", "Suggested amount, 0 to leave it to the recipient")
	shareCmd.Flags().StringVar(&flagShareName, "name", "", "Contributor name to pre-fill")
	shareCmd.Flags().StringVarP(&flagShareOut, "out", "o", "", "Write the card PNG here and print the message")
	_ = shareCmd.MarkFlagRequired("account")
	rootCmd.AddCommand(shareCmd)
}

// resolveAccount accepts either an account code or a department name.
func resolveAccount(dir directory.Directory, s string) (string, error) {
	if _, ok := dir.Resolve(s); ok {
		return s, nil
	}
	if code := dir.ReverseResolve(s); code != directory.NotAssigned {
		return code, nil
	}
	return "", fmt.Errorf("%w: %q", contribution.ErrUnknownAccount, s)
}

func runShare(cmd *cobra.Command, _ []string) error {
	d, err := loadDeps()
	if err != nil {
		return err
	}

	account, err := resolveAccount(d.static.Directory, flagShareAccount)
	if err != nil {
		return err
	}
	amount, err := contribution.ParseShareAmount(flagShareAmount)
	if err != nil {
		return err
	}

	p := share.NewPayload(d.static, model.ShareData{
		Amount:           amount,
		AccountReference: account,
		CustomName:       flagShareName,
	})

	if flagShareOut != "" {
		f, err := os.Create(flagShareOut) //nolint:gosec // user-chosen output path
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagShareOut, err)
		}
		if err := share.RenderPNG(f, p); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("  Card written to %s\n\n", flagShareOut)
		fmt.Println(p.Message())
		return nil
	}

	res, err := share.FromConfig(d.cfg.Share, d.log).Share(cmd.Context(), p)
	if err != nil {
		return err
	}
	if res.Notice != "" {
		fmt.Printf("  %s\n", res.Notice)
	} else {
		fmt.Printf("  Shared via %s\n", res.Strategy)
	}
	return nil
}
