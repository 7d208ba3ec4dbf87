package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/mchango/internal/cli"
	"github.com/theirongolddev/mchango/internal/contribution"
	"github.com/theirongolddev/mchango/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	flagPayPhone   string
	flagPayAmount  string
	flagPayAccount string
	flagPayName    string
	flagPayLink    string
)

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Send an M-PESA STK push to a phone",
	Long: "Initiate a contribution. Missing fields are asked for interactively\n" +
		"when stdin is a terminal.",
	RunE: runPay,
}

func init() {
	payCmd.Flags().StringVar(&flagPayPhone, "phone", "", "Phone number, 254XXXXXXXXX")
	payCmd.Flags().StringVar(&flagPayAmount, "amount", "", "Whole-shilling amount")
	payCmd.Flags().StringVar(&flagPayAccount, "account", "", "Department account code")
	payCmd.Flags().StringVar(&flagPayName, "name", "", "Contribute under this name")
	payCmd.Flags().StringVar(&flagPayLink, "link", "", "Shared link that pre-fills amount, account and name")
	rootCmd.AddCommand(payCmd)
}

func runPay(cmd *cobra.Command, _ []string) error {
	d, err := loadDeps()
	if err != nil {
		return err
	}

	var form contribution.Form
	if flagPayLink != "" {
		p, err := contribution.ParsePrefill(flagPayLink)
		if err != nil {
			return err
		}
		form = p.Apply(form)
	}
	if flagPayPhone != "" {
		form.Phone = flagPayPhone
	}
	if flagPayAmount != "" {
		form.Amount = flagPayAmount
	}
	if flagPayAccount != "" {
		form.Account = flagPayAccount
	}
	if flagPayName != "" {
		form.UseCustomName = true
		form.CustomName = flagPayName
	}

	dir := d.static.Directory
	if err := form.Validate(dir); err != nil {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return err
		}
		vals := &tui.PaymentValues{Form: form}
		if err := tui.NewPaymentForm(dir, vals).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("  Cancelled.")
				return nil
			}
			return err
		}
		if !vals.Confirmed {
			fmt.Println("  Cancelled.")
			return nil
		}
		form = vals.Form
	}

	req, err := form.Request(dir)
	if err != nil {
		return err
	}

	progressf("  Initiating payment...\n")
	ctx, cancel := context.WithTimeout(cmd.Context(), d.cfg.Timeout())
	defer cancel()
	res, err := d.client.InitiatePayment(ctx, req)
	if err != nil {
		d.log.Error().Err(err).Str("account", req.AccountReference).Msg("Failed to initiate payment")
		return fmt.Errorf("failed to initiate payment: %w", err)
	}

	d.log.Debug().Str("request_id", res.RequestID).Msg("payment initiated")
	fmt.Println("  Check your phone to complete the payment")
	if res.Message != "" {
		fmt.Println(cli.RenderMuted("  " + res.Message))
	}
	return nil
}
