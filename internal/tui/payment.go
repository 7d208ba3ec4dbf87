package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/mchango/internal/contribution"
	"github.com/theirongolddev/mchango/internal/directory"
	"github.com/theirongolddev/mchango/internal/tui/components"
	"github.com/theirongolddev/mchango/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// PaymentValues are the fields bound to the payment form.
type PaymentValues struct {
	contribution.Form
	Confirmed bool
}

// Summary describes the pending request for the confirmation step.
func (v *PaymentValues) Summary(dir directory.Directory) string {
	dept, ok := dir.Resolve(v.Account)
	if !ok {
		dept = v.Account
	}
	s := fmt.Sprintf("KES %s to %s (Account: %s) from %s", v.Amount, dept, v.Account, v.Phone)
	if v.UseCustomName && strings.TrimSpace(v.CustomName) != "" {
		s += " as " + strings.TrimSpace(v.CustomName)
	}
	return s
}

// NewPaymentForm builds the STK push form bound to v. Fields already set in
// v are shown as defaults.
func NewPaymentForm(dir directory.Directory, v *PaymentValues) *huh.Form {
	opts := make([]huh.Option[string], 0, dir.Len())
	for _, e := range dir.Options() {
		opts = append(opts, huh.NewOption(e.Label(), e.Code))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Phone number").
				Description("The M-PESA number that will receive the prompt").
				Placeholder("254712345678").
				CharLimit(12).
				Validate(contribution.ValidatePhone).
				Value(&v.Phone),
			huh.NewInput().
				Title("Amount (KES)").
				Placeholder("500").
				CharLimit(9).
				Validate(contribution.ValidateAmount).
				Value(&v.Amount),
			huh.NewSelect[string]().
				Title("Department").
				Options(opts...).
				Validate(contribution.AccountValidator(dir)).
				Value(&v.Account),
			huh.NewConfirm().
				Title("Contribute under a different name?").
				Affirmative("Yes").
				Negative("No").
				Value(&v.UseCustomName),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Shown on the department board instead of the M-PESA name").
				CharLimit(40).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return contribution.ErrMissingName
					}
					return nil
				}).
				Value(&v.CustomName),
		).WithHideFunc(func() bool { return !v.UseCustomName }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Send payment request?").
				DescriptionFunc(func() string { return v.Summary(dir) }, v).
				Affirmative("Send").
				Negative("Cancel").
				Value(&v.Confirmed),
		),
	).WithTheme(formTheme()).WithShowHelp(true)
}

// formTheme adapts huh's base theme to the active dashboard colors.
func formTheme() *huh.Theme {
	t := theme.Active
	ht := huh.ThemeBase()

	ht.Focused.Title = ht.Focused.Title.Foreground(t.Accent).Bold(true)
	ht.Focused.Description = ht.Focused.Description.Foreground(t.TextMuted)
	ht.Focused.SelectSelector = ht.Focused.SelectSelector.Foreground(t.Accent)
	ht.Focused.SelectedOption = ht.Focused.SelectedOption.Foreground(t.AccentBright)
	ht.Focused.FocusedButton = ht.Focused.FocusedButton.Foreground(t.Background).Background(t.Accent)
	ht.Focused.ErrorIndicator = ht.Focused.ErrorIndicator.Foreground(t.Red)
	ht.Focused.ErrorMessage = ht.Focused.ErrorMessage.Foreground(t.Red)
	ht.Blurred.Title = ht.Blurred.Title.Foreground(t.TextMuted)
	return ht
}

func (a *App) openPayment() {
	draft := a.payDraft
	if draft.Account == "" && a.activeTab == components.TabDepartments {
		if rows := a.visibleRows(); a.cursor < len(rows) && rows[a.cursor].Account != directory.NotAssigned {
			draft.Account = rows[a.cursor].Account
		}
	}
	a.payVals = &PaymentValues{Form: draft}
	a.payForm = NewPaymentForm(a.opts.Static.Directory, a.payVals)
	if a.width > 0 {
		a.payForm = a.payForm.WithWidth(min(a.contentWidth()-4, 72))
	}
}

func (a App) updatePaymentForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.payForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.payForm = f
	}

	switch a.payForm.State {
	case huh.StateCompleted:
		vals := *a.payVals
		a.payForm, a.payVals = nil, nil
		a.payDraft = vals.Form
		if !vals.Confirmed {
			return a, nil
		}
		req, err := vals.Request(a.opts.Static.Directory)
		if err != nil {
			a.opts.Log.Warn().Err(err).Msg("payment form rejected")
			a.setToast(toastPayFailed, components.ToastError)
			return a, nil
		}
		a.paying = true
		a.toast = toast{text: toastInitiating, level: components.ToastInfo}
		return a, a.paymentCmd(req)

	case huh.StateAborted:
		a.payDraft = a.payVals.Form
		a.payForm, a.payVals = nil, nil
		return a, nil
	}

	return a, cmd
}
