package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/mchango/internal/contribution"
	"github.com/theirongolddev/mchango/internal/directory"
	"github.com/theirongolddev/mchango/internal/model"
	"github.com/theirongolddev/mchango/internal/share"
	"github.com/theirongolddev/mchango/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// shareValues are the fields bound to the share form. The account comes
// from the selected department.
type shareValues struct {
	Department string
	Account    string
	Amount     string
	Name       string
}

func newShareForm(v *shareValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(v.Department).
				Description(fmt.Sprintf("Account: %s", v.Account)),
			huh.NewInput().
				Title("Suggested amount (KES, optional)").
				Placeholder("0").
				CharLimit(9).
				Validate(contribution.ValidateShareAmount).
				Value(&v.Amount),
			huh.NewInput().
				Title("Name (optional)").
				Description("Pre-fills the contributor name on the shared link").
				CharLimit(40).
				Value(&v.Name),
		),
	).WithTheme(formTheme()).WithShowHelp(true)
}

func (a *App) openShare(row model.DepartmentRow) {
	if row.Account == directory.NotAssigned {
		a.setToast(fmt.Sprintf("%s has no account number to share", row.Name), components.ToastError)
		return
	}
	a.shareVals = &shareValues{Department: row.Name, Account: row.Account}
	a.shareForm = newShareForm(a.shareVals)
	if a.width > 0 {
		a.shareForm = a.shareForm.WithWidth(min(a.contentWidth()-4, 72))
	}
}

func (a App) updateShareForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.shareForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.shareForm = f
	}

	switch a.shareForm.State {
	case huh.StateCompleted:
		v := *a.shareVals
		a.shareForm, a.shareVals = nil, nil
		amount, err := contribution.ParseShareAmount(v.Amount)
		if err != nil {
			a.setToast(err.Error(), components.ToastError)
			return a, nil
		}
		p := share.NewPayload(a.opts.Static, model.ShareData{
			Amount:           amount,
			AccountReference: v.Account,
			CustomName:       strings.TrimSpace(v.Name),
		})
		return a, a.shareCmd(p)

	case huh.StateAborted:
		a.shareForm, a.shareVals = nil, nil
		return a, nil
	}

	return a, cmd
}
