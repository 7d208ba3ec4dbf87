package tui

import (
	"strings"

	"github.com/theirongolddev/mchango/internal/config"
	"github.com/theirongolddev/mchango/internal/tui/components"
	"github.com/theirongolddev/mchango/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// SetupValues are the first-run settings collected by the wizard.
type SetupValues struct {
	BaseURL     string
	PaymentURL  string
	ShareOrigin string
	Theme       string
}

func optionalURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return config.CheckURL(strings.TrimSpace(s))
}

func requiredURL(s string) error {
	return config.CheckURL(strings.TrimSpace(s))
}

// NewSetupForm builds the first-run wizard bound to v.
func NewSetupForm(v *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Contribution backend").
				Description("mchango reads totals from the publicity endpoint and\nsends STK push requests to the payment endpoint."),
			huh.NewInput().
				Title("API base URL").
				Description("GET {base}/publicity").
				Placeholder("https://api.example.org").
				Validate(requiredURL).
				Value(&v.BaseURL),
			huh.NewInput().
				Title("Payment URL").
				Placeholder("https://api.example.org/stkpush").
				Validate(requiredURL).
				Value(&v.PaymentURL),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Share link origin (optional)").
				Description("Deep links in shared messages open this page pre-filled").
				Validate(optionalURL).
				Value(&v.ShareOrigin),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
		),
	).WithTheme(formTheme()).WithShowHelp(true)
}

func NewSetupValues(cfg config.Config) *SetupValues {
	return &SetupValues{
		BaseURL:     cfg.API.BaseURL,
		PaymentURL:  cfg.API.PaymentURL,
		ShareOrigin: cfg.General.ShareOrigin,
		Theme:       cfg.Appearance.Theme,
	}
}

// Apply copies the collected values into cfg.
func (v *SetupValues) Apply(cfg config.Config) config.Config {
	cfg.API.BaseURL = strings.TrimSpace(v.BaseURL)
	cfg.API.PaymentURL = strings.TrimSpace(v.PaymentURL)
	cfg.General.ShareOrigin = strings.TrimSpace(v.ShareOrigin)
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	return cfg
}

func (a *App) openSetup() {
	a.setupVals = NewSetupValues(a.opts.Config)
	a.setupForm = NewSetupForm(a.setupVals)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cmd := a.saveSetupConfig()
		a.needSetup = false
		a.setupForm, a.setupVals = nil, nil
		return a, cmd

	case huh.StateAborted:
		a.needSetup = false
		a.setupForm, a.setupVals = nil, nil
		a.setToast(toastSetupSkipped, components.ToastInfo)
		return a, nil
	}

	return a, cmd
}

// saveSetupConfig persists the wizard values and reconnects to the new
// endpoints. The returned command refetches the board.
func (a *App) saveSetupConfig() tea.Cmd {
	cfg := a.setupVals.Apply(a.opts.Config)
	a.opts.Config = cfg
	a.opts.Static.ShareOrigin = cfg.General.ShareOrigin
	theme.SetActive(cfg.Appearance.Theme)

	path := a.opts.ConfigPath
	if path == "" {
		path = config.ConfigPath()
	}
	if err := config.SaveTo(path, cfg); err != nil {
		a.opts.Log.Error().Err(err).Str("path", path).Msg("saving config")
		a.setToast("Could not save config: "+err.Error(), components.ToastError)
	} else {
		a.setToast(toastSetupSaved, components.ToastSuccess)
	}

	if a.opts.Reconnect == nil {
		return nil
	}
	a.opts.Fetcher, a.opts.Payer = a.opts.Reconnect(cfg)
	return a.startRefresh()
}
