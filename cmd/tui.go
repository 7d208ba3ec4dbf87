package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/theirongolddev/mchango/internal/config"
	"github.com/theirongolddev/mchango/internal/contribution"
	"github.com/theirongolddev/mchango/internal/logging"
	"github.com/theirongolddev/mchango/internal/pipeline"
	"github.com/theirongolddev/mchango/internal/share"
	"github.com/theirongolddev/mchango/internal/tui"
	"github.com/theirongolddev/mchango/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagLink string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	// Bare "mchango" runs the dashboard too, so it takes the same flag.
	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVar(&flagLink, "link", "", "Shared link or query string that pre-fills the payment form")
	}
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(configPath())
	if err != nil {
		return err
	}
	st, err := cfg.Static()
	if err != nil {
		return err
	}

	// The alt screen owns the terminal, so logs go to a file.
	logPath := cfg.Log.File
	if logPath == "" {
		logPath = filepath.Join(config.CacheDir(), "mchango.log")
	}
	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	log, closer, err := logging.NewFile(logPath, level)
	if err != nil {
		return err
	}
	defer closer.Close()

	var prefill contribution.Prefill
	if flagLink != "" {
		prefill, err = contribution.ParsePrefill(flagLink)
		if err != nil {
			return err
		}
	}

	profile := termenv.EnvColorProfile()
	theme.Active = theme.ForProfile(cfg.Appearance.Theme, profile)
	if profile != termenv.Ascii {
		// lipgloss may under-detect inside the alt screen; backgrounds need
		// real color codes to fill the terminal.
		lipgloss.SetColorProfile(termenv.TrueColor)
	}

	client := newClient(cfg)
	app := tui.NewApp(tui.Options{
		Fetcher:     client,
		Payer:       client,
		Sharer:      share.FromConfig(cfg.Share, log),
		Static:      st,
		Refresh:     cfg.RefreshInterval(),
		AutoRefresh: true,
		Timeout:     cfg.Timeout(),
		Prefill:     prefill,
		NeedSetup:   config.CheckURL(cfg.API.BaseURL) != nil,
		Config:      cfg,
		ConfigPath:  configPath(),
		Log:         log,
		Reconnect: func(cfg config.Config) (pipeline.Fetcher, tui.Payer) {
			c := newClient(cfg)
			return c, c
		},
	})

	log.Info().Str("api", cfg.API.BaseURL).Msg("dashboard starting")
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
