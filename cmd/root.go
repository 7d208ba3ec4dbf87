// Package cmd implements the mchango CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/mchango/internal/api"
	"github.com/theirongolddev/mchango/internal/cli"
	"github.com/theirongolddev/mchango/internal/config"
	"github.com/theirongolddev/mchango/internal/logging"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagEnvFile  string
	flagLogLevel string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "mchango",
	Short: "M-PESA contribution dashboard",
	Long: "Track paybill contributions by department, initiate STK push payments\n" +
		"and share payment details. Runs the interactive dashboard by default.",
	SilenceUsage:      true,
	PersistentPreRunE: loadDotEnv,
	RunE:              runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

func loadDotEnv(_ *cobra.Command, _ []string) error {
	return config.LoadDotEnv(flagEnvFile)
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.ConfigPath()
}

// deps is the configuration shared by every command.
type deps struct {
	cfg    config.Config
	static config.Static
	log    logging.Logger
	client *api.Client
	cur    cli.CurrencyFormatter
}

// loadDeps reads configuration and builds the API client. CLI commands
// log to stderr with the console writer.
func loadDeps() (*deps, error) {
	cfg, err := config.LoadFrom(configPath())
	if err != nil {
		return nil, err
	}
	st, err := cfg.Static()
	if err != nil {
		return nil, err
	}

	cur, err := cli.NewCurrencyFormatter(st.Currency)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	log, err := logging.New(os.Stderr, level, true)
	if err != nil {
		return nil, err
	}

	return &deps{
		cfg:    cfg,
		static: st,
		log:    log,
		client: newClient(cfg),
		cur:    cur,
	}, nil
}

func newClient(cfg config.Config) *api.Client {
	return api.NewClient(cfg.API.BaseURL, cfg.API.PaymentURL, api.WithTimeout(cfg.Timeout()))
}

func progressf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
