package cmd

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/theirongolddev/mchango/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	path := configPath()
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", path)
	if _, err := os.Stat(path); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL:    %s\n", orUnset(cfg.API.BaseURL))
	fmt.Printf("    Payment URL: %s\n", orUnset(cfg.API.PaymentURL))
	fmt.Printf("    Timeout:     %s\n", cfg.Timeout())
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Organization:     %s\n", cfg.General.Organization)
	fmt.Printf("    Paybill:          %s\n", cfg.General.Paybill)
	fmt.Printf("    Cutoff:           %s\n", cfg.General.Cutoff)
	fmt.Printf("    Recent limit:     %d\n", cfg.General.RecentLimit)
	fmt.Printf("    Refresh interval: %s\n", cfg.RefreshInterval())
	fmt.Printf("    Currency:         %s\n", cfg.General.Currency)
	if cfg.General.ShareOrigin != "" {
		fmt.Printf("    Share origin:     %s\n", cfg.General.ShareOrigin)
	}
	fmt.Println()

	fmt.Println("  [Targets]")
	fmt.Printf("    Total:   %.0f\n", cfg.Targets.Total)
	fmt.Printf("    Default: %.0f\n", cfg.Targets.Default)
	for _, name := range sortedKeys(cfg.Targets.Departments) {
		fmt.Printf("    %s: %.0f\n", name, cfg.Targets.Departments[name])
	}
	fmt.Println()

	fmt.Println("  [Accounts]")
	for _, code := range sortedKeys(cfg.Accounts) {
		fmt.Printf("    %s  %s\n", code, cfg.Accounts[code])
	}
	fmt.Println()

	fmt.Println("  [Share]")
	fmt.Printf("    Strategies: %s\n", strings.Join(cfg.Share.Strategies, ", "))
	if cfg.Share.Command != "" {
		fmt.Printf("    Command:    %s\n", cfg.Share.Command)
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address: %s\n", cfg.Daemon.Addr)
	if len(cfg.Daemon.CORSOrigins) > 0 {
		fmt.Printf("    CORS:    %s\n", strings.Join(cfg.Daemon.CORSOrigins, ", "))
	}
	if cfg.Daemon.AMQP.URL != "" {
		fmt.Printf("    AMQP:    %s -> %s (%s)\n",
			maskURL(cfg.Daemon.AMQP.URL), cfg.Daemon.AMQP.Exchange, cfg.Daemon.AMQP.RoutingKey)
	} else {
		fmt.Println("    AMQP:    disabled")
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		fmt.Printf("    File:  %s\n", cfg.Log.File)
	}
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Println("  Problems:")
		fmt.Println(indent(err.Error(), "    - "))
		fmt.Println()
	}

	fmt.Println("  Run `mchango setup` to reconfigure.")
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// maskURL hides the password of a broker URL.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return maskSecret(raw)
	}
	return u.Redacted()
}

func maskSecret(s string) string {
	if len(s) > 16 {
		return s[:8] + "..." + s[len(s)-4:]
	}
	if len(s) > 4 {
		return s[:4] + "..."
	}
	return "****"
}
