package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/mchango/internal/config"
	"github.com/theirongolddev/mchango/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	path := configPath()

	// Load existing config or defaults
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Welcome to mchango, %s contributions\n", cfg.General.Organization)
	fmt.Println()

	v := tui.NewSetupValues(cfg)
	if err := tui.NewSetupForm(v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	cfg = v.Apply(cfg)
	if err := config.SaveTo(path, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", path)
	if err := cfg.Validate(); err != nil {
		fmt.Println("  Still to configure:")
		fmt.Println(indent(err.Error(), "    - "))
	}
	fmt.Println("  Run `mchango setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
