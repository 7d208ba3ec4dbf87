// Package config loads mchango settings from TOML, .env and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all mchango configuration.
type Config struct {
	API        APIConfig         `toml:"api"`
	General    GeneralConfig     `toml:"general"`
	Targets    TargetsConfig     `toml:"targets"`
	Accounts   map[string]string `toml:"accounts"`
	Share      ShareConfig       `toml:"share"`
	Appearance AppearanceConfig  `toml:"appearance"`
	Daemon     DaemonConfig      `toml:"daemon"`
	Log        LogConfig         `toml:"log"`
}

// APIConfig points at the contribution backend.
type APIConfig struct {
	BaseURL    string `toml:"base_url"`    // GET {base_url}/publicity
	PaymentURL string `toml:"payment_url"` // POST payment initiation
	TimeoutSec int    `toml:"timeout_sec"`
}

// GeneralConfig holds display and refresh preferences.
type GeneralConfig struct {
	Organization       string `toml:"organization"`
	Paybill            string `toml:"paybill"`
	Cutoff             string `toml:"cutoff"` // YYYY-MM-DD
	RecentLimit        int    `toml:"recent_limit"`
	RefreshIntervalSec int    `toml:"refresh_interval_sec"`
	Currency           string `toml:"currency"`
	ShareOrigin        string `toml:"share_origin,omitempty"`
}

// TargetsConfig holds fundraising goals.
type TargetsConfig struct {
	Total       float64            `toml:"total"`
	Default     float64            `toml:"default"`
	Departments map[string]float64 `toml:"departments,omitempty"`
}

// ShareConfig configures the share fallback chain.
type ShareConfig struct {
	Command    string   `toml:"command,omitempty"` // e.g. "termux-share"
	Strategies []string `toml:"strategies"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds settings for the background poller.
type DaemonConfig struct {
	Addr        string     `toml:"addr"`
	CORSOrigins []string   `toml:"cors_origins"`
	AMQP        AMQPConfig `toml:"amqp"`
}

// AMQPConfig enables publication of new contributions. Empty URL disables it.
type AMQPConfig struct {
	URL        string `toml:"url,omitempty"`
	Exchange   string `toml:"exchange"`
	Queue      string `toml:"queue"`
	RoutingKey string `toml:"routing_key"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// MinRefreshIntervalSec is the shortest allowed auto-refresh interval.
const MinRefreshIntervalSec = 10

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			TimeoutSec: 15,
		},
		General: GeneralConfig{
			Organization:       "JKUAT CU",
			Paybill:            "921961",
			Cutoff:             "2024-11-05",
			RecentLimit:        20,
			RefreshIntervalSec: 30,
			Currency:           "KES",
		},
		Targets: TargetsConfig{
			Total:   1000000,
			Default: 100000,
		},
		Accounts: defaultAccounts(),
		Share: ShareConfig{
			Strategies: []string{"image", "text", "clipboard"},
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr: "127.0.0.1:8787",
			AMQP: AMQPConfig{
				Exchange:   "mchango",
				Queue:      "mchango.contributions",
				RoutingKey: "contribution.received",
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// defaultAccounts is a starting mapping; deployments replace it under [accounts].
func defaultAccounts() map[string]string {
	return map[string]string{
		"1000": "Choir",
		"1001": "Ushering",
		"1002": "Media",
		"1003": "Missions",
		"1004": "Hospitality",
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mchango")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mchango")
}

// CacheDir returns the XDG-compliant cache directory, used for logs.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "mchango")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "mchango")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom is Load for an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else {
		// Decode into a fresh struct so a file that sets [accounts] replaces
		// the default mapping instead of merging into it.
		cfg.Accounts = nil
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
		if cfg.Accounts == nil {
			cfg.Accounts = defaultAccounts()
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo is Save for an explicit path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
