package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvAPIURL       = "MCHANGO_API_URL"
	EnvPaymentURL   = "MCHANGO_PAYMENT_URL"
	EnvShareCommand = "MCHANGO_SHARE_COMMAND"
	EnvLogLevel     = "MCHANGO_LOG_LEVEL"
	EnvAMQPURL      = "MCHANGO_AMQP_URL"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// are given) into the process environment. Variables already set win.
// Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvPaymentURL); v != "" {
		cfg.API.PaymentURL = v
	}
	if v := os.Getenv(EnvShareCommand); v != "" {
		cfg.Share.Command = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvAMQPURL); v != "" {
		cfg.Daemon.AMQP.URL = v
	}
}
