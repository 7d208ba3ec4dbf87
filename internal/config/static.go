package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/theirongolddev/mchango/internal/directory"
	"github.com/theirongolddev/mchango/internal/model"
	"github.com/theirongolddev/mchango/internal/transtime"
)

// Static is the read-only configuration handed to the view model, the
// share generator and the payment form. Build it once with Config.Static.
type Static struct {
	Organization string
	Paybill      string
	Currency     string
	ShareOrigin  string
	Cutoff       time.Time
	RecentLimit  int
	Directory    directory.Directory
	Targets      model.Targets
}

// Static builds the immutable static configuration.
func (c Config) Static() (Static, error) {
	cutoff, err := transtime.ParseCutoff(c.General.Cutoff)
	if err != nil {
		return Static{}, fmt.Errorf("config: general.cutoff: %w", err)
	}

	depts := make(map[string]float64, len(c.Targets.Departments))
	for k, v := range c.Targets.Departments {
		depts[k] = v
	}

	return Static{
		Organization: c.General.Organization,
		Paybill:      c.General.Paybill,
		Currency:     c.General.Currency,
		ShareOrigin:  c.General.ShareOrigin,
		Cutoff:       cutoff,
		RecentLimit:  c.General.RecentLimit,
		Directory:    directory.New(c.Accounts),
		Targets: model.Targets{
			Overall:     c.Targets.Total,
			Default:     c.Targets.Default,
			Departments: depts,
		},
	}, nil
}

// RefreshInterval returns the auto-refresh interval, never below the minimum.
func (c Config) RefreshInterval() time.Duration {
	sec := c.General.RefreshIntervalSec
	if sec < MinRefreshIntervalSec {
		sec = MinRefreshIntervalSec
	}
	return time.Duration(sec) * time.Second
}

// Timeout returns the HTTP request timeout for API calls.
func (c Config) Timeout() time.Duration {
	if c.API.TimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.API.TimeoutSec) * time.Second
}

var knownStrategies = map[string]bool{"image": true, "text": true, "clipboard": true}

// Validate reports every problem found in the configuration.
func (c Config) Validate() error {
	var errs []error

	if err := checkURL("api.base_url", c.API.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if err := checkURL("api.payment_url", c.API.PaymentURL); err != nil {
		errs = append(errs, err)
	}
	if _, err := transtime.ParseCutoff(c.General.Cutoff); err != nil {
		errs = append(errs, fmt.Errorf("general.cutoff: %w", err))
	}
	if c.General.Paybill == "" {
		errs = append(errs, errors.New("general.paybill is empty"))
	}
	if c.General.RefreshIntervalSec < MinRefreshIntervalSec {
		errs = append(errs, fmt.Errorf("general.refresh_interval_sec must be at least %d", MinRefreshIntervalSec))
	}
	if c.General.RecentLimit < 0 {
		errs = append(errs, errors.New("general.recent_limit must not be negative"))
	}
	if len(c.Accounts) == 0 {
		errs = append(errs, errors.New("accounts: no account codes configured"))
	}
	for _, s := range c.Share.Strategies {
		if !knownStrategies[s] {
			errs = append(errs, fmt.Errorf("share.strategies: unknown strategy %q", s))
		}
	}

	return errors.Join(errs...)
}

func checkURL(field, raw string) error {
	if err := CheckURL(raw); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

// CheckURL reports whether raw is an absolute http(s) endpoint.
func CheckURL(raw string) error {
	if raw == "" {
		return errors.New("not set")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
