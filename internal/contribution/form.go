// Package contribution holds the payment form: field validation, request
// construction and pre-fill from shared links.
package contribution

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/theirongolddev/mchango/internal/directory"
	"github.com/theirongolddev/mchango/internal/model"
)

// Validation errors.
var (
	ErrInvalidPhone   = errors.New("phone must look like 254XXXXXXXXX")
	ErrInvalidAmount  = errors.New("amount must be a whole number of at least 1")
	ErrUnknownAccount = errors.New("unknown account")
	ErrMissingName    = errors.New("name is required when adding a custom name")
	ErrInvalidSuggest = errors.New("suggested amount must be a whole number, or empty")
)

// NameSeparator joins the account code and the contributor's custom name in
// the account reference sent to the payment API.
const NameSeparator = "#"

var phonePattern = regexp.MustCompile(`^254[0-9]{9}$`)

// Form is the user-editable payment form. Amount is kept as text so it can
// be bound directly to an input field.
type Form struct {
	Phone         string
	Amount        string
	Account       string
	UseCustomName bool
	CustomName    string
}

// ValidatePhone checks the Safaricom MSISDN format.
func ValidatePhone(s string) error {
	if !phonePattern.MatchString(strings.TrimSpace(s)) {
		return ErrInvalidPhone
	}
	return nil
}

// ParseAmount parses a positive whole amount.
func ParseAmount(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, ErrInvalidAmount
	}
	return n, nil
}

// ValidateAmount is ParseAmount for use as a field validator.
func ValidateAmount(s string) error {
	_, err := ParseAmount(s)
	return err
}

// ParseShareAmount parses the suggested amount on a shared link. Empty means
// zero, leaving the amount to the recipient.
func ParseShareAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, ErrInvalidSuggest
	}
	return n, nil
}

// ValidateShareAmount is ParseShareAmount for use as a field validator.
func ValidateShareAmount(s string) error {
	_, err := ParseShareAmount(s)
	return err
}

// AccountValidator returns a field validator accepting codes known to dir.
func AccountValidator(dir directory.Directory) func(string) error {
	return func(code string) error {
		if _, ok := dir.Resolve(code); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAccount, code)
		}
		return nil
	}
}

// Validate checks every field and reports all problems.
func (f Form) Validate(dir directory.Directory) error {
	var errs []error
	if err := ValidatePhone(f.Phone); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateAmount(f.Amount); err != nil {
		errs = append(errs, err)
	}
	if err := AccountValidator(dir)(f.Account); err != nil {
		errs = append(errs, err)
	}
	if f.UseCustomName && strings.TrimSpace(f.CustomName) == "" {
		errs = append(errs, ErrMissingName)
	}
	return errors.Join(errs...)
}

// Request validates the form and builds the payment request. With a custom
// name the account reference becomes "code#name".
func (f Form) Request(dir directory.Directory) (model.ContributionRequest, error) {
	if err := f.Validate(dir); err != nil {
		return model.ContributionRequest{}, err
	}
	amount, _ := ParseAmount(f.Amount)

	req := model.ContributionRequest{
		Phone:            strings.TrimSpace(f.Phone),
		Amount:           amount,
		AccountReference: f.Account,
	}
	if name := f.customName(); name != "" {
		req.CustomName = name
		req.AccountReference = f.Account + NameSeparator + name
	}
	return req, nil
}

func (f Form) customName() string {
	if !f.UseCustomName {
		return ""
	}
	return strings.TrimSpace(f.CustomName)
}

// Prefill is what a shared link carries.
type Prefill struct {
	Amount  string
	Account string
	Name    string
}

// Complete reports whether the link has enough to open the form pre-filled.
func (p Prefill) Complete() bool {
	return p.Amount != "" && p.Account != ""
}

// Apply copies the pre-filled values into f.
func (p Prefill) Apply(f Form) Form {
	f.Amount = p.Amount
	f.Account = p.Account
	if p.Name != "" {
		f.UseCustomName = true
		f.CustomName = p.Name
	}
	return f
}

// ParsePrefill reads the amount, account and name query parameters of a
// shared link. A bare query string ("amount=..&account=..") is accepted too.
func ParsePrefill(raw string) (Prefill, error) {
	raw = strings.TrimSpace(raw)
	query := raw
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "/") {
		u, err := url.Parse(raw)
		if err != nil {
			return Prefill{}, fmt.Errorf("contribution: parsing link: %w", err)
		}
		query = u.RawQuery
	} else {
		query = strings.TrimPrefix(query, "?")
	}

	v, err := url.ParseQuery(query)
	if err != nil {
		return Prefill{}, fmt.Errorf("contribution: parsing link query: %w", err)
	}
	return Prefill{
		Amount:  v.Get("amount"),
		Account: v.Get("account"),
		Name:    v.Get("name"),
	}, nil
}
