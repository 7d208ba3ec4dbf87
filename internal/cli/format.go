// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// CurrencyFormatter renders amounts as "KES 5,000.00": ISO code, thousands
// separators and the currency's standard number of fraction digits.
type CurrencyFormatter struct {
	unit  currency.Unit
	scale int32
}

// NewCurrencyFormatter returns a formatter for the given ISO 4217 code.
func NewCurrencyFormatter(code string) (CurrencyFormatter, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return CurrencyFormatter{}, fmt.Errorf("cli: unknown currency %q: %w", code, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return CurrencyFormatter{unit: unit, scale: int32(scale)}, nil
}

// KES is the formatter for Kenyan shillings.
var KES = mustCurrency("KES")

func mustCurrency(code string) CurrencyFormatter {
	f, err := NewCurrencyFormatter(code)
	if err != nil {
		panic(err)
	}
	return f
}

// Code returns the ISO code, e.g. "KES".
func (f CurrencyFormatter) Code() string {
	return f.unit.String()
}

// Format renders amount, rounding half away from zero. NaN and infinities
// render as zero.
func (f CurrencyFormatter) Format(amount float64) string {
	d := toDecimal(amount).Round(f.scale)
	neg := d.IsNegative()
	s := d.Abs().StringFixed(f.scale)

	intPart, frac, _ := strings.Cut(s, ".")
	out := f.unit.String() + " " + groupDigits(intPart)
	if frac != "" {
		out += "." + frac
	}
	if neg {
		return "-" + out
	}
	return out
}

// FormatWhole renders amount without fraction digits, e.g. "KES 5,000".
func (f CurrencyFormatter) FormatWhole(amount float64) string {
	d := toDecimal(amount).Round(0)
	out := f.unit.String() + " " + groupDigits(d.Abs().String())
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

func toDecimal(amount float64) decimal.Decimal {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(amount)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return groupDigits(strconv.FormatInt(n, 10))
}

func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 value as a whole percentage, e.g. "42%".
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}
