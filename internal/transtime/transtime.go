// Package transtime parses the fixed-width YYYYMMDDHHMMSS timestamps used by
// the M-PESA transaction feed.
package transtime

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Width is the length of a well-formed transaction timestamp.
const Width = 14

// DisplayLayout renders a parsed timestamp in the long en-KE style,
// e.g. "November 6, 2024 at 02:30 PM".
const DisplayLayout = "January 2, 2006 at 03:04 PM"

// CutoffLayout is the calendar-date form used for cutoffs.
const CutoffLayout = "2006-01-02"

// ErrMalformed is returned for timestamps that are not 14 digits or whose
// components are out of range.
var ErrMalformed = errors.New("transtime: malformed timestamp")

// Parse converts ts into an instant in the local time zone.
func Parse(ts string) (time.Time, error) {
	return ParseInLocation(ts, time.Local)
}

// ParseInLocation converts ts into an instant in loc.
func ParseInLocation(ts string, loc *time.Location) (time.Time, error) {
	if len(ts) != Width {
		return time.Time{}, fmt.Errorf("%w: %q has length %d", ErrMalformed, ts, len(ts))
	}

	for i := 0; i < Width; i++ {
		if ts[i] < '0' || ts[i] > '9' {
			return time.Time{}, fmt.Errorf("%w: %q", ErrMalformed, ts)
		}
	}

	var parts [6]int
	bounds := [6][2]int{{0, 4}, {4, 6}, {6, 8}, {8, 10}, {10, 12}, {12, 14}}
	for i, b := range bounds {
		n, _ := strconv.Atoi(ts[b[0]:b[1]])
		parts[i] = n
	}

	year, month, day := parts[0], parts[1], parts[2]
	hour, minute, second := parts[3], parts[4], parts[5]
	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformed, ts)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	// time.Date normalizes Feb 30 into March; reject instead.
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformed, ts)
	}
	return t, nil
}

// ParseCutoff parses a YYYY-MM-DD date as local midnight.
func ParseCutoff(date string) (time.Time, error) {
	t, err := time.ParseInLocation(CutoffLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("transtime: parsing cutoff %q: %w", date, err)
	}
	return t, nil
}

// IsAfterDate reports whether ts falls at or after local midnight of cutoff.
func IsAfterDate(ts, cutoff string) (bool, error) {
	c, err := ParseCutoff(cutoff)
	if err != nil {
		return false, err
	}
	return IsAfter(ts, c)
}

// IsAfter reports whether ts falls at or after the cutoff instant.
func IsAfter(ts string, cutoff time.Time) (bool, error) {
	t, err := ParseInLocation(ts, cutoff.Location())
	if err != nil {
		return false, err
	}
	return !t.Before(cutoff), nil
}

// Format renders ts with DisplayLayout. Seconds are not shown.
func Format(ts string) (string, error) {
	t, err := Parse(ts)
	if err != nil {
		return "", err
	}
	return t.Format(DisplayLayout), nil
}

// FormatOr is Format with a fallback for malformed input, for renderers
// that must always show something.
func FormatOr(ts, fallback string) string {
	s, err := Format(ts)
	if err != nil {
		return fallback
	}
	return s
}
