package transtime

import (
	"errors"
	"sort"
	"strings"
	"testing"
	"time"
)

func TestParse_Components(t *testing.T) {
	got, err := Parse("20241106143005")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, time.November, 6, 14, 30, 5, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("Parse = %v, want %v", got, want)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []string{
		"",
		"2024110614300",   // 13 chars
		"202411061430000", // 15 chars
		"2024110614300x",
		"20241306143000", // month 13
		"20241100143000", // day 0
		"20240230120000", // Feb 30
		"20241106250000", // hour 25
		"20241106146000", // minute 60
		"2024-1-0614300",
	}
	for _, ts := range cases {
		if _, err := Parse(ts); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) err = %v, want ErrMalformed", ts, err)
		}
	}
}

func TestFormat_LongForm(t *testing.T) {
	got, err := Format("20241106143000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"November", "6", "2024", "2:30 PM"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format = %q, missing %q", got, want)
		}
	}
	if got != "November 6, 2024 at 02:30 PM" {
		t.Errorf("Format = %q", got)
	}
}

func TestFormatOr_Fallback(t *testing.T) {
	if got := FormatOr("bad", "Invalid Date"); got != "Invalid Date" {
		t.Errorf("FormatOr = %q, want Invalid Date", got)
	}
}

func TestIsAfterDate_Boundary(t *testing.T) {
	cases := []struct {
		ts   string
		want bool
	}{
		{"20241105000000", true}, // exactly midnight counts
		{"20241104235959", false},
		{"20241105000001", true},
		{"20250101120000", true},
		{"20231231235959", false},
	}
	for _, c := range cases {
		got, err := IsAfterDate(c.ts, "2024-11-05")
		if err != nil {
			t.Fatalf("IsAfterDate(%q): %v", c.ts, err)
		}
		if got != c.want {
			t.Errorf("IsAfterDate(%q) = %v, want %v", c.ts, got, c.want)
		}
	}
}

func TestIsAfterDate_BadCutoff(t *testing.T) {
	if _, err := IsAfterDate("20241105000000", "Nov 5"); err == nil {
		t.Fatal("expected error for unparseable cutoff")
	}
}

func TestLexicographicOrderMatchesChronological(t *testing.T) {
	stamps := []string{
		"20241106143000",
		"20241105090000",
		"20231231235959",
		"20241106142959",
		"20250101000000",
		"20241110080000",
	}

	lex := append([]string(nil), stamps...)
	sort.Strings(lex)

	chrono := append([]string(nil), stamps...)
	sort.Slice(chrono, func(i, j int) bool {
		a, _ := Parse(chrono[i])
		b, _ := Parse(chrono[j])
		return a.Before(b)
	})

	for i := range lex {
		if lex[i] != chrono[i] {
			t.Fatalf("order mismatch at %d: lex=%v chrono=%v", i, lex, chrono)
		}
	}

	// IsAfter must agree with both orders for any cutoff taken from the set.
	for _, cut := range lex {
		cutT, _ := Parse(cut)
		for _, ts := range lex {
			got, err := IsAfter(ts, cutT)
			if err != nil {
				t.Fatal(err)
			}
			if got != (ts >= cut) {
				t.Errorf("IsAfter(%s, %s) = %v, want %v", ts, cut, got, ts >= cut)
			}
		}
	}
}
