package contribution

import (
	"errors"
	"testing"

	"github.com/theirongolddev/mchango/internal/directory"
)

var testDir = directory.New(map[string]string{"1000": "Choir", "1001": "Ushering"})

func TestValidatePhone(t *testing.T) {
	good := []string{"254712345678", "254100000000", " 254712345678 "}
	bad := []string{"", "0712345678", "25471234567", "2547123456789", "+254712345678", "254-12345678", "25471234567a"}
	for _, p := range good {
		if err := ValidatePhone(p); err != nil {
			t.Errorf("ValidatePhone(%q) = %v", p, err)
		}
	}
	for _, p := range bad {
		if err := ValidatePhone(p); !errors.Is(err, ErrInvalidPhone) {
			t.Errorf("ValidatePhone(%q) = %v, want ErrInvalidPhone", p, err)
		}
	}
}

func TestParseAmount(t *testing.T) {
	if n, err := ParseAmount("1500"); err != nil || n != 1500 {
		t.Errorf("ParseAmount(1500) = %d, %v", n, err)
	}
	for _, s := range []string{"", "0", "-5", "12.5", "abc"} {
		if _, err := ParseAmount(s); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q) = %v, want ErrInvalidAmount", s, err)
		}
	}
}

func TestParseShareAmount(t *testing.T) {
	for in, want := range map[string]int64{"": 0, "  ": 0, "0": 0, "250": 250} {
		if n, err := ParseShareAmount(in); err != nil || n != want {
			t.Errorf("ParseShareAmount(%q) = %d, %v, want %d", in, n, err, want)
		}
	}
	for _, s := range []string{"-1", "12.5", "abc"} {
		if _, err := ParseShareAmount(s); !errors.Is(err, ErrInvalidSuggest) {
			t.Errorf("ParseShareAmount(%q) = %v, want ErrInvalidSuggest", s, err)
		}
	}
}

func TestRequestPlain(t *testing.T) {
	f := Form{Phone: "254712345678", Amount: "500", Account: "1000"}
	req, err := f.Request(testDir)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if req.AccountReference != "1000" || req.Amount != 500 || req.CustomName != "" {
		t.Errorf("req = %+v", req)
	}
}

func TestRequestCustomName(t *testing.T) {
	f := Form{Phone: "254712345678", Amount: "500", Account: "1001", UseCustomName: true, CustomName: " Jane "}
	req, err := f.Request(testDir)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if req.AccountReference != "1001#Jane" || req.CustomName != "Jane" {
		t.Errorf("req = %+v", req)
	}
}

func TestRequestIgnoresNameWhenUnchecked(t *testing.T) {
	f := Form{Phone: "254712345678", Amount: "500", Account: "1000", CustomName: "Jane"}
	req, err := f.Request(testDir)
	if err != nil {
		t.Fatal(err)
	}
	if req.AccountReference != "1000" {
		t.Errorf("AccountReference = %q, want 1000", req.AccountReference)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	f := Form{Phone: "07", Amount: "0", Account: "9999", UseCustomName: true}
	err := f.Validate(testDir)
	for _, want := range []error{ErrInvalidPhone, ErrInvalidAmount, ErrUnknownAccount, ErrMissingName} {
		if !errors.Is(err, want) {
			t.Errorf("Validate error %v does not include %v", err, want)
		}
	}
	if _, err := f.Request(testDir); err == nil {
		t.Error("Request should fail on invalid form")
	}
}

func TestParsePrefill(t *testing.T) {
	tests := []struct {
		raw      string
		want     Prefill
		complete bool
	}{
		{"https://cu.example.org/?amount=500&account=1000&name=Jane%20Doe", Prefill{"500", "1000", "Jane Doe"}, true},
		{"?amount=200&account=1001", Prefill{Amount: "200", Account: "1001"}, true},
		{"amount=200", Prefill{Amount: "200"}, false},
		{"https://cu.example.org/", Prefill{}, false},
	}
	for _, tt := range tests {
		got, err := ParsePrefill(tt.raw)
		if err != nil {
			t.Errorf("ParsePrefill(%q): %v", tt.raw, err)
			continue
		}
		if got != tt.want || got.Complete() != tt.complete {
			t.Errorf("ParsePrefill(%q) = %+v (complete=%v), want %+v (%v)", tt.raw, got, got.Complete(), tt.want, tt.complete)
		}
	}
}

func TestPrefillApply(t *testing.T) {
	f := Prefill{Amount: "300", Account: "1000", Name: "Jane"}.Apply(Form{Phone: "254712345678"})
	if f.Phone != "254712345678" || f.Amount != "300" || f.Account != "1000" || !f.UseCustomName || f.CustomName != "Jane" {
		t.Errorf("form = %+v", f)
	}
}
