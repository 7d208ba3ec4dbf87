package share

import (
	"strings"
	"testing"
)

func testPayload() Payload {
	return Payload{
		Organization:     "JKUAT CU",
		Paybill:          "921961",
		Origin:           "https://cu.example.org",
		Amount:           0,
		AccountReference: "1000",
	}
}

func TestPayloadText(t *testing.T) {
	p := testPayload()
	want := "Contribute to JKUAT CU\nAmount: KES 0\nAccount: 1000\nPaybill: 921961"
	if got := p.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	p.Amount = 500
	p.CustomName = "Jane Doe"
	want = "Contribute to JKUAT CU\nAmount: KES 500\nAccount: 1000\nName: Jane Doe\nPaybill: 921961"
	if got := p.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestPayloadTitle(t *testing.T) {
	if got := testPayload().Title(); got != "JKUAT CU Contribution" {
		t.Errorf("Title() = %q", got)
	}
}

func TestPayloadURL(t *testing.T) {
	p := testPayload()
	if got := p.URL(); got != "https://cu.example.org?amount=0&account=1000" {
		t.Errorf("URL() = %q", got)
	}

	p.Amount = 250
	p.CustomName = "Jane & Co"
	if got := p.URL(); got != "https://cu.example.org?amount=250&account=1000&name=Jane%20%26%20Co" {
		t.Errorf("URL() = %q", got)
	}

	p.Origin = ""
	if got := p.URL(); got != "" {
		t.Errorf("URL() without origin = %q", got)
	}
	if strings.Contains(p.Message(), "?amount") {
		t.Error("Message should omit the link without an origin")
	}
}
