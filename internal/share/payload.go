// Package share builds shareable payment details for a department: a PNG
// card, a text snippet and a deep link, delivered through a fallback chain.
package share

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/theirongolddev/mchango/internal/config"
	"github.com/theirongolddev/mchango/internal/model"
)

// Payload is what gets shared.
type Payload struct {
	Organization     string
	Paybill          string
	Origin           string // base URL of the dashboard, may be empty
	Amount           int64
	AccountReference string
	CustomName       string
}

// NewPayload combines static settings with the data being shared.
func NewPayload(st config.Static, d model.ShareData) Payload {
	return Payload{
		Organization:     st.Organization,
		Paybill:          st.Paybill,
		Origin:           st.ShareOrigin,
		Amount:           d.Amount,
		AccountReference: d.AccountReference,
		CustomName:       strings.TrimSpace(d.CustomName),
	}
}

// Title is the share sheet title.
func (p Payload) Title() string {
	return p.Organization + " Contribution"
}

// Text is the plain-text snippet.
func (p Payload) Text() string {
	var b strings.Builder
	b.WriteString("Contribute to " + p.Organization)
	b.WriteString("\nAmount: KES " + strconv.FormatInt(p.Amount, 10))
	b.WriteString("\nAccount: " + p.AccountReference)
	if p.CustomName != "" {
		b.WriteString("\nName: " + p.CustomName)
	}
	b.WriteString("\nPaybill: " + p.Paybill)
	return b.String()
}

// URL is a deep link that opens the payment form pre-filled. Empty when no
// origin is configured.
func (p Payload) URL() string {
	if p.Origin == "" {
		return ""
	}
	q := "amount=" + strconv.FormatInt(p.Amount, 10) + "&account=" + escape(p.AccountReference)
	if p.CustomName != "" {
		q += "&name=" + escape(p.CustomName)
	}
	return strings.TrimRight(p.Origin, "?") + "?" + q
}

// Message is Text followed by URL, for channels that take a single string.
func (p Payload) Message() string {
	if u := p.URL(); u != "" {
		return p.Text() + "\n" + u
	}
	return p.Text()
}

// escape percent-encodes like encodeURIComponent: spaces become %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// cardLines returns the lines drawn on the image card.
func (p Payload) cardLines() []string {
	lines := []string{
		"Amount: KES " + strconv.FormatInt(p.Amount, 10),
		"Account: " + p.AccountReference,
	}
	if p.CustomName != "" {
		lines = append(lines, "Name: "+p.CustomName)
	}
	return lines
}
