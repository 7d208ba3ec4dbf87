package api

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/mchango/internal/model"
)

// wirePublicity mirrors the /publicity response. Amounts are kept raw
// because M-PESA callbacks relay TransAmount as either a number or a string.
type wirePublicity struct {
	Transactions  []wireTransaction                     `json:"Transactions"`
	AccountTotals map[string]json.RawMessage            `json:"AccountTotals"`
	UserTotals    map[string]map[string]json.RawMessage `json:"UserTotals"`
	GrandTotal    json.RawMessage                       `json:"GrandTotal"`
}

type wireTransaction struct {
	DepartmentName string          `json:"DepartmentName"`
	BillRefNumber  string          `json:"BillRefNumber"`
	UserName       string          `json:"UserName"`
	TransAmount    json.RawMessage `json:"TransAmount"`
	TransTime      json.RawMessage `json:"TransTime"`
}

func (w wirePublicity) toModel() *model.Publicity {
	pub := &model.Publicity{
		Transactions:  make([]model.Transaction, 0, len(w.Transactions)),
		AccountTotals: make(model.AccountTotals, len(w.AccountTotals)),
		UserTotals:    make(model.UserTotals, len(w.UserTotals)),
		GrandTotal:    parseAmount(w.GrandTotal),
	}
	for _, t := range w.Transactions {
		pub.Transactions = append(pub.Transactions, model.Transaction{
			DepartmentName: t.DepartmentName,
			BillRefNumber:  t.BillRefNumber,
			UserName:       t.UserName,
			TransAmount:    parseAmount(t.TransAmount),
			TransTime:      parseText(t.TransTime),
		})
	}
	for dept, v := range w.AccountTotals {
		pub.AccountTotals[dept] = parseAmount(v)
	}
	for dept, users := range w.UserTotals {
		m := make(map[string]float64, len(users))
		for name, v := range users {
			m[name] = parseAmount(v)
		}
		pub.UserTotals[dept] = m
	}
	return pub
}

// parseAmount accepts a JSON number or a numeric string ("1,500.00").
// Anything else is 0.
func parseAmount(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	return 0
}

// parseText accepts a JSON string or number. TransTime arrives as
// 20241106143000 without quotes from some gateways.
func parseText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
