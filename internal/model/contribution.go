// Package model defines domain types for contribution totals and transactions.
package model

// Transaction is one M-PESA contribution as reported by the publicity API.
// Field names match the API's JSON keys.
type Transaction struct {
	DepartmentName string  `json:"DepartmentName"`
	BillRefNumber  string  `json:"BillRefNumber"`
	UserName       string  `json:"UserName"`
	TransAmount    float64 `json:"TransAmount"`
	TransTime      string  `json:"TransTime"` // YYYYMMDDHHMMSS, local time
}

// Key identifies a transaction across polls. The API has no transaction ID,
// so the visible fields together stand in for one.
func (t Transaction) Key() string {
	return t.TransTime + "|" + t.BillRefNumber + "|" + t.UserName + "|" + formatKeyAmount(t.TransAmount)
}

// AccountTotals maps department name to its cumulative amount.
type AccountTotals map[string]float64

// UserTotals maps department name to per-contributor cumulative amounts.
type UserTotals map[string]map[string]float64

// Publicity is the body of GET /publicity.
type Publicity struct {
	Transactions  []Transaction `json:"Transactions"`
	AccountTotals AccountTotals `json:"AccountTotals"`
	UserTotals    UserTotals    `json:"UserTotals"`
	GrandTotal    float64       `json:"GrandTotal"`
}

// ContributionRequest is the body of the payment initiation POST.
type ContributionRequest struct {
	Phone            string `json:"phone"`
	Amount           int64  `json:"amount"`
	AccountReference string `json:"account_reference"`
	CustomName       string `json:"customName,omitempty"`
}

// ShareData describes what a share card advertises.
type ShareData struct {
	Phone            string `json:"phone,omitempty"`
	Amount           int64  `json:"amount"`
	AccountReference string `json:"account_reference"`
	CustomName       string `json:"customName,omitempty"`
}
