// Package notify publishes newly observed contributions to a message broker.
package notify

import (
	"encoding/json"
	"time"

	"github.com/theirongolddev/mchango/internal/model"
)

// ContributionMessage announces one new transaction.
type ContributionMessage struct {
	Key        string    `json:"key"`
	Department string    `json:"department"`
	Account    string    `json:"account"`
	User       string    `json:"user"`
	Amount     float64   `json:"amount"`
	TransTime  string    `json:"trans_time"`
	ObservedAt time.Time `json:"observed_at"`
}

// NewContributionMessage wraps tx for publication.
func NewContributionMessage(tx model.Transaction, observedAt time.Time) ContributionMessage {
	return ContributionMessage{
		Key:        tx.Key(),
		Department: tx.DepartmentName,
		Account:    tx.BillRefNumber,
		User:       tx.UserName,
		Amount:     tx.TransAmount,
		TransTime:  tx.TransTime,
		ObservedAt: observedAt.UTC(),
	}
}

// ToJSON encodes the message.
func (m ContributionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
