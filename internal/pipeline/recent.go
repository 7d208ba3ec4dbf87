// Package pipeline turns a fetched contribution snapshot into display rows:
// recent transactions, searchable department rows and progress bars.
package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/mchango/internal/model"
	"github.com/theirongolddev/mchango/internal/transtime"
)

// DefaultRecentLimit is how many recent transactions are shown.
const DefaultRecentLimit = 20

// RecentResult is the output of RecentTransactions.
type RecentResult struct {
	Transactions []model.Transaction
	Dropped      int // rows with a malformed TransTime
}

// RecentTransactions keeps transactions at or after cutoff, newest first,
// truncated to limit (limit <= 0 means no truncation). The input slice is
// not modified. Rows in the same second keep their input order.
func RecentTransactions(txs []model.Transaction, cutoff time.Time, limit int) RecentResult {
	var res RecentResult
	kept := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		after, err := transtime.IsAfter(tx.TransTime, cutoff)
		if err != nil {
			res.Dropped++
			continue
		}
		if after {
			kept = append(kept, tx)
		}
	}

	// Fixed-width digit strings: lexical order is chronological order.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].TransTime > kept[j].TransTime
	})

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	res.Transactions = kept
	return res
}
