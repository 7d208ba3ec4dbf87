package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/mchango/internal/config"
	"github.com/theirongolddev/mchango/internal/model"
)

// Fetcher retrieves the current contribution snapshot.
type Fetcher interface {
	FetchPublicity(ctx context.Context) (*model.Publicity, error)
}

// Board is everything the dashboard renders from one snapshot.
type Board struct {
	Publicity model.Publicity
	Rows      []model.DepartmentRow
	Recent    RecentResult
	Progress  []model.ProgressRow
	FetchedAt time.Time
}

// Load fetches a snapshot and builds the board from it.
func Load(ctx context.Context, f Fetcher, st config.Static) (*Board, error) {
	pub, err := f.FetchPublicity(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching contributions: %w", err)
	}
	return Build(*pub, st, time.Now()), nil
}

// Build derives a board from an already fetched snapshot.
func Build(pub model.Publicity, st config.Static, fetchedAt time.Time) *Board {
	limit := st.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &Board{
		Publicity: pub,
		Rows:      BuildRows(pub.AccountTotals, pub.UserTotals, st.Directory),
		Recent:    RecentTransactions(pub.Transactions, st.Cutoff, limit),
		Progress:  ProgressRows(pub.GrandTotal, pub.AccountTotals, st.Targets),
		FetchedAt: fetchedAt,
	}
}

// Departments returns the rows matching term.
func (b *Board) Departments(term string) []model.DepartmentRow {
	return Search(b.Rows, term)
}
