package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/mchango/internal/config"
	"github.com/theirongolddev/mchango/internal/model"
)

type fakeFetcher struct {
	pub *model.Publicity
	err error
}

func (f fakeFetcher) FetchPublicity(context.Context) (*model.Publicity, error) {
	return f.pub, f.err
}

func testStatic(t *testing.T) config.Static {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Accounts = map[string]string{"1000": "Choir"}
	st, err := cfg.Static()
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestLoadBuildsBoard(t *testing.T) {
	pub := &model.Publicity{
		Transactions: []model.Transaction{
			{DepartmentName: "Choir", BillRefNumber: "1000", UserName: "alice", TransAmount: 500, TransTime: "20241106143000"},
			{DepartmentName: "Choir", BillRefNumber: "1000", UserName: "bob", TransAmount: 200, TransTime: "20241001100000"},
		},
		AccountTotals: model.AccountTotals{"Choir": 700},
		UserTotals:    model.UserTotals{"Choir": {"alice": 500, "bob": 200}},
		GrandTotal:    700,
	}

	board, err := Load(context.Background(), fakeFetcher{pub: pub}, testStatic(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(board.Rows) != 1 || board.Rows[0].Account != "1000" {
		t.Errorf("Rows = %+v", board.Rows)
	}
	if len(board.Recent.Transactions) != 1 || board.Recent.Transactions[0].UserName != "alice" {
		t.Errorf("Recent = %+v", board.Recent)
	}
	if len(board.Progress) != 2 || board.Progress[0].Current != 700 {
		t.Errorf("Progress = %+v", board.Progress)
	}
	if board.FetchedAt.IsZero() || time.Since(board.FetchedAt) > time.Minute {
		t.Errorf("FetchedAt = %v", board.FetchedAt)
	}
	if got := board.Departments("ALICE"); len(got) != 1 {
		t.Errorf("Departments(ALICE) = %v", names(got))
	}
}

func TestLoadPropagatesFetchError(t *testing.T) {
	sentinel := errors.New("boom")
	_, err := Load(context.Background(), fakeFetcher{err: sentinel}, testStatic(t))
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want wrapped sentinel", err)
	}
}
