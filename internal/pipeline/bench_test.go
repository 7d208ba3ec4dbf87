package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/theirongolddev/mchango/internal/directory"
	"github.com/theirongolddev/mchango/internal/model"
)

func syntheticPublicity(n int) model.Publicity {
	pub := model.Publicity{
		AccountTotals: make(model.AccountTotals),
		UserTotals:    make(model.UserTotals),
	}
	start := time.Date(2024, time.October, 1, 8, 0, 0, 0, time.Local)
	for i := 0; i < n; i++ {
		dept := fmt.Sprintf("Dept %02d", i%25)
		user := fmt.Sprintf("user%04d", i%700)
		amount := float64(50 + i%1000)
		ts := start.Add(time.Duration(i) * 7 * time.Minute).Format("20060102150405")
		pub.Transactions = append(pub.Transactions, model.Transaction{
			DepartmentName: dept,
			BillRefNumber:  fmt.Sprintf("%d", 1000+i%25),
			UserName:       user,
			TransAmount:    amount,
			TransTime:      ts,
		})
		pub.AccountTotals[dept] += amount
		if pub.UserTotals[dept] == nil {
			pub.UserTotals[dept] = make(map[string]float64)
		}
		pub.UserTotals[dept][user] += amount
		pub.GrandTotal += amount
	}
	return pub
}

func BenchmarkRecentTransactions(b *testing.B) {
	pub := syntheticPublicity(20000)
	cut := time.Date(2024, time.November, 5, 0, 0, 0, 0, time.Local)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = RecentTransactions(pub.Transactions, cut, DefaultRecentLimit)
	}
}

func BenchmarkSearch(b *testing.B) {
	pub := syntheticPublicity(20000)
	rows := BuildRows(pub.AccountTotals, pub.UserTotals, directory.Directory{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Search(rows, "USER0699")
	}
}
