package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
	TransactionKindInfo    TransactionKind = "info"
)

// DateLayout is the calendar-day form used for Transaction.Date.
const DateLayout = "2006-01-02"

type Transaction struct {
	ID       int64           `json:"id"`
	Label    string          `json:"label"`
	Date     string          `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
	Kind     TransactionKind `json:"kind"`
}

func (t Transaction) Day() (time.Time, bool) {
	d, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// SortTransactions orders by date descending. The sort is stable, so
// entries of the same day keep their log order (most recent first).
func SortTransactions(txns []Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date > txns[j].Date
	})
}
