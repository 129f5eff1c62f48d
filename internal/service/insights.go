package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/wallet-ledger/internal/domain"
)

const (
	expenseSeriesDays = 14
	recentWindowDays  = 30
)

var hundred = decimal.NewFromInt(100)

type SeriesPoint struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// Insights are derived from the ledger on every call and never stored.
// Amounts are EUR equivalents at the fixed table rates.
type Insights struct {
	TotalEUR      decimal.Decimal `json:"totalEur"`
	MonthIncome   decimal.Decimal `json:"monthIncome"`
	MonthSpent    decimal.Decimal `json:"monthSpent"`
	MonthlyTrend  decimal.Decimal `json:"monthlyTrend"`
	BudgetUsedPct decimal.Decimal `json:"budgetUsedPct"`
	Income30d     decimal.Decimal `json:"income30d"`
	Expense30d    decimal.Decimal `json:"expense30d"`
	SavingsRate   decimal.Decimal `json:"savingsRate"`
	ExpenseSeries []SeriesPoint   `json:"expenseSeries"`
}

type TransactionFilter string

const (
	FilterAll TransactionFilter = "all"
	FilterIn  TransactionFilter = "in"
	FilterOut TransactionFilter = "out"
)

func ParseTransactionFilter(s string) (TransactionFilter, error) {
	switch TransactionFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterIn, FilterOut:
		return TransactionFilter(s), nil
	}
	return "", domain.Invalid("filter", "must be one of all, in, out")
}

func (s *LedgerService) Insights(ctx context.Context, token string) (*Insights, error) {
	var out *Insights
	err := s.view(ctx, token, func(u *domain.User) error {
		out = s.computeInsights(u, s.now().UTC())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Insights: %w", err)
	}
	return out, nil
}

// Transactions lists the log newest first; "in" keeps credits and "out"
// keeps debits.
func (s *LedgerService) Transactions(ctx context.Context, token string, filter TransactionFilter) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := s.view(ctx, token, func(u *domain.User) error {
		out = make([]domain.Transaction, 0, len(u.Transactions))
		for _, t := range u.Transactions {
			switch {
			case filter == FilterIn && !t.Amount.IsPositive():
				continue
			case filter == FilterOut && !t.Amount.IsNegative():
				continue
			}
			out = append(out, t)
		}
		domain.SortTransactions(out)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Transactions: %w", err)
	}
	return out, nil
}

func (s *LedgerService) computeInsights(u *domain.User, now time.Time) *Insights {
	total := decimal.Zero
	for _, w := range u.Wallets {
		total = total.Add(s.fx.ToEUR(w.Balance, w.Code))
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -recentWindowDays)
	seriesStart := today.AddDate(0, 0, -(expenseSeriesDays - 1))

	series := make([]SeriesPoint, expenseSeriesDays)
	byDay := make(map[string]int, expenseSeriesDays)
	for i := range series {
		day := seriesStart.AddDate(0, 0, i).Format(domain.DateLayout)
		series[i] = SeriesPoint{Date: day, Total: decimal.Zero}
		byDay[day] = i
	}

	var monthIn, monthOut, in30, out30 decimal.Decimal
	for _, t := range u.Transactions {
		day, ok := t.Day()
		if !ok {
			continue
		}
		eur := s.fx.ToEUR(t.Amount, t.Currency)

		if day.Year() == today.Year() && day.Month() == today.Month() {
			if eur.IsNegative() {
				monthOut = monthOut.Add(eur.Abs())
			} else {
				monthIn = monthIn.Add(eur)
			}
		}
		if !day.Before(cutoff) {
			if eur.IsNegative() {
				out30 = out30.Add(eur.Abs())
			} else {
				in30 = in30.Add(eur)
			}
		}
		if i, ok := byDay[t.Date]; ok && eur.IsNegative() {
			series[i].Total = series[i].Total.Add(eur.Abs())
		}
	}

	for i := range series {
		series[i].Total = series[i].Total.Round(domain.MoneyPlaces)
	}

	budgetUsed := decimal.Zero
	if u.MonthlyBudget.IsPositive() {
		budgetUsed = decimal.Min(hundred, monthOut.Div(u.MonthlyBudget).Mul(hundred))
	}

	return &Insights{
		TotalEUR:      total.Round(domain.MoneyPlaces),
		MonthIncome:   monthIn.Round(domain.MoneyPlaces),
		MonthSpent:    monthOut.Round(domain.MoneyPlaces),
		MonthlyTrend:  netRate(monthIn, monthOut),
		BudgetUsedPct: budgetUsed.Round(1),
		Income30d:     in30.Round(domain.MoneyPlaces),
		Expense30d:    out30.Round(domain.MoneyPlaces),
		SavingsRate:   netRate(in30, out30),
		ExpenseSeries: series,
	}
}

// netRate is (in - out) / in as a percentage, 0 without income.
func netRate(in, out decimal.Decimal) decimal.Decimal {
	if !in.IsPositive() {
		return decimal.Zero
	}
	return in.Sub(out).Div(in).Mul(hundred).Round(1)
}
