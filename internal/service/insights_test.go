package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/wallet-ledger/internal/domain"
)

func TestInsights(t *testing.T) {
	env := setupLedger(t)
	ctx := context.Background()
	token := env.register(t, "ins@example.com").Token

	_, err := env.svc.TopUp(ctx, token, TopUpRequest{Amount: dec("100"), Currency: domain.CurrencyUSD})
	require.NoError(t, err)
	_, err = env.svc.Transfer(ctx, token, TransferRequest{Recipient: "Jane", IBAN: "FR7612345678901234567890123", Amount: dec("50")})
	require.NoError(t, err)

	require.NoError(t, env.store.Update(ctx, func(c *domain.Collection) error {
		u := c.FindByEmail("ins@example.com")
		u.Transactions = append(u.Transactions,
			domain.Transaction{ID: 1, Label: "Groceries", Date: "2024-04-20", Amount: dec("-30"), Currency: domain.CurrencyEUR, Kind: domain.TransactionKindExpense},
			domain.Transaction{ID: 2, Label: "Old", Date: "2024-03-01", Amount: dec("-999"), Currency: domain.CurrencyEUR, Kind: domain.TransactionKindExpense},
		)
		return nil
	}))

	got, err := env.svc.Insights(ctx, token)
	require.NoError(t, err)

	assert.Equal(t, "756.8", got.TotalEUR.String())
	assert.Equal(t, "592", got.MonthIncome.String())
	assert.Equal(t, "50", got.MonthSpent.String())
	assert.Equal(t, "91.6", got.MonthlyTrend.String())
	assert.Equal(t, "2.3", got.BudgetUsedPct.String())
	assert.Equal(t, "592", got.Income30d.String())
	assert.Equal(t, "80", got.Expense30d.String())
	assert.Equal(t, "86.5", got.SavingsRate.String())

	require.Len(t, got.ExpenseSeries, 14)
	assert.Equal(t, "2024-05-02", got.ExpenseSeries[0].Date)
	assert.Equal(t, "2024-05-15", got.ExpenseSeries[13].Date)
	assert.Equal(t, "50", got.ExpenseSeries[13].Total.String())
	assert.True(t, got.ExpenseSeries[0].Total.IsZero())
}

func TestInsights_NoIncome(t *testing.T) {
	env := setupLedger(t)
	ctx := context.Background()
	token := env.register(t, "zero@example.com").Token

	require.NoError(t, env.store.Update(ctx, func(c *domain.Collection) error {
		u := c.FindByEmail("zero@example.com")
		u.Transactions = nil
		u.MonthlyBudget = dec("0")
		return nil
	}))

	got, err := env.svc.Insights(ctx, token)
	require.NoError(t, err)
	assert.True(t, got.MonthlyTrend.IsZero())
	assert.True(t, got.SavingsRate.IsZero())
	assert.True(t, got.BudgetUsedPct.IsZero())
}

func TestInsights_BudgetCapped(t *testing.T) {
	env := setupLedger(t)
	ctx := context.Background()
	token := env.register(t, "cap@example.com").Token

	require.NoError(t, env.store.Update(ctx, func(c *domain.Collection) error {
		c.FindByEmail("cap@example.com").MonthlyBudget = dec("10")
		return nil
	}))
	_, err := env.svc.Transfer(ctx, token, TransferRequest{Recipient: "Jane", IBAN: "FR7612345678901234567890123", Amount: dec("25")})
	require.NoError(t, err)

	got, err := env.svc.Insights(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "100", got.BudgetUsedPct.String())
}

func TestTransactions_Filter(t *testing.T) {
	env := setupLedger(t)
	ctx := context.Background()
	token := env.register(t, "list@example.com").Token

	_, err := env.svc.Transfer(ctx, token, TransferRequest{Recipient: "Jane", IBAN: "FR7612345678901234567890123", Amount: dec("5")})
	require.NoError(t, err)
	_, err = env.svc.Convert(ctx, token, ConvertRequest{Amount: dec("10"), From: domain.CurrencyUSD, To: domain.CurrencyEUR})
	require.NoError(t, err)

	tests := []struct {
		filter TransactionFilter
		labels []string
	}{
		{FilterAll, []string{"Conversion USD to EUR", "Transfer to Jane", "Welcome bonus"}},
		{FilterIn, []string{"Welcome bonus"}},
		{FilterOut, []string{"Transfer to Jane"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			txns, err := env.svc.Transactions(ctx, token, tt.filter)
			require.NoError(t, err)

			labels := make([]string, len(txns))
			for i, tx := range txns {
				labels[i] = tx.Label
			}
			assert.Equal(t, tt.labels, labels)
		})
	}
}

func TestParseTransactionFilter(t *testing.T) {
	for _, in := range []string{"", "all", "in", "out"} {
		_, err := ParseTransactionFilter(in)
		assert.NoError(t, err, in)
	}

	_, err := ParseTransactionFilter("sideways")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
