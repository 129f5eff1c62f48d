package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskCardNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "sixteen digits", raw: "4111111111111234", want: "**** **** **** 1234"},
		{name: "spaces stripped", raw: "4111 1111 1111 9876", want: "**** **** **** 9876"},
		{name: "short number padded", raw: "42", want: "**** **** **** 0042"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MaskCardNumber(tc.raw))
		})
	}
}

func TestWalletDebit(t *testing.T) {
	w := Wallet{Code: CurrencyEUR, Balance: decimal.NewFromInt(10)}

	require.ErrorIs(t, w.Debit(decimal.RequireFromString("10.01")), ErrInsufficientFunds)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(10)), "balance must be untouched on failure")

	require.NoError(t, w.Debit(decimal.NewFromInt(10)))
	assert.True(t, w.Balance.IsZero())
}

func TestNextTransactionID(t *testing.T) {
	u := &User{}
	assert.Equal(t, int64(1000), u.NextTransactionID(1000))

	u.PrependTransaction(Transaction{ID: 5000})
	assert.Equal(t, int64(5001), u.NextTransactionID(1000))
	assert.Equal(t, int64(9000), u.NextTransactionID(9000))
}

func TestSortTransactions_StableWithinDay(t *testing.T) {
	txns := []Transaction{
		{ID: 3, Date: "2026-03-01"},
		{ID: 2, Date: "2026-03-02"},
		{ID: 5, Date: "2026-03-01"},
		{ID: 1, Date: "2026-02-28"},
	}

	SortTransactions(txns)

	ids := make([]int64, len(txns))
	for i, tx := range txns {
		ids[i] = tx.ID
	}
	assert.Equal(t, []int64{2, 3, 5, 1}, ids)
}

func TestProject_OmitsCredentialAndCopies(t *testing.T) {
	u := &User{
		ID:             "u1",
		Name:           "Ada",
		Email:          "ada@example.com",
		PasswordHash:   "hash",
		LegacyPassword: "secret",
		MonthlyBudget:  decimal.NewFromInt(2000),
		Wallets:        []Wallet{{Code: CurrencyEUR, Balance: decimal.NewFromInt(1)}},
		Cards:          []Card{{ID: "c1"}},
	}

	s := Project(u)
	u.Wallets[0].Balance = decimal.NewFromInt(99)
	u.Cards[0].Frozen = true

	assert.True(t, s.Wallets[0].Balance.Equal(decimal.NewFromInt(1)))
	assert.False(t, s.Cards[0].Frozen)
	assert.NotNil(t, s.Beneficiaries)
	assert.NotNil(t, s.Transactions)
	assert.Equal(t, "ada@example.com", s.User.Email)
}

func TestValidationError_MatchesInvalidInput(t *testing.T) {
	err := Invalid("email", "must contain @")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "email: must contain @", err.Error())
}

func TestWithinBounds(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0.01", true},
		{"100", true},
		{"1e3", true},
		{"999999999999.99", true},
		{"1.000000", true},
		{"1000000000000", false},
		{"1e12", false},
		{"1e5000000", false},
		{"1e-5000000", false},
		{"-1e5000000", false},
		{"123456789012345678901234567890123456789012345678901", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, WithinBounds(decimal.RequireFromString(tt.in)))
		})
	}
}
