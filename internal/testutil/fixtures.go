package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/wallet-ledger/internal/domain"
)

// LegacySingleAccountDoc is the oldest stored shape: one account at the top level.
const LegacySingleAccountDoc = `{
  "user": {"name": "Jade Martin", "email": "jade@example.com", "password": "secret1", "monthlyBudget": 1800},
  "wallets": [{"code": "EUR", "balance": 320.5}, {"code": "USD", "balance": 40}],
  "cards": [{"id": "c1", "label": "Main", "number": "**** **** **** 4242", "frozen": false, "type": "physical"}],
  "beneficiaries": [{"id": "b1", "name": "Landlord", "iban": "FR7612345678901234567890123", "country": "FR"}],
  "transactions": [{"id": 1700000000000, "label": "Rent", "date": "2024-01-03", "amount": -650, "currency": "EUR", "kind": "expense"}]
}`

// LegacyMultiAccountDoc is a version 1 document with clear-text credentials.
const LegacyMultiAccountDoc = `{
  "users": [
    {"id": "u1", "name": "Ana", "email": "ana@example.com", "password": "pw-ana",
     "wallets": [{"code": "EUR", "balance": 10}], "cards": [], "beneficiaries": [], "transactions": []},
    {"id": "u2", "name": "Ben", "email": "ben@example.com", "password": "pw-ben", "monthlyBudget": 900,
     "wallets": [{"code": "EUR", "balance": 20}, {"code": "USD", "balance": 5}], "cards": [], "beneficiaries": [], "transactions": []}
  ]
}`

func HashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

// NewUser builds a user with the given balances and no cards or history.
func NewUser(t *testing.T, id, email, password string, balances map[domain.Currency]int64) domain.User {
	t.Helper()

	u := domain.User{
		ID:            id,
		Name:          "Test " + id,
		Email:         email,
		PasswordHash:  HashPassword(t, password),
		MonthlyBudget: decimal.NewFromInt(2000),
		Wallets:       []domain.Wallet{},
		Cards:         []domain.Card{},
		Beneficiaries: []domain.Beneficiary{},
		Transactions:  []domain.Transaction{},
	}
	for _, code := range []domain.Currency{domain.CurrencyEUR, domain.CurrencyUSD, domain.CurrencyGBP} {
		if amount, ok := balances[code]; ok {
			u.Wallets = append(u.Wallets, domain.Wallet{Code: code, Balance: decimal.NewFromInt(amount)})
		}
	}
	return u
}

// WriteStoreFile writes content to a fresh store file and returns its path.
func WriteStoreFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write store file: %v", err)
	}
	return path
}
