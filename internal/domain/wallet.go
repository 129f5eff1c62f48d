package domain

import "github.com/shopspring/decimal"

type Wallet struct {
	Code    Currency        `json:"code"`
	Balance decimal.Decimal `json:"balance"`
}

func (w *Wallet) Credit(amount decimal.Decimal) {
	w.Balance = w.Balance.Add(amount)
}

// Debit fails without touching the balance when it would go negative.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if w.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}
