package domain

import "github.com/shopspring/decimal"

type Profile struct {
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
}

// State is the externally visible projection of an account. It never
// carries a credential.
type State struct {
	User          Profile       `json:"user"`
	Wallets       []Wallet      `json:"wallets"`
	Cards         []Card        `json:"cards"`
	Beneficiaries []Beneficiary `json:"beneficiaries"`
	Transactions  []Transaction `json:"transactions"`
}

// Project copies u into a State. Slices are fresh so later mutations of
// u do not leak into an already returned projection.
func Project(u *User) *State {
	s := &State{
		User: Profile{
			Name:          u.Name,
			Email:         u.Email,
			MonthlyBudget: u.MonthlyBudget,
		},
		Wallets:       append(make([]Wallet, 0, len(u.Wallets)), u.Wallets...),
		Cards:         append(make([]Card, 0, len(u.Cards)), u.Cards...),
		Beneficiaries: append(make([]Beneficiary, 0, len(u.Beneficiaries)), u.Beneficiaries...),
		Transactions:  append(make([]Transaction, 0, len(u.Transactions)), u.Transactions...),
	}
	SortTransactions(s.Transactions)
	return s
}
