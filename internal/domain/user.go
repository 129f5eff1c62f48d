package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMonthlyBudget applies to records stored without a budget.
var DefaultMonthlyBudget = decimal.NewFromInt(2000)

// User is the canonical account record: identity plus everything it owns.
type User struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	PasswordHash  string          `json:"passwordHash,omitempty"`
	MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
	Wallets       []Wallet        `json:"wallets"`
	Cards         []Card          `json:"cards"`
	Beneficiaries []Beneficiary   `json:"beneficiaries"`
	Transactions  []Transaction   `json:"transactions"`

	// LegacyPassword holds a clear-text credential carried over from old
	// documents until the next successful login replaces it with a hash.
	LegacyPassword string `json:"password,omitempty"`
}

func (u *User) HasCredential() bool {
	return u.PasswordHash != "" || u.LegacyPassword != ""
}

func (u *User) Wallet(code Currency) *Wallet {
	for i := range u.Wallets {
		if u.Wallets[i].Code == code {
			return &u.Wallets[i]
		}
	}
	return nil
}

// DisplayCard is the first card of the list, or nil.
func (u *User) DisplayCard() *Card {
	if len(u.Cards) == 0 {
		return nil
	}
	return &u.Cards[0]
}

func (u *User) PrependCard(c Card) {
	u.Cards = append([]Card{c}, u.Cards...)
}

func (u *User) CountCards(t CardType) int {
	n := 0
	for _, c := range u.Cards {
		if c.Type == t {
			n++
		}
	}
	return n
}

// PrependTransaction inserts at the head of the log.
func (u *User) PrependTransaction(t Transaction) {
	u.Transactions = append([]Transaction{t}, u.Transactions...)
}

// NextTransactionID returns an id strictly greater than every id in the
// log and no smaller than nowMillis.
func (u *User) NextTransactionID(nowMillis int64) int64 {
	next := nowMillis
	for _, t := range u.Transactions {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return next
}

// Collection is the whole store: every account record.
type Collection struct {
	Users []User
}

func (c *Collection) FindByID(id string) *User {
	for i := range c.Users {
		if c.Users[i].ID == id {
			return &c.Users[i]
		}
	}
	return nil
}

// FindByEmail compares case-insensitively.
func (c *Collection) FindByEmail(email string) *User {
	for i := range c.Users {
		if strings.EqualFold(c.Users[i].Email, email) {
			return &c.Users[i]
		}
	}
	return nil
}

func (c *Collection) Remove(id string) bool {
	for i := range c.Users {
		if c.Users[i].ID == id {
			c.Users = append(c.Users[:i], c.Users[i+1:]...)
			return true
		}
	}
	return false
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
