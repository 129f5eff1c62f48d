package domain

import "github.com/shopspring/decimal"

func init() {
	// Balances travel as plain JSON numbers, both on disk and to clients.
	decimal.MarshalJSONWithoutQuotes = true
}

type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
)

// MoneyPlaces is the fiat precision of every stored amount.
const MoneyPlaces = 2

const (
	// MaxIntegerDigits bounds a single amount to below 10^12.
	MaxIntegerDigits = 12
	// maxScale bounds trailing fractional digits, e.g. "1.000000".
	maxScale = 18
	// maxCoefficientBits caps the coefficient before it is measured in digits.
	maxCoefficientBits = 128
)

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyEUR, CurrencyUSD, CurrencyGBP:
		return true
	}
	return false
}

// WithinBounds reports whether d is small enough to be treated as money.
// It inspects only the exponent and coefficient size, so it is cheap for
// inputs like 1e5000000 and must run before anything that rescales d
// (Round, Cmp, Add).
func WithinBounds(d decimal.Decimal) bool {
	exp := int(d.Exponent())
	if exp < -maxScale || exp > MaxIntegerDigits {
		return false
	}
	if d.Coefficient().BitLen() > maxCoefficientBits {
		return false
	}
	return d.NumDigits()+exp <= MaxIntegerDigits
}

// IsMoney reports whether d carries no more than two fractional digits.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}
