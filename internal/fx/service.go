package fx

import (
	"context"
	"fmt"

	"github.com/josh-kwaku/wallet-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type Conversion struct {
	SourceAmount   decimal.Decimal
	SourceCurrency domain.Currency
	DestAmount     decimal.Decimal
	Rate           decimal.Decimal
}

// RateService converts through a fixed table of rates to EUR.
// An unknown currency converts at rate 1, i.e. it is treated as EUR.
type RateService struct {
	toEUR map[domain.Currency]decimal.Decimal
}

func NewRateService() *RateService {
	return &RateService{
		toEUR: map[domain.Currency]decimal.Decimal{
			domain.CurrencyEUR: decimal.NewFromInt(1),
			domain.CurrencyUSD: decimal.RequireFromString("0.92"),
			domain.CurrencyGBP: decimal.RequireFromString("1.16"),
		},
	}
}

func (s *RateService) RateToEUR(c domain.Currency) decimal.Decimal {
	if r, ok := s.toEUR[c]; ok {
		return r
	}
	return decimal.NewFromInt(1)
}

// Rates returns a copy of the table.
func (s *RateService) Rates() map[domain.Currency]decimal.Decimal {
	out := make(map[domain.Currency]decimal.Decimal, len(s.toEUR))
	for c, r := range s.toEUR {
		out[c] = r
	}
	return out
}

// ToEUR is the unrounded EUR value of amount, used by aggregate views.
func (s *RateService) ToEUR(amount decimal.Decimal, c domain.Currency) decimal.Decimal {
	return amount.Mul(s.RateToEUR(c))
}

// ConvertToEUR rounds the result to fiat precision.
func (s *RateService) ConvertToEUR(_ context.Context, amount decimal.Decimal, from domain.Currency) (*Conversion, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("ConvertToEUR: %w", domain.Invalid("amount", "must be greater than 0"))
	}

	rate := s.RateToEUR(from)
	return &Conversion{
		SourceAmount:   amount,
		SourceCurrency: from,
		DestAmount:     amount.Mul(rate).Round(domain.MoneyPlaces),
		Rate:           rate,
	}, nil
}
