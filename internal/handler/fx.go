package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/wallet-ledger/internal/domain"
)

type rateTable interface {
	Rates() map[domain.Currency]decimal.Decimal
	RateToEUR(c domain.Currency) decimal.Decimal
}

type FXHandler struct {
	fx rateTable
}

func NewFXHandler(fxSvc rateTable) *FXHandler {
	return &FXHandler{fx: fxSvc}
}

type fxRatesResponse struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	Timestamp string                     `json:"timestamp"`
}

type fxRateResponse struct {
	FromCurrency string          `json:"from"`
	ToCurrency   string          `json:"to"`
	Rate         decimal.Decimal `json:"rate"`
	Timestamp    string          `json:"timestamp"`
}

// GetRates lists the fixed conversion table, or a single rate with ?from=.
func (h *FXHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339)

	if from := strings.ToUpper(r.URL.Query().Get("from")); from != "" {
		if !domain.Currency(from).IsValid() {
			RespondValidationError(w, []FieldError{{Field: "from", Message: "must be USD, EUR, or GBP"}})
			return
		}
		RespondJSON(w, http.StatusOK, fxRateResponse{
			FromCurrency: from,
			ToCurrency:   string(domain.CurrencyEUR),
			Rate:         h.fx.RateToEUR(domain.Currency(from)),
			Timestamp:    now,
		})
		return
	}

	rates := make(map[string]decimal.Decimal)
	for c, rate := range h.fx.Rates() {
		rates[string(c)] = rate
	}
	RespondJSON(w, http.StatusOK, fxRatesResponse{
		Base:      string(domain.CurrencyEUR),
		Rates:     rates,
		Timestamp: now,
	})
}
