package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/wallet-ledger/internal/auth"
	"github.com/josh-kwaku/wallet-ledger/internal/domain"
	"github.com/josh-kwaku/wallet-ledger/internal/service"
)

var (
	defaultConvertAmount = decimal.NewFromInt(50)
	defaultTopUpAmount   = decimal.NewFromInt(100)
)

type ledgerService interface {
	Transfer(ctx context.Context, token string, req service.TransferRequest) (*service.TransferResult, error)
	Convert(ctx context.Context, token string, req service.ConvertRequest) (*service.ConvertResult, error)
	TopUp(ctx context.Context, token string, req service.TopUpRequest) (*service.TopUpResult, error)
}

type LedgerHandler struct {
	ledger ledgerService
}

func NewLedgerHandler(ledger ledgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

type transferRequest struct {
	Recipient string           `json:"recipient"`
	IBAN      string           `json:"iban"`
	Amount    *decimal.Decimal `json:"amount"`
	Reference string           `json:"reference"`
	Speed     string           `json:"speed"`
}

type transferResponse struct {
	Recipient string          `json:"recipient"`
	IBAN      string          `json:"iban"`
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"`
	State     *domain.State   `json:"state"`
}

// convertRequest and topUpRequest fields are optional; missing ones take
// the defaults below. Only an absent amount is defaulted: an explicit 0 or
// negative value is passed on and rejected by validation.
type convertRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	From   string           `json:"from"`
	To     string           `json:"to"`
}

type topUpRequest struct {
	Amount   *decimal.Decimal `json:"amount"`
	Currency string           `json:"currency"`
}

type messageResponse struct {
	Message string        `json:"message"`
	State   *domain.State `json:"state"`
}

func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthenticated, nil)
		return
	}

	var req transferRequest
	if appErr := decodeBody(w, r, &req); appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	amount := decimal.Zero
	if req.Amount != nil {
		amount = *req.Amount
	}
	speed := req.Speed
	if speed == "" {
		speed = service.SpeedStandard
	}

	res, err := h.ledger.Transfer(r.Context(), token, service.TransferRequest{
		Recipient: req.Recipient,
		IBAN:      req.IBAN,
		Amount:    amount,
		Reference: req.Reference,
		Speed:     speed,
	})
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, transferResponse{
		Recipient: res.Recipient,
		IBAN:      res.IBAN,
		Amount:    res.Amount,
		Fee:       res.Fee,
		State:     res.State,
	})
}

func (h *LedgerHandler) Convert(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthenticated, nil)
		return
	}

	var req convertRequest
	if appErr := decodeBody(w, r, &req); appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	res, err := h.ledger.Convert(r.Context(), token, service.ConvertRequest{
		Amount: amountOrDefault(req.Amount, defaultConvertAmount),
		From:   currencyOrDefault(req.From, domain.CurrencyUSD),
		To:     currencyOrDefault(req.To, domain.CurrencyEUR),
	})
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, messageResponse{Message: res.Message, State: res.State})
}

func (h *LedgerHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthenticated, nil)
		return
	}

	var req topUpRequest
	if appErr := decodeBody(w, r, &req); appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	res, err := h.ledger.TopUp(r.Context(), token, service.TopUpRequest{
		Amount:   amountOrDefault(req.Amount, defaultTopUpAmount),
		Currency: currencyOrDefault(req.Currency, domain.CurrencyEUR),
	})
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, messageResponse{Message: res.Message, State: res.State})
}

func amountOrDefault(amount *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if amount == nil {
		return def
	}
	return *amount
}

func currencyOrDefault(code string, def domain.Currency) domain.Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return def
	}
	return domain.Currency(code)
}
