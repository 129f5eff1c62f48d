package handler

import (
	"context"
	"net/http"

	"github.com/josh-kwaku/wallet-ledger/internal/auth"
	"github.com/josh-kwaku/wallet-ledger/internal/domain"
	"github.com/josh-kwaku/wallet-ledger/internal/service"
)

type accountService interface {
	GetState(ctx context.Context, token string) (*domain.State, error)
	DeleteAccount(ctx context.Context, token string) error
	Insights(ctx context.Context, token string) (*service.Insights, error)
	Transactions(ctx context.Context, token string, filter service.TransactionFilter) ([]domain.Transaction, error)
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type stateResponse struct {
	State *domain.State `json:"state"`
}

type transactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
}

func (h *AccountHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthenticated, nil)
		return
	}

	state, err := h.accounts.GetState(r.Context(), token)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, stateResponse{State: state})
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthenticated, nil)
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), token); err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *AccountHandler) Insights(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthenticated, nil)
		return
	}

	insights, err := h.accounts.Insights(r.Context(), token)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, insights)
}

func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthenticated, nil)
		return
	}

	filter, err := service.ParseTransactionFilter(r.URL.Query().Get("filter"))
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	txns, err := h.accounts.Transactions(r.Context(), token, filter)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, transactionsResponse{Transactions: txns})
}
