package handler

import (
	"context"
	"net/http"

	"github.com/josh-kwaku/wallet-ledger/internal/auth"
	"github.com/josh-kwaku/wallet-ledger/internal/domain"
	"github.com/josh-kwaku/wallet-ledger/internal/service"
)

type cardService interface {
	ToggleCardFreeze(ctx context.Context, token string) (*service.ToggleCardResult, error)
	IssueVirtualCard(ctx context.Context, token string) (*service.IssueCardResult, error)
}

type CardHandler struct {
	cards cardService
}

func NewCardHandler(cards cardService) *CardHandler {
	return &CardHandler{cards: cards}
}

type toggleResponse struct {
	Frozen bool          `json:"frozen"`
	State  *domain.State `json:"state"`
}

type cardResponse struct {
	Card  domain.Card   `json:"card"`
	State *domain.State `json:"state"`
}

func (h *CardHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthenticated, nil)
		return
	}

	res, err := h.cards.ToggleCardFreeze(r.Context(), token)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, toggleResponse{Frozen: res.Frozen, State: res.State})
}

func (h *CardHandler) IssueVirtual(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrUnauthenticated, nil)
		return
	}

	res, err := h.cards.IssueVirtualCard(r.Context(), token)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, cardResponse{Card: res.Card, State: res.State})
}
