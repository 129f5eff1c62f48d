package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/wallet-ledger/internal/domain"
	"github.com/josh-kwaku/wallet-ledger/internal/logging"
)

type ToggleCardResult struct {
	Frozen bool
	State  *domain.State
}

type IssueCardResult struct {
	Card  domain.Card
	State *domain.State
}

// ToggleCardFreeze flips the frozen flag of the display card.
func (s *LedgerService) ToggleCardFreeze(ctx context.Context, token string) (result *ToggleCardResult, err error) {
	defer func() { record("card_toggle", err) }()
	log := logging.FromContext(ctx)

	var (
		userID string
		card   domain.Card
	)
	state, err := s.mutate(ctx, token, func(u *domain.User) error {
		userID = u.ID
		c := u.DisplayCard()
		if c == nil {
			return domain.ErrNoCard
		}
		c.Frozen = !c.Frozen
		card = *c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ToggleCardFreeze: %w", err)
	}

	log.Info("card freeze toggled", "user_id", userID, "card_id", card.ID, "frozen", card.Frozen)
	return &ToggleCardResult{Frozen: card.Frozen, State: state}, nil
}

// IssueVirtualCard prepends a new virtual card, which makes it the display card.
func (s *LedgerService) IssueVirtualCard(ctx context.Context, token string) (result *IssueCardResult, err error) {
	defer func() { record("card_virtual", err) }()
	log := logging.FromContext(ctx)

	number, err := generateCardNumber()
	if err != nil {
		return nil, fmt.Errorf("IssueVirtualCard: %w", err)
	}

	var (
		userID string
		card   domain.Card
	)
	state, err := s.mutate(ctx, token, func(u *domain.User) error {
		userID = u.ID
		card = domain.Card{
			ID:     uuid.NewString(),
			Label:  fmt.Sprintf("Virtual %d", u.CountCards(domain.CardTypeVirtual)+1),
			Number: domain.MaskCardNumber(number),
			Type:   domain.CardTypeVirtual,
		}
		u.PrependCard(card)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("IssueVirtualCard: %w", err)
	}

	log.Info("virtual card issued", "user_id", userID, "card_id", card.ID)
	return &IssueCardResult{Card: card, State: state}, nil
}
