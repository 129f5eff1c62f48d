package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/wallet-ledger/internal/domain"
	"github.com/josh-kwaku/wallet-ledger/internal/logging"
)

type ConvertRequest struct {
	Amount decimal.Decimal
	From   domain.Currency
	To     domain.Currency
}

type ConvertResult struct {
	Message   string
	Converted decimal.Decimal
	State     *domain.State
}

type TopUpRequest struct {
	Amount   decimal.Decimal
	Currency domain.Currency
}

type TopUpResult struct {
	Message string
	State   *domain.State
}

// Convert moves value from the source wallet into the EUR wallet at the
// fixed table rate. Only EUR is accepted as the target.
func (s *LedgerService) Convert(ctx context.Context, token string, req ConvertRequest) (result *ConvertResult, err error) {
	defer func() { record("convert", err) }()
	log := logging.FromContext(ctx)

	if err := validateAmount("amount", req.Amount); err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}
	if req.To != domain.CurrencyEUR {
		return nil, fmt.Errorf("Convert: %w", domain.Invalid("to", "only EUR is supported"))
	}

	conv, err := s.fx.ConvertToEUR(ctx, req.Amount, req.From)
	if err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}

	var userID string
	state, err := s.mutate(ctx, token, func(u *domain.User) error {
		userID = u.ID
		src := u.Wallet(req.From)
		dst := u.Wallet(domain.CurrencyEUR)
		if src == nil || dst == nil {
			return domain.ErrInsufficientFunds
		}
		if err := src.Debit(req.Amount); err != nil {
			return err
		}
		dst.Credit(conv.DestAmount)

		label := fmt.Sprintf("Conversion %s to %s", req.From, domain.CurrencyEUR)
		s.appendTransaction(u, label, decimal.Zero, domain.CurrencyEUR, domain.TransactionKindInfo)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}

	log.Info("conversion completed",
		"user_id", userID,
		"source_amount", req.Amount,
		"source_currency", req.From,
		"dest_amount", conv.DestAmount,
		"rate", conv.Rate,
	)

	return &ConvertResult{
		Message:   fmt.Sprintf("%s %s converted to %s EUR", req.Amount, req.From, conv.DestAmount.StringFixed(domain.MoneyPlaces)),
		Converted: conv.DestAmount,
		State:     state,
	}, nil
}

func (s *LedgerService) TopUp(ctx context.Context, token string, req TopUpRequest) (result *TopUpResult, err error) {
	defer func() { record("topup", err) }()
	log := logging.FromContext(ctx)

	if err := validateAmount("amount", req.Amount); err != nil {
		return nil, fmt.Errorf("TopUp: %w", err)
	}

	var userID string
	state, err := s.mutate(ctx, token, func(u *domain.User) error {
		userID = u.ID
		w := u.Wallet(req.Currency)
		if w == nil {
			return domain.ErrWalletNotFound
		}
		w.Credit(req.Amount)
		s.appendTransaction(u, "Card top-up", req.Amount, req.Currency, domain.TransactionKindIncome)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("TopUp: %w", err)
	}

	log.Info("top-up completed", "user_id", userID, "amount", req.Amount, "currency", req.Currency)

	return &TopUpResult{
		Message: fmt.Sprintf("%s %s added to the %s wallet", req.Amount, req.Currency, req.Currency),
		State:   state,
	}, nil
}
