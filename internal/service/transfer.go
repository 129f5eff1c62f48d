package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/wallet-ledger/internal/domain"
	"github.com/josh-kwaku/wallet-ledger/internal/logging"
)

const (
	SpeedStandard = "standard"
	SpeedInstant  = "instant"

	minIBANLength = 10
)

// InstantFee is charged in EUR on top of an instant transfer.
var InstantFee = decimal.RequireFromString("1.5")

type TransferRequest struct {
	Recipient string
	IBAN      string
	Amount    decimal.Decimal
	Reference string
	Speed     string
}

type TransferResult struct {
	Recipient string
	IBAN      string
	Amount    decimal.Decimal
	Fee       decimal.Decimal
	State     *domain.State
}

func TransferFee(speed string) decimal.Decimal {
	if speed == SpeedInstant {
		return InstantFee
	}
	return decimal.Zero
}

// Transfer debits the EUR wallet by amount plus fee. The transfer and, when
// charged, the fee are logged as separate expense transactions.
func (s *LedgerService) Transfer(ctx context.Context, token string, req TransferRequest) (result *TransferResult, err error) {
	defer func() { record("transfer", err) }()
	log := logging.FromContext(ctx)

	recipient := strings.TrimSpace(req.Recipient)
	iban := strings.TrimSpace(req.IBAN)
	reference := strings.TrimSpace(req.Reference)

	if recipient == "" {
		return nil, fmt.Errorf("Transfer: %w", domain.Invalid("recipient", "is required"))
	}
	if iban == "" {
		return nil, fmt.Errorf("Transfer: %w", domain.Invalid("iban", "is required"))
	}
	if len(iban) < minIBANLength {
		return nil, fmt.Errorf("Transfer: %w", domain.Invalid("iban", "must be at least 10 characters"))
	}
	if err := validateAmount("amount", req.Amount); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	fee := TransferFee(req.Speed)
	total := req.Amount.Add(fee)
	label := reference
	if label == "" {
		label = "Transfer to " + recipient
	}

	var userID string
	state, err := s.mutate(ctx, token, func(u *domain.User) error {
		userID = u.ID
		w := u.Wallet(domain.CurrencyEUR)
		if w == nil {
			return domain.ErrInsufficientFunds
		}
		if err := w.Debit(total); err != nil {
			return err
		}

		s.appendTransaction(u, label, req.Amount.Neg(), domain.CurrencyEUR, domain.TransactionKindExpense)
		if fee.IsPositive() {
			s.appendTransaction(u, "Instant transfer fee", fee.Neg(), domain.CurrencyEUR, domain.TransactionKindExpense)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	log.Info("transfer completed",
		"user_id", userID,
		"amount", req.Amount,
		"fee", fee,
		"currency", domain.CurrencyEUR,
	)

	return &TransferResult{
		Recipient: recipient,
		IBAN:      iban,
		Amount:    req.Amount,
		Fee:       fee,
		State:     state,
	}, nil
}
