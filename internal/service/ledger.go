package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/wallet-ledger/internal/domain"
	"github.com/josh-kwaku/wallet-ledger/internal/fx"
	"github.com/josh-kwaku/wallet-ledger/internal/metrics"
)

type documentStore interface {
	View(ctx context.Context, fn func(*domain.Collection) error) error
	Update(ctx context.Context, fn func(*domain.Collection) error) error
}

type sessionStore interface {
	Create(userID string) (string, error)
	Resolve(token string) (string, error)
	Revoke(token string)
	RevokeAll(userID string) int
	Active() int
}

type rateService interface {
	ConvertToEUR(ctx context.Context, amount decimal.Decimal, from domain.Currency) (*fx.Conversion, error)
	ToEUR(amount decimal.Decimal, c domain.Currency) decimal.Decimal
}

// LedgerService runs every account operation as one locked
// load-validate-mutate-save cycle against the store.
type LedgerService struct {
	store      documentStore
	sessions   sessionStore
	fx         rateService
	bcryptCost int
	now        func() time.Time
}

func NewLedgerService(store documentStore, sessions sessionStore, fxSvc rateService, bcryptCost int) *LedgerService {
	return &LedgerService{
		store:      store,
		sessions:   sessions,
		fx:         fxSvc,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// SetClock replaces the time source used for transaction dates and ids.
func (s *LedgerService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *LedgerService) today() string {
	return s.now().UTC().Format(domain.DateLayout)
}

func (s *LedgerService) authenticate(token string) (string, error) {
	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return "", domain.ErrUnauthenticated
	}
	return userID, nil
}

// mutate resolves the session and applies fn to the caller's account under
// the store's write lock. The returned projection reflects the saved state.
func (s *LedgerService) mutate(ctx context.Context, token string, fn func(u *domain.User) error) (*domain.State, error) {
	userID, err := s.authenticate(token)
	if err != nil {
		return nil, err
	}

	var state *domain.State
	err = s.store.Update(ctx, func(c *domain.Collection) error {
		u := c.FindByID(userID)
		if u == nil {
			return domain.ErrUnauthenticated
		}
		if err := fn(u); err != nil {
			return err
		}
		state = domain.Project(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// view is the read-only counterpart of mutate.
func (s *LedgerService) view(ctx context.Context, token string, fn func(u *domain.User) error) error {
	userID, err := s.authenticate(token)
	if err != nil {
		return err
	}

	return s.store.View(ctx, func(c *domain.Collection) error {
		u := c.FindByID(userID)
		if u == nil {
			return domain.ErrUnauthenticated
		}
		return fn(u)
	})
}

func (s *LedgerService) appendTransaction(u *domain.User, label string, amount decimal.Decimal, currency domain.Currency, kind domain.TransactionKind) domain.Transaction {
	t := domain.Transaction{
		ID:       u.NextTransactionID(s.now().UnixMilli()),
		Label:    label,
		Date:     s.today(),
		Amount:   amount,
		Currency: currency,
		Kind:     kind,
	}
	u.PrependTransaction(t)
	return t
}

func (s *LedgerService) syncSessionGauge() {
	metrics.SetActiveSessions(s.sessions.Active())
}

func record(operation string, err error) {
	switch {
	case err == nil:
		metrics.RecordOperation(operation, metrics.OutcomeOK)
	case isRejection(err):
		metrics.RecordOperation(operation, metrics.OutcomeRejected)
	default:
		metrics.RecordOperation(operation, metrics.OutcomeError)
	}
}

func isRejection(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput,
		domain.ErrUnauthenticated,
		domain.ErrInvalidCredentials,
		domain.ErrInsufficientFunds,
		domain.ErrNotFound,
		domain.ErrWalletNotFound,
		domain.ErrNoCard,
		domain.ErrEmailTaken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// validateAmount checks bounds first: the other checks rescale amount.
func validateAmount(field string, amount decimal.Decimal) error {
	if !domain.WithinBounds(amount) {
		return domain.Invalid(field, fmt.Sprintf("must be below 10^%d with at most %d decimal places", domain.MaxIntegerDigits, domain.MoneyPlaces))
	}
	if !amount.IsPositive() {
		return domain.Invalid(field, "must be greater than 0")
	}
	if !domain.IsMoney(amount) {
		return domain.Invalid(field, fmt.Sprintf("at most %d decimal places", domain.MoneyPlaces))
	}
	return nil
}
