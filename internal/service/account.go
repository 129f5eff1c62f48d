package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/wallet-ledger/internal/auth"
	"github.com/josh-kwaku/wallet-ledger/internal/domain"
	"github.com/josh-kwaku/wallet-ledger/internal/logging"
)

const (
	minNameLength     = 2
	minPasswordLength = 6
)

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

type LoginRequest struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	State *domain.State
}

func (s *LedgerService) Register(ctx context.Context, req RegisterRequest) (result *AuthResult, err error) {
	defer func() { record("register", err) }()
	log := logging.FromContext(ctx)

	name := strings.TrimSpace(req.Name)
	email := domain.NormalizeEmail(req.Email)
	if utf8.RuneCountInString(name) < minNameLength {
		return nil, fmt.Errorf("Register: %w", domain.Invalid("name", "must be at least 2 characters"))
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("Register: %w", domain.Invalid("email", "must be a valid email address"))
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("Register: %w", domain.Invalid("password", "must be at least 6 characters"))
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	var (
		userID string
		state  *domain.State
	)
	err = s.store.Update(ctx, func(c *domain.Collection) error {
		if c.FindByEmail(email) != nil {
			return domain.ErrEmailTaken
		}
		u := s.newStarterUser(name, email, hash)
		c.Users = append(c.Users, u)
		userID = u.ID
		state = domain.Project(&u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	token, err := s.sessions.Create(userID)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}
	s.syncSessionGauge()

	log.Info("account registered", "user_id", userID)
	return &AuthResult{Token: token, State: state}, nil
}

func (s *LedgerService) Login(ctx context.Context, req LoginRequest) (result *AuthResult, err error) {
	defer func() { record("login", err) }()
	log := logging.FromContext(ctx)

	email := domain.NormalizeEmail(req.Email)

	var (
		userID      string
		state       *domain.State
		needUpgrade bool
	)
	err = s.store.View(ctx, func(c *domain.Collection) error {
		u := c.FindByEmail(email)
		if u == nil {
			return domain.ErrInvalidCredentials
		}
		switch {
		case u.PasswordHash != "":
			if !auth.CheckPassword(u.PasswordHash, req.Password) {
				return domain.ErrInvalidCredentials
			}
		case auth.CheckLegacyPassword(u.LegacyPassword, req.Password):
			needUpgrade = true
		default:
			return domain.ErrInvalidCredentials
		}
		userID = u.ID
		state = domain.Project(u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}

	if needUpgrade {
		if err := s.upgradeCredential(ctx, userID, req.Password); err != nil {
			log.Warn("legacy credential not upgraded", "user_id", userID, "error", err)
		}
	}

	token, err := s.sessions.Create(userID)
	if err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}
	s.syncSessionGauge()

	log.Info("login succeeded", "user_id", userID)
	return &AuthResult{Token: token, State: state}, nil
}

// upgradeCredential replaces a clear-text credential with a bcrypt hash.
func (s *LedgerService) upgradeCredential(ctx context.Context, userID, password string) error {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("upgradeCredential: %w", err)
	}

	err = s.store.Update(ctx, func(c *domain.Collection) error {
		u := c.FindByID(userID)
		if u == nil {
			return domain.ErrNotFound
		}
		if u.PasswordHash != "" {
			return nil
		}
		u.PasswordHash = hash
		u.LegacyPassword = ""
		return nil
	})
	if err != nil {
		return fmt.Errorf("upgradeCredential: %w", err)
	}
	return nil
}

// Logout never fails: an unknown token is already logged out.
func (s *LedgerService) Logout(ctx context.Context, token string) {
	s.sessions.Revoke(token)
	s.syncSessionGauge()
	record("logout", nil)
}

func (s *LedgerService) GetState(ctx context.Context, token string) (*domain.State, error) {
	var state *domain.State
	err := s.view(ctx, token, func(u *domain.User) error {
		state = domain.Project(u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("GetState: %w", err)
	}
	return state, nil
}

// DeleteAccount removes the caller's account and then every session it
// holds, including the one used for this call.
func (s *LedgerService) DeleteAccount(ctx context.Context, token string) (err error) {
	defer func() { record("delete_account", err) }()
	log := logging.FromContext(ctx)

	userID, err := s.authenticate(token)
	if err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}

	err = s.store.Update(ctx, func(c *domain.Collection) error {
		if !c.Remove(userID) {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}

	revoked := s.sessions.RevokeAll(userID)
	s.syncSessionGauge()

	log.Info("account deleted", "user_id", userID, "sessions_revoked", revoked)
	return nil
}

func (s *LedgerService) newStarterUser(name, email, passwordHash string) domain.User {
	u := domain.User{
		ID:            uuid.NewString(),
		Name:          name,
		Email:         email,
		PasswordHash:  passwordHash,
		MonthlyBudget: decimal.NewFromInt(2200),
		Wallets: []domain.Wallet{
			{Code: domain.CurrencyEUR, Balance: decimal.NewFromInt(500)},
			{Code: domain.CurrencyUSD, Balance: decimal.NewFromInt(120)},
			{Code: domain.CurrencyGBP, Balance: decimal.NewFromInt(90)},
		},
		Cards: []domain.Card{{
			ID:     uuid.NewString(),
			Label:  "Standard Card",
			Number: domain.MaskCardNumber("1201"),
			Type:   domain.CardTypePhysical,
		}},
		Beneficiaries: []domain.Beneficiary{{
			ID:      uuid.NewString(),
			Name:    "Support",
			IBAN:    "FR7630006000011234567890189",
			Country: "FR",
		}},
		Transactions: []domain.Transaction{},
	}
	s.appendTransaction(&u, "Welcome bonus", decimal.NewFromInt(500), domain.CurrencyEUR, domain.TransactionKindIncome)
	return u
}

func generateCardNumber() (string, error) {
	digits := make([]byte, 16)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generateCardNumber: %w", err)
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return string(digits), nil
}
