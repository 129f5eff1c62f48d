package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/wallet-ledger/internal/domain"
)

// SchemaVersion is the version written by Encode.
//
//	0: legacy single-account document {user, wallets, cards, beneficiaries, transactions}
//	1: multi-account document {users: [...]} with clear-text credentials
//	2: {version: 2, users: [...]}; credentials are bcrypt hashes
const SchemaVersion = 2

type document struct {
	Version int           `json:"version"`
	Users   []domain.User `json:"users"`
}

type rawDocument struct {
	Version       int             `json:"version"`
	Users         json.RawMessage `json:"users"`
	User          json.RawMessage `json:"user"`
	Wallets       json.RawMessage `json:"wallets"`
	Cards         json.RawMessage `json:"cards"`
	Beneficiaries json.RawMessage `json:"beneficiaries"`
	Transactions  json.RawMessage `json:"transactions"`
}

// Report lists what normalisation had to repair. It is informational.
type Report struct {
	FromVersion    int
	DroppedRecords int
	Repairs        []string
}

func (r *Report) repair(format string, args ...any) {
	r.Repairs = append(r.Repairs, fmt.Sprintf(format, args...))
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode parses a stored document of any known version into the canonical
// collection. Bytes that are not JSON fail with domain.ErrCorruptStore;
// JSON of an unrecognised shape yields an empty collection.
func Decode(data []byte) (*domain.Collection, *Report, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	report := &Report{}
	if len(data) == 0 {
		report.FromVersion = SchemaVersion
		return &domain.Collection{Users: []domain.User{}}, report, nil
	}
	if !json.Valid(data) {
		return nil, nil, fmt.Errorf("Decode: not valid JSON: %w", domain.ErrCorruptStore)
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		report.repair("top-level value is not an object, starting empty")
		return &domain.Collection{Users: []domain.User{}}, report, nil
	}

	version := detectVersion(&raw)
	report.FromVersion = version
	for v := version; v < SchemaVersion; v++ {
		if err := upgrades[v](&raw); err != nil {
			return nil, nil, fmt.Errorf("Decode: upgrade from v%d: %w", v, err)
		}
	}

	// Only the multi-account shape ever filtered out incomplete accounts.
	// The legacy seed account and records we wrote ourselves are kept.
	return normalizeUsers(raw.Users, version == 1, report), report, nil
}

// Encode writes the current schema version.
func Encode(c *domain.Collection) ([]byte, error) {
	doc := document{Version: SchemaVersion, Users: make([]domain.User, len(c.Users))}
	for i, u := range c.Users {
		doc.Users[i] = withEmptyLists(u)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("Encode: %w", err)
	}
	return data, nil
}

func detectVersion(raw *rawDocument) int {
	switch {
	case raw.Version >= SchemaVersion:
		return SchemaVersion
	case isJSONArray(raw.Users):
		return 1
	case isJSONObject(raw.User):
		return 0
	default:
		// Nothing recognisable: treat as an empty current document.
		raw.Users = nil
		return SchemaVersion
	}
}

var upgrades = map[int]func(*rawDocument) error{
	0: upgradeSingleAccount,
	1: upgradeMultiAccount,
}

// upgradeSingleAccount folds the legacy single-account shape into a
// one-element users list.
func upgradeSingleAccount(raw *rawDocument) error {
	var legacy map[string]json.RawMessage
	if err := json.Unmarshal(raw.User, &legacy); err != nil {
		return err
	}

	record := map[string]json.RawMessage{
		"id":            json.RawMessage(`"u_seed"`),
		"name":          legacy["name"],
		"email":         legacy["email"],
		"password":      legacy["password"],
		"monthlyBudget": legacy["monthlyBudget"],
		"wallets":       raw.Wallets,
		"cards":         raw.Cards,
		"beneficiaries": raw.Beneficiaries,
		"transactions":  raw.Transactions,
	}
	for k, v := range record {
		if len(v) == 0 {
			delete(record, k)
		}
	}

	users, err := json.Marshal([]map[string]json.RawMessage{record})
	if err != nil {
		return err
	}
	raw.Users = users
	raw.User, raw.Wallets, raw.Cards, raw.Beneficiaries, raw.Transactions = nil, nil, nil, nil, nil
	return nil
}

// upgradeMultiAccount has nothing to rewrite: clear-text "password" fields
// are kept as legacy credentials and replaced at the next login.
func upgradeMultiAccount(raw *rawDocument) error {
	raw.Version = SchemaVersion
	return nil
}

func normalizeUsers(data json.RawMessage, requireCredential bool, report *Report) *domain.Collection {
	c := &domain.Collection{Users: []domain.User{}}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return c
	}

	seen := make(map[string]bool, len(records))
	for idx, rec := range records {
		u, ok := normalizeUser(rec, idx, requireCredential, report)
		if !ok {
			report.DroppedRecords++
			continue
		}
		if seen[u.ID] {
			u.ID = uuid.NewString()
			report.repair("record %d: duplicate id, reassigned", idx)
		}
		seen[u.ID] = true
		c.Users = append(c.Users, u)
	}
	return c
}

func normalizeUser(data json.RawMessage, idx int, requireCredential bool, report *Report) (domain.User, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return domain.User{}, false
	}

	u := domain.User{
		ID:             scalarString(fields["id"]),
		Name:           scalarString(fields["name"]),
		Email:          strings.TrimSpace(scalarString(fields["email"])),
		PasswordHash:   scalarString(fields["passwordHash"]),
		LegacyPassword: scalarString(fields["password"]),
	}
	if u.Email == "" || !u.HasCredential() {
		if requireCredential {
			return domain.User{}, false
		}
		report.repair("record %d: missing email or credential, kept without login", idx)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
		report.repair("record %d: missing id", idx)
	}
	if u.Name == "" {
		u.Name = "Client"
	}
	if u.PasswordHash != "" {
		u.LegacyPassword = ""
	}

	budget, ok := scalarDecimal(fields["monthlyBudget"])
	if !ok {
		budget = domain.DefaultMonthlyBudget
	}
	u.MonthlyBudget = budget

	u.Wallets = uniqueWallets(decodeList[domain.Wallet](fields["wallets"], "wallets", idx, report), idx, report)
	u.Cards = decodeList[domain.Card](fields["cards"], "cards", idx, report)
	u.Beneficiaries = decodeList[domain.Beneficiary](fields["beneficiaries"], "beneficiaries", idx, report)
	u.Transactions = decodeList[domain.Transaction](fields["transactions"], "transactions", idx, report)
	return u, true
}

// decodeList keeps every element that decodes and drops the rest. Anything
// other than an array gives an empty list. Every loss is reported; a missing
// or null list is not a loss.
func decodeList[T any](data json.RawMessage, field string, idx int, report *Report) []T {
	out := []T{}
	if len(data) == 0 || string(data) == "null" {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		report.repair("record %d: %s is not a list, replaced with empty", idx, field)
		return out
	}
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			report.repair("record %d: %s[%d] unreadable, dropped: %v", idx, field, i, err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// uniqueWallets enforces one wallet per currency; the first one wins.
func uniqueWallets(wallets []domain.Wallet, idx int, report *Report) []domain.Wallet {
	out := wallets[:0]
	seen := make(map[domain.Currency]bool, len(wallets))
	for _, w := range wallets {
		if w.Code == "" || seen[w.Code] {
			report.repair("record %d: dropped duplicate or unnamed wallet %q", idx, w.Code)
			continue
		}
		seen[w.Code] = true
		out = append(out, w)
	}
	return out
}

func scalarString(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

func scalarDecimal(data json.RawMessage) (decimal.Decimal, bool) {
	s := scalarString(data)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func withEmptyLists(u domain.User) domain.User {
	if u.Wallets == nil {
		u.Wallets = []domain.Wallet{}
	}
	if u.Cards == nil {
		u.Cards = []domain.Card{}
	}
	if u.Beneficiaries == nil {
		u.Beneficiaries = []domain.Beneficiary{}
	}
	if u.Transactions == nil {
		u.Transactions = []domain.Transaction{}
	}
	return u
}

func isJSONArray(data json.RawMessage) bool {
	d := bytes.TrimSpace(data)
	return len(d) > 0 && d[0] == '['
}

func isJSONObject(data json.RawMessage) bool {
	d := bytes.TrimSpace(data)
	return len(d) > 0 && d[0] == '{'
}
