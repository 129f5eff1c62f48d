package domain

import (
	"strings"
)

type CardType string

const (
	CardTypePhysical CardType = "physical"
	CardTypeVirtual  CardType = "virtual"
)

type Card struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Number string   `json:"number"`
	Frozen bool     `json:"frozen"`
	Type   CardType `json:"type"`
}

// MaskCardNumber keeps the last four digits and hides the rest.
func MaskCardNumber(raw string) string {
	digits := strings.Join(strings.Fields(raw), "")
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	for len(digits) < 4 {
		digits = "0" + digits
	}
	return "**** **** **** " + digits
}
