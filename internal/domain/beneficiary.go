package domain

type Beneficiary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IBAN    string `json:"iban"`
	Country string `json:"country"`
}
