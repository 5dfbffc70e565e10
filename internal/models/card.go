package models

import "time"

// Card is a payment-card profile. AccountID is nullable: a card with no
// account is "unlinked" and may be auto-linked by the receipt importer.
type Card struct {
	ID        int64     `db:"id" json:"id"`
	Number    string    `db:"number" json:"number"`
	CardType  string    `db:"card_type" json:"card_type"`
	AccountID *int64    `db:"account_id" json:"account_id"`
	IsDeleted bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CardRequest struct {
	Number   string `json:"number" validate:"required"`
	CardType string `json:"card_type"`
}

// Last4 returns the trailing four digits used for receipt matching.
func (c *Card) Last4() string {
	if len(c.Number) < 4 {
		return c.Number
	}
	return c.Number[len(c.Number)-4:]
}
