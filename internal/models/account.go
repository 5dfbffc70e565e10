package models

import "time"

// Account is a managed Ticketmaster account. Email is unique case-insensitive;
// accounts are created on demand when a receipt references an unknown email.
type Account struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"password,omitempty"`
	Status    string    `db:"status" json:"status"` // active, banned, retired
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type AccountRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password"`
	Status   string `json:"status"`
	Notes    string `json:"notes"`
}
