package models

import "time"

// Listing is a downstream resale listing for a purchase.
type Listing struct {
	ID          int64     `db:"id" json:"id"`
	PurchaseID  int64     `db:"purchase_id" json:"purchase_id"`
	Marketplace string    `db:"marketplace" json:"marketplace"`
	AskingPrice float64   `db:"asking_price" json:"asking_price"`
	Status      string    `db:"status" json:"status"` // listed, sold, delisted
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type ListingRequest struct {
	PurchaseID  int64   `json:"purchase_id" validate:"required"`
	Marketplace string  `json:"marketplace"`
	AskingPrice float64 `json:"asking_price"`
	Status      string  `json:"status"`
}

// Invoice is raised when a listing sells.
type Invoice struct {
	ID        int64     `db:"id" json:"id"`
	ListingID int64     `db:"listing_id" json:"listing_id"`
	Amount    float64   `db:"amount" json:"amount"`
	Fees      float64   `db:"fees" json:"fees"`
	Status    string    `db:"status" json:"status"` // open, paid, void
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type InvoiceRequest struct {
	ListingID int64   `json:"listing_id" validate:"required"`
	Amount    float64 `json:"amount"`
	Fees      float64 `json:"fees"`
	Status    string  `json:"status"`
}
