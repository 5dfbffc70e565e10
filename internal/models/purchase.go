package models

import "time"

// Purchase is the output record of the receipt importer. TmOrderNumber is the
// primary dedup key; EventID and CardID stay null when nothing matched.
type Purchase struct {
	ID             int64      `db:"id" json:"id"`
	AccountID      int64      `db:"account_id" json:"account_id"`
	EventID        *int64     `db:"event_id" json:"event_id"`
	CardID         *int64     `db:"card_id" json:"card_id"`
	TmOrderNumber  string     `db:"tm_order_number" json:"tm_order_number"`
	Quantity       int        `db:"quantity" json:"quantity"`
	TotalPrice     float64    `db:"total_price" json:"total_price"`
	PricePerTicket float64    `db:"price_per_ticket" json:"price_per_ticket"`
	Section        string     `db:"section" json:"section"`
	Row            string     `db:"row" json:"row"`
	Seats          string     `db:"seats" json:"seats"`
	PONumber       string     `db:"po_number" json:"po_number"`
	Status         string     `db:"status" json:"status"` // pending, received, shipped, cancelled
	POSSynced      bool       `db:"pos_synced" json:"pos_synced"`
	POSSyncError   string     `db:"pos_sync_error" json:"pos_sync_error"`
	POSSyncedAt    *time.Time `db:"pos_synced_at" json:"pos_synced_at"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type PurchaseRequest struct {
	AccountID     int64   `json:"account_id" validate:"required"`
	EventID       *int64  `json:"event_id"`
	CardID        *int64  `json:"card_id"`
	TmOrderNumber string  `json:"tm_order_number"`
	Quantity      int     `json:"quantity"`
	TotalPrice    float64 `json:"total_price"`
	Section       string  `json:"section"`
	Row           string  `json:"row"`
	Seats         string  `json:"seats"`
	Status        string  `json:"status"`
}
