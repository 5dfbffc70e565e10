package models

import "time"

// ImportSession tracks one receipt file upload.
type ImportSession struct {
	ID               int64     `db:"id" json:"id"`
	SessionCode      string    `db:"session_code" json:"session_code"`
	UserID           int       `db:"user_id" json:"user_id"`
	Filename         string    `db:"filename" json:"filename"`
	FilePath         string    `db:"file_path" json:"file_path"`
	TotalRows        int       `db:"total_rows" json:"total_rows"`
	PurchasesCreated int       `db:"purchases_created" json:"purchases_created"`
	PurchasesSkipped int       `db:"purchases_skipped" json:"purchases_skipped"`
	FailedRows       int       `db:"failed_rows" json:"failed_rows"`
	Status           string    `db:"status" json:"status"` // uploaded, processing, completed, failed
	ErrorMessage     string    `db:"error_message" json:"error_message"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Conflict types reported by the card matcher.
const (
	ConflictCardNotFound        = "CARD_NOT_FOUND"
	ConflictCardAmbiguous       = "CARD_AMBIGUOUS"
	ConflictCardAccountMismatch = "CARD_ACCOUNT_MISMATCH"
)

// CardConflict is queued for operator resolution. The purchase id is attached
// after the purchase row is created so the resolution action can target it.
type CardConflict struct {
	ID                   int64     `db:"id" json:"id"`
	SessionID            *int64    `db:"session_id" json:"session_id,omitempty"`
	RowNum               int       `db:"row_num" json:"row"`
	Email                string    `db:"email" json:"email"`
	CardLast4            string    `db:"card_last4" json:"cardLast4"`
	ConflictType         string    `db:"conflict_type" json:"type"`
	ExistingAccountEmail string    `db:"existing_account_email" json:"existingAccountEmail,omitempty"`
	ExistingCardID       *int64    `db:"existing_card_id" json:"existingCardId,omitempty"`
	PurchaseID           *int64    `db:"purchase_id" json:"purchaseId,omitempty"`
	TmOrderNumber        string    `db:"tm_order_number" json:"tmOrderNumber"`
	Status               string    `db:"status" json:"status"` // open, resolved, dismissed
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// FieldChange is one differing field between an incoming receipt row and an
// already-persisted purchase.
type FieldChange struct {
	Field    string `json:"field"`
	Existing string `json:"existing"`
	Incoming string `json:"incoming"`
}

type ImportDuplicate struct {
	RowNum             int           `json:"row"`
	TmOrderNumber      string        `json:"tmOrderNumber"`
	ExistingPurchaseID int64         `json:"existingPurchaseId"`
	HasChanges         bool          `json:"hasChanges"`
	Changes            []FieldChange `json:"changes,omitempty"`
}

// ImportIssue is a row-scoped warning or error.
type ImportIssue struct {
	RowNum  int    `json:"row"`
	Message string `json:"message"`
}

type ImportSummary struct {
	PurchasesCreated int `json:"purchasesCreated"`
	PurchasesSkipped int `json:"purchasesSkipped"`
	EventsMatched    int `json:"eventsMatched"`
	AccountsCreated  int `json:"accountsCreated"`
	CardsLinked      int `json:"cardsLinked"`
}

// ImportResult is the full payload of a synchronous import run.
type ImportResult struct {
	Success    bool              `json:"success"`
	Summary    ImportSummary     `json:"summary"`
	Conflicts  []CardConflict    `json:"conflicts"`
	Duplicates []ImportDuplicate `json:"duplicates"`
	Warnings   []ImportIssue     `json:"warnings"`
	Errors     []ImportIssue     `json:"errors"`
}

// ImportProgress is the incremental payload written to Redis by the
// background import task and polled over HTTP.
type ImportProgress struct {
	Stage     string `json:"stage"` // start, progress, complete
	TotalRows int    `json:"total_rows"`
	Created   int    `json:"created"`
	Failed    int    `json:"failed"`
}
