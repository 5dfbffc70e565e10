package service

import "ticketops-web/internal/models"

// Persistence interfaces consumed by the importer. Satisfied by the sqlx
// repositories and by in-memory fakes in tests. Finder methods return
// (nil, nil) when no row exists.

type AccountStore interface {
	FindByEmail(email string) (*models.Account, error)
	FindByID(id int64) (*models.Account, error)
	Create(account *models.Account) error
}

type EventStore interface {
	GetAll() ([]models.Event, error)
}

type CardStore interface {
	FindByLast4(last4 string) ([]models.Card, error)
	LinkAccount(cardID, accountID int64) error
}

type PurchaseStore interface {
	FindByOrderNumber(orderNumber string) (*models.Purchase, error)
	FindBySeatTuple(accountID int64, eventID *int64, section, row, seats string) (*models.Purchase, error)
	Create(purchase *models.Purchase) error
}

type ConflictStore interface {
	Create(conflict *models.CardConflict) error
	AttachPurchase(conflictID, purchaseID int64) error
}

// PONumberAssigner assigns a purchase-order number to a newly created
// purchase. Assignment failures never fail an import.
type PONumberAssigner interface {
	Assign(purchase *models.Purchase) error
}
