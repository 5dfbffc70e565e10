package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"ticketops-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type PurchaseRepository struct {
	db *sqlx.DB
}

func NewPurchaseRepository(db *sqlx.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

const purchaseColumns = `id,
       account_id,
       event_id,
       card_id,
       COALESCE(tm_order_number, '') as tm_order_number,
       quantity,
       total_price,
       price_per_ticket,
       COALESCE(section, '') as section,
       COALESCE(` + "`row`" + `, '') as ` + "`row`" + `,
       COALESCE(seats, '') as seats,
       COALESCE(po_number, '') as po_number,
       COALESCE(status, '') as status,
       pos_synced,
       COALESCE(pos_sync_error, '') as pos_sync_error,
       pos_synced_at,
       created_at,
       updated_at`

func (r *PurchaseRepository) FindAll(limit, offset int, search, status string) ([]models.Purchase, int, error) {
	var purchases []models.Purchase
	var total int

	whereClause := "WHERE 1=1"
	args := []interface{}{}

	if search != "" {
		whereClause += " AND (tm_order_number LIKE ? OR po_number LIKE ?)"
		searchPattern := "%" + search + "%"
		args = append(args, searchPattern, searchPattern)
	}
	if status != "" {
		whereClause += " AND status = ?"
		args = append(args, status)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM purchases %s", whereClause)
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM purchases %s ORDER BY id DESC LIMIT ? OFFSET ?`,
		purchaseColumns, whereClause)
	args = append(args, limit, offset)
	err = r.db.Select(&purchases, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}

func (r *PurchaseRepository) FindByID(id int64) (*models.Purchase, error) {
	var purchase models.Purchase
	query := fmt.Sprintf("SELECT %s FROM purchases WHERE id = ? LIMIT 1", purchaseColumns)
	err := r.db.Get(&purchase, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// FindByOrderNumber is the primary dedup lookup; returns (nil, nil) when
// absent.
func (r *PurchaseRepository) FindByOrderNumber(orderNumber string) (*models.Purchase, error) {
	var purchase models.Purchase
	query := fmt.Sprintf("SELECT %s FROM purchases WHERE tm_order_number = ? LIMIT 1", purchaseColumns)
	err := r.db.Get(&purchase, query, orderNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// FindBySeatTuple is the fallback dedup lookup for receipts whose order
// number was absent on a previous import.
func (r *PurchaseRepository) FindBySeatTuple(accountID int64, eventID *int64, section, row, seats string) (*models.Purchase, error) {
	var purchase models.Purchase
	query := fmt.Sprintf(`SELECT %s FROM purchases
		WHERE account_id = ?
		  AND (event_id <=> ?)
		  AND COALESCE(section, '') = ?
		  AND COALESCE(`+"`row`"+`, '') = ?
		  AND COALESCE(seats, '') = ?
		LIMIT 1`, purchaseColumns)
	err := r.db.Get(&purchase, query, accountID, eventID, section, row, seats)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) Create(purchase *models.Purchase) error {
	query := `INSERT INTO purchases
	          (account_id, event_id, card_id, tm_order_number, quantity, total_price,
	           price_per_ticket, section, ` + "`row`" + `, seats, po_number, status)
	          VALUES
	          (:account_id, :event_id, :card_id, :tm_order_number, :quantity, :total_price,
	           :price_per_ticket, :section, :row, :seats, :po_number, :status)`
	result, err := r.db.NamedExec(query, purchase)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	purchase.ID = id
	return nil
}

func (r *PurchaseRepository) Update(purchase *models.Purchase) error {
	query := `UPDATE purchases SET account_id = :account_id, event_id = :event_id,
	          card_id = :card_id, tm_order_number = :tm_order_number, quantity = :quantity,
	          total_price = :total_price, price_per_ticket = :price_per_ticket,
	          section = :section, ` + "`row`" + ` = :row, seats = :seats, status = :status
	          WHERE id = :id`
	_, err := r.db.NamedExec(query, purchase)
	return err
}

func (r *PurchaseRepository) Delete(id int64) error {
	query := "DELETE FROM purchases WHERE id = ?"
	_, err := r.db.Exec(query, id)
	return err
}

func (r *PurchaseRepository) AssignPONumber(id int64, poNumber string) error {
	query := "UPDATE purchases SET po_number = ? WHERE id = ?"
	_, err := r.db.Exec(query, poNumber, id)
	return err
}

func (r *PurchaseRepository) BulkUpdateStatus(ids []int64, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("UPDATE purchases SET status = ? WHERE id IN (?)", status, ids)
	if err != nil {
		return 0, err
	}
	result, err := r.db.Exec(r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}

func (r *PurchaseRepository) GetUnsynced(limit int) ([]models.Purchase, error) {
	var purchases []models.Purchase
	query := fmt.Sprintf(`SELECT %s FROM purchases
		WHERE pos_synced = FALSE AND status <> 'cancelled'
		ORDER BY id
		LIMIT ?`, purchaseColumns)
	err := r.db.Select(&purchases, query, limit)
	return purchases, err
}

func (r *PurchaseRepository) MarkSynced(id int64) error {
	query := "UPDATE purchases SET pos_synced = TRUE, pos_sync_error = '', pos_synced_at = NOW() WHERE id = ?"
	_, err := r.db.Exec(query, id)
	return err
}

func (r *PurchaseRepository) MarkSyncFailed(id int64, syncError string) error {
	query := "UPDATE purchases SET pos_sync_error = ? WHERE id = ?"
	_, err := r.db.Exec(query, syncError, id)
	return err
}

// PurchaseStats backs the dashboard aggregation endpoint.
type PurchaseStats struct {
	TotalPurchases int64   `db:"total_purchases" json:"total_purchases"`
	TotalTickets   int64   `db:"total_tickets" json:"total_tickets"`
	TotalSpend     float64 `db:"total_spend" json:"total_spend"`
	UnsyncedCount  int64   `db:"unsynced_count" json:"unsynced_count"`
}

func (r *PurchaseRepository) GetStats() (*PurchaseStats, error) {
	var stats PurchaseStats
	query := `
		SELECT COUNT(*) as total_purchases,
		       COALESCE(SUM(quantity), 0) as total_tickets,
		       COALESCE(SUM(total_price), 0) as total_spend,
		       COALESCE(SUM(CASE WHEN pos_synced = FALSE THEN 1 ELSE 0 END), 0) as unsynced_count
		FROM purchases`
	err := r.db.Get(&stats, query)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
