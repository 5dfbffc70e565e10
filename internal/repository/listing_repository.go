package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"ticketops-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) FindAll(limit, offset int, status string) ([]models.Listing, int, error) {
	var listings []models.Listing
	var total int

	whereClause := ""
	args := []interface{}{}

	if status != "" {
		whereClause = "WHERE status = ?"
		args = append(args, status)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM listings %s", whereClause)
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id,
		       purchase_id,
		       COALESCE(marketplace, '') as marketplace,
		       asking_price,
		       COALESCE(status, '') as status,
		       created_at,
		       updated_at
		FROM listings %s
		ORDER BY id DESC
		LIMIT ? OFFSET ?`, whereClause)
	args = append(args, limit, offset)
	err = r.db.Select(&listings, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

func (r *ListingRepository) FindByID(id int64) (*models.Listing, error) {
	var listing models.Listing
	query := `
		SELECT id,
		       purchase_id,
		       COALESCE(marketplace, '') as marketplace,
		       asking_price,
		       COALESCE(status, '') as status,
		       created_at,
		       updated_at
		FROM listings
		WHERE id = ?
		LIMIT 1`
	err := r.db.Get(&listing, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepository) Create(listing *models.Listing) error {
	query := `INSERT INTO listings (purchase_id, marketplace, asking_price, status)
	          VALUES (:purchase_id, :marketplace, :asking_price, :status)`
	result, err := r.db.NamedExec(query, listing)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	listing.ID = id
	return nil
}

func (r *ListingRepository) Update(listing *models.Listing) error {
	query := `UPDATE listings SET marketplace = :marketplace,
	          asking_price = :asking_price, status = :status
	          WHERE id = :id`
	_, err := r.db.NamedExec(query, listing)
	return err
}

func (r *ListingRepository) Delete(id int64) error {
	query := "DELETE FROM listings WHERE id = ?"
	_, err := r.db.Exec(query, id)
	return err
}

func (r *ListingRepository) BulkUpdateStatus(ids []int64, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("UPDATE listings SET status = ? WHERE id IN (?)", status, ids)
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

func (r *ListingRepository) FindInvoices(limit, offset int, status string) ([]models.Invoice, int, error) {
	var invoices []models.Invoice
	var total int

	whereClause := ""
	args := []interface{}{}

	if status != "" {
		whereClause = "WHERE status = ?"
		args = append(args, status)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM invoices %s", whereClause)
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id,
		       listing_id,
		       amount,
		       fees,
		       COALESCE(status, '') as status,
		       created_at,
		       updated_at
		FROM invoices %s
		ORDER BY id DESC
		LIMIT ? OFFSET ?`, whereClause)
	args = append(args, limit, offset)
	err = r.db.Select(&invoices, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *ListingRepository) CreateInvoice(invoice *models.Invoice) error {
	query := `INSERT INTO invoices (listing_id, amount, fees, status)
	          VALUES (:listing_id, :amount, :fees, :status)`
	result, err := r.db.NamedExec(query, invoice)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	invoice.ID = id
	return nil
}

func (r *ListingRepository) UpdateInvoiceStatus(id int64, status string) error {
	query := "UPDATE invoices SET status = ? WHERE id = ?"
	_, err := r.db.Exec(query, status, id)
	return err
}
