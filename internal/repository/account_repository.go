package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"ticketops-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindAll(limit, offset int, search, status string) ([]models.Account, int, error) {
	var accounts []models.Account
	var total int

	whereClause := "WHERE 1=1"
	args := []interface{}{}

	if search != "" {
		whereClause += " AND email LIKE ?"
		args = append(args, "%"+search+"%")
	}
	if status != "" {
		whereClause += " AND status = ?"
		args = append(args, status)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM accounts %s", whereClause)
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id,
		       email,
		       COALESCE(password, '') as password,
		       COALESCE(status, '') as status,
		       COALESCE(notes, '') as notes,
		       created_at,
		       updated_at
		FROM accounts %s
		ORDER BY email
		LIMIT ? OFFSET ?`, whereClause)
	args = append(args, limit, offset)
	err = r.db.Select(&accounts, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

func (r *AccountRepository) FindByID(id int64) (*models.Account, error) {
	var account models.Account
	query := `
		SELECT id,
		       email,
		       COALESCE(password, '') as password,
		       COALESCE(status, '') as status,
		       COALESCE(notes, '') as notes,
		       created_at,
		       updated_at
		FROM accounts
		WHERE id = ?
		LIMIT 1`
	err := r.db.Get(&account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByEmail matches case-insensitively; returns (nil, nil) when absent.
func (r *AccountRepository) FindByEmail(email string) (*models.Account, error) {
	var account models.Account
	query := `
		SELECT id,
		       email,
		       COALESCE(password, '') as password,
		       COALESCE(status, '') as status,
		       COALESCE(notes, '') as notes,
		       created_at,
		       updated_at
		FROM accounts
		WHERE LOWER(email) = LOWER(?)
		LIMIT 1`
	err := r.db.Get(&account, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Create(account *models.Account) error {
	query := `INSERT INTO accounts (email, password, status, notes)
	          VALUES (:email, :password, :status, :notes)`
	result, err := r.db.NamedExec(query, account)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	account.ID = id
	return nil
}

func (r *AccountRepository) Update(account *models.Account) error {
	query := `UPDATE accounts SET email = :email, password = :password,
	          status = :status, notes = :notes
	          WHERE id = :id`
	_, err := r.db.NamedExec(query, account)
	return err
}

func (r *AccountRepository) Delete(id int64) error {
	query := "DELETE FROM accounts WHERE id = ?"
	_, err := r.db.Exec(query, id)
	return err
}

// BulkUpdateStatus transitions a set of accounts to the given status.
func (r *AccountRepository) BulkUpdateStatus(ids []int64, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("UPDATE accounts SET status = ? WHERE id IN (?)", status, ids)
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

func (r *AccountRepository) CountByStatus() (map[string]int64, error) {
	rows, err := r.db.Queryx("SELECT COALESCE(status, '') as status, COUNT(*) as cnt FROM accounts GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var cnt int64
		if err := rows.Scan(&status, &cnt); err != nil {
			return nil, err
		}
		counts[status] = cnt
	}
	return counts, rows.Err()
}
