package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"ticketops-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type ImportRepository struct {
	db *sqlx.DB
}

func NewImportRepository(db *sqlx.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

func (r *ImportRepository) CreateSession(session *models.ImportSession) error {
	query := `INSERT INTO import_sessions
	          (session_code, user_id, filename, file_path, total_rows, status)
	          VALUES (:session_code, :user_id, :filename, :file_path, :total_rows, :status)`
	result, err := r.db.NamedExec(query, session)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	session.ID = id
	return nil
}

const importSessionColumns = `id,
       session_code,
       user_id,
       COALESCE(filename, '') as filename,
       COALESCE(file_path, '') as file_path,
       total_rows,
       purchases_created,
       purchases_skipped,
       failed_rows,
       COALESCE(status, '') as status,
       COALESCE(error_message, '') as error_message,
       created_at,
       updated_at`

func (r *ImportRepository) GetSessions(limit, offset int) ([]models.ImportSession, int, error) {
	var sessions []models.ImportSession
	var total int

	err := r.db.Get(&total, "SELECT COUNT(*) FROM import_sessions")
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM import_sessions ORDER BY id DESC LIMIT ? OFFSET ?`,
		importSessionColumns)
	err = r.db.Select(&sessions, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *ImportRepository) GetSessionByID(id int64) (*models.ImportSession, error) {
	var session models.ImportSession
	query := fmt.Sprintf("SELECT %s FROM import_sessions WHERE id = ? LIMIT 1", importSessionColumns)
	err := r.db.Get(&session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ImportRepository) GetSessionByCode(code string) (*models.ImportSession, error) {
	var session models.ImportSession
	query := fmt.Sprintf("SELECT %s FROM import_sessions WHERE session_code = ? LIMIT 1", importSessionColumns)
	err := r.db.Get(&session, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ImportRepository) UpdateSessionStatus(id int64, status, errorMessage string) error {
	query := "UPDATE import_sessions SET status = ?, error_message = ? WHERE id = ?"
	_, err := r.db.Exec(query, status, errorMessage, id)
	return err
}

// UpdateSession writes the final counters of a finished run.
func (r *ImportRepository) UpdateSession(session *models.ImportSession) error {
	query := `UPDATE import_sessions SET total_rows = :total_rows,
	          purchases_created = :purchases_created,
	          purchases_skipped = :purchases_skipped,
	          failed_rows = :failed_rows,
	          status = :status,
	          error_message = :error_message
	          WHERE id = :id`
	_, err := r.db.NamedExec(query, session)
	return err
}

// Create persists a card conflict for operator review.
func (r *ImportRepository) Create(conflict *models.CardConflict) error {
	query := `INSERT INTO card_conflicts
	          (session_id, row_num, email, card_last4, conflict_type,
	           existing_account_email, existing_card_id, purchase_id, tm_order_number, status)
	          VALUES
	          (:session_id, :row_num, :email, :card_last4, :conflict_type,
	           :existing_account_email, :existing_card_id, :purchase_id, :tm_order_number, :status)`
	result, err := r.db.NamedExec(query, conflict)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	conflict.ID = id
	return nil
}

// AttachPurchase points a conflict at the purchase row created for it.
func (r *ImportRepository) AttachPurchase(conflictID, purchaseID int64) error {
	query := "UPDATE card_conflicts SET purchase_id = ? WHERE id = ?"
	_, err := r.db.Exec(query, purchaseID, conflictID)
	return err
}

const cardConflictColumns = `id,
       session_id,
       row_num,
       COALESCE(email, '') as email,
       COALESCE(card_last4, '') as card_last4,
       conflict_type,
       COALESCE(existing_account_email, '') as existing_account_email,
       existing_card_id,
       purchase_id,
       COALESCE(tm_order_number, '') as tm_order_number,
       COALESCE(status, '') as status,
       created_at`

func (r *ImportRepository) GetConflicts(limit, offset int, status string) ([]models.CardConflict, int, error) {
	var conflicts []models.CardConflict
	var total int

	whereClause := ""
	args := []interface{}{}

	if status != "" {
		whereClause = "WHERE status = ?"
		args = append(args, status)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM card_conflicts %s", whereClause)
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM card_conflicts %s ORDER BY id DESC LIMIT ? OFFSET ?`,
		cardConflictColumns, whereClause)
	args = append(args, limit, offset)
	err = r.db.Select(&conflicts, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return conflicts, total, nil
}

func (r *ImportRepository) GetConflictByID(id int64) (*models.CardConflict, error) {
	var conflict models.CardConflict
	query := fmt.Sprintf("SELECT %s FROM card_conflicts WHERE id = ? LIMIT 1", cardConflictColumns)
	err := r.db.Get(&conflict, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conflict, nil
}

func (r *ImportRepository) ResolveConflict(id int64, status string) error {
	query := "UPDATE card_conflicts SET status = ? WHERE id = ?"
	result, err := r.db.Exec(query, status, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.New("conflict not found")
	}
	return nil
}
