package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"ticketops-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type CardRepository struct {
	db *sqlx.DB
}

func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) FindAll(limit, offset int, search string) ([]models.Card, int, error) {
	var cards []models.Card
	var total int

	whereClause := "WHERE is_deleted = FALSE"
	args := []interface{}{}

	if search != "" {
		whereClause += " AND (number LIKE ? OR card_type LIKE ?)"
		searchPattern := "%" + search + "%"
		args = append(args, searchPattern, searchPattern)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM cards %s", whereClause)
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id,
		       number,
		       COALESCE(card_type, '') as card_type,
		       account_id,
		       is_deleted,
		       created_at,
		       updated_at
		FROM cards %s
		ORDER BY id
		LIMIT ? OFFSET ?`, whereClause)
	args = append(args, limit, offset)
	err = r.db.Select(&cards, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return cards, total, nil
}

func (r *CardRepository) FindByID(id int64) (*models.Card, error) {
	var card models.Card
	query := `
		SELECT id,
		       number,
		       COALESCE(card_type, '') as card_type,
		       account_id,
		       is_deleted,
		       created_at,
		       updated_at
		FROM cards
		WHERE id = ?
		LIMIT 1`
	err := r.db.Get(&card, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByLast4 returns all non-deleted cards whose number ends with the given
// four digits.
func (r *CardRepository) FindByLast4(last4 string) ([]models.Card, error) {
	var cards []models.Card
	query := `
		SELECT id,
		       number,
		       COALESCE(card_type, '') as card_type,
		       account_id,
		       is_deleted,
		       created_at,
		       updated_at
		FROM cards
		WHERE is_deleted = FALSE AND number LIKE ?
		ORDER BY id`
	err := r.db.Select(&cards, query, "%"+last4)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// LinkAccount sets the account linkage. The linkage is never cleared or
// reassigned here; callers must only link unlinked cards.
func (r *CardRepository) LinkAccount(cardID, accountID int64) error {
	query := "UPDATE cards SET account_id = ? WHERE id = ? AND account_id IS NULL"
	_, err := r.db.Exec(query, accountID, cardID)
	return err
}

func (r *CardRepository) Create(card *models.Card) error {
	query := `INSERT INTO cards (number, card_type, account_id, is_deleted)
	          VALUES (:number, :card_type, :account_id, :is_deleted)`
	result, err := r.db.NamedExec(query, card)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	card.ID = id
	return nil
}

func (r *CardRepository) Update(card *models.Card) error {
	query := `UPDATE cards SET number = :number, card_type = :card_type,
	          account_id = :account_id WHERE id = :id`
	_, err := r.db.NamedExec(query, card)
	return err
}

// Delete is a soft delete; the importer only matches non-deleted cards.
func (r *CardRepository) Delete(id int64) error {
	query := "UPDATE cards SET is_deleted = TRUE WHERE id = ?"
	_, err := r.db.Exec(query, id)
	return err
}
