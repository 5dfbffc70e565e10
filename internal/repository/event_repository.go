package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"ticketops-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// GetAll loads the full event table for in-memory matching. Acceptable at
// the data volumes this dashboard sees.
func (r *EventRepository) GetAll() ([]models.Event, error) {
	var events []models.Event
	query := `
		SELECT id,
		       COALESCE(tm_event_id, '') as tm_event_id,
		       name,
		       COALESCE(artist, '') as artist,
		       COALESCE(venue, '') as venue,
		       event_date,
		       COALESCE(raw_date, '') as raw_date,
		       created_at,
		       updated_at
		FROM events
		ORDER BY id`
	err := r.db.Select(&events, query)
	return events, err
}

func (r *EventRepository) FindAll(limit, offset int, search string) ([]models.Event, int, error) {
	var events []models.Event
	var total int

	whereClause := ""
	args := []interface{}{}

	if search != "" {
		whereClause = "WHERE name LIKE ? OR artist LIKE ? OR venue LIKE ?"
		searchPattern := "%" + search + "%"
		args = append(args, searchPattern, searchPattern, searchPattern)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM events %s", whereClause)
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id,
		       COALESCE(tm_event_id, '') as tm_event_id,
		       name,
		       COALESCE(artist, '') as artist,
		       COALESCE(venue, '') as venue,
		       event_date,
		       COALESCE(raw_date, '') as raw_date,
		       created_at,
		       updated_at
		FROM events %s
		ORDER BY event_date DESC, id DESC
		LIMIT ? OFFSET ?`, whereClause)
	args = append(args, limit, offset)
	err = r.db.Select(&events, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (r *EventRepository) FindByID(id int64) (*models.Event, error) {
	var event models.Event
	query := `
		SELECT id,
		       COALESCE(tm_event_id, '') as tm_event_id,
		       name,
		       COALESCE(artist, '') as artist,
		       COALESCE(venue, '') as venue,
		       event_date,
		       COALESCE(raw_date, '') as raw_date,
		       created_at,
		       updated_at
		FROM events
		WHERE id = ?
		LIMIT 1`
	err := r.db.Get(&event, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) Create(event *models.Event) error {
	query := `INSERT INTO events (tm_event_id, name, artist, venue, event_date, raw_date)
	          VALUES (:tm_event_id, :name, :artist, :venue, :event_date, :raw_date)`
	result, err := r.db.NamedExec(query, event)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	event.ID = id
	return nil
}

func (r *EventRepository) Update(event *models.Event) error {
	query := `UPDATE events SET tm_event_id = :tm_event_id, name = :name, artist = :artist,
	          venue = :venue, event_date = :event_date, raw_date = :raw_date
	          WHERE id = :id`
	_, err := r.db.NamedExec(query, event)
	return err
}

func (r *EventRepository) Delete(id int64) error {
	query := "DELETE FROM events WHERE id = ?"
	_, err := r.db.Exec(query, id)
	return err
}

// UpsertByTmEventID is the write path of the event pre-population sync job.
func (r *EventRepository) UpsertByTmEventID(event *models.Event) error {
	query := `INSERT INTO events (tm_event_id, name, artist, venue, event_date, raw_date)
	          VALUES (:tm_event_id, :name, :artist, :venue, :event_date, :raw_date)
	          ON DUPLICATE KEY UPDATE
	          name = VALUES(name),
	          artist = VALUES(artist),
	          venue = VALUES(venue),
	          event_date = VALUES(event_date),
	          raw_date = VALUES(raw_date)`
	_, err := r.db.NamedExec(query, event)
	return err
}
