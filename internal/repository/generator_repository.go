package repository

import (
	"database/sql"
	"errors"

	"ticketops-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type GeneratorRepository struct {
	db *sqlx.DB
}

func NewGeneratorRepository(db *sqlx.DB) *GeneratorRepository {
	return &GeneratorRepository{db: db}
}

func (r *GeneratorRepository) GetAll() ([]models.Generator, error) {
	var generators []models.Generator
	query := `
		SELECT id,
		       name,
		       COALESCE(status, '') as status,
		       last_heartbeat,
		       jobs_completed,
		       created_at,
		       updated_at
		FROM generators
		ORDER BY name`
	err := r.db.Select(&generators, query)
	return generators, err
}

func (r *GeneratorRepository) FindByName(name string) (*models.Generator, error) {
	var generator models.Generator
	query := `
		SELECT id,
		       name,
		       COALESCE(status, '') as status,
		       last_heartbeat,
		       jobs_completed,
		       created_at,
		       updated_at
		FROM generators
		WHERE name = ?
		LIMIT 1`
	err := r.db.Get(&generator, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &generator, nil
}

// Register upserts a worker row. A re-registering worker keeps its job count
// and is flipped back to running.
func (r *GeneratorRepository) Register(name string) error {
	query := `INSERT INTO generators (name, status, last_heartbeat, jobs_completed)
	          VALUES (?, 'running', NOW(), 0)
	          ON DUPLICATE KEY UPDATE status = 'running', last_heartbeat = NOW()`
	_, err := r.db.Exec(query, name)
	return err
}

// Heartbeat bumps the liveness timestamp and optionally the completed count.
func (r *GeneratorRepository) Heartbeat(name string, jobsCompleted int) error {
	query := `UPDATE generators SET last_heartbeat = NOW(), jobs_completed = jobs_completed + ?
	          WHERE name = ?`
	result, err := r.db.Exec(query, jobsCompleted, name)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.New("generator not registered")
	}
	return nil
}

func (r *GeneratorRepository) UpdateStatus(id int64, status string) error {
	query := "UPDATE generators SET status = ? WHERE id = ?"
	result, err := r.db.Exec(query, status, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.New("generator not found")
	}
	return nil
}

func (r *GeneratorRepository) Delete(id int64) error {
	query := "DELETE FROM generators WHERE id = ?"
	_, err := r.db.Exec(query, id)
	return err
}
