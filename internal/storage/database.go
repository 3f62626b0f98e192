// Package storage persists the class roster in Postgres.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/pocket-points/internal/core"
)

// ErrNotFound is returned when no student matches the requested ID.
var ErrNotFound = errors.New("student not found")

//go:generate go run go.uber.org/mock/mockgen -destination=mock_store.go -package=storage github.com/sevigo/pocket-points/internal/storage Store

// Store defines the interface for all roster database operations.
type Store interface {
	core.RosterStore
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

const studentColumns = `id, name, COALESCE(image_name, '') AS image_name, num_stickers, created_at, updated_at`

// CreateStudent inserts the student and fills in its ID and timestamps.
func (s *postgresStore) CreateStudent(ctx context.Context, student *core.Student) error {
	query := `
		INSERT INTO students (name, image_name, num_stickers)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id, created_at, updated_at`

	row := s.db.QueryRowxContext(ctx, query, student.Name, student.ImageName, student.NumStickers)
	if err := row.Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt); err != nil {
		student.ID = core.InvalidStudentID
		return fmt.Errorf("failed to insert student %q: %w", student.Name, err)
	}
	return nil
}

// GetStudent retrieves a single student by ID.
func (s *postgresStore) GetStudent(ctx context.Context, id int64) (*core.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	var student core.Student
	if err := s.db.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get student %d: %w", id, err)
	}
	return &student, nil
}

// ListStudents returns every student ordered by name.
func (s *postgresStore) ListStudents(ctx context.Context) ([]*core.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY name ASC, id ASC`

	var students []*core.Student
	if err := s.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// UpdateStudent overwrites the stored name, image and sticker count.
func (s *postgresStore) UpdateStudent(ctx context.Context, student *core.Student) error {
	query := `
		UPDATE students
		SET name = $1, image_name = NULLIF($2, ''), num_stickers = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`

	err := s.db.QueryRowxContext(ctx, query, student.Name, student.ImageName, student.NumStickers, student.ID).
		Scan(&student.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: id %d", ErrNotFound, student.ID)
		}
		return fmt.Errorf("failed to update student %d: %w", student.ID, err)
	}
	return nil
}

// DeleteStudent removes the student with the given ID.
func (s *postgresStore) DeleteStudent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete student %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete student %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}
