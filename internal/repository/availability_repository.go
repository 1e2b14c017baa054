package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AvailabilityRepository persists tutor availability days.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListDates returns a tutor's availability dates sorted ascending.
func (r *AvailabilityRepository) ListDates(ctx context.Context, tutorID string) ([]string, error) {
	const query = `SELECT date FROM tutor_availability WHERE tutor_id = $1 ORDER BY date ASC`
	var dates []string
	if err := r.db.SelectContext(ctx, &dates, query, tutorID); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return dates, nil
}

// Replace swaps a tutor's availability selection for the given dates in one
// transaction.
func (r *AvailabilityRepository) Replace(ctx context.Context, tutorID string, dates []string) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin availability tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM tutor_availability WHERE tutor_id = $1`, tutorID); err != nil {
		return fmt.Errorf("clear availability: %w", err)
	}

	const insert = `INSERT INTO tutor_availability (id, tutor_id, date, created_at) VALUES ($1, $2, $3, $4)`
	now := time.Now().UTC()
	for _, date := range dates {
		if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), tutorID, date, now); err != nil {
			return fmt.Errorf("insert availability date %s: %w", date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit availability tx: %w", err)
	}
	return nil
}
