package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhive/booking-api/internal/models"
)

// SlotRepository provides persistence for tutor slots.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository creates a new slot repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

const slotColumns = "id, tutor_id, start_time, end_time, slot_type, status, created_at, updated_at"

// List returns slots with optional filtering and pagination.
func (r *SlotRepository) List(ctx context.Context, filter models.SlotFilter) ([]models.Slot, int, error) {
	base := "FROM slots WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TutorID != "" {
		conditions = append(conditions, fmt.Sprintf("tutor_id = $%d", len(args)+1))
		args = append(args, filter.TutorID)
	}
	if filter.SlotType != "" {
		conditions = append(conditions, fmt.Sprintf("slot_type = $%d", len(args)+1))
		args = append(args, filter.SlotType)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("start_time >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_time < $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY start_time ASC LIMIT %d OFFSET %d", slotColumns, base, size, offset)
	var slots []models.Slot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list slots: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count slots: %w", err)
	}

	return slots, total, nil
}

// FindByID returns a slot by identifier.
func (r *SlotRepository) FindByID(ctx context.Context, id string) (*models.Slot, error) {
	query := fmt.Sprintf("SELECT %s FROM slots WHERE id = $1 LIMIT 1", slotColumns)
	var slot models.Slot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find slot by id: %w", err)
	}
	return &slot, nil
}

// ExistsAt reports whether the tutor already has a slot with the exact start
// time and type, the persisted side of the duplicate guard.
func (r *SlotRepository) ExistsAt(ctx context.Context, tutorID string, startTime time.Time, slotType string) (bool, error) {
	const query = `SELECT 1 FROM slots WHERE tutor_id = $1 AND start_time = $2 AND slot_type = $3 LIMIT 1`
	var one int
	err := r.db.GetContext(ctx, &one, query, tutorID, startTime, slotType)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check slot exists: %w", err)
	}
	return true, nil
}

// CreateBatch inserts a pending slot batch in one transaction.
func (r *SlotRepository) CreateBatch(ctx context.Context, slots []models.Slot) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin slot tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insert = `INSERT INTO slots (id, tutor_id, start_time, end_time, slot_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	now := time.Now().UTC()
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		slots[i].CreatedAt = now
		slots[i].UpdatedAt = now
		if _, err := tx.ExecContext(ctx, insert, slots[i].ID, slots[i].TutorID, slots[i].StartTime, slots[i].EndTime, slots[i].SlotType, slots[i].Status, now, now); err != nil {
			return fmt.Errorf("insert slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit slot tx: %w", err)
	}
	return nil
}

// UpdateStatus transitions a slot's booking status.
func (r *SlotRepository) UpdateStatus(ctx context.Context, id string, status models.SlotStatus) error {
	const query = `UPDATE slots SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update slot status: %w", err)
	}
	return nil
}

// Delete removes an open slot.
func (r *SlotRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM slots WHERE id = $1 AND status = 'OPEN'`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
