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

// BatchRepository provides persistence for group batches, their generated
// sessions and enrollments.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository creates a new batch repository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

const batchColumns = "id, tutor_id, title, recurring_days, start_date, end_date, class_start_time, class_end_time, seat_cap, price_per_student, join_before_min, expire_after_min, status, created_at, updated_at"

// CreateWithSessions persists the batch and its expanded session occurrences
// atomically.
func (r *BatchRepository) CreateWithSessions(ctx context.Context, batch *models.Batch, sessions []models.BatchSession) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	batch.CreatedAt = now
	batch.UpdatedAt = now

	const insertBatch = `INSERT INTO batches (id, tutor_id, title, recurring_days, start_date, end_date, class_start_time, class_end_time, seat_cap, price_per_student, join_before_min, expire_after_min, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	if _, err := tx.ExecContext(ctx, insertBatch,
		batch.ID, batch.TutorID, batch.Title, batch.RecurringDays, batch.StartDate, batch.EndDate,
		batch.ClassStartTime, batch.ClassEndTime, batch.SeatCap, batch.PricePerStudent,
		batch.JoinBeforeMin, batch.ExpireAfterMin, batch.Status, now, now); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	const insertSession = `INSERT INTO batch_sessions (id, batch_id, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	for i := range sessions {
		if sessions[i].ID == "" {
			sessions[i].ID = uuid.NewString()
		}
		sessions[i].BatchID = batch.ID
		sessions[i].CreatedAt = now
		if _, err := tx.ExecContext(ctx, insertSession, sessions[i].ID, batch.ID, sessions[i].StartTime, sessions[i].EndTime, now); err != nil {
			return fmt.Errorf("insert batch session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch tx: %w", err)
	}
	return nil
}

// FindByID returns a batch by identifier.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	query := fmt.Sprintf("SELECT %s FROM batches WHERE id = $1 LIMIT 1", batchColumns)
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find batch by id: %w", err)
	}
	return &batch, nil
}

// List returns batches with optional filtering and pagination.
func (r *BatchRepository) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error) {
	base := "FROM batches WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TutorID != "" {
		conditions = append(conditions, fmt.Sprintf("tutor_id = $%d", len(args)+1))
		args = append(args, filter.TutorID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", batchColumns, base, size, offset)
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list batches: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count batches: %w", err)
	}

	return batches, total, nil
}

// ListSessions returns a batch's generated sessions ordered by start time.
func (r *BatchRepository) ListSessions(ctx context.Context, batchID string) ([]models.BatchSession, error) {
	const query = `SELECT id, batch_id, start_time, end_time, created_at FROM batch_sessions WHERE batch_id = $1 ORDER BY start_time ASC`
	var sessions []models.BatchSession
	if err := r.db.SelectContext(ctx, &sessions, query, batchID); err != nil {
		return nil, fmt.Errorf("list batch sessions: %w", err)
	}
	return sessions, nil
}

// FindSession returns one generated session.
func (r *BatchRepository) FindSession(ctx context.Context, sessionID string) (*models.BatchSession, error) {
	const query = `SELECT id, batch_id, start_time, end_time, created_at FROM batch_sessions WHERE id = $1 LIMIT 1`
	var session models.BatchSession
	if err := r.db.GetContext(ctx, &session, query, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find batch session: %w", err)
	}
	return &session, nil
}

// CountEnrollments returns the number of students enrolled in a batch.
func (r *BatchRepository) CountEnrollments(ctx context.Context, batchID string) (int, error) {
	const query = `SELECT COUNT(*) FROM batch_enrollments WHERE batch_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, batchID); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}

// CreateEnrollment enrolls a student into a batch.
func (r *BatchRepository) CreateEnrollment(ctx context.Context, enrollment *models.BatchEnrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	enrollment.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO batch_enrollments (id, batch_id, student_id, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, enrollment.ID, enrollment.BatchID, enrollment.StudentID, enrollment.CreatedAt); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// IsEnrolled reports whether a student is already enrolled in a batch.
func (r *BatchRepository) IsEnrolled(ctx context.Context, batchID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM batch_enrollments WHERE batch_id = $1 AND student_id = $2 LIMIT 1`
	var one int
	err := r.db.GetContext(ctx, &one, query, batchID, studentID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}
