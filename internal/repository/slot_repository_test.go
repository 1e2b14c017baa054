package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhive/booking-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSlotRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "tutor_id", "start_time", "end_time", "slot_type", "status", "created_at", "updated_at"}).
		AddRow("s1", "tutor-1", now, now.Add(30*time.Minute), "regular", "OPEN", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, tutor_id, start_time, end_time, slot_type, status, created_at, updated_at FROM slots WHERE 1=1 AND tutor_id = $1 ORDER BY start_time ASC LIMIT 20 OFFSET 0")).
		WithArgs("tutor-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM slots WHERE 1=1 AND tutor_id = $1")).
		WithArgs("tutor-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.SlotFilter{TutorID: "tutor-1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryExistsAt(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	start := time.Date(2025, time.October, 3, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM slots WHERE tutor_id = $1 AND start_time = $2 AND slot_type = $3 LIMIT 1")).
		WithArgs("tutor-1", start, "demo").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsAt(context.Background(), "tutor-1", start, "demo")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM slots WHERE tutor_id = $1 AND start_time = $2 AND slot_type = $3 LIMIT 1")).
		WithArgs("tutor-1", start, "regular").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsAt(context.Background(), "tutor-1", start, "regular")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryCreateBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	start := time.Date(2025, time.October, 3, 10, 0, 0, 0, time.UTC)
	slots := []models.Slot{
		{TutorID: "tutor-1", StartTime: start, EndTime: start.Add(15 * time.Minute), SlotType: "demo", Status: models.SlotStatusOpen},
		{TutorID: "tutor-1", StartTime: start, EndTime: start.Add(30 * time.Minute), SlotType: "regular", Status: models.SlotStatusOpen},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO slots").
		WithArgs(sqlmock.AnyArg(), "tutor-1", start, start.Add(15*time.Minute), "demo", models.SlotStatusOpen, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO slots").
		WithArgs(sqlmock.AnyArg(), "tutor-1", start, start.Add(30*time.Minute), "regular", models.SlotStatusOpen, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateBatch(context.Background(), slots))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryDeleteOnlyOpen(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM slots WHERE id = $1 AND status = 'OPEN'")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "s1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
