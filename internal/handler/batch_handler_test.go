package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhive/booking-api/internal/dto"
	"github.com/tutorhive/booking-api/internal/middleware"
	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/internal/service"
	"github.com/tutorhive/booking-api/pkg/config"
	"github.com/tutorhive/booking-api/pkg/response"
)

type batchRepoStub struct {
	batches     map[string]models.Batch
	sessions    map[string][]models.BatchSession
	enrollments map[string][]string
}

func (s *batchRepoStub) CreateWithSessions(ctx context.Context, batch *models.Batch, sessions []models.BatchSession) error {
	if s.batches == nil {
		s.batches = make(map[string]models.Batch)
		s.sessions = make(map[string][]models.BatchSession)
	}
	if batch.ID == "" {
		batch.ID = "batch-1"
	}
	s.batches[batch.ID] = *batch
	s.sessions[batch.ID] = sessions
	return nil
}

func (s *batchRepoStub) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	if b, ok := s.batches[id]; ok {
		return &b, nil
	}
	return nil, sql.ErrNoRows
}

func (s *batchRepoStub) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error) {
	var out []models.Batch
	for _, b := range s.batches {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (s *batchRepoStub) ListSessions(ctx context.Context, batchID string) ([]models.BatchSession, error) {
	return s.sessions[batchID], nil
}

func (s *batchRepoStub) FindSession(ctx context.Context, sessionID string) (*models.BatchSession, error) {
	for _, list := range s.sessions {
		for _, sess := range list {
			if sess.ID == sessionID {
				return &sess, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (s *batchRepoStub) CountEnrollments(ctx context.Context, batchID string) (int, error) {
	return len(s.enrollments[batchID]), nil
}

func (s *batchRepoStub) CreateEnrollment(ctx context.Context, enrollment *models.BatchEnrollment) error {
	if s.enrollments == nil {
		s.enrollments = make(map[string][]string)
	}
	s.enrollments[enrollment.BatchID] = append(s.enrollments[enrollment.BatchID], enrollment.StudentID)
	return nil
}

func (s *batchRepoStub) IsEnrolled(ctx context.Context, batchID, studentID string) (bool, error) {
	for _, id := range s.enrollments[batchID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

func newBatchHandler(repo *batchRepoStub) *BatchHandler {
	booking := config.BookingConfig{JoinBefore: 5 * time.Minute, ExpireAfter: 5 * time.Minute, PollInterval: 30 * time.Second}
	batches := service.NewBatchService(repo, nil, nil, config.BatchesConfig{Enabled: true, MaxSeatCap: 50}, booking, time.UTC)
	exports := service.NewExportService(repo, nil, time.UTC, true)
	return NewBatchHandler(batches, exports, service.NewMetricsService())
}

func TestBatchHandlerPreview(t *testing.T) {
	h := newBatchHandler(&batchRepoStub{})

	c, w := newSlotTestContext(t, http.MethodPost, "/batches/preview", dto.PreviewBatchRequest{
		RecurringDays:  []string{"Mon", "Wed"},
		StartDate:      "2025-10-01",
		EndDate:        "2025-10-14",
		ClassStartTime: "18:00",
	})

	h.Preview(c)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data dto.BatchPreviewResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, 4, env.Data.Count)
}

func TestBatchHandlerPreviewInvalidRange(t *testing.T) {
	h := newBatchHandler(&batchRepoStub{})

	c, w := newSlotTestContext(t, http.MethodPost, "/batches/preview", dto.PreviewBatchRequest{
		RecurringDays:  []string{"Mon"},
		StartDate:      "2025-10-14",
		EndDate:        "2025-10-01",
		ClassStartTime: "18:00",
	})

	h.Preview(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_RANGE", env.Error.Code)
}

func TestBatchHandlerCreate(t *testing.T) {
	repo := &batchRepoStub{}
	h := newBatchHandler(repo)

	c, w := newSlotTestContext(t, http.MethodPost, "/batches", dto.CreateBatchRequest{
		Title:           "Algebra Foundations",
		RecurringDays:   []string{"Mon", "Wed"},
		StartDate:       "2025-10-01",
		EndDate:         "2025-10-14",
		ClassStartTime:  "18:00",
		ClassEndTime:    "19:00",
		SeatCap:         10,
		PricePerStudent: 500,
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "tutor-1", Role: models.RoleTutor})

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, repo.sessions["batch-1"], 4)
}

func TestBatchHandlerEnrollSeatCap(t *testing.T) {
	repo := &batchRepoStub{
		batches: map[string]models.Batch{
			"batch-1": {ID: "batch-1", TutorID: "tutor-1", SeatCap: 1, Status: models.BatchStatusPublished},
		},
		enrollments: map[string][]string{"batch-1": {"s1"}},
	}
	h := newBatchHandler(repo)

	c, w := newSlotTestContext(t, http.MethodPost, "/batches/batch-1/enroll", nil)
	c.Params = gin.Params{{Key: "id", Value: "batch-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "s2", Role: models.RoleStudent})

	h.Enroll(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "SEAT_CAP_REACHED", env.Error.Code)
}

func TestBatchHandlerExportCSV(t *testing.T) {
	start := time.Date(2025, 10, 6, 18, 0, 0, 0, time.UTC)
	repo := &batchRepoStub{
		batches: map[string]models.Batch{
			"batch-1": {ID: "batch-1", TutorID: "tutor-1", Title: "Algebra", SeatCap: 10, Status: models.BatchStatusPublished},
		},
		sessions: map[string][]models.BatchSession{
			"batch-1": {{ID: "s1", BatchID: "batch-1", StartTime: start, EndTime: start.Add(time.Hour)}},
		},
	}
	h := newBatchHandler(repo)

	c, w := newSlotTestContext(t, http.MethodGet, "/batches/batch-1/schedule.csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "batch-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "tutor-1", Role: models.RoleTutor})

	h.ExportCSV(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "batch-schedule-batch-1.csv")
	assert.Contains(t, w.Body.String(), "2025-10-06")
}
