package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhive/booking-api/internal/dto"
	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/internal/service"
	"github.com/tutorhive/booking-api/pkg/response"
)

type slotRepoStub struct {
	slots   map[string]models.Slot
	created []models.Slot
}

func (s *slotRepoStub) List(ctx context.Context, filter models.SlotFilter) ([]models.Slot, int, error) {
	var out []models.Slot
	for _, slot := range s.slots {
		out = append(out, slot)
	}
	return out, len(out), nil
}

func (s *slotRepoStub) FindByID(ctx context.Context, id string) (*models.Slot, error) {
	if slot, ok := s.slots[id]; ok {
		return &slot, nil
	}
	return nil, sql.ErrNoRows
}

func (s *slotRepoStub) ExistsAt(ctx context.Context, tutorID string, startTime time.Time, slotType string) (bool, error) {
	for _, slot := range s.slots {
		if slot.TutorID == tutorID && slot.StartTime.Equal(startTime) && slot.SlotType == slotType {
			return true, nil
		}
	}
	return false, nil
}

func (s *slotRepoStub) CreateBatch(ctx context.Context, slots []models.Slot) error {
	s.created = append(s.created, slots...)
	return nil
}

func (s *slotRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.slots[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.slots, id)
	return nil
}

func newSlotTestContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestSlotHandlerBuild(t *testing.T) {
	svc := service.NewSlotService(&slotRepoStub{}, nil, nil, time.UTC)
	h := NewSlotHandler(svc, service.NewMetricsService())

	c, w := newSlotTestContext(t, http.MethodPost, "/slots/build",
		dto.BuildSlotRequest{Date: "2025-10-06", Time: "18:00", SlotType: "demo"})

	h.Build(c)
	require.Equal(t, http.StatusOK, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Nil(t, env.Error)
}

func TestSlotHandlerBuildInvalidBody(t *testing.T) {
	h := NewSlotHandler(service.NewSlotService(&slotRepoStub{}, nil, nil, time.UTC), service.NewMetricsService())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/slots/build", bytes.NewBufferString(`{"date":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Build(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSlotHandlerSubmitDuplicateConflict(t *testing.T) {
	start := time.Date(2025, 10, 6, 18, 0, 0, 0, time.UTC)
	repo := &slotRepoStub{slots: map[string]models.Slot{
		"existing": {ID: "existing", TutorID: "tutor-1", StartTime: start, SlotType: "demo", Status: models.SlotStatusOpen},
	}}
	h := NewSlotHandler(service.NewSlotService(repo, nil, nil, time.UTC), service.NewMetricsService())

	c, w := newSlotTestContext(t, http.MethodPost, "/tutors/tutor-1/slots", dto.SubmitSlotsRequest{
		Slots: []dto.SlotSubmission{{StartTime: start, EndTime: start.Add(15 * time.Minute), SlotType: "demo"}},
	})
	c.Params = gin.Params{{Key: "id", Value: "tutor-1"}}

	h.Submit(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE", env.Error.Code)
}

func TestSlotHandlerSubmitCreatesSlots(t *testing.T) {
	start := time.Date(2025, 10, 6, 18, 0, 0, 0, time.UTC)
	repo := &slotRepoStub{}
	h := NewSlotHandler(service.NewSlotService(repo, nil, nil, time.UTC), service.NewMetricsService())

	c, w := newSlotTestContext(t, http.MethodPost, "/tutors/tutor-1/slots", dto.SubmitSlotsRequest{
		Slots: []dto.SlotSubmission{
			{StartTime: start, EndTime: start.Add(15 * time.Minute), SlotType: "demo"},
			{StartTime: start.Add(time.Hour), EndTime: start.Add(time.Hour + 30*time.Minute), SlotType: "regular"},
		},
	})
	c.Params = gin.Params{{Key: "id", Value: "tutor-1"}}

	h.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, repo.created, 2)
}

func TestSlotHandlerDelete(t *testing.T) {
	repo := &slotRepoStub{slots: map[string]models.Slot{
		"s1": {ID: "s1", TutorID: "tutor-1", Status: models.SlotStatusOpen},
	}}
	h := NewSlotHandler(service.NewSlotService(repo, nil, nil, time.UTC), service.NewMetricsService())

	c, w := newSlotTestContext(t, http.MethodDelete, "/tutors/tutor-1/slots/s1", nil)
	c.Params = gin.Params{{Key: "id", Value: "tutor-1"}, {Key: "slotId", Value: "s1"}}

	h.Delete(c)
	// Status-only responses are not flushed to the recorder until gin
	// finalizes the writer, which only the engine does.
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.slots)
}
