package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhive/booking-api/internal/dto"
	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/pkg/config"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

type mockBookingRepo struct {
	bookings map[string]models.Booking
	created  *models.Booking
	status   map[string]models.BookingStatus
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if m.bookings == nil {
		m.bookings = make(map[string]models.Booking)
	}
	if booking.ID == "" {
		booking.ID = "new-booking"
	}
	m.bookings[booking.ID] = *booking
	m.created = booking
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := m.bookings[id]; ok {
		return &b, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	var out []models.Booking
	for _, b := range m.bookings {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if m.status == nil {
		m.status = make(map[string]models.BookingStatus)
	}
	m.status[id] = status
	if b, ok := m.bookings[id]; ok {
		b.Status = status
		m.bookings[id] = b
	}
	return nil
}

type mockBookingSlotRepo struct {
	slots  map[string]models.Slot
	status map[string]models.SlotStatus
}

func (m *mockBookingSlotRepo) FindByID(ctx context.Context, id string) (*models.Slot, error) {
	if s, ok := m.slots[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBookingSlotRepo) UpdateStatus(ctx context.Context, id string, status models.SlotStatus) error {
	if m.status == nil {
		m.status = make(map[string]models.SlotStatus)
	}
	m.status[id] = status
	if s, ok := m.slots[id]; ok {
		s.Status = status
		m.slots[id] = s
	}
	return nil
}

const testSlotID = "a3bb189e-8bf9-4c8b-9be6-4b6c86f1a001"

func bookingConfig() config.BookingConfig {
	return config.BookingConfig{
		Timezone:     "Asia/Kolkata",
		JoinBefore:   5 * time.Minute,
		ExpireAfter:  5 * time.Minute,
		PollInterval: 30 * time.Second,
	}
}

func TestBookingServiceCreateClaimsSlot(t *testing.T) {
	start := time.Date(2025, 10, 6, 18, 0, 0, 0, time.UTC)
	slots := &mockBookingSlotRepo{slots: map[string]models.Slot{
		testSlotID: {ID: testSlotID, TutorID: "tutor-1", StartTime: start, SlotType: "regular", Status: models.SlotStatusOpen},
	}}
	repo := &mockBookingRepo{}
	svc := NewBookingService(repo, slots, nil, nil, bookingConfig())

	booking, err := svc.Create(context.Background(), "student-1", dto.CreateBookingRequest{SlotID: testSlotID})
	require.NoError(t, err)
	assert.Equal(t, "tutor-1", booking.TutorID)
	assert.Equal(t, "regular", booking.SessionKind)
	assert.True(t, booking.StartTime.Equal(start))
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
}

func TestBookingServiceCreateRejectsBookedSlot(t *testing.T) {
	slots := &mockBookingSlotRepo{slots: map[string]models.Slot{
		testSlotID: {ID: testSlotID, TutorID: "tutor-1", SlotType: "demo", Status: models.SlotStatusBooked},
	}}
	svc := NewBookingService(&mockBookingRepo{}, slots, nil, nil, bookingConfig())

	_, err := svc.Create(context.Background(), "student-1", dto.CreateBookingRequest{SlotID: testSlotID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotUnavailable.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceCreateRejectsMissingSlot(t *testing.T) {
	svc := NewBookingService(&mockBookingRepo{}, &mockBookingSlotRepo{}, nil, nil, bookingConfig())

	_, err := svc.Create(context.Background(), "student-1", dto.CreateBookingRequest{SlotID: testSlotID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceJoinWindow(t *testing.T) {
	start := time.Date(2025, 10, 6, 18, 0, 0, 0, time.UTC)
	repo := &mockBookingRepo{bookings: map[string]models.Booking{
		"b1": {ID: "b1", SlotID: testSlotID, StudentID: "student-1", TutorID: "tutor-1",
			SessionKind: "regular", StartTime: start, Status: models.BookingStatusConfirmed},
	}}
	svc := NewBookingService(repo, &mockBookingSlotRepo{}, nil, nil, bookingConfig())

	cases := []struct {
		name      string
		now       time.Time
		canJoin   bool
		isExpired bool
	}{
		{"just before window opens", start.Add(-5*time.Minute - time.Second), false, false},
		{"window opens", start.Add(-5 * time.Minute), true, false},
		{"mid session", start.Add(30 * time.Minute), true, false},
		{"window closes", start.Add(time.Hour + 5*time.Minute), true, false},
		{"just after window closes", start.Add(time.Hour + 5*time.Minute + time.Second), false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc.now = func() time.Time { return tc.now }
			resp, err := svc.JoinWindow(context.Background(), "student-1", "b1")
			require.NoError(t, err)
			assert.Equal(t, tc.canJoin, resp.CanJoin)
			assert.Equal(t, tc.isExpired, resp.IsExpired)
			assert.Equal(t, 30, resp.PollSeconds)
		})
	}
}

func TestBookingServiceJoinWindowForbidsStrangers(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[string]models.Booking{
		"b1": {ID: "b1", StudentID: "student-1", TutorID: "tutor-1", SessionKind: "demo"},
	}}
	svc := NewBookingService(repo, &mockBookingSlotRepo{}, nil, nil, bookingConfig())

	_, err := svc.JoinWindow(context.Background(), "student-2", "b1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceCancelReopensSlot(t *testing.T) {
	start := time.Date(2025, 10, 6, 18, 0, 0, 0, time.UTC)
	repo := &mockBookingRepo{bookings: map[string]models.Booking{
		"b1": {ID: "b1", SlotID: testSlotID, StudentID: "student-1", TutorID: "tutor-1",
			SessionKind: "regular", StartTime: start, Status: models.BookingStatusConfirmed},
	}}
	slots := &mockBookingSlotRepo{slots: map[string]models.Slot{
		testSlotID: {ID: testSlotID, Status: models.SlotStatusBooked},
	}}
	svc := NewBookingService(repo, slots, nil, nil, bookingConfig())
	svc.now = func() time.Time { return start.Add(-time.Hour) }

	require.NoError(t, svc.Cancel(context.Background(), "student-1", "b1"))
	assert.Equal(t, models.BookingStatusCancelled, repo.status["b1"])
	assert.Equal(t, models.SlotStatusOpen, slots.status[testSlotID])
}

func TestBookingServiceCancelRejectsStartedSession(t *testing.T) {
	start := time.Date(2025, 10, 6, 18, 0, 0, 0, time.UTC)
	repo := &mockBookingRepo{bookings: map[string]models.Booking{
		"b1": {ID: "b1", StudentID: "student-1", TutorID: "tutor-1", StartTime: start, Status: models.BookingStatusConfirmed},
	}}
	svc := NewBookingService(repo, &mockBookingSlotRepo{}, nil, nil, bookingConfig())
	svc.now = func() time.Time { return start }

	err := svc.Cancel(context.Background(), "student-1", "b1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceComplete(t *testing.T) {
	start := time.Date(2025, 10, 6, 18, 0, 0, 0, time.UTC)
	repo := &mockBookingRepo{bookings: map[string]models.Booking{
		"b1": {ID: "b1", StudentID: "student-1", TutorID: "tutor-1",
			SessionKind: "demo", StartTime: start, Status: models.BookingStatusConfirmed},
	}}
	svc := NewBookingService(repo, &mockBookingSlotRepo{}, nil, nil, bookingConfig())

	svc.now = func() time.Time { return start.Add(10 * time.Minute) }
	err := svc.Complete(context.Background(), "tutor-1", "b1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	svc.now = func() time.Time { return start.Add(16 * time.Minute) }
	require.NoError(t, svc.Complete(context.Background(), "tutor-1", "b1"))
	assert.Equal(t, models.BookingStatusCompleted, repo.status["b1"])
}
