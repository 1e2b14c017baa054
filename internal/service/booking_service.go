package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/dto"
	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/internal/schedule"
	"github.com/tutorhive/booking-api/pkg/config"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

type bookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
}

type bookingSlotRepository interface {
	FindByID(ctx context.Context, id string) (*models.Slot, error)
	UpdateStatus(ctx context.Context, id string, status models.SlotStatus) error
}

// BookingService claims open slots for students and evaluates the join
// window around booked sessions.
type BookingService struct {
	repo      bookingRepository
	slots     bookingSlotRepository
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.BookingConfig
	now       func() time.Time
}

// NewBookingService constructs the service. The now func is overridable for
// deterministic window evaluation.
func NewBookingService(repo bookingRepository, slots bookingSlotRepository, validate *validator.Validate, logger *zap.Logger, cfg config.BookingConfig) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	RegisterCustomValidators(validate)
	return &BookingService{
		repo:      repo,
		slots:     slots,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create books an open slot for the student. The slot row is claimed inside
// the repository transaction, so two students racing on the same slot cannot
// both succeed.
func (s *BookingService) Create(ctx context.Context, studentID string, req dto.CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	slot, err := s.slots.FindByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	if slot.Status != models.SlotStatusOpen {
		return nil, appErrors.ErrSlotUnavailable
	}
	if slot.TutorID == studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "tutors cannot book their own slots")
	}

	booking := &models.Booking{
		SlotID:      slot.ID,
		StudentID:   studentID,
		TutorID:     slot.TutorID,
		SessionKind: slot.SlotType,
		StartTime:   slot.StartTime,
		Status:      models.BookingStatusConfirmed,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSlotUnavailable
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}
	return booking, nil
}

// JoinWindow reports whether the booking's session can be joined right now.
// Only the booked student or the hosting tutor may ask.
func (s *BookingService) JoinWindow(ctx context.Context, userID, bookingID string) (*dto.JoinWindowResponse, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	if booking.StudentID != userID && booking.TutorID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "booking belongs to another user")
	}

	kind := schedule.SessionKind(booking.SessionKind)
	window := schedule.AccessWindow{JoinBefore: s.cfg.JoinBefore, ExpireAfter: s.cfg.ExpireAfter}
	state := schedule.EvaluateJoinWindow(booking.StartTime, kind.SessionDuration(), window, s.now())

	return &dto.JoinWindowResponse{
		CanJoin:     state.CanJoin,
		IsExpired:   state.Expired,
		OpensAt:     booking.StartTime.Add(-window.JoinBefore),
		ClosesAt:    booking.StartTime.Add(kind.SessionDuration() + window.ExpireAfter),
		PollSeconds: int(s.cfg.PollInterval / time.Second),
	}, nil
}

// List returns bookings matching the filter.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return bookings, pagination, nil
}

// Cancel cancels a booking and reopens its slot. Only the booked student or
// the hosting tutor may cancel, and only before the session starts.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID string) error {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	if booking.StudentID != userID && booking.TutorID != userID {
		return appErrors.Clone(appErrors.ErrForbidden, "booking belongs to another user")
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
		return appErrors.Clone(appErrors.ErrConflict, "booking is not active")
	}
	if !s.now().Before(booking.StartTime) {
		return appErrors.Clone(appErrors.ErrConflict, "session has already started")
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, models.BookingStatusCancelled); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel booking")
	}
	if err := s.slots.UpdateStatus(ctx, booking.SlotID, models.SlotStatusOpen); err != nil {
		s.logger.Warn("failed to reopen slot after cancellation",
			zap.String("booking_id", bookingID),
			zap.String("slot_id", booking.SlotID),
			zap.Error(err))
	}
	return nil
}

// Complete marks a booking completed once its session has ended. Only the
// hosting tutor may complete it.
func (s *BookingService) Complete(ctx context.Context, tutorID, bookingID string) error {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	if booking.TutorID != tutorID {
		return appErrors.Clone(appErrors.ErrForbidden, "booking belongs to another tutor")
	}
	if booking.Status != models.BookingStatusConfirmed {
		return appErrors.Clone(appErrors.ErrConflict, "booking is not confirmed")
	}

	kind := schedule.SessionKind(booking.SessionKind)
	if s.now().Before(booking.StartTime.Add(kind.SessionDuration())) {
		return appErrors.Clone(appErrors.ErrConflict, "session has not ended yet")
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, models.BookingStatusCompleted); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete booking")
	}
	return nil
}
