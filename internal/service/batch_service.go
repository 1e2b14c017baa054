package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/dto"
	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/internal/schedule"
	"github.com/tutorhive/booking-api/pkg/config"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

type batchRepository interface {
	CreateWithSessions(ctx context.Context, batch *models.Batch, sessions []models.BatchSession) error
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error)
	ListSessions(ctx context.Context, batchID string) ([]models.BatchSession, error)
	FindSession(ctx context.Context, sessionID string) (*models.BatchSession, error)
	CountEnrollments(ctx context.Context, batchID string) (int, error)
	CreateEnrollment(ctx context.Context, enrollment *models.BatchEnrollment) error
	IsEnrolled(ctx context.Context, batchID, studentID string) (bool, error)
}

// BatchService manages recurring group batches: previewing and persisting
// the expanded session schedule, seat-capped enrollment, and per-batch join
// windows.
type BatchService struct {
	repo      batchRepository
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.BatchesConfig
	booking   config.BookingConfig
	location  *time.Location
	now       func() time.Time
}

func NewBatchService(repo batchRepository, validate *validator.Validate, logger *zap.Logger, cfg config.BatchesConfig, booking config.BookingConfig, location *time.Location) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	RegisterCustomValidators(validate)
	return &BatchService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		booking:   booking,
		location:  location,
		now:       time.Now,
	}
}

// Preview expands the recurring pattern into session start times without
// persisting anything.
func (s *BatchService) Preview(req dto.PreviewBatchRequest) (*dto.BatchPreviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch preview payload")
	}

	rec, err := s.buildSchedule(req.RecurringDays, req.StartDate, req.EndDate, req.ClassStartTime)
	if err != nil {
		return nil, err
	}
	sessions, err := s.expand(rec)
	if err != nil {
		return nil, err
	}
	return &dto.BatchPreviewResponse{Sessions: sessions, Count: len(sessions)}, nil
}

// Create persists a batch together with every session its recurring pattern
// expands to, in one transaction.
func (s *BatchService) Create(ctx context.Context, tutorID string, req dto.CreateBatchRequest) (*models.Batch, []models.BatchSession, error) {
	if !s.cfg.Enabled {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "batch creation is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	if s.cfg.MaxSeatCap > 0 && req.SeatCap > s.cfg.MaxSeatCap {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "seat cap exceeds the allowed maximum")
	}

	classStart, err := schedule.ParseTimeOfDay(req.ClassStartTime)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class start time")
	}
	classEnd, err := schedule.ParseTimeOfDay(req.ClassEndTime)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class end time")
	}
	if !classStart.Before(classEnd) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "class end time must be after class start time")
	}

	rec, err := s.buildSchedule(req.RecurringDays, req.StartDate, req.EndDate, req.ClassStartTime)
	if err != nil {
		return nil, nil, err
	}
	if s.cfg.MaxRangeDays > 0 {
		limit := rec.StartDate.At(schedule.TimeOfDay{}, s.location).AddDate(0, 0, s.cfg.MaxRangeDays)
		if rec.EndDate.At(schedule.TimeOfDay{}, s.location).After(limit) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "batch date range exceeds the allowed span")
		}
	}

	starts, err := s.expand(rec)
	if err != nil {
		return nil, nil, err
	}

	joinBefore := int(s.booking.JoinBefore / time.Minute)
	expireAfter := int(s.booking.ExpireAfter / time.Minute)
	if req.AccessWindow != nil {
		joinBefore = req.AccessWindow.JoinBeforeMin
		expireAfter = req.AccessWindow.ExpireAfterMin
	}

	batch := &models.Batch{
		TutorID:         tutorID,
		Title:           req.Title,
		RecurringDays:   strings.Join(req.RecurringDays, ","),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		ClassStartTime:  req.ClassStartTime,
		ClassEndTime:    req.ClassEndTime,
		SeatCap:         req.SeatCap,
		PricePerStudent: req.PricePerStudent,
		JoinBeforeMin:   joinBefore,
		ExpireAfterMin:  expireAfter,
		Status:          models.BatchStatusPublished,
	}

	classLen := time.Duration(classEnd.Hour-classStart.Hour)*time.Hour +
		time.Duration(classEnd.Minute-classStart.Minute)*time.Minute
	sessions := make([]models.BatchSession, 0, len(starts))
	for _, start := range starts {
		sessions = append(sessions, models.BatchSession{StartTime: start, EndTime: start.Add(classLen)})
	}

	if err := s.repo.CreateWithSessions(ctx, batch, sessions); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create batch")
	}
	return batch, sessions, nil
}

// Get returns a batch with its generated sessions.
func (s *BatchService) Get(ctx context.Context, batchID string) (*models.Batch, []models.BatchSession, error) {
	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	sessions, err := s.repo.ListSessions(ctx, batchID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batch sessions")
	}
	return batch, sessions, nil
}

// List returns batches matching the filter.
func (s *BatchService) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	batches, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return batches, pagination, nil
}

// Enroll adds a student to a batch if seats remain. The seat cap is checked
// against current enrollment count.
func (s *BatchService) Enroll(ctx context.Context, studentID, batchID string) (*models.BatchEnrollment, error) {
	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if batch.Status != models.BatchStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrConflict, "batch is not open for enrollment")
	}

	enrolled, err := s.repo.IsEnrolled(ctx, batchID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if enrolled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled")
	}

	count, err := s.repo.CountEnrollments(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if count >= batch.SeatCap {
		return nil, appErrors.ErrSeatCapReached
	}

	enrollment := &models.BatchEnrollment{BatchID: batchID, StudentID: studentID}
	if err := s.repo.CreateEnrollment(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
	}
	return enrollment, nil
}

// SessionJoinWindow evaluates the join window for one batch session using
// the batch's own access window. Enrolled students and the hosting tutor may
// ask.
func (s *BatchService) SessionJoinWindow(ctx context.Context, userID, sessionID string) (*dto.JoinWindowResponse, error) {
	session, err := s.repo.FindSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	batch, err := s.repo.FindByID(ctx, session.BatchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if batch.TutorID != userID {
		enrolled, err := s.repo.IsEnrolled(ctx, batch.ID, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
		}
		if !enrolled {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "user is not enrolled in this batch")
		}
	}

	window := schedule.AccessWindow{
		JoinBefore:  time.Duration(batch.JoinBeforeMin) * time.Minute,
		ExpireAfter: time.Duration(batch.ExpireAfterMin) * time.Minute,
	}
	duration := session.EndTime.Sub(session.StartTime)
	state := schedule.EvaluateJoinWindow(session.StartTime, duration, window, s.now())

	return &dto.JoinWindowResponse{
		CanJoin:     state.CanJoin,
		IsExpired:   state.Expired,
		OpensAt:     session.StartTime.Add(-window.JoinBefore),
		ClosesAt:    session.EndTime.Add(window.ExpireAfter),
		PollSeconds: int(s.booking.PollInterval / time.Second),
	}, nil
}

func (s *BatchService) buildSchedule(days []string, startDate, endDate, classStart string) (schedule.RecurringSchedule, error) {
	weekdays, err := schedule.ParseWeekdays(days)
	if err != nil {
		return schedule.RecurringSchedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekday pattern")
	}
	start, err := schedule.ParseDate(startDate)
	if err != nil {
		return schedule.RecurringSchedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start date")
	}
	end, err := schedule.ParseDate(endDate)
	if err != nil {
		return schedule.RecurringSchedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end date")
	}
	daily, err := schedule.ParseTimeOfDay(classStart)
	if err != nil {
		return schedule.RecurringSchedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class start time")
	}
	return schedule.RecurringSchedule{Weekdays: weekdays, StartDate: start, EndDate: end, DailyStart: daily}, nil
}

func (s *BatchService) expand(rec schedule.RecurringSchedule) ([]time.Time, error) {
	sessions, err := rec.Expand(s.location)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidRange):
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidRange.Code, appErrors.ErrInvalidRange.Status, appErrors.ErrInvalidRange.Message)
		case errors.Is(err, schedule.ErrEmptyPattern):
			return nil, appErrors.Wrap(err, appErrors.ErrEmptyPattern.Code, appErrors.ErrEmptyPattern.Status, appErrors.ErrEmptyPattern.Message)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expand schedule")
	}
	return sessions, nil
}
