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
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

type slotRepository interface {
	List(ctx context.Context, filter models.SlotFilter) ([]models.Slot, int, error)
	FindByID(ctx context.Context, id string) (*models.Slot, error)
	ExistsAt(ctx context.Context, tutorID string, startTime time.Time, slotType string) (bool, error)
	CreateBatch(ctx context.Context, slots []models.Slot) error
	Delete(ctx context.Context, id string) error
}

// SlotService converts tutor slot submissions into persisted open slots,
// enforcing the fixed-duration and duplicate rules.
type SlotService struct {
	repo      slotRepository
	validator *validator.Validate
	logger    *zap.Logger
	location  *time.Location
}

// NewSlotService constructs the service. The location is the display
// timezone slots are built in.
func NewSlotService(repo slotRepository, validate *validator.Validate, logger *zap.Logger, location *time.Location) *SlotService {
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
	return &SlotService{repo: repo, validator: validate, logger: logger, location: location}
}

// Build derives a slot interval from a date, time of day and slot type
// without persisting anything.
func (s *SlotService) Build(req dto.BuildSlotRequest) (*dto.BuiltSlotResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}

	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot date")
	}
	tod, err := schedule.ParseTimeOfDay(req.Time)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot time")
	}

	slot, err := schedule.BuildSlot(date, tod, schedule.SlotKind(req.SlotType), s.location)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot type")
	}

	return &dto.BuiltSlotResponse{StartTime: slot.StartTime, EndTime: slot.EndTime, SlotType: string(slot.Kind)}, nil
}

// Submit validates and persists a tutor's pending slot batch. Duplicates are
// rejected both within the payload and against the tutor's stored slots.
func (s *SlotService) Submit(ctx context.Context, tutorID string, req dto.SubmitSlotsRequest) ([]models.Slot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot batch payload")
	}

	var pending []schedule.Slot
	records := make([]models.Slot, 0, len(req.Slots))
	for _, sub := range req.Slots {
		kind := schedule.SlotKind(sub.SlotType)
		if sub.EndTime.Sub(sub.StartTime) != kind.Duration() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "slot duration does not match its type")
		}

		next, err := schedule.AddSlot(pending, schedule.Slot{StartTime: sub.StartTime, EndTime: sub.EndTime, Kind: kind})
		if err != nil {
			if errors.Is(err, schedule.ErrDuplicateSlot) {
				return nil, appErrors.ErrDuplicateSlot
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stage slot")
		}
		pending = next

		exists, err := s.repo.ExistsAt(ctx, tutorID, sub.StartTime, sub.SlotType)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing slots")
		}
		if exists {
			return nil, appErrors.ErrDuplicateSlot
		}

		records = append(records, models.Slot{
			TutorID:   tutorID,
			StartTime: sub.StartTime,
			EndTime:   sub.EndTime,
			SlotType:  sub.SlotType,
			Status:    models.SlotStatusOpen,
		})
	}

	if err := s.repo.CreateBatch(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store slots")
	}
	return records, nil
}

// List returns slots matching the filter.
func (s *SlotService) List(ctx context.Context, filter models.SlotFilter) ([]models.Slot, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	slots, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return slots, pagination, nil
}

// Delete removes an open slot owned by the tutor. Booked slots cannot be
// removed.
func (s *SlotService) Delete(ctx context.Context, tutorID, slotID string) error {
	slot, err := s.repo.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	if slot.TutorID != tutorID {
		return appErrors.Clone(appErrors.ErrForbidden, "slot belongs to another tutor")
	}
	if slot.Status != models.SlotStatusOpen {
		return appErrors.Clone(appErrors.ErrConflict, "booked slots cannot be removed")
	}

	if err := s.repo.Delete(ctx, slotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "slot was booked concurrently")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot")
	}
	return nil
}
