package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/dto"
	"github.com/tutorhive/booking-api/internal/repository"
	"github.com/tutorhive/booking-api/internal/schedule"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

type availabilityRepository interface {
	ListDates(ctx context.Context, tutorID string) ([]string, error)
	Replace(ctx context.Context, tutorID string, dates []string) error
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// AvailabilityConfig tunes caching of availability reads.
type AvailabilityConfig struct {
	CacheTTL time.Duration
}

// AvailabilityService manages tutor availability selections.
type AvailabilityService struct {
	repo      availabilityRepository
	cache     availabilityCache
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(repo availabilityRepository, cache availabilityCache, validate *validator.Validate, logger *zap.Logger, cfg AvailabilityConfig) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	RegisterCustomValidators(validate)
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &AvailabilityService{repo: repo, cache: cache, validator: validate, logger: logger, cacheTTL: ttl}
}

// Get returns a tutor's availability selection, cache first.
func (s *AvailabilityService) Get(ctx context.Context, tutorID string) (*dto.AvailabilityResponse, error) {
	key := repository.AvailabilityKey(tutorID)
	if s.cache != nil {
		var cached dto.AvailabilityResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("availability cache read failed", zap.Error(err))
		}
	}

	dates, err := s.repo.ListDates(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	resp := &dto.AvailabilityResponse{TutorID: tutorID, Dates: dates}
	if resp.Dates == nil {
		resp.Dates = []string{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
			s.logger.Warn("availability cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

// Update replaces a tutor's availability with the given dates, deduplicated
// and sorted ascending.
func (s *AvailabilityService) Update(ctx context.Context, tutorID string, req dto.UpdateAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	sel := schedule.NewSelection()
	for _, raw := range req.Dates {
		d, err := schedule.ParseDate(raw)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability date")
		}
		if !sel.Contains(d) {
			sel.Toggle(d)
		}
	}

	return s.replace(ctx, tutorID, sel)
}

// Toggle flips a single date in the tutor's selection.
func (s *AvailabilityService) Toggle(ctx context.Context, tutorID, rawDate string) (*dto.AvailabilityResponse, error) {
	d, err := schedule.ParseDate(rawDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability date")
	}

	sel, err := s.loadSelection(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	sel.Toggle(d)

	return s.replace(ctx, tutorID, sel)
}

// SelectMonth bulk-selects every day of the given month except the excluded
// weekday, keeping dates already selected in other months.
func (s *AvailabilityService) SelectMonth(ctx context.Context, tutorID string, req dto.MonthSelectRequest) (*dto.AvailabilityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid month selection payload")
	}

	cursor, err := schedule.ParseDate(req.Month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid month cursor")
	}
	weekdays, err := schedule.ParseWeekdays([]string{req.ExcludedWeekday})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid excluded weekday")
	}

	sel, err := s.loadSelection(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	sel.SelectMonthExcluding(cursor, weekdays[0])

	return s.replace(ctx, tutorID, sel)
}

// Clear empties the tutor's selection.
func (s *AvailabilityService) Clear(ctx context.Context, tutorID string) error {
	if err := s.repo.Replace(ctx, tutorID, nil); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear availability")
	}
	s.invalidate(ctx, tutorID)
	return nil
}

func (s *AvailabilityService) loadSelection(ctx context.Context, tutorID string) (*schedule.Selection, error) {
	stored, err := s.repo.ListDates(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	sel := schedule.NewSelection()
	for _, raw := range stored {
		d, err := schedule.ParseDate(raw)
		if err != nil {
			s.logger.Warn("skipping malformed stored availability date", zap.String("date", raw), zap.Error(err))
			continue
		}
		if !sel.Contains(d) {
			sel.Toggle(d)
		}
	}
	return sel, nil
}

func (s *AvailabilityService) replace(ctx context.Context, tutorID string, sel *schedule.Selection) (*dto.AvailabilityResponse, error) {
	dates := sel.Strings()
	if err := s.repo.Replace(ctx, tutorID, dates); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store availability")
	}
	s.invalidate(ctx, tutorID)
	return &dto.AvailabilityResponse{TutorID: tutorID, Dates: dates}, nil
}

func (s *AvailabilityService) invalidate(ctx context.Context, tutorID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, repository.AvailabilityKey(tutorID)); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.Error(err))
	}
}
