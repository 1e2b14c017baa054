package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhive/booking-api/internal/dto"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

type mockAvailabilityRepo struct {
	dates    map[string][]string
	replaced int
}

func (m *mockAvailabilityRepo) ListDates(ctx context.Context, tutorID string) ([]string, error) {
	return m.dates[tutorID], nil
}

func (m *mockAvailabilityRepo) Replace(ctx context.Context, tutorID string, dates []string) error {
	if m.dates == nil {
		m.dates = make(map[string][]string)
	}
	m.dates[tutorID] = dates
	m.replaced++
	return nil
}

type mockAvailabilityCache struct {
	entries map[string][]byte
	deleted []string
}

func (m *mockAvailabilityCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockAvailabilityCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *mockAvailabilityCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func TestAvailabilityServiceGetCachesResult(t *testing.T) {
	repo := &mockAvailabilityRepo{dates: map[string][]string{"tutor-1": {"2025-10-06", "2025-10-08"}}}
	cache := &mockAvailabilityCache{}
	svc := NewAvailabilityService(repo, cache, nil, nil, AvailabilityConfig{CacheTTL: time.Minute})

	resp, err := svc.Get(context.Background(), "tutor-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-10-06", "2025-10-08"}, resp.Dates)
	assert.Len(t, cache.entries, 1)

	// Second read is served from cache even if the store changes.
	repo.dates["tutor-1"] = nil
	resp, err = svc.Get(context.Background(), "tutor-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-10-06", "2025-10-08"}, resp.Dates)
}

func TestAvailabilityServiceUpdateDeduplicatesAndSorts(t *testing.T) {
	repo := &mockAvailabilityRepo{}
	svc := NewAvailabilityService(repo, nil, nil, nil, AvailabilityConfig{})

	resp, err := svc.Update(context.Background(), "tutor-1", dto.UpdateAvailabilityRequest{
		Dates: []string{"2025-10-08", "2025-10-06", "2025-10-08", "2025-09-30"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-09-30", "2025-10-06", "2025-10-08"}, resp.Dates)
}

func TestAvailabilityServiceToggleFlipsDate(t *testing.T) {
	repo := &mockAvailabilityRepo{dates: map[string][]string{"tutor-1": {"2025-10-06"}}}
	cache := &mockAvailabilityCache{entries: map[string][]byte{"availability:tutor-1": []byte(`{}`)}}
	svc := NewAvailabilityService(repo, cache, nil, nil, AvailabilityConfig{})

	resp, err := svc.Toggle(context.Background(), "tutor-1", "2025-10-08")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-10-06", "2025-10-08"}, resp.Dates)
	assert.Contains(t, cache.deleted, "availability:tutor-1")

	resp, err = svc.Toggle(context.Background(), "tutor-1", "2025-10-06")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-10-08"}, resp.Dates)
}

func TestAvailabilityServiceSelectMonthExcludesWeekday(t *testing.T) {
	repo := &mockAvailabilityRepo{dates: map[string][]string{"tutor-1": {"2025-09-15"}}}
	svc := NewAvailabilityService(repo, nil, nil, nil, AvailabilityConfig{})

	resp, err := svc.SelectMonth(context.Background(), "tutor-1", dto.MonthSelectRequest{
		Month:           "2025-10-01",
		ExcludedWeekday: "Sun",
	})
	require.NoError(t, err)

	// October 2025 has 31 days and 4 Sundays, plus the pre-existing
	// September date survives.
	assert.Len(t, resp.Dates, 28)
	assert.Contains(t, resp.Dates, "2025-09-15")
	assert.NotContains(t, resp.Dates, "2025-10-05")
	assert.Contains(t, resp.Dates, "2025-10-06")
}

func TestAvailabilityServiceSelectMonthRejectsUnknownWeekday(t *testing.T) {
	svc := NewAvailabilityService(&mockAvailabilityRepo{}, nil, nil, nil, AvailabilityConfig{})

	_, err := svc.SelectMonth(context.Background(), "tutor-1", dto.MonthSelectRequest{
		Month:           "2025-10-01",
		ExcludedWeekday: "Funday",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceClear(t *testing.T) {
	repo := &mockAvailabilityRepo{dates: map[string][]string{"tutor-1": {"2025-10-06"}}}
	cache := &mockAvailabilityCache{entries: map[string][]byte{"availability:tutor-1": []byte(`{}`)}}
	svc := NewAvailabilityService(repo, cache, nil, nil, AvailabilityConfig{})

	require.NoError(t, svc.Clear(context.Background(), "tutor-1"))
	assert.Empty(t, repo.dates["tutor-1"])
	assert.Contains(t, cache.deleted, "availability:tutor-1")
}
