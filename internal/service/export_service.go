package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/models"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
	"github.com/tutorhive/booking-api/pkg/export"
)

type exportBatchRepository interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	ListSessions(ctx context.Context, batchID string) ([]models.BatchSession, error)
	CountEnrollments(ctx context.Context, batchID string) (int, error)
}

// ExportService renders a batch's session schedule as a downloadable CSV or
// PDF.
type ExportService struct {
	repo     exportBatchRepository
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	location *time.Location
	enabled  bool
}

func NewExportService(repo exportBatchRepository, logger *zap.Logger, location *time.Location, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &ExportService{
		repo:     repo,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		location: location,
		enabled:  enabled,
	}
}

var scheduleHeaders = []string{"#", "Date", "Day", "Start", "End", "Duration"}

// ScheduleCSV renders the batch schedule as CSV. Only the owning tutor may
// export.
func (s *ExportService) ScheduleCSV(ctx context.Context, tutorID, batchID string) ([]byte, string, error) {
	batch, dataset, err := s.scheduleDataset(ctx, tutorID, batchID)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, exportFilename(batch, "csv"), nil
}

// SchedulePDF renders the batch schedule as a tabular PDF.
func (s *ExportService) SchedulePDF(ctx context.Context, tutorID, batchID string) ([]byte, string, error) {
	batch, dataset, err := s.scheduleDataset(ctx, tutorID, batchID)
	if err != nil {
		return nil, "", err
	}
	count, err := s.repo.CountEnrollments(ctx, batchID)
	if err != nil {
		s.logger.Warn("failed to count enrollments for export", zap.String("batch_id", batchID), zap.Error(err))
		count = 0
	}
	title := fmt.Sprintf("%s (%d/%d seats)", batch.Title, count, batch.SeatCap)
	payload, err := s.pdf.Render(*dataset, title)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, exportFilename(batch, "pdf"), nil
}

func (s *ExportService) scheduleDataset(ctx context.Context, tutorID, batchID string) (*models.Batch, *export.Dataset, error) {
	if !s.enabled {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "schedule export is disabled")
	}
	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if batch.TutorID != tutorID {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "batch belongs to another tutor")
	}

	sessions, err := s.repo.ListSessions(ctx, batchID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batch sessions")
	}

	rows := make([]map[string]string, 0, len(sessions))
	for i, session := range sessions {
		start := session.StartTime.In(s.location)
		end := session.EndTime.In(s.location)
		rows = append(rows, map[string]string{
			"#":        strconv.Itoa(i + 1),
			"Date":     start.Format("2006-01-02"),
			"Day":      start.Weekday().String(),
			"Start":    start.Format("15:04"),
			"End":      end.Format("15:04"),
			"Duration": end.Sub(start).String(),
		})
	}
	return batch, &export.Dataset{Headers: scheduleHeaders, Rows: rows}, nil
}

func exportFilename(batch *models.Batch, ext string) string {
	return fmt.Sprintf("batch-schedule-%s.%s", batch.ID, ext)
}
