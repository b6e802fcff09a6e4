package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
)

// weekdayNames fixes the rendering order for day-grouped views and exports.
var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

type timetableLister interface {
	ListByBatch(ctx context.Context, batchID int64, academicYear, semester int) ([]models.TimetableDetail, error)
}

type batchFinder interface {
	FindBatch(ctx context.Context, batchID int64) (*models.Batch, error)
}

// TimetableService serves read and export views of a persisted schedule.
type TimetableService struct {
	batches   batchFinder
	timetable timetableLister
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
	title     string
}

// NewTimetableService wires view dependencies.
func NewTimetableService(batches batchFinder, timetable timetableLister, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger, title string) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Batch Timetable"
	}
	return &TimetableService{
		batches:   batches,
		timetable: timetable,
		csv:       csv,
		pdf:       pdf,
		logger:    logger,
		title:     title,
	}
}

// View returns the persisted schedule grouped by weekday. All five
// weekdays are present even when empty so clients can render a full grid.
func (s *TimetableService) View(ctx context.Context, batchID int64, academicYear, semester int) (*dto.BatchTimetable, error) {
	entries, err := s.load(ctx, batchID, academicYear, semester)
	if err != nil {
		return nil, err
	}

	days := make(map[string][]models.TimetableDetail, len(weekdayNames))
	for _, name := range weekdayNames {
		days[name] = []models.TimetableDetail{}
	}
	for _, entry := range entries {
		name := entry.DayName()
		days[name] = append(days[name], entry)
	}

	return &dto.BatchTimetable{
		BatchID:      batchID,
		AcademicYear: academicYear,
		Semester:     semester,
		Days:         days,
	}, nil
}

// Export renders the schedule as a downloadable document. Supported
// formats are "csv" and "pdf"; anything else is a validation error.
func (s *TimetableService) Export(ctx context.Context, batchID int64, academicYear, semester int, format string) ([]byte, string, string, error) {
	entries, err := s.load(ctx, batchID, academicYear, semester)
	if err != nil {
		return nil, "", "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Day", "Period", "Time", "Subject", "Faculty", "Classroom"},
		Rows:    make([]map[string]string, 0, len(entries)),
	}
	for _, entry := range entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":       entry.DayName(),
			"Period":    entry.PeriodName,
			"Time":      fmt.Sprintf("%s-%s", entry.StartTime, entry.EndTime),
			"Subject":   entry.SubjectName,
			"Faculty":   entry.FacultyName,
			"Classroom": entry.ClassroomName,
		})
	}

	switch strings.ToLower(format) {
	case "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", fmt.Sprintf("timetable-batch-%d.csv", batchID), nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, fmt.Sprintf("%s %d/%d", s.title, academicYear, semester))
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", fmt.Sprintf("timetable-batch-%d.pdf", batchID), nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *TimetableService) load(ctx context.Context, batchID int64, academicYear, semester int) ([]models.TimetableDetail, error) {
	if _, err := s.batches.FindBatch(ctx, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("batch %d not found", batchID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	entries, err := s.timetable.ListByBatch(ctx, batchID, academicYear, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return entries, nil
}
