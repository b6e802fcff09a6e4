package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
)

type timetableListerStub struct {
	details []models.TimetableDetail
}

func (s timetableListerStub) ListByBatch(_ context.Context, _ int64, _, _ int) ([]models.TimetableDetail, error) {
	return s.details, nil
}

func newTimetableServiceFixture(details []models.TimetableDetail) *TimetableService {
	batches := curriculumProviderStub{batch: &models.Batch{ID: 1, Name: "CSE-2026-A"}}
	return NewTimetableService(batches, timetableListerStub{details: details}, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop(), "Weekly Timetable")
}

func sampleDetails() []models.TimetableDetail {
	return []models.TimetableDetail{
		{SubjectName: "Mathematics", FacultyName: "Dr. Rao", ClassroomName: "Room 101", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", PeriodName: "P1"},
		{SubjectName: "Physics", FacultyName: "Dr. Iyer", ClassroomName: "Room 102", DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00", PeriodName: "P2"},
		{SubjectName: "Mathematics", FacultyName: "Dr. Rao", ClassroomName: "Room 101", DayOfWeek: 3, StartTime: "09:00", EndTime: "10:00", PeriodName: "P1"},
	}
}

func TestViewGroupsByWeekday(t *testing.T) {
	svc := newTimetableServiceFixture(sampleDetails())

	timetable, err := svc.View(context.Background(), 1, 2026, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), timetable.BatchID)
	require.Len(t, timetable.Days, 5, "all weekdays present even when empty")
	assert.Len(t, timetable.Days["Monday"], 2)
	assert.Len(t, timetable.Days["Wednesday"], 1)
	assert.Empty(t, timetable.Days["Tuesday"])
	assert.Empty(t, timetable.Days["Friday"])
}

func TestExportCSV(t *testing.T) {
	svc := newTimetableServiceFixture(sampleDetails())

	payload, contentType, filename, err := svc.Export(context.Background(), 1, 2026, 1, "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "timetable-batch-1.csv", filename)

	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "Day,Period,Time,Subject,Faculty,Classroom"))
	assert.Contains(t, body, "Monday,P1,09:00-10:00,Mathematics,Dr. Rao,Room 101")
}

func TestExportPDF(t *testing.T) {
	svc := newTimetableServiceFixture(sampleDetails())

	payload, contentType, filename, err := svc.Export(context.Background(), 1, 2026, 1, "pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "timetable-batch-1.pdf", filename)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := newTimetableServiceFixture(nil)

	_, _, _, err := svc.Export(context.Background(), 1, 2026, 1, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
