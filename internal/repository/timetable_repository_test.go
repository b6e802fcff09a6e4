package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryClear(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable WHERE batch_id = $1 AND academic_year = $2 AND semester = $3")).
		WithArgs(int64(1), 2026, 1).
		WillReturnResult(sqlmock.NewResult(0, 12))

	deleted, err := repo.Clear(context.Background(), 1, 2026, 1)
	require.NoError(t, err)
	require.Equal(t, int64(12), deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryInsertMintsID(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.TimetableEntry{
		BatchID:      1,
		SubjectID:    2,
		FacultyID:    10,
		ClassroomID:  100,
		TimeSlotID:   5,
		AcademicYear: 2026,
		Semester:     1,
	}
	require.NoError(t, repo.Insert(context.Background(), entry))
	require.NotEmpty(t, entry.ID)
	require.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListByBatch(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "batch_id", "subject_id", "subject_name", "required_hours",
		"faculty_id", "faculty_name", "classroom_id", "classroom_name",
		"time_slot_id", "day_of_week", "start_time", "end_time", "period_name",
		"academic_year", "semester",
	}).AddRow("e-1", 1, 2, "Mathematics", 4, 10, "Dr. Rao", 100, "Room 101", 5, 1, "09:00", "10:00", "P1", 2026, 1)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT t.id, t.batch_id, t.subject_id")).
		WithArgs(int64(1), 2026, 1).
		WillReturnRows(rows)

	details, err := repo.ListByBatch(context.Background(), 1, 2026, 1)
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.Equal(t, "Mathematics", details[0].SubjectName)
	require.Equal(t, "Monday", details[0].DayName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDailyLoad(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	rows := sqlmock.NewRows([]string{"day_of_week", "count"}).
		AddRow(5, 2).
		AddRow(1, 6)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT ts.day_of_week, COUNT(*) AS count")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	loads, err := repo.DailyLoad(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, loads, 2)
	require.Equal(t, 5, loads[0].DayOfWeek)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryOverloadedFaculty(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	rows := sqlmock.NewRows([]string{"faculty_id", "name", "count"}).
		AddRow(10, "Dr. Rao", 18)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT f.id AS faculty_id, f.name, COUNT(*) AS count")).
		WithArgs(int64(1), 15).
		WillReturnRows(rows)

	loads, err := repo.OverloadedFaculty(context.Background(), 1, 15)
	require.NoError(t, err)
	require.Len(t, loads, 1)
	require.Equal(t, "Dr. Rao", loads[0].Name)
	require.Equal(t, 18, loads[0].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}
