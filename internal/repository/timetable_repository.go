package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// TimetableRepository handles persistence for generated timetable entries.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new repository instance.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Clear removes every entry for the batch/year/semester scope and returns
// the number of rows deleted.
func (r *TimetableRepository) Clear(ctx context.Context, batchID int64, academicYear, semester int) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM timetable WHERE batch_id = $1 AND academic_year = $2 AND semester = $3",
		batchID, academicYear, semester,
	)
	if err != nil {
		return 0, fmt.Errorf("clear timetable for batch %d: %w", batchID, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear timetable rows affected: %w", err)
	}
	return deleted, nil
}

// Insert persists a single entry, minting its id and created_at.
func (r *TimetableRepository) Insert(ctx context.Context, entry *models.TimetableEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO timetable (id, batch_id, subject_id, faculty_id, classroom_id, time_slot_id, academic_year, semester, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.BatchID, entry.SubjectID, entry.FacultyID, entry.ClassroomID,
		entry.TimeSlotID, entry.AcademicYear, entry.Semester, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert timetable entry: %w", err)
	}
	return nil
}

// ListByBatch returns the persisted schedule joined with display columns,
// ordered by day then start time.
func (r *TimetableRepository) ListByBatch(ctx context.Context, batchID int64, academicYear, semester int) ([]models.TimetableDetail, error) {
	query := `SELECT t.id, t.batch_id, t.subject_id, s.name AS subject_name, bs.hours_per_week AS required_hours,
			t.faculty_id, f.name AS faculty_name, t.classroom_id, c.name AS classroom_name,
			t.time_slot_id, ts.day_of_week, ts.start_time, ts.end_time, ts.period_name,
			t.academic_year, t.semester
		FROM timetable t
		JOIN subjects s ON t.subject_id = s.id
		JOIN batch_subjects bs ON bs.batch_id = t.batch_id AND bs.subject_id = t.subject_id
		JOIN faculty f ON t.faculty_id = f.id
		JOIN classrooms c ON t.classroom_id = c.id
		JOIN time_slots ts ON t.time_slot_id = ts.id
		WHERE t.batch_id = $1
		  AND t.academic_year = $2
		  AND t.semester = $3
		ORDER BY ts.day_of_week, ts.start_time`
	var details []models.TimetableDetail
	if err := r.db.SelectContext(ctx, &details, query, batchID, academicYear, semester); err != nil {
		return nil, fmt.Errorf("list timetable for batch %d: %w", batchID, err)
	}
	return details, nil
}

// DailyLoad aggregates scheduled period counts per weekday, lightest day
// first.
func (r *TimetableRepository) DailyLoad(ctx context.Context, batchID int64) ([]models.DayLoad, error) {
	query := `SELECT ts.day_of_week, COUNT(*) AS count
		FROM timetable t
		JOIN time_slots ts ON t.time_slot_id = ts.id
		WHERE t.batch_id = $1
		GROUP BY ts.day_of_week
		ORDER BY count`
	var loads []models.DayLoad
	if err := r.db.SelectContext(ctx, &loads, query, batchID); err != nil {
		return nil, fmt.Errorf("daily load for batch %d: %w", batchID, err)
	}
	return loads, nil
}

// OverloadedFaculty returns faculty teaching more than threshold periods for
// the batch.
func (r *TimetableRepository) OverloadedFaculty(ctx context.Context, batchID int64, threshold int) ([]models.FacultyLoad, error) {
	query := `SELECT f.id AS faculty_id, f.name, COUNT(*) AS count
		FROM timetable t
		JOIN faculty f ON t.faculty_id = f.id
		WHERE t.batch_id = $1
		GROUP BY f.id, f.name
		HAVING COUNT(*) > $2
		ORDER BY count DESC`
	var loads []models.FacultyLoad
	if err := r.db.SelectContext(ctx, &loads, query, batchID, threshold); err != nil {
		return nil, fmt.Errorf("faculty workload for batch %d: %w", batchID, err)
	}
	return loads, nil
}
