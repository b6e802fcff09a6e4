package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// SchedulingDataRepository loads the immutable snapshot a generation run
// works from.
type SchedulingDataRepository struct {
	db *sqlx.DB
}

// NewSchedulingDataRepository creates a new repository instance.
func NewSchedulingDataRepository(db *sqlx.DB) *SchedulingDataRepository {
	return &SchedulingDataRepository{db: db}
}

// FindBatch returns the batch record or sql.ErrNoRows.
func (r *SchedulingDataRepository) FindBatch(ctx context.Context, batchID int64) (*models.Batch, error) {
	var batch models.Batch
	query := "SELECT id, name, year, semester, student_count, department, created_at FROM batches WHERE id = $1"
	if err := r.db.GetContext(ctx, &batch, query, batchID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find batch %d: %w", batchID, err)
	}
	return &batch, nil
}

// ListCurriculum returns the batch's subjects with their per-batch weekly
// hours, most demanding first.
func (r *SchedulingDataRepository) ListCurriculum(ctx context.Context, batchID int64) ([]models.CurriculumSubject, error) {
	query := `SELECT s.id, s.name, s.code, bs.hours_per_week
		FROM subjects s
		JOIN batch_subjects bs ON s.id = bs.subject_id
		WHERE bs.batch_id = $1
		ORDER BY bs.hours_per_week DESC, s.id`
	var subjects []models.CurriculumSubject
	if err := r.db.SelectContext(ctx, &subjects, query, batchID); err != nil {
		return nil, fmt.Errorf("list curriculum for batch %d: %w", batchID, err)
	}
	return subjects, nil
}

// LoadSnapshot gathers everything the generator needs for one run. Returns
// sql.ErrNoRows when the batch does not exist.
func (r *SchedulingDataRepository) LoadSnapshot(ctx context.Context, batchID int64) (*models.SchedulingSnapshot, error) {
	batch, err := r.FindBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	subjects, err := r.ListCurriculum(ctx, batchID)
	if err != nil {
		return nil, err
	}

	faculty, err := r.listFaculty(ctx)
	if err != nil {
		return nil, err
	}

	classrooms, err := r.listClassrooms(ctx, batch.StudentCount)
	if err != nil {
		return nil, err
	}

	timeSlots, err := r.listTimeSlots(ctx)
	if err != nil {
		return nil, err
	}

	constraints, err := r.listActiveConstraints(ctx)
	if err != nil {
		return nil, err
	}

	leaves, err := r.listApprovedLeaves(ctx)
	if err != nil {
		return nil, err
	}

	return &models.SchedulingSnapshot{
		Batch:       *batch,
		Subjects:    subjects,
		Faculty:     faculty,
		Classrooms:  classrooms,
		TimeSlots:   timeSlots,
		Constraints: constraints,
		Leaves:      leaves,
	}, nil
}

func (r *SchedulingDataRepository) listFaculty(ctx context.Context) ([]models.Faculty, error) {
	var faculty []models.Faculty
	query := "SELECT id, name, email, phone, created_at FROM faculty ORDER BY id"
	if err := r.db.SelectContext(ctx, &faculty, query); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}

	eligibilityQuery := `SELECT fs.faculty_id, fs.subject_id, s.name AS subject_name, fs.preference_level
		FROM faculty_subjects fs
		JOIN subjects s ON fs.subject_id = s.id
		ORDER BY fs.faculty_id, fs.preference_level, fs.subject_id`
	var eligibilities []models.FacultySubject
	if err := r.db.SelectContext(ctx, &eligibilities, eligibilityQuery); err != nil {
		return nil, fmt.Errorf("list faculty subjects: %w", err)
	}

	byFaculty := make(map[int64][]models.FacultySubject, len(faculty))
	for _, e := range eligibilities {
		byFaculty[e.FacultyID] = append(byFaculty[e.FacultyID], e)
	}
	result := make([]models.Faculty, 0, len(faculty))
	for _, f := range faculty {
		f.Subjects = byFaculty[f.ID]
		if len(f.Subjects) == 0 {
			// faculty without any eligibility never participates in a run
			continue
		}
		result = append(result, f)
	}
	return result, nil
}

func (r *SchedulingDataRepository) listClassrooms(ctx context.Context, minCapacity int) ([]models.Classroom, error) {
	query := `SELECT id, name, capacity, type, building, floor, created_at
		FROM classrooms
		WHERE capacity >= $1
		ORDER BY type, capacity`
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query, minCapacity); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return classrooms, nil
}

func (r *SchedulingDataRepository) listTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	query := `SELECT id, day_of_week, start_time, end_time, period_name, is_break
		FROM time_slots
		WHERE is_break = FALSE
		  AND day_of_week BETWEEN 1 AND 5
		ORDER BY day_of_week, start_time`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

type constraintRow struct {
	Type       string         `db:"type"`
	EntityID   int64          `db:"entity_id"`
	DayOfWeek  sql.NullInt64  `db:"day_of_week"`
	TimeSlotID sql.NullInt64  `db:"time_slot_id"`
	Reason     sql.NullString `db:"reason"`
}

func (r *SchedulingDataRepository) listActiveConstraints(ctx context.Context) ([]models.Constraint, error) {
	query := `SELECT type, entity_id, day_of_week, time_slot_id, reason
		FROM scheduling_constraints
		WHERE is_active = TRUE
		ORDER BY id`
	var rows []constraintRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list constraints: %w", err)
	}

	constraints := make([]models.Constraint, 0, len(rows))
	for _, row := range rows {
		switch row.Type {
		case models.ConstraintTypeFixedSlot:
			constraints = append(constraints, models.FixedSlotConstraint{
				SubjectID:  row.EntityID,
				TimeSlotID: row.TimeSlotID.Int64,
				Reason:     row.Reason.String,
			})
		case models.ConstraintTypeFacultyUnavailable:
			constraints = append(constraints, models.FacultyUnavailableConstraint{
				FacultyID:  row.EntityID,
				DayOfWeek:  int(row.DayOfWeek.Int64),
				TimeSlotID: row.TimeSlotID.Int64,
				Reason:     row.Reason.String,
			})
		}
		// unknown types are ignored rather than failing the whole load
	}
	return constraints, nil
}

func (r *SchedulingDataRepository) listApprovedLeaves(ctx context.Context) ([]models.FacultyLeave, error) {
	query := `SELECT faculty_id, leave_date
		FROM faculty_leaves
		WHERE is_approved = TRUE
		  AND leave_date >= CURRENT_DATE`
	var leaves []models.FacultyLeave
	if err := r.db.SelectContext(ctx, &leaves, query); err != nil {
		return nil, fmt.Errorf("list faculty leaves: %w", err)
	}
	return leaves, nil
}
