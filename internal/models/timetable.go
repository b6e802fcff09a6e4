package models

import "time"

// TimetableEntry is one scheduled period: a (faculty, classroom, time slot)
// triple assigned to a batch subject for an academic year and semester.
type TimetableEntry struct {
	ID           string    `db:"id" json:"id"`
	BatchID      int64     `db:"batch_id" json:"batch_id"`
	SubjectID    int64     `db:"subject_id" json:"subject_id"`
	FacultyID    int64     `db:"faculty_id" json:"faculty_id"`
	ClassroomID  int64     `db:"classroom_id" json:"classroom_id"`
	TimeSlotID   int64     `db:"time_slot_id" json:"time_slot_id"`
	AcademicYear int       `db:"academic_year" json:"academic_year"`
	Semester     int       `db:"semester" json:"semester"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Meta TimetableEntryMeta `db:"-" json:"metadata"`
}

// TimetableEntryMeta carries display fields derived at generation time.
type TimetableEntryMeta struct {
	SubjectName     string `json:"subject_name"`
	FacultyName     string `json:"faculty_name"`
	ClassroomName   string `json:"classroom_name"`
	DayName         string `json:"day_name"`
	Time            string `json:"time"`
	PreferenceLevel int    `json:"preference_level"`
	IsFixedSlot     bool   `json:"is_fixed_slot,omitempty"`
}

// TimetableDetail is a persisted entry joined with its display columns,
// as returned by list and analysis queries.
type TimetableDetail struct {
	ID            string `db:"id" json:"id"`
	BatchID       int64  `db:"batch_id" json:"batch_id"`
	SubjectID     int64  `db:"subject_id" json:"subject_id"`
	SubjectName   string `db:"subject_name" json:"subject_name"`
	RequiredHours int    `db:"required_hours" json:"required_hours"`
	FacultyID     int64  `db:"faculty_id" json:"faculty_id"`
	FacultyName   string `db:"faculty_name" json:"faculty_name"`
	ClassroomID   int64  `db:"classroom_id" json:"classroom_id"`
	ClassroomName string `db:"classroom_name" json:"classroom_name"`
	TimeSlotID    int64  `db:"time_slot_id" json:"time_slot_id"`
	DayOfWeek     int    `db:"day_of_week" json:"day_of_week"`
	StartTime     string `db:"start_time" json:"start_time"`
	EndTime       string `db:"end_time" json:"end_time"`
	PeriodName    string `db:"period_name" json:"period_name"`
	AcademicYear  int    `db:"academic_year" json:"academic_year"`
	Semester      int    `db:"semester" json:"semester"`
}

// DayName returns the weekday name of the detail row.
func (d TimetableDetail) DayName() string {
	return DayName(d.DayOfWeek)
}

// DayLoad aggregates scheduled periods per weekday for a batch.
type DayLoad struct {
	DayOfWeek int `db:"day_of_week" json:"day_of_week"`
	Count     int `db:"count" json:"count"`
}

// FacultyLoad aggregates scheduled periods per faculty member for a batch.
type FacultyLoad struct {
	FacultyID int64  `db:"faculty_id" json:"faculty_id"`
	Name      string `db:"name" json:"name"`
	Count     int    `db:"count" json:"count"`
}
