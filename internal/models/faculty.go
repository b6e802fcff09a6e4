package models

import "time"

// Faculty represents a teaching staff member together with the subjects
// they are eligible to teach.
type Faculty struct {
	ID        int64            `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	Email     string           `db:"email" json:"email"`
	Phone     string           `db:"phone" json:"phone"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	Subjects  []FacultySubject `db:"-" json:"subjects"`
}

// FacultySubject links a faculty member to a subject with a preference
// level (1 = high, 3 = low). The level is tie-break metadata, not a hard
// ordering constraint.
type FacultySubject struct {
	FacultyID       int64  `db:"faculty_id" json:"-"`
	SubjectID       int64  `db:"subject_id" json:"subject_id"`
	SubjectName     string `db:"subject_name" json:"subject_name"`
	PreferenceLevel int    `db:"preference_level" json:"preference_level"`
}

// CanTeach reports whether the faculty member is eligible for the subject.
func (f Faculty) CanTeach(subjectID int64) bool {
	for _, s := range f.Subjects {
		if s.SubjectID == subjectID {
			return true
		}
	}
	return false
}

// PreferenceFor returns the preference level for a subject, or 0 when the
// faculty member is not eligible.
func (f Faculty) PreferenceFor(subjectID int64) int {
	for _, s := range f.Subjects {
		if s.SubjectID == subjectID {
			return s.PreferenceLevel
		}
	}
	return 0
}
