package models

import "time"

// FacultyLeave is an approved absence record. The generator currently treats
// any approved leave as disqualifying the faculty member for the whole run,
// regardless of the leave date.
type FacultyLeave struct {
	FacultyID int64     `db:"faculty_id" json:"faculty_id"`
	LeaveDate time.Time `db:"leave_date" json:"leave_date"`
}
