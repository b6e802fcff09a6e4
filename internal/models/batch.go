package models

import "time"

// Batch represents a cohort of students sharing a curriculum and schedule.
type Batch struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Year         int       `db:"year" json:"year"`
	Semester     int       `db:"semester" json:"semester"`
	StudentCount int       `db:"student_count" json:"student_count"`
	Department   string    `db:"department" json:"department"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
