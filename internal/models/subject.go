package models

import "time"

// Subject represents an academic subject.
type Subject struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Code         string    `db:"code" json:"code"`
	HoursPerWeek int       `db:"hours_per_week" json:"hours_per_week"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CurriculumSubject is a subject paired with the weekly hours a specific
// batch requires, which may differ from the subject's own default.
type CurriculumSubject struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Code         string `db:"code" json:"code"`
	HoursPerWeek int    `db:"hours_per_week" json:"hours_per_week"`
}
