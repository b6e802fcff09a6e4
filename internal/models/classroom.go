package models

import "time"

// Classroom types understood by the suitability rules.
const (
	ClassroomTypeRegular    = "regular"
	ClassroomTypeLab        = "lab"
	ClassroomTypeAuditorium = "auditorium"
)

// Classroom represents a teaching room.
type Classroom struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Type      string    `db:"type" json:"type"`
	Building  string    `db:"building" json:"building"`
	Floor     int       `db:"floor" json:"floor"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
