package models

// Constraint kinds as stored in scheduling_constraints.type.
const (
	ConstraintTypeFixedSlot          = "fixed_slot"
	ConstraintTypeFacultyUnavailable = "faculty_unavailable"
)

// Constraint is a tagged scheduling restriction. Only the active variants
// reach the engine; rows with is_active = FALSE are filtered at load time.
type Constraint interface {
	constraint()
}

// FixedSlotConstraint pins a subject to one exact time slot.
type FixedSlotConstraint struct {
	SubjectID  int64  `json:"subject_id"`
	TimeSlotID int64  `json:"time_slot_id"`
	Reason     string `json:"reason"`
}

func (FixedSlotConstraint) constraint() {}

// FacultyUnavailableConstraint blocks a faculty member from a whole weekday
// (DayOfWeek set) or a single slot (TimeSlotID set). A zero value means the
// dimension is unset.
type FacultyUnavailableConstraint struct {
	FacultyID  int64  `json:"faculty_id"`
	DayOfWeek  int    `json:"day_of_week,omitempty"`
	TimeSlotID int64  `json:"time_slot_id,omitempty"`
	Reason     string `json:"reason"`
}

func (FacultyUnavailableConstraint) constraint() {}
