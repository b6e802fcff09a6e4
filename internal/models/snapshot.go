package models

// SchedulingSnapshot is everything a generation run needs, read once up
// front and treated as immutable for the rest of the run.
type SchedulingSnapshot struct {
	Batch       Batch               `json:"batch"`
	Subjects    []CurriculumSubject `json:"subjects"`
	Faculty     []Faculty           `json:"faculty"`
	Classrooms  []Classroom         `json:"classrooms"`
	TimeSlots   []TimeSlot          `json:"time_slots"`
	Constraints []Constraint        `json:"constraints"`
	Leaves      []FacultyLeave      `json:"faculty_leaves"`
}

// TotalRequiredHours sums weekly hours across the batch curriculum.
func (s *SchedulingSnapshot) TotalRequiredHours() int {
	total := 0
	for _, subject := range s.Subjects {
		total += subject.HoursPerWeek
	}
	return total
}

// FixedSlotFor returns the fixed-slot constraint for a subject, if any.
func (s *SchedulingSnapshot) FixedSlotFor(subjectID int64) (FixedSlotConstraint, bool) {
	for _, c := range s.Constraints {
		if fixed, ok := c.(FixedSlotConstraint); ok && fixed.SubjectID == subjectID {
			return fixed, true
		}
	}
	return FixedSlotConstraint{}, false
}

// TimeSlotByID resolves a slot id against the snapshot.
func (s *SchedulingSnapshot) TimeSlotByID(id int64) (TimeSlot, bool) {
	for _, slot := range s.TimeSlots {
		if slot.ID == id {
			return slot, true
		}
	}
	return TimeSlot{}, false
}
