package service

import (
	"strings"

	"github.com/noah-isme/timetable-api/internal/models"
)

// maxClassesPerDay caps committed periods per weekday for a batch within a
// single generation run.
const maxClassesPerDay = 8

// runCommitments tracks provisional slot, faculty and classroom usage made
// during one generation run. Later placements must respect commitments made
// by earlier ones.
type runCommitments struct {
	usedSlots      map[int64]bool
	facultySlots   map[int64]map[int64]bool
	classroomSlots map[int64]map[int64]bool
	dayLoad        map[int]int
}

func newRunCommitments() *runCommitments {
	return &runCommitments{
		usedSlots:      make(map[int64]bool),
		facultySlots:   make(map[int64]map[int64]bool),
		classroomSlots: make(map[int64]map[int64]bool),
		dayLoad:        make(map[int]int),
	}
}

func (c *runCommitments) slotUsed(slotID int64) bool {
	return c.usedSlots[slotID]
}

func (c *runCommitments) facultyBusy(facultyID, slotID int64) bool {
	return c.facultySlots[facultyID][slotID]
}

func (c *runCommitments) classroomBusy(classroomID, slotID int64) bool {
	return c.classroomSlots[classroomID][slotID]
}

func (c *runCommitments) dayFull(dayOfWeek int) bool {
	return c.dayLoad[dayOfWeek] >= maxClassesPerDay
}

func (c *runCommitments) commit(facultyID, classroomID int64, slot models.TimeSlot) {
	c.usedSlots[slot.ID] = true
	if c.facultySlots[facultyID] == nil {
		c.facultySlots[facultyID] = make(map[int64]bool)
	}
	c.facultySlots[facultyID][slot.ID] = true
	if c.classroomSlots[classroomID] == nil {
		c.classroomSlots[classroomID] = make(map[int64]bool)
	}
	c.classroomSlots[classroomID][slot.ID] = true
	c.dayLoad[slot.DayOfWeek]++
}

// isFacultyAvailable reports whether the faculty member can take the slot
// given the snapshot's constraints and the run's commitments. Any approved
// leave record disqualifies the faculty member for the entire run; matching
// the leave date against the slot's weekday is deliberately not done.
func isFacultyAvailable(faculty models.Faculty, slot models.TimeSlot, snap *models.SchedulingSnapshot, commitments *runCommitments) bool {
	if commitments.facultyBusy(faculty.ID, slot.ID) {
		return false
	}

	for _, constraint := range snap.Constraints {
		unavailable, ok := constraint.(models.FacultyUnavailableConstraint)
		if !ok || unavailable.FacultyID != faculty.ID {
			continue
		}
		if unavailable.DayOfWeek != 0 && unavailable.DayOfWeek == slot.DayOfWeek {
			return false
		}
		if unavailable.TimeSlotID != 0 && unavailable.TimeSlotID == slot.ID {
			return false
		}
	}

	for _, leave := range snap.Leaves {
		if leave.FacultyID == faculty.ID {
			return false
		}
	}

	return true
}

// isClassroomSuitable applies the name-substring heuristics existing
// deployments depend on; reproduce them exactly.
func isClassroomSuitable(classroom models.Classroom, subjectName string) bool {
	name := strings.ToLower(subjectName)

	if strings.Contains(name, "lab") || strings.Contains(name, "computer") {
		return classroom.Type == models.ClassroomTypeLab
	}

	if strings.Contains(name, "presentation") || strings.Contains(name, "seminar") {
		return classroom.Type == models.ClassroomTypeAuditorium || classroom.Capacity >= 100
	}

	return classroom.Type == models.ClassroomTypeRegular || classroom.Type == models.ClassroomTypeLab
}
