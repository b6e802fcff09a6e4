package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestIsClassroomSuitable(t *testing.T) {
	regular := models.Classroom{ID: 1, Name: "Room 101", Type: models.ClassroomTypeRegular, Capacity: 60}
	lab := models.Classroom{ID: 2, Name: "Physics Lab", Type: models.ClassroomTypeLab, Capacity: 30}
	auditorium := models.Classroom{ID: 3, Name: "Main Hall", Type: models.ClassroomTypeAuditorium, Capacity: 200}
	bigRegular := models.Classroom{ID: 4, Name: "Room 201", Type: models.ClassroomTypeRegular, Capacity: 120}

	cases := []struct {
		name      string
		classroom models.Classroom
		subject   string
		want      bool
	}{
		{"lab subject needs lab room", lab, "Computer Lab", true},
		{"lab subject rejects regular room", regular, "Chemistry Lab", false},
		{"computer keyword routes to lab", lab, "Computer Science", true},
		{"computer keyword rejects auditorium", auditorium, "Computer Science", false},
		{"seminar accepts auditorium", auditorium, "Research Seminar", true},
		{"seminar accepts large regular room", bigRegular, "Presentation Skills", true},
		{"seminar rejects small regular room", regular, "Presentation Skills", false},
		{"plain subject accepts regular room", regular, "Mathematics", true},
		{"plain subject accepts lab room", lab, "Mathematics", true},
		{"plain subject rejects auditorium", auditorium, "Mathematics", false},
		{"matching is case insensitive", lab, "COMPUTER NETWORKS", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isClassroomSuitable(tc.classroom, tc.subject))
		})
	}
}

func TestIsFacultyAvailable(t *testing.T) {
	faculty := models.Faculty{ID: 7, Name: "Dr. Rao"}
	slot := models.TimeSlot{ID: 11, DayOfWeek: 2, StartTime: "09:00", EndTime: "10:00"}

	t.Run("free faculty is available", func(t *testing.T) {
		snap := &models.SchedulingSnapshot{}
		assert.True(t, isFacultyAvailable(faculty, slot, snap, newRunCommitments()))
	})

	t.Run("committed slot blocks", func(t *testing.T) {
		snap := &models.SchedulingSnapshot{}
		commitments := newRunCommitments()
		commitments.commit(faculty.ID, 1, slot)
		assert.False(t, isFacultyAvailable(faculty, slot, snap, commitments))
	})

	t.Run("day scoped constraint blocks whole day", func(t *testing.T) {
		snap := &models.SchedulingSnapshot{Constraints: []models.Constraint{
			models.FacultyUnavailableConstraint{FacultyID: faculty.ID, DayOfWeek: 2},
		}}
		assert.False(t, isFacultyAvailable(faculty, slot, snap, newRunCommitments()))

		otherDay := models.TimeSlot{ID: 12, DayOfWeek: 3}
		assert.True(t, isFacultyAvailable(faculty, otherDay, snap, newRunCommitments()))
	})

	t.Run("slot scoped constraint blocks only that slot", func(t *testing.T) {
		snap := &models.SchedulingSnapshot{Constraints: []models.Constraint{
			models.FacultyUnavailableConstraint{FacultyID: faculty.ID, TimeSlotID: slot.ID},
		}}
		assert.False(t, isFacultyAvailable(faculty, slot, snap, newRunCommitments()))

		otherSlot := models.TimeSlot{ID: 12, DayOfWeek: 2}
		assert.True(t, isFacultyAvailable(faculty, otherSlot, snap, newRunCommitments()))
	})

	t.Run("constraint for another faculty is ignored", func(t *testing.T) {
		snap := &models.SchedulingSnapshot{Constraints: []models.Constraint{
			models.FacultyUnavailableConstraint{FacultyID: 99, DayOfWeek: 2},
		}}
		assert.True(t, isFacultyAvailable(faculty, slot, snap, newRunCommitments()))
	})

	t.Run("any approved leave disqualifies for the whole run", func(t *testing.T) {
		// the leave date is far from the slot's weekday on purpose
		snap := &models.SchedulingSnapshot{Leaves: []models.FacultyLeave{
			{FacultyID: faculty.ID, LeaveDate: time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)},
		}}
		assert.False(t, isFacultyAvailable(faculty, slot, snap, newRunCommitments()))
	})
}

func TestRunCommitmentsDayCap(t *testing.T) {
	commitments := newRunCommitments()
	for i := 0; i < maxClassesPerDay; i++ {
		commitments.commit(1, 1, models.TimeSlot{ID: int64(i + 1), DayOfWeek: 1})
	}
	assert.True(t, commitments.dayFull(1))
	assert.False(t, commitments.dayFull(2))
}

func TestRunCommitmentsTracking(t *testing.T) {
	commitments := newRunCommitments()
	slot := models.TimeSlot{ID: 5, DayOfWeek: 3}
	commitments.commit(7, 2, slot)

	assert.True(t, commitments.slotUsed(5))
	assert.True(t, commitments.facultyBusy(7, 5))
	assert.True(t, commitments.classroomBusy(2, 5))
	assert.False(t, commitments.facultyBusy(8, 5))
	assert.False(t, commitments.classroomBusy(3, 5))
}
