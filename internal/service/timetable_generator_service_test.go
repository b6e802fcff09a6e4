package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type snapshotProviderStub struct {
	snapshot *models.SchedulingSnapshot
	err      error
}

func (s snapshotProviderStub) LoadSnapshot(_ context.Context, _ int64) (*models.SchedulingSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

type timetableStoreStub struct {
	clears   int
	inserted []models.TimetableEntry
	failFor  int64
}

func (s *timetableStoreStub) Clear(_ context.Context, _ int64, _, _ int) (int64, error) {
	s.clears++
	cleared := int64(len(s.inserted))
	s.inserted = s.inserted[:0]
	return cleared, nil
}

func (s *timetableStoreStub) Insert(_ context.Context, entry *models.TimetableEntry) error {
	if s.failFor != 0 && entry.TimeSlotID == s.failFor {
		return errors.New("insert failed")
	}
	s.inserted = append(s.inserted, *entry)
	return nil
}

// testSnapshot builds a batch with two weekdays of three slots each:
// Mathematics needs 3 periods, Physics Lab needs 2.
func testSnapshot() *models.SchedulingSnapshot {
	return &models.SchedulingSnapshot{
		Batch: models.Batch{ID: 1, Name: "CSE-2026-A"},
		Subjects: []models.CurriculumSubject{
			{ID: 1, Name: "Mathematics", HoursPerWeek: 3},
			{ID: 2, Name: "Physics Lab", HoursPerWeek: 2},
		},
		Faculty: []models.Faculty{
			{ID: 10, Name: "Dr. Rao", Subjects: []models.FacultySubject{
				{SubjectID: 1, PreferenceLevel: 1},
			}},
			{ID: 11, Name: "Dr. Iyer", Subjects: []models.FacultySubject{
				{SubjectID: 1, PreferenceLevel: 2},
				{SubjectID: 2, PreferenceLevel: 1},
			}},
		},
		Classrooms: []models.Classroom{
			{ID: 100, Name: "Room 101", Type: models.ClassroomTypeRegular, Capacity: 60},
			{ID: 101, Name: "Physics Lab", Type: models.ClassroomTypeLab, Capacity: 30},
		},
		TimeSlots: []models.TimeSlot{
			{ID: 1, DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", PeriodName: "P1"},
			{ID: 2, DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00", PeriodName: "P2"},
			{ID: 3, DayOfWeek: 1, StartTime: "11:00", EndTime: "12:00", PeriodName: "P3"},
			{ID: 4, DayOfWeek: 2, StartTime: "09:00", EndTime: "10:00", PeriodName: "P1"},
			{ID: 5, DayOfWeek: 2, StartTime: "10:00", EndTime: "11:00", PeriodName: "P2"},
			{ID: 6, DayOfWeek: 2, StartTime: "11:00", EndTime: "12:00", PeriodName: "P3"},
		},
	}
}

func newGeneratorFixture(snapshot *models.SchedulingSnapshot, store *timetableStoreStub) *TimetableGeneratorService {
	return NewTimetableGeneratorService(
		snapshotProviderStub{snapshot: snapshot}, store, nil, nil, nil, nil, zap.NewNop(),
		TimetableGeneratorConfig{DefaultAcademicYear: 2026, DefaultSemester: 1, MaxOptions: 10},
	)
}

func TestGenerateFullSchedule(t *testing.T) {
	store := &timetableStoreStub{}
	svc := newGeneratorFixture(testSnapshot(), store)

	resp, err := svc.Generate(context.Background(), 1, dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	assert.Equal(t, 5, resp.Entries)
	assert.Equal(t, 100, resp.Statistics.CompletionRate)
	assert.Empty(t, resp.Unscheduled)
	assert.Equal(t, 1, store.clears)
	assert.Len(t, store.inserted, 5)

	perSubject := map[int64]int{}
	usedSlots := map[int64]bool{}
	for _, entry := range resp.Schedule {
		perSubject[entry.SubjectID]++
		assert.False(t, usedSlots[entry.TimeSlotID], "slot %d double booked", entry.TimeSlotID)
		usedSlots[entry.TimeSlotID] = true
		assert.Equal(t, 2026, entry.AcademicYear)
		assert.Equal(t, 1, entry.Semester)
	}
	assert.Equal(t, 3, perSubject[1])
	assert.Equal(t, 2, perSubject[2])
}

func TestGenerateRoutesLabSubjectToLabRoom(t *testing.T) {
	store := &timetableStoreStub{}
	svc := newGeneratorFixture(testSnapshot(), store)

	resp, err := svc.Generate(context.Background(), 1, dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	for _, entry := range resp.Schedule {
		if entry.SubjectID == 2 {
			assert.Equal(t, int64(101), entry.ClassroomID, "lab subject must land in the lab room")
		}
	}
}

func TestGenerateIsIdempotentAcrossRuns(t *testing.T) {
	store := &timetableStoreStub{}
	svc := newGeneratorFixture(testSnapshot(), store)

	first, err := svc.Generate(context.Background(), 1, dto.GenerateTimetableRequest{})
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), 1, dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	assert.Equal(t, first.Entries, second.Entries, "regeneration replaces, never accumulates")
	assert.Equal(t, 2, store.clears)
	assert.Len(t, store.inserted, second.Entries)
}

func TestGenerateNoSuitableClassroom(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Subjects = []models.CurriculumSubject{{ID: 1, Name: "Mathematics", HoursPerWeek: 3}}
	snapshot.Classrooms = []models.Classroom{
		{ID: 102, Name: "Small Hall", Type: models.ClassroomTypeAuditorium, Capacity: 50},
	}
	store := &timetableStoreStub{}
	svc := newGeneratorFixture(snapshot, store)

	resp, err := svc.Generate(context.Background(), 1, dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	assert.Zero(t, resp.Entries)
	assert.Equal(t, 0, resp.Statistics.CompletionRate)
	require.Len(t, resp.Unscheduled, 3)
	assert.Equal(t, "no free slot, faculty and classroom combination", resp.Unscheduled[0].Reason)
}

func TestGenerateHonoursFixedSlot(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Constraints = []models.Constraint{
		models.FixedSlotConstraint{SubjectID: 2, TimeSlotID: 5},
	}
	store := &timetableStoreStub{}
	svc := newGeneratorFixture(snapshot, store)

	resp, err := svc.Generate(context.Background(), 1, dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	var fixedHits int
	for _, entry := range resp.Schedule {
		if entry.SubjectID == 2 && entry.TimeSlotID == 5 {
			fixedHits++
			assert.True(t, entry.Meta.IsFixedSlot)
		}
	}
	assert.Equal(t, 1, fixedHits, "exactly one physics period pinned to slot 5")

	// the second physics period also targets slot 5, finds it taken and is
	// dropped rather than retried elsewhere
	require.Len(t, resp.Unscheduled, 1)
	assert.Equal(t, int64(2), resp.Unscheduled[0].SubjectID)
	assert.Equal(t, "fixed slot unavailable", resp.Unscheduled[0].Reason)
}

func TestGenerateBlanketLeaveDisqualifies(t *testing.T) {
	snapshot := testSnapshot()
	// Dr. Iyer is the only physics-eligible faculty; one approved leave on
	// any date removes them from the whole run
	snapshot.Leaves = []models.FacultyLeave{
		{FacultyID: 11, LeaveDate: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)},
	}
	store := &timetableStoreStub{}
	svc := newGeneratorFixture(snapshot, store)

	resp, err := svc.Generate(context.Background(), 1, dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	for _, entry := range resp.Schedule {
		assert.NotEqual(t, int64(11), entry.FacultyID)
		assert.NotEqual(t, int64(2), entry.SubjectID)
	}
	assert.Len(t, resp.Unscheduled, 2)
	assert.Less(t, resp.Statistics.CompletionRate, 100)
}

func TestGenerateNoEligibleFaculty(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Faculty = snapshot.Faculty[:1] // only Dr. Rao, who cannot teach physics
	store := &timetableStoreStub{}
	svc := newGeneratorFixture(snapshot, store)

	resp, err := svc.Generate(context.Background(), 1, dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	require.Len(t, resp.Unscheduled, 2)
	for _, missing := range resp.Unscheduled {
		assert.Equal(t, "no eligible faculty", missing.Reason)
	}
}

func TestGenerateBatchNotFound(t *testing.T) {
	svc := NewTimetableGeneratorService(
		snapshotProviderStub{err: sql.ErrNoRows}, &timetableStoreStub{}, nil, nil, nil, nil, zap.NewNop(),
		TimetableGeneratorConfig{},
	)

	_, err := svc.Generate(context.Background(), 42, dto.GenerateTimetableRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGenerateRejectsInvalidScope(t *testing.T) {
	svc := newGeneratorFixture(testSnapshot(), &timetableStoreStub{})

	_, err := svc.Generate(context.Background(), 1, dto.GenerateTimetableRequest{Semester: 9})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGenerateSaveFailureIsBestEffort(t *testing.T) {
	store := &timetableStoreStub{failFor: 1}
	svc := newGeneratorFixture(testSnapshot(), store)

	resp, err := svc.Generate(context.Background(), 1, dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	assert.Equal(t, 4, resp.Entries)
	assert.Len(t, resp.Schedule, 4)
	for _, entry := range resp.Schedule {
		assert.NotEqual(t, int64(1), entry.TimeSlotID)
	}
}

func TestGenerateMultipleOrdersByScore(t *testing.T) {
	store := &timetableStoreStub{}
	svc := newGeneratorFixture(testSnapshot(), store)

	options, err := svc.GenerateMultiple(context.Background(), 1, dto.GenerateMultipleRequest{Count: 3})
	require.NoError(t, err)
	require.Len(t, options, 3)

	assert.Equal(t, 3, store.clears, "each attempt clears the previous one")
	for i := 1; i < len(options); i++ {
		assert.GreaterOrEqual(t, options[i-1].Score, options[i].Score)
	}
	seen := map[int]bool{}
	for _, option := range options {
		seen[option.OptionNumber] = true
		assert.Equal(t, 5, option.Entries)
	}
	assert.Len(t, seen, 3, "option numbers survive the sort")
}

func TestGenerateMultipleDefaultsAndCaps(t *testing.T) {
	store := &timetableStoreStub{}
	svc := NewTimetableGeneratorService(
		snapshotProviderStub{snapshot: testSnapshot()}, store, nil, nil, nil, nil, zap.NewNop(),
		TimetableGeneratorConfig{MaxOptions: 2},
	)

	options, err := svc.GenerateMultiple(context.Background(), 1, dto.GenerateMultipleRequest{Count: 5})
	require.NoError(t, err)
	assert.Len(t, options, 2, "count is capped by configuration")

	options, err = svc.GenerateMultiple(context.Background(), 1, dto.GenerateMultipleRequest{})
	require.NoError(t, err)
	assert.Len(t, options, 2)
}

func TestPreviewReturnsSnapshotPool(t *testing.T) {
	snapshot := testSnapshot()
	svc := newGeneratorFixture(snapshot, &timetableStoreStub{})

	preview, err := svc.Preview(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Batch, preview.Batch)
	assert.Len(t, preview.Subjects, 2)
	assert.Len(t, preview.Faculty, 2)
	assert.Len(t, preview.Classrooms, 2)
	assert.Len(t, preview.TimeSlots, 6)
}
