package service

import (
	"math"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
)

// computeScheduleStats summarises a generated schedule against the batch
// curriculum. An empty curriculum yields a completion rate of 0.
func computeScheduleStats(schedule []models.TimetableEntry, subjects []models.CurriculumSubject) dto.ScheduleStatistics {
	stats := dto.ScheduleStatistics{
		TotalPeriods:      len(schedule),
		DailyDistribution: make(map[string]int),
		FacultyWorkload:   make(map[string]int),
	}

	subjectSet := make(map[int64]struct{})
	facultySet := make(map[int64]struct{})
	classroomSet := make(map[int64]struct{})
	for _, entry := range schedule {
		subjectSet[entry.SubjectID] = struct{}{}
		facultySet[entry.FacultyID] = struct{}{}
		classroomSet[entry.ClassroomID] = struct{}{}
		stats.DailyDistribution[entry.Meta.DayName]++
		stats.FacultyWorkload[entry.Meta.FacultyName]++
	}
	stats.SubjectsScheduled = len(subjectSet)
	stats.FacultyUtilized = len(facultySet)
	stats.ClassroomsUsed = len(classroomSet)

	totalRequired := 0
	for _, subject := range subjects {
		totalRequired += subject.HoursPerWeek
	}
	stats.CompletionRate = completionRate(len(schedule), totalRequired)

	return stats
}

// completionRate rounds 100*scheduled/required, guarding the empty
// curriculum case.
func completionRate(scheduled, required int) int {
	if required <= 0 {
		return 0
	}
	return int(math.Round(float64(scheduled) / float64(required) * 100))
}

// scoreSchedule ranks one generated candidate on a 0-100 scale: up to 40
// points for completion, up to 30 each for daily and faculty load balance.
func scoreSchedule(stats dto.ScheduleStatistics) int {
	score := float64(stats.CompletionRate) / 100 * 40
	score += math.Max(0, 30-variance(counts(stats.DailyDistribution)))
	score += math.Max(0, 30-variance(counts(stats.FacultyWorkload)))
	return int(math.Round(score))
}

func counts(m map[string]int) []int {
	values := make([]int, 0, len(m))
	for _, v := range m {
		values = append(values, v)
	}
	return values
}

func variance(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(len(values))
	var squared float64
	for _, v := range values {
		diff := float64(v) - mean
		squared += diff * diff
	}
	return squared / float64(len(values))
}
