package dto

import "github.com/noah-isme/timetable-api/internal/models"

// GenerateTimetableRequest selects the academic scope for a generation run.
type GenerateTimetableRequest struct {
	AcademicYear int `json:"academicYear" validate:"omitempty,min=2000,max=2100"`
	Semester     int `json:"semester" validate:"omitempty,min=1,max=8"`
}

// GenerateMultipleRequest asks for several independently generated options.
type GenerateMultipleRequest struct {
	AcademicYear int `json:"academicYear" validate:"omitempty,min=2000,max=2100"`
	Semester     int `json:"semester" validate:"omitempty,min=1,max=8"`
	Count        int `json:"count" validate:"omitempty,min=1,max=10"`
}

// ScheduleStatistics summarises one generated timetable.
type ScheduleStatistics struct {
	TotalPeriods      int            `json:"totalPeriods"`
	SubjectsScheduled int            `json:"subjectsScheduled"`
	FacultyUtilized   int            `json:"facultyUtilized"`
	ClassroomsUsed    int            `json:"classroomsUsed"`
	DailyDistribution map[string]int `json:"dailyDistribution"`
	FacultyWorkload   map[string]int `json:"facultyWorkload"`
	CompletionRate    int            `json:"completionRate"`
}

// UnscheduledPeriod reports one period-requirement the engine could not place.
type UnscheduledPeriod struct {
	SubjectID   int64  `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	Attempt     int    `json:"attempt"`
	Reason      string `json:"reason"`
}

// GenerateTimetableResponse is the outcome of a single generation run. A
// completion rate below 100 is a valid success, not an error.
type GenerateTimetableResponse struct {
	Message     string                  `json:"message"`
	Entries     int                     `json:"entries"`
	Schedule    []models.TimetableEntry `json:"schedule"`
	Statistics  ScheduleStatistics      `json:"statistics"`
	Unscheduled []UnscheduledPeriod     `json:"unscheduled,omitempty"`
}

// TimetableOption is one scored candidate from a multi-generation request.
type TimetableOption struct {
	OptionNumber int                     `json:"optionNumber"`
	Entries      int                     `json:"entries"`
	Schedule     []models.TimetableEntry `json:"schedule"`
	Statistics   ScheduleStatistics      `json:"statistics"`
	Score        int                     `json:"score"`
}

// SubjectShortfall reports a subject scheduled below its weekly requirement.
type SubjectShortfall struct {
	Subject   string `json:"subject"`
	Required  int    `json:"required"`
	Scheduled int    `json:"scheduled"`
	Missing   int    `json:"missing"`
}

// SubjectExcess reports a subject scheduled above its weekly requirement.
type SubjectExcess struct {
	Subject   string `json:"subject"`
	Required  int    `json:"required"`
	Scheduled int    `json:"scheduled"`
	Excess    int    `json:"excess"`
}

// ScheduleAnalysis compares a persisted schedule against the curriculum.
type ScheduleAnalysis struct {
	TotalScheduled  int                `json:"totalScheduled"`
	TotalRequired   int                `json:"totalRequired"`
	CompletionRate  int                `json:"completionRate"`
	MissingSubjects []SubjectShortfall `json:"missingSubjects"`
	OverScheduled   []SubjectExcess    `json:"overScheduled"`
	Recommendations []string           `json:"recommendations"`
}

// SchedulingPreview is the raw snapshot exposed for UI display before a run.
type SchedulingPreview struct {
	Batch      models.Batch               `json:"batch"`
	Subjects   []models.CurriculumSubject `json:"subjects"`
	Faculty    []models.Faculty           `json:"faculty"`
	Classrooms []models.Classroom         `json:"classrooms"`
	TimeSlots  []models.TimeSlot          `json:"timeSlots"`
}

// Suggestion is a heuristic warning about an existing schedule.
type Suggestion struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// BatchTimetable is the persisted schedule organized day by day.
type BatchTimetable struct {
	BatchID      int64                               `json:"batchId"`
	AcademicYear int                                 `json:"academicYear"`
	Semester     int                                 `json:"semester"`
	Days         map[string][]models.TimetableDetail `json:"timetable"`
}
