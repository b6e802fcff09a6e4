package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// overloadThreshold is the weekly class count above which a faculty member
// is flagged in suggestions.
const overloadThreshold = 15

type curriculumProvider interface {
	FindBatch(ctx context.Context, batchID int64) (*models.Batch, error)
	ListCurriculum(ctx context.Context, batchID int64) ([]models.CurriculumSubject, error)
}

type timetableReader interface {
	ListByBatch(ctx context.Context, batchID int64, academicYear, semester int) ([]models.TimetableDetail, error)
	DailyLoad(ctx context.Context, batchID int64) ([]models.DayLoad, error)
	OverloadedFaculty(ctx context.Context, batchID int64, threshold int) ([]models.FacultyLoad, error)
}

// ScheduleAnalysisService inspects a persisted timetable against curriculum
// requirements and produces improvement hints.
type ScheduleAnalysisService struct {
	curriculum curriculumProvider
	timetable  timetableReader
	cache      *CacheService
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// NewScheduleAnalysisService wires analysis dependencies.
func NewScheduleAnalysisService(curriculum curriculumProvider, timetable timetableReader, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *ScheduleAnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 2 * time.Minute
	}
	return &ScheduleAnalysisService{
		curriculum: curriculum,
		timetable:  timetable,
		cache:      cache,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// Analyze compares scheduled period counts per subject with the weekly
// requirement and derives shortfalls, excess and recommendations.
func (s *ScheduleAnalysisService) Analyze(ctx context.Context, batchID int64, academicYear, semester int) (*dto.ScheduleAnalysis, error) {
	cacheKey := fmt.Sprintf("scheduler:analysis:%d:%d:%d", batchID, academicYear, semester)
	var cached dto.ScheduleAnalysis
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	if _, err := s.curriculum.FindBatch(ctx, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("batch %d not found", batchID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}

	schedule, err := s.timetable.ListByBatch(ctx, batchID, academicYear, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	curriculum, err := s.curriculum.ListCurriculum(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load curriculum")
	}

	totalRequired := 0
	for _, subject := range curriculum {
		totalRequired += subject.HoursPerWeek
	}

	scheduledPerSubject := make(map[int64]int, len(curriculum))
	for _, entry := range schedule {
		scheduledPerSubject[entry.SubjectID]++
	}

	analysis := &dto.ScheduleAnalysis{
		TotalScheduled:  len(schedule),
		TotalRequired:   totalRequired,
		CompletionRate:  completionRate(len(schedule), totalRequired),
		MissingSubjects: []dto.SubjectShortfall{},
		OverScheduled:   []dto.SubjectExcess{},
		Recommendations: []string{},
	}

	for _, subject := range curriculum {
		scheduled := scheduledPerSubject[subject.ID]
		switch {
		case scheduled < subject.HoursPerWeek:
			analysis.MissingSubjects = append(analysis.MissingSubjects, dto.SubjectShortfall{
				Subject:   subject.Name,
				Required:  subject.HoursPerWeek,
				Scheduled: scheduled,
				Missing:   subject.HoursPerWeek - scheduled,
			})
		case scheduled > subject.HoursPerWeek:
			analysis.OverScheduled = append(analysis.OverScheduled, dto.SubjectExcess{
				Subject:   subject.Name,
				Required:  subject.HoursPerWeek,
				Scheduled: scheduled,
				Excess:    scheduled - subject.HoursPerWeek,
			})
		}
	}

	if len(analysis.MissingSubjects) > 0 {
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("%d subjects need more periods scheduled", len(analysis.MissingSubjects)))
	}
	if analysis.CompletionRate < 100 {
		analysis.Recommendations = append(analysis.Recommendations,
			"Use automatic generator to complete the schedule")
	}
	if analysis.CompletionRate == 100 {
		analysis.Recommendations = append(analysis.Recommendations,
			"Schedule is complete! All subject requirements are met.")
	}

	_ = s.cache.Set(ctx, cacheKey, analysis, s.cacheTTL)
	return analysis, nil
}

// Suggestions flags day-load imbalance and overworked faculty in the
// persisted schedule. An empty list means nothing looked wrong.
func (s *ScheduleAnalysisService) Suggestions(ctx context.Context, batchID int64) ([]dto.Suggestion, error) {
	suggestions := []dto.Suggestion{}

	days, err := s.timetable.DailyLoad(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load daily distribution")
	}
	if len(days) > 0 {
		// rows arrive ordered by count ascending
		minDay := days[0]
		maxDay := days[len(days)-1]
		if maxDay.Count-minDay.Count > 2 {
			suggestions = append(suggestions, dto.Suggestion{
				Type:     "Load Balancing",
				Priority: "High",
				Message: fmt.Sprintf("Uneven distribution: %s has %d classes while %s has only %d. Consider redistributing.",
					models.DayName(maxDay.DayOfWeek), maxDay.Count, models.DayName(minDay.DayOfWeek), minDay.Count),
			})
		}
	}

	overloaded, err := s.timetable.OverloadedFaculty(ctx, batchID, overloadThreshold)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty workload")
	}
	for _, faculty := range overloaded {
		suggestions = append(suggestions, dto.Suggestion{
			Type:     "Faculty Workload",
			Priority: "Medium",
			Message:  fmt.Sprintf("%s has %d classes. Consider reducing workload or adding more faculty.", faculty.Name, faculty.Count),
		})
	}

	s.logger.Debug("suggestions computed", zap.Int64("batch_id", batchID), zap.Int("total", len(suggestions)))
	return suggestions, nil
}
