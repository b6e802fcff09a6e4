package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/jobs"
)

// JobTypeCacheInvalidate names the background job enqueued after a run to
// drop cached previews and analyses for the batch.
const JobTypeCacheInvalidate = "cache_invalidate"

type schedulingDataProvider interface {
	LoadSnapshot(ctx context.Context, batchID int64) (*models.SchedulingSnapshot, error)
}

type timetableStore interface {
	Clear(ctx context.Context, batchID int64, academicYear, semester int) (int64, error)
	Insert(ctx context.Context, entry *models.TimetableEntry) error
}

// TimetableGeneratorService runs the greedy constraint-based scheduler for a
// batch and persists the outcome.
type TimetableGeneratorService struct {
	data          schedulingDataProvider
	store         timetableStore
	cache         *CacheService
	metrics       *MetricsService
	invalidations *jobs.Queue
	validator     *validator.Validate
	logger        *zap.Logger
	cfg           TimetableGeneratorConfig
}

// TimetableGeneratorConfig governs generator behaviour.
type TimetableGeneratorConfig struct {
	DefaultAcademicYear int
	DefaultSemester     int
	MaxOptions          int
	PreviewCacheTTL     time.Duration
}

// NewTimetableGeneratorService wires generator dependencies.
func NewTimetableGeneratorService(
	data schedulingDataProvider,
	store timetableStore,
	cache *CacheService,
	metrics *MetricsService,
	invalidations *jobs.Queue,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableGeneratorConfig,
) *TimetableGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultAcademicYear == 0 {
		cfg.DefaultAcademicYear = 2024
	}
	if cfg.DefaultSemester == 0 {
		cfg.DefaultSemester = 1
	}
	if cfg.MaxOptions <= 0 {
		cfg.MaxOptions = 10
	}
	if cfg.PreviewCacheTTL <= 0 {
		cfg.PreviewCacheTTL = 5 * time.Minute
	}
	return &TimetableGeneratorService{
		data:          data,
		store:         store,
		cache:         cache,
		metrics:       metrics,
		invalidations: invalidations,
		validator:     validate,
		logger:        logger,
		cfg:           cfg,
	}
}

// periodRequirement is one atomic unit of "this subject needs one more
// weekly hour scheduled".
type periodRequirement struct {
	subject models.CurriculumSubject
	attempt int
}

// assignment is a successfully resolved (faculty, classroom, time slot)
// triple for one period requirement.
type assignment struct {
	faculty         models.Faculty
	classroom       models.Classroom
	timeSlot        models.TimeSlot
	preferenceLevel int
	isFixedSlot     bool
}

// Generate builds and persists a fresh timetable for the batch. Existing
// entries for the scope are cleared first; per-period scheduling failures
// surface only through the completion rate and the unscheduled list.
func (s *TimetableGeneratorService) Generate(ctx context.Context, batchID int64, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	academicYear, semester := s.scope(req.AcademicYear, req.Semester)

	start := time.Now()

	cleared, err := s.store.Clear(ctx, batchID, academicYear, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear existing timetable")
	}
	s.logger.Info("cleared existing timetable entries",
		zap.Int64("batch_id", batchID),
		zap.Int64("deleted", cleared),
	)

	snapshot, err := s.data.LoadSnapshot(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("batch %d not found", batchID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduling data")
	}

	schedule, unscheduled := s.buildSchedule(snapshot, academicYear, semester)
	saved := s.saveEntries(ctx, schedule)
	stats := computeScheduleStats(saved, snapshot.Subjects)

	if s.metrics != nil {
		s.metrics.ObserveGeneration(time.Since(start), len(saved), len(unscheduled))
	}
	s.invalidateBatchCaches(ctx, batchID)

	s.logger.Info("timetable generated",
		zap.Int64("batch_id", batchID),
		zap.Int("entries", len(saved)),
		zap.Int("unscheduled", len(unscheduled)),
		zap.Int("completion_rate", stats.CompletionRate),
	)

	return &dto.GenerateTimetableResponse{
		Message:     fmt.Sprintf("Timetable generated successfully for batch %s", snapshot.Batch.Name),
		Entries:     len(saved),
		Schedule:    saved,
		Statistics:  stats,
		Unscheduled: unscheduled,
	}, nil
}

// GenerateMultiple produces count independent candidates, best score first.
// Attempts run strictly in sequence: each one clears and regenerates the
// same batch scope, so the last option is the one left persisted.
func (s *TimetableGeneratorService) GenerateMultiple(ctx context.Context, batchID int64, req dto.GenerateMultipleRequest) ([]dto.TimetableOption, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	count := req.Count
	if count <= 0 {
		count = 3
	}
	if count > s.cfg.MaxOptions {
		count = s.cfg.MaxOptions
	}

	options := make([]dto.TimetableOption, 0, count)
	for i := 0; i < count; i++ {
		result, err := s.Generate(ctx, batchID, dto.GenerateTimetableRequest{
			AcademicYear: req.AcademicYear,
			Semester:     req.Semester,
		})
		if err != nil {
			return nil, err
		}
		options = append(options, dto.TimetableOption{
			OptionNumber: i + 1,
			Entries:      result.Entries,
			Schedule:     result.Schedule,
			Statistics:   result.Statistics,
			Score:        scoreSchedule(result.Statistics),
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Score > options[j].Score
	})
	return options, nil
}

// Preview exposes the raw scheduling snapshot for UI display before a run.
func (s *TimetableGeneratorService) Preview(ctx context.Context, batchID int64) (*dto.SchedulingPreview, error) {
	cacheKey := fmt.Sprintf("scheduler:preview:%d", batchID)
	var cached dto.SchedulingPreview
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	snapshot, err := s.data.LoadSnapshot(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("batch %d not found", batchID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduling data")
	}

	preview := &dto.SchedulingPreview{
		Batch:      snapshot.Batch,
		Subjects:   snapshot.Subjects,
		Faculty:    snapshot.Faculty,
		Classrooms: snapshot.Classrooms,
		TimeSlots:  snapshot.TimeSlots,
	}
	_ = s.cache.Set(ctx, cacheKey, preview, s.cfg.PreviewCacheTTL)
	return preview, nil
}

// buildSchedule expands the curriculum into atomic period requirements and
// greedily assigns each one against the shared commitment state.
func (s *TimetableGeneratorService) buildSchedule(snapshot *models.SchedulingSnapshot, academicYear, semester int) ([]models.TimetableEntry, []dto.UnscheduledPeriod) {
	requirements := make([]periodRequirement, 0, snapshot.TotalRequiredHours())
	for _, subject := range snapshot.Subjects {
		for i := 0; i < subject.HoursPerWeek; i++ {
			requirements = append(requirements, periodRequirement{subject: subject, attempt: i + 1})
		}
	}

	// subjects demanding more weekly hours go first to reduce late-stage
	// starvation; the sort is stable so snapshot order breaks ties
	sort.SliceStable(requirements, func(i, j int) bool {
		return requirements[i].subject.HoursPerWeek > requirements[j].subject.HoursPerWeek
	})

	s.logger.Debug("expanded period requirements", zap.Int("total", len(requirements)))

	commitments := newRunCommitments()
	schedule := make([]models.TimetableEntry, 0, len(requirements))
	var unscheduled []dto.UnscheduledPeriod

	for _, req := range requirements {
		found, reason := findAssignment(req, snapshot, commitments)
		if found == nil {
			unscheduled = append(unscheduled, dto.UnscheduledPeriod{
				SubjectID:   req.subject.ID,
				SubjectName: req.subject.Name,
				Attempt:     req.attempt,
				Reason:      reason,
			})
			s.logger.Warn("could not schedule period",
				zap.String("subject", req.subject.Name),
				zap.Int("attempt", req.attempt),
				zap.String("reason", reason),
			)
			continue
		}

		schedule = append(schedule, models.TimetableEntry{
			BatchID:      snapshot.Batch.ID,
			SubjectID:    req.subject.ID,
			FacultyID:    found.faculty.ID,
			ClassroomID:  found.classroom.ID,
			TimeSlotID:   found.timeSlot.ID,
			AcademicYear: academicYear,
			Semester:     semester,
			Meta: models.TimetableEntryMeta{
				SubjectName:     req.subject.Name,
				FacultyName:     found.faculty.Name,
				ClassroomName:   found.classroom.Name,
				DayName:         found.timeSlot.DayName(),
				Time:            fmt.Sprintf("%s-%s", found.timeSlot.StartTime, found.timeSlot.EndTime),
				PreferenceLevel: found.preferenceLevel,
				IsFixedSlot:     found.isFixedSlot,
			},
		})
		commitments.commit(found.faculty.ID, found.classroom.ID, found.timeSlot)

		s.logger.Debug("scheduled period",
			zap.String("subject", req.subject.Name),
			zap.String("faculty", found.faculty.Name),
			zap.String("classroom", found.classroom.Name),
			zap.String("day", found.timeSlot.DayName()),
			zap.String("period", found.timeSlot.PeriodName),
		)
	}

	return schedule, unscheduled
}

// findAssignment performs the greedy first-fit search for one period
// requirement. It never backtracks across already committed periods; when
// it fails the reason string explains why.
func findAssignment(req periodRequirement, snapshot *models.SchedulingSnapshot, commitments *runCommitments) (*assignment, string) {
	var eligible []models.Faculty
	for _, f := range snapshot.Faculty {
		if f.CanTeach(req.subject.ID) {
			eligible = append(eligible, f)
		}
	}
	if len(eligible) == 0 {
		return nil, "no eligible faculty"
	}

	if fixed, ok := snapshot.FixedSlotFor(req.subject.ID); ok {
		slot, resolved := snapshot.TimeSlotByID(fixed.TimeSlotID)
		if !resolved || commitments.slotUsed(slot.ID) {
			// a fixed slot is never retried elsewhere
			return nil, "fixed slot unavailable"
		}
		for _, faculty := range eligible {
			if !isFacultyAvailable(faculty, slot, snapshot, commitments) {
				continue
			}
			for _, classroom := range snapshot.Classrooms {
				if commitments.classroomBusy(classroom.ID, slot.ID) {
					continue
				}
				if !isClassroomSuitable(classroom, req.subject.Name) {
					continue
				}
				return &assignment{
					faculty:         faculty,
					classroom:       classroom,
					timeSlot:        slot,
					preferenceLevel: faculty.PreferenceFor(req.subject.ID),
					isFixedSlot:     true,
				}, ""
			}
		}
		return nil, "fixed slot unavailable"
	}

	for _, slot := range snapshot.TimeSlots {
		if commitments.slotUsed(slot.ID) {
			continue
		}
		if commitments.dayFull(slot.DayOfWeek) {
			continue
		}
		for _, faculty := range eligible {
			if !isFacultyAvailable(faculty, slot, snapshot, commitments) {
				continue
			}
			for _, classroom := range snapshot.Classrooms {
				if commitments.classroomBusy(classroom.ID, slot.ID) {
					continue
				}
				if !isClassroomSuitable(classroom, req.subject.Name) {
					continue
				}
				return &assignment{
					faculty:         faculty,
					classroom:       classroom,
					timeSlot:        slot,
					preferenceLevel: faculty.PreferenceFor(req.subject.ID),
				}, ""
			}
		}
	}

	return nil, "no free slot, faculty and classroom combination"
}

// saveEntries persists the schedule best-effort: an individual insert
// failure is logged and the entry dropped from the result, never fatal.
func (s *TimetableGeneratorService) saveEntries(ctx context.Context, schedule []models.TimetableEntry) []models.TimetableEntry {
	saved := make([]models.TimetableEntry, 0, len(schedule))
	for i := range schedule {
		entry := schedule[i]
		if err := s.store.Insert(ctx, &entry); err != nil {
			s.logger.Error("failed to save timetable entry",
				zap.Int64("subject_id", entry.SubjectID),
				zap.Int64("time_slot_id", entry.TimeSlotID),
				zap.Error(err),
			)
			continue
		}
		saved = append(saved, entry)
	}
	return saved
}

func (s *TimetableGeneratorService) scope(academicYear, semester int) (int, int) {
	if academicYear == 0 {
		academicYear = s.cfg.DefaultAcademicYear
	}
	if semester == 0 {
		semester = s.cfg.DefaultSemester
	}
	return academicYear, semester
}

// InvalidateBatchCaches drops cached previews and analyses for the batch.
// It backs the cache invalidation job handler and the inline fallback.
func (s *TimetableGeneratorService) InvalidateBatchCaches(ctx context.Context, batchID int64) error {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("scheduler:preview:%d", batchID)); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, fmt.Sprintf("scheduler:analysis:%d:*", batchID))
}

func (s *TimetableGeneratorService) invalidateBatchCaches(ctx context.Context, batchID int64) {
	if s.invalidations != nil {
		err := s.invalidations.Enqueue(jobs.Job{Type: JobTypeCacheInvalidate, Payload: batchID})
		if err == nil {
			return
		}
		s.logger.Warn("failed to enqueue cache invalidation, running inline", zap.Error(err))
	}
	_ = s.InvalidateBatchCaches(ctx, batchID)
}
