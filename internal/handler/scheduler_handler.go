package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, batchID int64, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	GenerateMultiple(ctx context.Context, batchID int64, req dto.GenerateMultipleRequest) ([]dto.TimetableOption, error)
	Preview(ctx context.Context, batchID int64) (*dto.SchedulingPreview, error)
}

type scheduleAnalyzer interface {
	Analyze(ctx context.Context, batchID int64, academicYear, semester int) (*dto.ScheduleAnalysis, error)
	Suggestions(ctx context.Context, batchID int64) ([]dto.Suggestion, error)
}

// SchedulerHandler exposes the automatic scheduling endpoints.
type SchedulerHandler struct {
	generator timetableGenerator
	analyzer  scheduleAnalyzer
	scope     ScopeDefaults
}

// ScopeDefaults supplies the academic scope used when a request omits it.
type ScopeDefaults struct {
	AcademicYear int
	Semester     int
}

// NewSchedulerHandler constructs the handler.
func NewSchedulerHandler(generator *service.TimetableGeneratorService, analyzer *service.ScheduleAnalysisService, scope ScopeDefaults) *SchedulerHandler {
	return &SchedulerHandler{generator: generator, analyzer: analyzer, scope: scope}
}

// Generate godoc
// @Summary Generate a timetable for a batch
// @Description Clears the batch's existing entries for the academic scope and runs the greedy scheduler. Partial schedules are returned as success.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path int true "Batch ID"
// @Param payload body dto.GenerateTimetableRequest false "Academic scope"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/timetable/generate [post]
func (h *SchedulerHandler) Generate(c *gin.Context) {
	batchID, ok := batchIDParam(c)
	if !ok {
		return
	}
	var req dto.GenerateTimetableRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
			return
		}
	}
	result, err := h.generator.Generate(c.Request.Context(), batchID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GenerateMultiple godoc
// @Summary Generate multiple timetable options
// @Description Runs the scheduler several times and returns the candidates ordered by score, best first. The last generated option remains persisted.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path int true "Batch ID"
// @Param payload body dto.GenerateMultipleRequest false "Academic scope and option count"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/timetable/generate-multiple [post]
func (h *SchedulerHandler) GenerateMultiple(c *gin.Context) {
	batchID, ok := batchIDParam(c)
	if !ok {
		return
	}
	var req dto.GenerateMultipleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
			return
		}
	}
	options, err := h.generator.GenerateMultiple(c.Request.Context(), batchID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// Analyze godoc
// @Summary Analyze the persisted schedule of a batch
// @Tags Scheduler
// @Produce json
// @Param id path int true "Batch ID"
// @Param academicYear query int false "Academic year"
// @Param semester query int false "Semester"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/timetable/analyze [get]
func (h *SchedulerHandler) Analyze(c *gin.Context) {
	batchID, ok := batchIDParam(c)
	if !ok {
		return
	}
	academicYear, semester := h.scopeQuery(c)
	analysis, err := h.analyzer.Analyze(c.Request.Context(), batchID, academicYear, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analysis, nil)
}

// Preview godoc
// @Summary Preview scheduling data for a batch
// @Description Returns the curriculum, eligible faculty, classrooms and time slots the scheduler would work with.
// @Tags Scheduler
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/timetable/preview [get]
func (h *SchedulerHandler) Preview(c *gin.Context) {
	batchID, ok := batchIDParam(c)
	if !ok {
		return
	}
	preview, err := h.generator.Preview(c.Request.Context(), batchID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// Suggestions godoc
// @Summary Improvement suggestions for a persisted schedule
// @Tags Scheduler
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/timetable/suggestions [get]
func (h *SchedulerHandler) Suggestions(c *gin.Context) {
	batchID, ok := batchIDParam(c)
	if !ok {
		return
	}
	suggestions, err := h.analyzer.Suggestions(c.Request.Context(), batchID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

func (h *SchedulerHandler) scopeQuery(c *gin.Context) (int, int) {
	academicYear := h.scope.AcademicYear
	semester := h.scope.Semester
	if v, err := strconv.Atoi(c.Query("academicYear")); err == nil && v > 0 {
		academicYear = v
	}
	if v, err := strconv.Atoi(c.Query("semester")); err == nil && v > 0 {
		semester = v
	}
	return academicYear, semester
}

// batchIDParam parses the :id path segment and writes the error response
// itself when the value is not a positive integer.
func batchIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "batch id must be a positive integer"))
		return 0, false
	}
	return id, true
}
