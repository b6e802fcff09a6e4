package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timetableViewer interface {
	View(ctx context.Context, batchID int64, academicYear, semester int) (*dto.BatchTimetable, error)
	Export(ctx context.Context, batchID int64, academicYear, semester int, format string) ([]byte, string, string, error)
}

// TimetableHandler exposes read and export endpoints for persisted schedules.
type TimetableHandler struct {
	service timetableViewer
	scope   ScopeDefaults
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService, scope ScopeDefaults) *TimetableHandler {
	return &TimetableHandler{service: svc, scope: scope}
}

// Get godoc
// @Summary Get the persisted timetable of a batch grouped by weekday
// @Tags Timetables
// @Produce json
// @Param id path int true "Batch ID"
// @Param academicYear query int false "Academic year"
// @Param semester query int false "Semester"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/timetable [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	batchID, ok := batchIDParam(c)
	if !ok {
		return
	}
	academicYear, semester := h.scopeQuery(c)
	timetable, err := h.service.View(c.Request.Context(), batchID, academicYear, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Export godoc
// @Summary Download the timetable as CSV or PDF
// @Tags Timetables
// @Produce octet-stream
// @Param id path int true "Batch ID"
// @Param format query string false "csv or pdf" default(csv)
// @Param academicYear query int false "Academic year"
// @Param semester query int false "Semester"
// @Success 200 {file} binary
// @Router /batches/{id}/timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	batchID, ok := batchIDParam(c)
	if !ok {
		return
	}
	academicYear, semester := h.scopeQuery(c)
	format := c.DefaultQuery("format", "csv")
	payload, contentType, filename, err := h.service.Export(c.Request.Context(), batchID, academicYear, semester, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, payload)
}

func (h *TimetableHandler) scopeQuery(c *gin.Context) (int, int) {
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
