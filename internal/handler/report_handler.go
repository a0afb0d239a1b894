package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sravanmaichrla/campus-placement-hub/internal/dto"
	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	"github.com/sravanmaichrla/campus-placement-hub/internal/service"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/export"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/response"
)

type reportService interface {
	PlacedStudents(ctx context.Context, filter models.ReportFilter) ([]models.PlacedStudentRow, error)
	EligibleStudents(ctx context.Context, jobID int64) (*models.Job, []models.EligibleStudentRow, error)
	Summary(ctx context.Context, filter models.ReportFilter) (*models.PlacementSummary, error)
	Breakdown(ctx context.Context, filter models.ReportFilter) ([]models.PlacementBreakdownRow, error)
	Export(format export.Format, base string, data export.Dataset) (*service.ReportFile, error)
}

// ReportHandler exposes placement reports as JSON or downloadable files.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// PlacedStudents godoc
// @Summary Placed students
// @Tags Reports
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param year query int false "Joining year"
// @Param gender query string false "male or female"
// @Param company_id query int false "Company"
// @Param format query string false "json, csv, pdf or xlsx"
// @Success 200 {object} response.Envelope
// @Router /reports/placed-students [get]
func (h *ReportHandler) PlacedStudents(c *gin.Context) {
	query, format, ok := h.bindQuery(c)
	if !ok {
		return
	}
	filter := filterFromQuery(query)
	rows, err := h.reports.PlacedStudents(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if format == export.FormatJSON {
		response.JSON(c, http.StatusOK, rows, nil)
		return
	}
	h.send(c, format, "placed_students", service.PlacedStudentsDataset(rows, filter.Year))
}

// EligibleStudents godoc
// @Summary Students eligible for a job
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param jobId path int true "Job ID"
// @Param format query string false "json, csv, pdf or xlsx"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/eligible-students/{jobId} [get]
func (h *ReportHandler) EligibleStudents(c *gin.Context) {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		response.Error(c, err)
		return
	}
	_, format, ok := h.bindQuery(c)
	if !ok {
		return
	}
	job, rows, err := h.reports.EligibleStudents(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if format == export.FormatJSON {
		response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{"job_id": job.ID, "job_role": job.Role})
		return
	}
	h.send(c, format, fmt.Sprintf("eligible_students_job_%d", job.ID), service.EligibleStudentsDataset(job, rows))
}

// Summary godoc
// @Summary Placement totals and top packages
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param year query int false "Joining year"
// @Success 200 {object} response.Envelope
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	query, _, ok := h.bindQuery(c)
	if !ok {
		return
	}
	summary, err := h.reports.Summary(c.Request.Context(), filterFromQuery(query))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Breakdown godoc
// @Summary Placements grouped by company and gender
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param year query int false "Joining year"
// @Param format query string false "json, csv, pdf or xlsx"
// @Success 200 {object} response.Envelope
// @Router /reports/breakdown [get]
func (h *ReportHandler) Breakdown(c *gin.Context) {
	query, format, ok := h.bindQuery(c)
	if !ok {
		return
	}
	rows, err := h.reports.Breakdown(c.Request.Context(), filterFromQuery(query))
	if err != nil {
		response.Error(c, err)
		return
	}
	if format == export.FormatJSON {
		response.JSON(c, http.StatusOK, rows, nil)
		return
	}
	h.send(c, format, "placement_breakdown", service.BreakdownDataset(rows))
}

func (h *ReportHandler) bindQuery(c *gin.Context) (dto.ReportQuery, export.Format, bool) {
	var query dto.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report query"))
		return query, "", false
	}
	if err := queryValidator.Struct(query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report query"))
		return query, "", false
	}
	format, err := export.ParseFormat(query.Format)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return query, "", false
	}
	return query, format, true
}

func (h *ReportHandler) send(c *gin.Context, format export.Format, base string, data export.Dataset) {
	file, err := h.reports.Export(format, base, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func filterFromQuery(q dto.ReportQuery) models.ReportFilter {
	return models.ReportFilter{Year: q.Year, Gender: q.Gender, CompanyID: q.CompanyID}
}
