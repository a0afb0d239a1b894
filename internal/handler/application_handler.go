package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sravanmaichrla/campus-placement-hub/internal/dto"
	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/response"
)

type applicationService interface {
	Apply(ctx context.Context, studentID, jobID int64, now time.Time) (*models.Application, error)
	ListForJob(ctx context.Context, jobID int64) ([]models.Applicant, error)
	UpdateStatus(ctx context.Context, id int64, req dto.UpdateApplicationStatusRequest) (*models.Application, error)
}

// ApplicationHandler exposes job application endpoints.
type ApplicationHandler struct {
	applications applicationService
	now          func() time.Time
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(applications applicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, now: time.Now}
}

// Apply godoc
// @Summary Apply to a job
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Already applied"
// @Failure 422 {object} response.Envelope "Deadline passed"
// @Router /jobs/{id}/apply [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	jobID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	app, err := h.applications.Apply(c.Request.Context(), studentID, jobID, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// Applicants godoc
// @Summary Applicants of a job
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /jobs/{id}/applications [get]
func (h *ApplicationHandler) Applicants(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	applicants, err := h.applications.ListForJob(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applicants, nil)
}

// UpdateStatus godoc
// @Summary Change an application's status
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param payload body dto.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateApplicationStatusRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	app, err := h.applications.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}
