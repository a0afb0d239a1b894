package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/response"
)

type studentJobFeed interface {
	ListEligibleForStudent(ctx context.Context, studentID int64, page, size int) ([]models.JobDetail, *models.Pagination, error)
}

type studentApplications interface {
	ListForStudent(ctx context.Context, studentID int64, now time.Time) ([]models.StudentApplication, error)
}

type studentPlacements interface {
	ListForStudent(ctx context.Context, studentID int64) ([]models.PlacementDetail, error)
}

// StudentHandler exposes the student's own views.
type StudentHandler struct {
	jobs         studentJobFeed
	applications studentApplications
	placements   studentPlacements
	now          func() time.Time
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(jobs studentJobFeed, applications studentApplications, placements studentPlacements) *StudentHandler {
	return &StudentHandler{jobs: jobs, applications: applications, placements: placements, now: time.Now}
}

// EligibleJobs godoc
// @Summary Open jobs the caller is eligible for and has not applied to
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students/me/eligible-jobs [get]
func (h *StudentHandler) EligibleJobs(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, size := pageQuery(c)
	jobList, pagination, err := h.jobs.ListEligibleForStudent(c.Request.Context(), studentID, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobList, pagination)
}

// Applications godoc
// @Summary The caller's applications with job stage
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /students/me/applications [get]
func (h *StudentHandler) Applications(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	apps, err := h.applications.ListForStudent(c.Request.Context(), studentID, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, nil)
}

// Placements godoc
// @Summary Placements of a student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/placements [get]
func (h *StudentHandler) Placements(c *gin.Context) {
	studentID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	placements, err := h.placements.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, placements, nil)
}
