package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sravanmaichrla/campus-placement-hub/internal/dto"
	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/response"
)

type jobService interface {
	Create(ctx context.Context, adminID int64, createdBy string, req dto.CreateJobRequest) (*dto.JobCreatedResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateJobRequest) (*models.Job, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.JobDetail, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.JobDetail, *models.Pagination, error)
	ListForAdmin(ctx context.Context, adminID int64, page, size int) ([]models.JobDetail, *models.Pagination, error)
	CheckEligibility(ctx context.Context, studentID, jobID int64) (*dto.EligibilityResponse, error)
}

// JobHandler exposes job posting endpoints.
type JobHandler struct {
	jobs jobService
	now  func() time.Time
}

// NewJobHandler constructs JobHandler.
func NewJobHandler(jobs jobService) *JobHandler {
	return &JobHandler{jobs: jobs, now: time.Now}
}

// Create godoc
// @Summary Post a job
// @Description Creates the company (unless company_id is given) and the job, then queues notifications to eligible students.
// @Tags Jobs
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateJobRequest true "Job payload; sent as the payload form field with multipart"
// @Param file formData file false "Job attachment (pdf, png, jpg, jpeg)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.CreateJobRequest
	attachment, release, err := bindJobPayload(c, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer release()
	req.Attachment = attachment
	var adminID int64
	createdBy := "admin"
	if claims != nil {
		adminID = claims.UserID
		createdBy = claims.Email
		if createdBy == "" {
			createdBy = fmt.Sprintf("admin:%d", claims.UserID)
		}
	}
	created, err := h.jobs.Create(c.Request.Context(), adminID, createdBy, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Update a job
// @Description Omitted fields are left unchanged. Changing interview_date notifies every applicant.
// @Tags Jobs
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param payload body dto.UpdateJobRequest true "Fields to change; sent as the payload form field with multipart"
// @Param file formData file false "Replacement attachment (pdf, png, jpg, jpeg)"
// @Success 200 {object} response.Envelope
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateJobRequest
	attachment, release, err := bindJobPayload(c, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer release()
	req.Attachment = attachment
	job, err := h.jobs.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Delete godoc
// @Summary Delete a job
// @Tags Jobs
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 204
// @Router /jobs/{id} [delete]
func (h *JobHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.jobs.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List jobs
// @Tags Jobs
// @Produce json
// @Param open query bool false "Only jobs still accepting applications"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	page, size := pageQuery(c)
	filter := models.JobFilter{Page: page, PageSize: size}
	if c.Query("open") == "true" {
		y, m, d := h.now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		filter.OpenOn = &today
	}
	jobList, pagination, err := h.jobs.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobList, pagination)
}

// Get godoc
// @Summary Job detail
// @Tags Jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// ListMine godoc
// @Summary Jobs posted by the caller
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/jobs [get]
func (h *JobHandler) ListMine(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, size := pageQuery(c)
	jobList, pagination, err := h.jobs.ListForAdmin(c.Request.Context(), adminID, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobList, pagination)
}

// Eligibility godoc
// @Summary Check eligibility for a job
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /jobs/{id}/eligibility [get]
func (h *JobHandler) Eligibility(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	jobID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.jobs.CheckEligibility(c.Request.Context(), studentID, jobID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// bindJobPayload decodes a JSON body, or a multipart form whose payload field holds the JSON
// and whose optional file part is the job attachment. release closes the uploaded file.
func bindJobPayload(c *gin.Context, dest interface{}) (*dto.Attachment, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, noop, bindJSON(c, dest)
	}

	raw := strings.TrimSpace(c.PostForm("payload"))
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return nil, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload field")
	}

	fileHeader, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid file upload")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return nil, noop, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return &dto.Attachment{Name: fileHeader.Filename, Content: src}, func() { _ = src.Close() }, nil
}
