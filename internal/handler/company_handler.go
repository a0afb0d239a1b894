package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/response"
)

type companyService interface {
	List(ctx context.Context) ([]models.Company, error)
	Jobs(ctx context.Context, companyID int64) ([]models.Job, error)
	Applicants(ctx context.Context, companyID int64) ([]models.CompanyApplicant, error)
}

// CompanyHandler exposes the company directory.
type CompanyHandler struct {
	companies companyService
}

// NewCompanyHandler constructs CompanyHandler.
func NewCompanyHandler(companies companyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// List godoc
// @Summary List companies
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.companies.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, companies, nil)
}

// Jobs godoc
// @Summary Jobs posted for a company
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {object} response.Envelope
// @Router /companies/{id}/jobs [get]
func (h *CompanyHandler) Jobs(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	jobList, err := h.companies.Jobs(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobList, nil)
}

// Students godoc
// @Summary Students who applied to a company's jobs
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {object} response.Envelope
// @Router /companies/{id}/students [get]
func (h *CompanyHandler) Students(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	applicants, err := h.companies.Applicants(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applicants, nil)
}
