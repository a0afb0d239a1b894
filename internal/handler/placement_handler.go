package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sravanmaichrla/campus-placement-hub/internal/dto"
	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/response"
)

type placementService interface {
	Record(ctx context.Context, req dto.CreatePlacementRequest) (*models.Placement, error)
	Update(ctx context.Context, id int64, req dto.UpdatePlacementRequest) (*models.Placement, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.PlacementDetail, error)
	List(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementDetail, *models.Pagination, error)
	UploadOfferLetter(ctx context.Context, placementID, studentID int64, file io.Reader, filename, status string) (*dto.OfferLetterResponse, error)
}

// PlacementHandler exposes the placement ledger.
type PlacementHandler struct {
	placements placementService
}

// NewPlacementHandler constructs PlacementHandler.
func NewPlacementHandler(placements placementService) *PlacementHandler {
	return &PlacementHandler{placements: placements}
}

// Create godoc
// @Summary Record a placement
// @Tags Placements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreatePlacementRequest true "Placement payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Student, company or job missing"
// @Router /placements [post]
func (h *PlacementHandler) Create(c *gin.Context) {
	var req dto.CreatePlacementRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	placement, err := h.placements.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, placement)
}

// Update godoc
// @Summary Update a placement
// @Tags Placements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Placement ID"
// @Param payload body dto.UpdatePlacementRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /placements/{id} [put]
func (h *PlacementHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdatePlacementRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	placement, err := h.placements.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, placement, nil)
}

// Delete godoc
// @Summary Delete a placement
// @Tags Placements
// @Security BearerAuth
// @Param id path int true "Placement ID"
// @Success 204
// @Router /placements/{id} [delete]
func (h *PlacementHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.placements.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Get godoc
// @Summary Placement detail
// @Tags Placements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Placement ID"
// @Success 200 {object} response.Envelope
// @Router /placements/{id} [get]
func (h *PlacementHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	placement, err := h.placements.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, placement, nil)
}

// List godoc
// @Summary List placements
// @Tags Placements
// @Produce json
// @Security BearerAuth
// @Param student_id query int false "Student filter"
// @Param company_id query int false "Company filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /placements [get]
func (h *PlacementHandler) List(c *gin.Context) {
	page, size := pageQuery(c)
	filter := models.PlacementFilter{Page: page, PageSize: size}
	var err error
	if filter.StudentID, err = optionalID(c, "student_id"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.CompanyID, err = optionalID(c, "company_id"); err != nil {
		response.Error(c, err)
		return
	}
	placements, pagination, err := h.placements.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, placements, pagination)
}

// UploadOfferLetter godoc
// @Summary Upload the offer letter of the caller's placement
// @Tags Placements
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Placement ID"
// @Param file formData file true "Offer letter (pdf, png, jpg, jpeg)"
// @Param status formData string true "Yes or No"
// @Success 200 {object} response.Envelope
// @Router /placements/{id}/offer-letter [post]
func (h *PlacementHandler) UploadOfferLetter(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	result, err := h.placements.UploadOfferLetter(c.Request.Context(), id, studentID, src, fileHeader.Filename, c.PostForm("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func optionalID(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer")
	}
	return &id, nil
}
