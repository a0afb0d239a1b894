package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sravanmaichrla/campus-placement-hub/internal/dto"
	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/storage"
)

const offerLetterScope = "offer_letters"

type placementRepository interface {
	CheckRefs(ctx context.Context, studentID, companyID, jobID int64) (models.PlacementRefs, error)
	Create(ctx context.Context, p *models.Placement) error
	Update(ctx context.Context, p *models.Placement) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Placement, error)
	FindDetail(ctx context.Context, id int64) (*models.PlacementDetail, error)
	List(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementDetail, int, error)
	ListForStudent(ctx context.Context, studentID int64) ([]models.PlacementDetail, error)
	SetOfferLetter(ctx context.Context, id, studentID int64, url string, status models.PlacementStatus) error
}

// PlacementService records placement outcomes.
type PlacementService struct {
	placements placementRepository
	files      *FileService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewPlacementService constructs the placement service.
func NewPlacementService(placements placementRepository, files *FileService, validate *validator.Validate, logger *zap.Logger) *PlacementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlacementService{placements: placements, files: files, validator: validate, logger: logger}
}

// Record validates and stores a new placement.
func (s *PlacementService) Record(ctx context.Context, req dto.CreatePlacementRequest) (*models.Placement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}

	status := req.Status
	placement := &models.Placement{
		StudentID:      req.StudentID,
		CompanyID:      req.CompanyID,
		JobID:          req.JobID,
		OfferLetterURL: req.OfferLetterURL,
	}
	if status == "" {
		status = string(models.PlacementPending)
	}
	if err := mergePlacement(placement, dto.UpdatePlacementRequest{
		SalaryOffered: req.SalaryOffered,
		InterviewDate: req.InterviewDate,
		JoiningDate:   req.JoiningDate,
		Status:        &status,
	}); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, placement); err != nil {
		return nil, err
	}

	if err := s.placements.Create(ctx, placement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record placement")
	}
	s.logger.Info("placement recorded",
		zap.Int64("placement_id", placement.ID),
		zap.Int64("student_id", placement.StudentID),
		zap.Int64("job_id", placement.JobID),
	)
	return placement, nil
}

// Update applies the provided fields to an existing placement.
func (s *PlacementService) Update(ctx context.Context, id int64, req dto.UpdatePlacementRequest) (*models.Placement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}
	placement, err := s.placements.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "placement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placement")
	}

	if err := mergePlacement(placement, req); err != nil {
		return nil, err
	}
	if req.StudentID != nil || req.CompanyID != nil || req.JobID != nil {
		if err := s.checkRefs(ctx, placement); err != nil {
			return nil, err
		}
	}

	if err := s.placements.Update(ctx, placement); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "placement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update placement")
	}
	return placement, nil
}

// mergePlacement validates and copies every non-nil field of req onto p.
func mergePlacement(p *models.Placement, req dto.UpdatePlacementRequest) error {
	if req.StudentID != nil {
		p.StudentID = *req.StudentID
	}
	if req.CompanyID != nil {
		p.CompanyID = *req.CompanyID
	}
	if req.JobID != nil {
		p.JobID = *req.JobID
	}
	if req.SalaryOffered != nil {
		if req.SalaryOffered.IsNegative() {
			return appErrors.Clone(appErrors.ErrValidation, "salary_offered must not be negative")
		}
		p.SalaryOffered = req.SalaryOffered.Round(2)
	}
	if req.InterviewDate != nil {
		d, err := parseOptionalDate("interview_date", req.InterviewDate)
		if err != nil {
			return err
		}
		p.InterviewDate = d
	}
	if req.JoiningDate != nil {
		d, err := parseOptionalDate("joining_date", req.JoiningDate)
		if err != nil {
			return err
		}
		p.JoiningDate = d
	}
	if req.OfferLetterURL != nil {
		p.OfferLetterURL = strings.TrimSpace(*req.OfferLetterURL)
	}
	if req.Status != nil {
		status := models.PlacementStatus(*req.Status)
		if !status.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "status must be pending, Yes or No")
		}
		p.Status = status
	}
	return nil
}

func (s *PlacementService) checkRefs(ctx context.Context, p *models.Placement) error {
	refs, err := s.placements.CheckRefs(ctx, p.StudentID, p.CompanyID, p.JobID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate placement references")
	}
	switch {
	case !refs.StudentExists:
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	case !refs.CompanyExists:
		return appErrors.Clone(appErrors.ErrNotFound, "company not found")
	case !refs.JobExists:
		return appErrors.Clone(appErrors.ErrNotFound, "job not found")
	}
	return nil
}

// Delete removes exactly one placement.
func (s *PlacementService) Delete(ctx context.Context, id int64) error {
	if err := s.placements.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "placement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete placement")
	}
	return nil
}

// Get returns a placement with its labels.
func (s *PlacementService) Get(ctx context.Context, id int64) (*models.PlacementDetail, error) {
	p, err := s.placements.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "placement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placement")
	}
	return p, nil
}

// List returns a page of placements.
func (s *PlacementService) List(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementDetail, *models.Pagination, error) {
	placements, total, err := s.placements.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list placements")
	}
	page, size := pageBounds(filter.Page, filter.PageSize)
	return placements, models.NewPagination(page, size, total), nil
}

// ListForStudent returns every placement of a student.
func (s *PlacementService) ListForStudent(ctx context.Context, studentID int64) ([]models.PlacementDetail, error) {
	placements, err := s.placements.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list placements")
	}
	return placements, nil
}

// UploadOfferLetter stores the placed student's offer letter and answer. file may be nil to only set status.
func (s *PlacementService) UploadOfferLetter(ctx context.Context, placementID, studentID int64, file io.Reader, filename, status string) (*dto.OfferLetterResponse, error) {
	placement, err := s.placements.FindByID(ctx, placementID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "placement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placement")
	}
	if placement.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "placement belongs to another student")
	}

	answer := models.PlacementStatus(strings.TrimSpace(status))
	if answer != "" && answer != models.PlacementAccepted && answer != models.PlacementDeclined {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Yes or No")
	}
	if file == nil && answer == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "offer letter file or status required")
	}

	rel := ""
	if file != nil {
		if !storage.Allowed(filename) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "file type not allowed; use png, jpg, jpeg or pdf")
		}
		if s.files == nil {
			return nil, appErrors.Clone(appErrors.ErrInternal, "file storage not configured")
		}
		rel, err = s.files.Save(ctx, file, filename, offerLetterScope)
		if err != nil {
			return nil, err
		}
	}

	if err := s.placements.SetOfferLetter(ctx, placementID, studentID, rel, answer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "placement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save offer letter")
	}

	resp := &dto.OfferLetterResponse{PlacementID: placementID, OfferLetterURL: placement.OfferLetterURL, Status: string(placement.Status)}
	if rel != "" {
		resp.OfferLetterURL = rel
	}
	if answer != "" {
		resp.Status = string(answer)
	}
	if resp.OfferLetterURL != "" && s.files != nil {
		if link, err := s.files.Link(resp.OfferLetterURL); err == nil {
			resp.DownloadURL = link.URL
		}
	}
	return resp, nil
}
