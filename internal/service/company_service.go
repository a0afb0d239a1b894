package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
)

type companyRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Company, error)
	List(ctx context.Context) ([]models.Company, error)
	ListApplicants(ctx context.Context, companyID int64) ([]models.CompanyApplicant, error)
}

type companyJobLister interface {
	ListByCompany(ctx context.Context, companyID int64) ([]models.Job, error)
}

// CompanyService reads the company directory.
type CompanyService struct {
	companies companyRepository
	jobs      companyJobLister
	logger    *zap.Logger
}

// NewCompanyService constructs the company service.
func NewCompanyService(companies companyRepository, jobRepo companyJobLister, logger *zap.Logger) *CompanyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{companies: companies, jobs: jobRepo, logger: logger}
}

// List returns every company.
func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list companies")
	}
	return companies, nil
}

// Jobs returns the jobs posted by a company.
func (s *CompanyService) Jobs(ctx context.Context, companyID int64) ([]models.Job, error) {
	if err := s.ensure(ctx, companyID); err != nil {
		return nil, err
	}
	jobList, err := s.jobs.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list company jobs")
	}
	return jobList, nil
}

// Applicants returns students who applied to any of the company's jobs.
func (s *CompanyService) Applicants(ctx context.Context, companyID int64) ([]models.CompanyApplicant, error) {
	if err := s.ensure(ctx, companyID); err != nil {
		return nil, err
	}
	applicants, err := s.companies.ListApplicants(ctx, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list company applicants")
	}
	return applicants, nil
}

func (s *CompanyService) ensure(ctx context.Context, id int64) error {
	if _, err := s.companies.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}
	return nil
}
