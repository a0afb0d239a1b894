package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
)

type companyDirectoryMock struct {
	companies  []models.Company
	applicants []models.CompanyApplicant
	jobs       []models.Job
}

func (m *companyDirectoryMock) FindByID(_ context.Context, id int64) (*models.Company, error) {
	for _, c := range m.companies {
		if c.ID == id {
			company := c
			return &company, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *companyDirectoryMock) List(context.Context) ([]models.Company, error) {
	return m.companies, nil
}

func (m *companyDirectoryMock) ListApplicants(_ context.Context, companyID int64) ([]models.CompanyApplicant, error) {
	return m.applicants, nil
}

func (m *companyDirectoryMock) ListByCompany(_ context.Context, companyID int64) ([]models.Job, error) {
	var out []models.Job
	for _, j := range m.jobs {
		if j.CompanyID == companyID {
			out = append(out, j)
		}
	}
	return out, nil
}

func TestCompanyDirectory(t *testing.T) {
	repo := &companyDirectoryMock{
		companies:  []models.Company{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Initech"}},
		applicants: []models.CompanyApplicant{{StudentID: 5, JobID: 3}},
		jobs:       []models.Job{{ID: 3, CompanyID: 1}, {ID: 4, CompanyID: 2}},
	}
	svc := NewCompanyService(repo, repo, nil)

	companies, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, companies, 2)

	jobList, err := svc.Jobs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, jobList, 1)
	assert.Equal(t, int64(3), jobList[0].ID)

	applicants, err := svc.Applicants(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, applicants, 1)

	_, err = svc.Jobs(context.Background(), 9)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = svc.Applicants(context.Background(), 9)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
