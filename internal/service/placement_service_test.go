package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravanmaichrla/campus-placement-hub/internal/dto"
	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/storage"
)

type placementRepoMock struct {
	refs       models.PlacementRefs
	placements map[int64]*models.Placement
	created    []*models.Placement
	offer      struct {
		url    string
		status models.PlacementStatus
	}
}

func newPlacementRepoMock() *placementRepoMock {
	return &placementRepoMock{
		refs:       models.PlacementRefs{StudentExists: true, CompanyExists: true, JobExists: true},
		placements: make(map[int64]*models.Placement),
	}
}

func (m *placementRepoMock) CheckRefs(context.Context, int64, int64, int64) (models.PlacementRefs, error) {
	return m.refs, nil
}

func (m *placementRepoMock) Create(_ context.Context, p *models.Placement) error {
	p.ID = int64(len(m.placements) + 1)
	copied := *p
	m.placements[p.ID] = &copied
	m.created = append(m.created, p)
	return nil
}

func (m *placementRepoMock) Update(_ context.Context, p *models.Placement) error {
	if _, ok := m.placements[p.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *p
	m.placements[p.ID] = &copied
	return nil
}

func (m *placementRepoMock) Delete(_ context.Context, id int64) error {
	if _, ok := m.placements[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.placements, id)
	return nil
}

func (m *placementRepoMock) FindByID(_ context.Context, id int64) (*models.Placement, error) {
	p, ok := m.placements[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (m *placementRepoMock) FindDetail(ctx context.Context, id int64) (*models.PlacementDetail, error) {
	p, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.PlacementDetail{Placement: *p}, nil
}

func (m *placementRepoMock) List(context.Context, models.PlacementFilter) ([]models.PlacementDetail, int, error) {
	out := make([]models.PlacementDetail, 0, len(m.placements))
	for _, p := range m.placements {
		out = append(out, models.PlacementDetail{Placement: *p})
	}
	return out, len(out), nil
}

func (m *placementRepoMock) ListForStudent(_ context.Context, studentID int64) ([]models.PlacementDetail, error) {
	var out []models.PlacementDetail
	for _, p := range m.placements {
		if p.StudentID == studentID {
			out = append(out, models.PlacementDetail{Placement: *p})
		}
	}
	return out, nil
}

func (m *placementRepoMock) SetOfferLetter(_ context.Context, id, studentID int64, url string, status models.PlacementStatus) error {
	p, ok := m.placements[id]
	if !ok || p.StudentID != studentID {
		return sql.ErrNoRows
	}
	m.offer.url = url
	m.offer.status = status
	return nil
}

func newPlacementFixture(t *testing.T) (*PlacementService, *placementRepoMock) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir(), 1<<20)
	require.NoError(t, err)
	files := NewFileService(store, storage.NewSignedURLSigner("secret", time.Hour), "/api/v1/files", nil)
	repo := newPlacementRepoMock()
	return NewPlacementService(repo, files, nil, nil), repo
}

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func validPlacementRequest() dto.CreatePlacementRequest {
	joining := "2026-07-01"
	return dto.CreatePlacementRequest{
		StudentID:     5,
		CompanyID:     1,
		JobID:         1,
		SalaryOffered: decimalPtr("650000.456"),
		JoiningDate:   &joining,
	}
}

func TestRecordPlacement(t *testing.T) {
	svc, repo := newPlacementFixture(t)

	p, err := svc.Record(context.Background(), validPlacementRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, models.PlacementPending, p.Status)
	assert.Equal(t, "650000.46", p.SalaryOffered.StringFixed(2))
	require.NotNil(t, p.JoiningDate)
	assert.Equal(t, day(2026, time.July, 1), *p.JoiningDate)
	assert.Len(t, repo.created, 1)
}

func TestRecordPlacementValidation(t *testing.T) {
	svc, repo := newPlacementFixture(t)

	negative := validPlacementRequest()
	negative.SalaryOffered = decimalPtr("-1")
	_, err := svc.Record(context.Background(), negative)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	badStatus := validPlacementRequest()
	badStatus.Status = "maybe"
	_, err = svc.Record(context.Background(), badStatus)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	missing := validPlacementRequest()
	missing.StudentID = 0
	_, err = svc.Record(context.Background(), missing)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	assert.Empty(t, repo.created)
}

func TestRecordPlacementRequiresSalary(t *testing.T) {
	svc, repo := newPlacementFixture(t)

	var req dto.CreatePlacementRequest
	require.NoError(t, json.Unmarshal([]byte(`{"student_id":5,"company_id":1,"job_id":1}`), &req))

	_, err := svc.Record(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.CodeValidation))
	assert.Empty(t, repo.created)
}

func TestRecordPlacementNamesMissingReference(t *testing.T) {
	svc, repo := newPlacementFixture(t)
	repo.refs.CompanyExists = false

	_, err := svc.Record(context.Background(), validPlacementRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "company not found", err.Error())
}

func TestUpdatePlacementMergesFields(t *testing.T) {
	svc, repo := newPlacementFixture(t)
	_, err := svc.Record(context.Background(), validPlacementRequest())
	require.NoError(t, err)
	repo.refs.JobExists = false

	status := "Yes"
	updated, err := svc.Update(context.Background(), 1, dto.UpdatePlacementRequest{Status: &status})
	require.NoError(t, err, "refs are only rechecked when an id changes")
	assert.Equal(t, models.PlacementAccepted, updated.Status)
	assert.Equal(t, "650000.46", updated.SalaryOffered.StringFixed(2))

	jobID := int64(3)
	_, err = svc.Update(context.Background(), 1, dto.UpdatePlacementRequest{JobID: &jobID})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Update(context.Background(), 40, dto.UpdatePlacementRequest{Status: &status})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestDeletePlacementTwice(t *testing.T) {
	svc, _ := newPlacementFixture(t)
	_, err := svc.Record(context.Background(), validPlacementRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 1))
	err = svc.Delete(context.Background(), 1)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestUploadOfferLetter(t *testing.T) {
	svc, repo := newPlacementFixture(t)
	_, err := svc.Record(context.Background(), validPlacementRequest())
	require.NoError(t, err)

	resp, err := svc.UploadOfferLetter(context.Background(), 1, 5, strings.NewReader("%PDF-1.4"), "offer.pdf", "Yes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.OfferLetterURL, "offer_letters/files/offer_"), resp.OfferLetterURL)
	assert.Equal(t, "Yes", resp.Status)
	assert.True(t, strings.HasPrefix(resp.DownloadURL, "/api/v1/files/"))
	assert.Equal(t, models.PlacementAccepted, repo.offer.status)
	assert.Equal(t, resp.OfferLetterURL, repo.offer.url)
}

func TestUploadOfferLetterRejections(t *testing.T) {
	svc, _ := newPlacementFixture(t)
	_, err := svc.Record(context.Background(), validPlacementRequest())
	require.NoError(t, err)

	_, err = svc.UploadOfferLetter(context.Background(), 1, 6, nil, "", "Yes")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.UploadOfferLetter(context.Background(), 1, 5, strings.NewReader("MZ"), "offer.exe", "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.UploadOfferLetter(context.Background(), 1, 5, nil, "", "pending")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.UploadOfferLetter(context.Background(), 1, 5, nil, "", "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.UploadOfferLetter(context.Background(), 9, 5, nil, "", "No")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
