package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravanmaichrla/campus-placement-hub/internal/dto"
	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
)

func newApplicationFixture() (*ApplicationService, *memStore) {
	store := newMemStore()
	store.addCompany(models.Company{ID: 1, Name: "Acme"})
	store.addJob(models.Job{
		ID:              1,
		CompanyID:       1,
		Role:            "Backend Engineer",
		InterviewDate:   day(2026, time.March, 10),
		LastDateToApply: day(2026, time.March, 1),
	})
	store.addStudent(models.Student{ID: 5, Email: "e@example.edu", Gender: "female", CurrentGPA: gpa(8)})
	return NewApplicationService(memApplications{store}, memJobs{store}, store, nil, nil), store
}

func TestApplyThenDuplicate(t *testing.T) {
	svc, store := newApplicationFixture()
	now := time.Date(2026, time.February, 20, 9, 30, 0, 0, time.UTC)

	app, err := svc.Apply(context.Background(), 5, 1, now)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApplied, app.Status)
	assert.Equal(t, now, app.AppliedDate)

	_, err = svc.Apply(context.Background(), 5, 1, now.Add(time.Hour))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateApplication))
	assert.Equal(t, 1, store.applicationCount(5, 1))
}

func TestApplyDeadlineBoundary(t *testing.T) {
	svc, store := newApplicationFixture()

	lastMinute := time.Date(2026, time.March, 1, 23, 59, 0, 0, time.UTC)
	_, err := svc.Apply(context.Background(), 5, 1, lastMinute)
	require.NoError(t, err, "the deadline day itself is open")

	store.addStudent(models.Student{ID: 6, Email: "f@example.edu"})
	_, err = svc.Apply(context.Background(), 6, 1, time.Date(2026, time.March, 2, 0, 1, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDeadlineExpired))
	assert.Zero(t, store.applicationCount(6, 1))
}

func TestApplyCheckOrder(t *testing.T) {
	svc, _ := newApplicationFixture()
	late := day(2026, time.April, 1)

	_, err := svc.Apply(context.Background(), 5, 42, late)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Contains(t, err.Error(), "job")

	_, err = svc.Apply(context.Background(), 77, 1, late)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Contains(t, err.Error(), "student")
}

func TestApplyDuplicateWinsOverDeadline(t *testing.T) {
	svc, _ := newApplicationFixture()
	_, err := svc.Apply(context.Background(), 5, 1, day(2026, time.February, 1))
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), 5, 1, day(2026, time.April, 1))
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateApplication))
}

type racingApplications struct{ memApplications }

// Exists always misses so the unique constraint is the only guard.
func (r racingApplications) Exists(context.Context, int64, int64) (bool, error) { return false, nil }

func TestApplyLosesInsertRace(t *testing.T) {
	_, store := newApplicationFixture()
	svc := NewApplicationService(racingApplications{memApplications{store}}, memJobs{store}, store, nil, nil)
	now := day(2026, time.February, 1)

	_, err := svc.Apply(context.Background(), 5, 1, now)
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), 5, 1, now)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateApplication))
	assert.Equal(t, 1, store.applicationCount(5, 1))
}

func TestListForStudentDerivesStage(t *testing.T) {
	svc, store := newApplicationFixture()
	store.addJob(models.Job{ID: 2, CompanyID: 1, InterviewDate: day(2026, time.February, 20), LastDateToApply: day(2026, time.February, 25)})
	store.addJob(models.Job{ID: 3, CompanyID: 1, InterviewDate: day(2026, time.January, 5), LastDateToApply: day(2026, time.January, 1)})
	store.applications = []models.Application{
		{ID: 1, JobID: 1, StudentID: 5},
		{ID: 2, JobID: 2, StudentID: 5},
		{ID: 3, JobID: 3, StudentID: 5},
	}

	apps, err := svc.ListForStudent(context.Background(), 5, time.Date(2026, time.February, 20, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, models.StageUpcoming, apps[0].Stage)
	assert.Equal(t, models.StageOngoing, apps[1].Stage)
	assert.Equal(t, models.StageCompleted, apps[2].Stage)
	assert.Equal(t, "Acme", apps[0].CompanyName)
}

func TestUpdateApplicationStatus(t *testing.T) {
	svc, store := newApplicationFixture()
	store.applications = []models.Application{{ID: 1, JobID: 1, StudentID: 5, Status: models.ApplicationApplied}}

	app, err := svc.UpdateStatus(context.Background(), 1, dto.UpdateApplicationStatusRequest{Status: "shortlisted"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationShortlisted, app.Status)

	_, err = svc.UpdateStatus(context.Background(), 1, dto.UpdateApplicationStatusRequest{Status: "hired"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.UpdateStatus(context.Background(), 9, dto.UpdateApplicationStatusRequest{Status: "rejected"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestListForJob(t *testing.T) {
	svc, store := newApplicationFixture()
	store.applications = []models.Application{{ID: 1, JobID: 1, StudentID: 5, Status: models.ApplicationApplied}}

	applicants, err := svc.ListForJob(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, applicants, 1)
	assert.Equal(t, "e@example.edu", applicants[0].Email)

	_, err = svc.ListForJob(context.Background(), 8)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
