package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sravanmaichrla/campus-placement-hub/internal/dto"
	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
)

type applicationRepository interface {
	Create(ctx context.Context, app *models.Application) (bool, error)
	Exists(ctx context.Context, studentID, jobID int64) (bool, error)
	FindByID(ctx context.Context, id int64) (*models.Application, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error
	ListForStudent(ctx context.Context, studentID int64) ([]models.StudentApplication, error)
	ListForJob(ctx context.Context, jobID int64) ([]models.Applicant, error)
}

type jobReader interface {
	FindByID(ctx context.Context, id int64) (*models.Job, error)
}

// ApplicationService registers student applications.
type ApplicationService struct {
	applications applicationRepository
	jobs         jobReader
	students     studentReader
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewApplicationService constructs the application service.
func NewApplicationService(applications applicationRepository, jobRepo jobReader, students studentReader, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{applications: applications, jobs: jobRepo, students: students, validator: validate, logger: logger}
}

// Apply records that studentID applied to jobID on now. Checks run in order: job, student, duplicate, deadline.
func (s *ApplicationService) Apply(ctx context.Context, studentID, jobID int64, now time.Time) (*models.Application, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	exists, err := s.applications.Exists(ctx, studentID, jobID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check application")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateApplication, "")
	}

	today := dateOnly(now)
	if today.After(dateOnly(job.LastDateToApply)) {
		return nil, appErrors.Clone(appErrors.ErrDeadlineExpired, "")
	}

	app := &models.Application{
		JobID:       jobID,
		StudentID:   studentID,
		Status:      models.ApplicationApplied,
		AppliedDate: now.UTC(),
	}
	created, err := s.applications.Create(ctx, app)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}
	if !created {
		// A concurrent request won the unique constraint.
		return nil, appErrors.Clone(appErrors.ErrDuplicateApplication, "")
	}

	s.logger.Info("application created", zap.Int64("job_id", jobID), zap.Int64("student_id", studentID), zap.Int64("application_id", app.ID))
	return app, nil
}

// ListForStudent returns the student's applications with the stage of each job on now.
func (s *ApplicationService) ListForStudent(ctx context.Context, studentID int64, now time.Time) ([]models.StudentApplication, error) {
	apps, err := s.applications.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	for i := range apps {
		apps[i].Stage = JobStageOn(apps[i].InterviewDate, apps[i].LastDateToApply, now)
	}
	return apps, nil
}

// ListForJob returns the applicants of a job.
func (s *ApplicationService) ListForJob(ctx context.Context, jobID int64) ([]models.Applicant, error) {
	if _, err := s.jobs.FindByID(ctx, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	applicants, err := s.applications.ListForJob(ctx, jobID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applicants")
	}
	return applicants, nil
}

// UpdateStatus changes the status of an application. Nothing else is mutable.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id int64, req dto.UpdateApplicationStatusRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status")
	}
	status := models.ApplicationStatus(req.Status)
	if err := s.applications.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}
	app, err := s.applications.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// JobStageOn derives the lifecycle phase of a job on the given day.
func JobStageOn(interview, lastDate, now time.Time) models.JobStage {
	today := dateOnly(now)
	switch {
	case !interview.IsZero() && dateOnly(interview).Before(today):
		return models.StageCompleted
	case !lastDate.IsZero() && dateOnly(lastDate).Before(today):
		return models.StageCompleted
	case !interview.IsZero() && dateOnly(interview).Equal(today):
		return models.StageOngoing
	default:
		return models.StageUpcoming
	}
}
