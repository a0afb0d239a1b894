package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sravanmaichrla/campus-placement-hub/internal/dto"
	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/database"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/jobs"
)

const dateLayout = "2006-01-02"

type jobRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, job *models.Job) error
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Job, error)
	FindDetail(ctx context.Context, id int64) (*models.JobDetail, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.JobDetail, int, error)
	ListEligibleForStudent(ctx context.Context, filter models.EligibleJobFilter, branch string) ([]models.JobDetail, int, error)
}

type jobCompanyRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, company *models.Company) error
	FindByID(ctx context.Context, id int64) (*models.Company, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type applicationChecker interface {
	Exists(ctx context.Context, studentID, jobID int64) (bool, error)
}

// jobFileStore keeps job attachments under the jobs/ scope of the upload root.
type jobFileStore interface {
	Save(ctx context.Context, r io.Reader, name, scope string) (string, error)
	Delete(rel string) error
}

const jobFileScope = "jobs"

// JobServiceConfig carries optional collaborators of the job service.
type JobServiceConfig struct {
	// Queue receives dispatch tasks. Notifications are off when nil.
	Queue    jobs.Enqueuer
	Cache    *CacheService
	Files    jobFileStore
	CacheTTL time.Duration
	Now      func() time.Time
}

// JobService manages job postings and triggers their notifications.
type JobService struct {
	jobs         jobRepository
	companies    jobCompanyRepository
	students     studentReader
	applications applicationChecker
	tx           database.TxBeginner
	queue        jobs.Enqueuer
	cache        *CacheService
	files        jobFileStore
	cacheTTL     time.Duration
	now          func() time.Time
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewJobService constructs the job service.
func NewJobService(
	jobRepo jobRepository,
	companies jobCompanyRepository,
	students studentReader,
	applications applicationChecker,
	tx database.TxBeginner,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg JobServiceConfig,
) *JobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &JobService{
		jobs:         jobRepo,
		companies:    companies,
		students:     students,
		applications: applications,
		tx:           tx,
		queue:        cfg.Queue,
		cache:        cfg.Cache,
		files:        cfg.Files,
		cacheTTL:     cfg.CacheTTL,
		now:          cfg.Now,
		validator:    validate,
		logger:       logger,
	}
}

// Create stores the company (unless an existing one is referenced) and the job in one transaction,
// then queues the new-posting notification run.
func (s *JobService) Create(ctx context.Context, adminID int64, createdBy string, req dto.CreateJobRequest) (*dto.JobCreatedResponse, error) {
	req.GenderEligibility = normalizeGender(req.GenderEligibility)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload")
	}
	if req.Package.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "package must not be negative")
	}
	interview, err := parseDate("interview_date", req.InterviewDate)
	if err != nil {
		return nil, err
	}
	lastDate, err := parseDate("last_date_to_apply", req.LastDateToApply)
	if err != nil {
		return nil, err
	}

	job := &models.Job{
		Role:              strings.TrimSpace(req.Role),
		Location:          strings.TrimSpace(req.Location),
		Package:           req.Package.Round(2),
		Description:       req.Description,
		ServiceAgreement:  req.ServiceAgreement,
		RegistrationLink:  req.RegistrationLink,
		PostedDate:        dateOnly(s.now()),
		InterviewDate:     interview,
		LastDateToApply:   lastDate,
		MinGPA:            req.MinGPA,
		MaxBacklogs:       req.MaxBacklogs,
		GenderEligibility: req.GenderEligibility,
		EligibleBranches:  trimmedOrNil(req.EligibleBranches),
		CreatedBy:         createdBy,
	}
	if adminID > 0 {
		job.AdminID = &adminID
	}

	if job.Files, err = s.saveAttachment(ctx, req.Attachment); err != nil {
		return nil, err
	}

	var companyID int64
	err = database.WithTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if req.CompanyID != nil {
			if _, err := s.companies.FindByID(ctx, *req.CompanyID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return appErrors.Clone(appErrors.ErrNotFound, "company not found")
				}
				return err
			}
			companyID = *req.CompanyID
		} else {
			company := &models.Company{
				Name:          strings.TrimSpace(req.CompanyName),
				Type:          req.CompanyType,
				Website:       req.CompanyWebsite,
				Description:   req.CompanyDescription,
				ContactPerson: req.ContactPerson,
				Address:       req.Address,
			}
			if err := s.companies.Create(ctx, tx, company); err != nil {
				return err
			}
			companyID = company.ID
		}
		job.CompanyID = companyID
		return s.jobs.Create(ctx, tx, job)
	})
	if err != nil {
		s.removeAttachments(job.ID, job.Files)
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create job")
	}

	s.enqueueDispatch(ctx, models.DispatchTask{JobID: job.ID, Trigger: models.NewPostingTrigger()})
	return &dto.JobCreatedResponse{JobID: job.ID, CompanyID: companyID}, nil
}

// Update merges the provided fields into the job. A new attachment replaces the stored one.
// A changed interview date queues a reschedule run.
func (s *JobService) Update(ctx context.Context, id int64, req dto.UpdateJobRequest) (*models.Job, error) {
	if req.GenderEligibility != nil {
		g := normalizeGender(*req.GenderEligibility)
		req.GenderEligibility = &g
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload")
	}

	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	previousInterview := job.InterviewDate
	previousFiles := job.Files

	if err := applyJobUpdate(job, req); err != nil {
		return nil, err
	}
	if req.Attachment != nil {
		if job.Files, err = s.saveAttachment(ctx, req.Attachment); err != nil {
			return nil, err
		}
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		if job.Files != previousFiles {
			s.removeAttachments(id, job.Files)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update job")
	}
	s.invalidate(ctx, id)
	if job.Files != previousFiles {
		s.removeAttachments(id, previousFiles)
	}

	if RescheduleRequired(&previousInterview, &job.InterviewDate) {
		s.enqueueDispatch(ctx, models.DispatchTask{
			JobID:   job.ID,
			Trigger: models.RescheduleTrigger(previousInterview, job.InterviewDate),
		})
	}
	return job, nil
}

// applyJobUpdate is the single place optional update fields are validated and merged.
func applyJobUpdate(job *models.Job, req dto.UpdateJobRequest) error {
	if req.Role != nil {
		job.Role = strings.TrimSpace(*req.Role)
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.Package != nil {
		if req.Package.IsNegative() {
			return appErrors.Clone(appErrors.ErrValidation, "package must not be negative")
		}
		job.Package = req.Package.Round(2)
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.ServiceAgreement != nil {
		job.ServiceAgreement = *req.ServiceAgreement
	}
	if req.RegistrationLink != nil {
		job.RegistrationLink = *req.RegistrationLink
	}
	if req.InterviewDate != nil {
		d, err := parseDate("interview_date", *req.InterviewDate)
		if err != nil {
			return err
		}
		job.InterviewDate = d
	}
	if req.LastDateToApply != nil {
		d, err := parseDate("last_date_to_apply", *req.LastDateToApply)
		if err != nil {
			return err
		}
		job.LastDateToApply = d
	}
	if req.MinGPA != nil {
		job.MinGPA = *req.MinGPA
	}
	switch {
	case req.ClearMaxBacklogs && req.MaxBacklogs != nil:
		return appErrors.Clone(appErrors.ErrValidation, "max_backlogs and clear_max_backlogs are mutually exclusive")
	case req.ClearMaxBacklogs:
		job.MaxBacklogs = nil
	case req.MaxBacklogs != nil:
		v := *req.MaxBacklogs
		job.MaxBacklogs = &v
	}
	if req.GenderEligibility != nil {
		job.GenderEligibility = *req.GenderEligibility
	}
	if req.EligibleBranches != nil {
		job.EligibleBranches = trimmedOrNil(req.EligibleBranches)
	}
	return nil
}

// Delete removes the job with its applications and stored attachments.
func (s *JobService) Delete(ctx context.Context, id int64) error {
	job, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "job not found")
		case database.IsForeignKeyViolation(err):
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "job has placement records")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete job")
	}
	s.invalidate(ctx, id)
	s.removeAttachments(id, job.Files)
	return nil
}

// saveAttachment stores a job attachment and returns its path, or "" when there is none.
func (s *JobService) saveAttachment(ctx context.Context, att *dto.Attachment) (string, error) {
	if att == nil || att.Content == nil {
		return "", nil
	}
	if s.files == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "file storage not configured")
	}
	return s.files.Save(ctx, att.Content, att.Name, jobFileScope)
}

// removeAttachments deletes the stored files of a job. Paths outside the jobs scope are never touched.
func (s *JobService) removeAttachments(jobID int64, raw string) {
	if s.files == nil {
		return
	}
	for _, rel := range splitFiles(raw) {
		if !ownedJobFile(rel) {
			s.logger.Warn("skipping job attachment outside the jobs scope", zap.Int64("job_id", jobID), zap.String("path", rel))
			continue
		}
		if err := s.files.Delete(rel); err != nil {
			s.logger.Warn("failed to remove job attachment", zap.Int64("job_id", jobID), zap.String("path", rel), zap.Error(err))
		}
	}
}

func ownedJobFile(rel string) bool {
	clean := path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	return strings.HasPrefix(clean, jobFileScope+"/") && !strings.Contains(clean, "..")
}

// Get returns a job with its company, served from cache when possible.
func (s *JobService) Get(ctx context.Context, id int64) (*models.JobDetail, error) {
	if cached, hit := s.cache.Job(ctx, id); hit {
		return cached, nil
	}

	job, err := s.jobs.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	s.cache.PutJob(ctx, job, s.cacheTTL)
	return job, nil
}

// List returns every job, newest first.
func (s *JobService) List(ctx context.Context, filter models.JobFilter) ([]models.JobDetail, *models.Pagination, error) {
	jobList, total, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}
	page, size := pageBounds(filter.Page, filter.PageSize)
	return jobList, models.NewPagination(page, size, total), nil
}

// ListForAdmin returns the jobs posted by adminID.
func (s *JobService) ListForAdmin(ctx context.Context, adminID int64, page, size int) ([]models.JobDetail, *models.Pagination, error) {
	return s.List(ctx, models.JobFilter{AdminID: &adminID, Page: page, PageSize: size})
}

// ListEligibleForStudent returns open jobs the student is eligible for and has not applied to.
func (s *JobService) ListEligibleForStudent(ctx context.Context, studentID int64, page, size int) ([]models.JobDetail, *models.Pagination, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	filter := models.EligibleJobFilter{
		StudentID: student.ID,
		Gender:    student.Gender,
		GPA:       student.CurrentGPA,
		Backlogs:  student.Backlogs,
		OpenOn:    dateOnly(s.now()),
		Page:      page,
		PageSize:  size,
	}
	jobList, total, err := s.jobs.ListEligibleForStudent(ctx, filter, student.Specialization)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list eligible jobs")
	}
	page, size = pageBounds(page, size)
	return jobList, models.NewPagination(page, size, total), nil
}

// CheckEligibility evaluates one student against one job.
func (s *JobService) CheckEligibility(ctx context.Context, studentID, jobID int64) (*dto.EligibilityResponse, error) {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	applied, err := s.applications.Exists(ctx, studentID, jobID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check application")
	}
	result := Evaluate(*student, *job)
	return &dto.EligibilityResponse{
		JobID:          jobID,
		Eligible:       result.Eligible,
		AlreadyApplied: applied,
		FailedRules:    result.FailedRules,
	}, nil
}

func (s *JobService) load(ctx context.Context, id int64) (*models.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	return job, nil
}

func (s *JobService) loadStudent(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// enqueueDispatch hands the notification run to the queue. The job write has already succeeded,
// so a queue failure is logged and not surfaced.
func (s *JobService) enqueueDispatch(ctx context.Context, task models.DispatchTask) {
	if s.queue == nil {
		return
	}
	payload, err := json.Marshal(task)
	if err != nil {
		s.logger.Error("failed to encode dispatch task", zap.Int64("job_id", task.JobID), zap.Error(err))
		return
	}
	if err := s.queue.Enqueue(ctx, jobs.Task{Type: TaskTypeDispatch, Payload: payload}); err != nil {
		s.logger.Error("failed to enqueue dispatch task",
			zap.Int64("job_id", task.JobID),
			zap.String("trigger", string(task.Trigger.Kind)),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("dispatch task queued", zap.Int64("job_id", task.JobID), zap.String("trigger", string(task.Trigger.Kind)))
}

func (s *JobService) invalidate(ctx context.Context, id int64) {
	s.cache.DropJob(ctx, id)
}

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("%s must use YYYY-MM-DD", field))
	}
	return d, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	d, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// dateOnly drops the clock part of t while keeping its calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizeGender(g string) string {
	g = strings.ToLower(strings.TrimSpace(g))
	if g == "" {
		return models.GenderAll
	}
	return g
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func splitFiles(raw string) []string {
	var out []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func pageBounds(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return page, size
}
