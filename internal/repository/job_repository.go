package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
)

const jobColumns = `j.id, j.company_id, j.role, j.location, j.package, j.description, j.service_agreement,
        j.registration_link, j.files, j.posted_date, j.interview_date, j.last_date_to_apply, j.min_gpa,
        j.max_backlogs, j.gender_eligibility, j.eligible_branches, j.created_by, j.admin_id, j.created_at, j.updated_at`

const jobDetailColumns = jobColumns + `, c.name AS company_name, c.type AS company_type, c.website AS company_website,
        c.description AS company_description`

// JobRepository persists job postings.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository constructs a JobRepository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a job, using exec when the caller owns a transaction.
func (r *JobRepository) Create(ctx context.Context, exec sqlx.ExtContext, job *models.Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.PostedDate.IsZero() {
		job.PostedDate = now.Truncate(24 * time.Hour)
	}

	const query = `INSERT INTO jobs (company_id, role, location, package, description, service_agreement, registration_link,
        files, posted_date, interview_date, last_date_to_apply, min_gpa, max_backlogs, gender_eligibility, eligible_branches,
        created_by, admin_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19) RETURNING id`
	err := sqlx.GetContext(ctx, r.exec(exec), &job.ID, query,
		job.CompanyID, job.Role, job.Location, job.Package, job.Description, job.ServiceAgreement, job.RegistrationLink,
		job.Files, job.PostedDate, job.InterviewDate, job.LastDateToApply, job.MinGPA, job.MaxBacklogs, job.GenderEligibility,
		job.EligibleBranches, job.CreatedBy, job.AdminID, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// Update writes every mutable column of job.
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().UTC()
	const query = `UPDATE jobs SET company_id = :company_id, role = :role, location = :location, package = :package,
        description = :description, service_agreement = :service_agreement, registration_link = :registration_link,
        files = :files, interview_date = :interview_date, last_date_to_apply = :last_date_to_apply, min_gpa = :min_gpa,
        max_backlogs = :max_backlogs, gender_eligibility = :gender_eligibility, eligible_branches = :eligible_branches,
        updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return requireRow(res)
}

// Delete removes a job. sql.ErrNoRows is returned when nothing matched.
func (r *JobRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return requireRow(res)
}

// FindByID loads a job row.
func (r *JobRepository) FindByID(ctx context.Context, id int64) (*models.Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs j WHERE j.id = $1"
	var job models.Job
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// FindDetail loads a job with its company.
func (r *JobRepository) FindDetail(ctx context.Context, id int64) (*models.JobDetail, error) {
	query := "SELECT " + jobDetailColumns + " FROM jobs j JOIN companies c ON c.id = j.company_id WHERE j.id = $1"
	var job models.JobDetail
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns a page of jobs newest first.
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.JobDetail, int, error) {
	var (
		args       []interface{}
		conditions = []string{"1=1"}
	)
	if filter.AdminID != nil {
		args = append(args, *filter.AdminID)
		conditions = append(conditions, fmt.Sprintf("j.admin_id = $%d", len(args)))
	}
	if filter.OpenOn != nil {
		args = append(args, *filter.OpenOn)
		conditions = append(conditions, fmt.Sprintf("j.last_date_to_apply >= $%d", len(args)))
	}
	return r.page(ctx, strings.Join(conditions, " AND "), args, filter.Page, filter.PageSize)
}

// ListEligibleForStudent returns open jobs whose rules the student satisfies and has not applied to.
func (r *JobRepository) ListEligibleForStudent(ctx context.Context, filter models.EligibleJobFilter, branch string) ([]models.JobDetail, int, error) {
	args := []interface{}{filter.OpenOn, filter.StudentID, strings.ToLower(strings.TrimSpace(filter.Gender)), filter.Backlogs}
	conditions := []string{
		"j.last_date_to_apply >= $1",
		"NOT EXISTS (SELECT 1 FROM applications a WHERE a.job_id = j.id AND a.student_id = $2)",
		"(j.gender_eligibility = 'all' OR j.gender_eligibility = $3)",
		"(j.max_backlogs IS NULL OR j.max_backlogs >= $4)",
	}
	if filter.GPA != nil {
		args = append(args, *filter.GPA)
		conditions = append(conditions, fmt.Sprintf("j.min_gpa <= $%d", len(args)))
	} else {
		conditions = append(conditions, "j.min_gpa = 0")
	}
	args = append(args, strings.ToLower(strings.TrimSpace(branch)))
	conditions = append(conditions, fmt.Sprintf(
		"(COALESCE(TRIM(j.eligible_branches), '') = '' OR EXISTS (SELECT 1 FROM unnest(string_to_array(j.eligible_branches, ',')) b WHERE LOWER(TRIM(b)) = $%d))",
		len(args)))

	return r.page(ctx, strings.Join(conditions, " AND "), args, filter.Page, filter.PageSize)
}

// ListByCompany returns all jobs posted by a company.
func (r *JobRepository) ListByCompany(ctx context.Context, companyID int64) ([]models.Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs j WHERE j.company_id = $1 ORDER BY j.posted_date DESC, j.id DESC"
	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, query, companyID); err != nil {
		return nil, fmt.Errorf("list company jobs: %w", err)
	}
	return jobs, nil
}

func (r *JobRepository) page(ctx context.Context, where string, args []interface{}, page, size int) ([]models.JobDetail, int, error) {
	page, size = normalizePage(page, size)
	base := "FROM jobs j JOIN companies c ON c.id = j.company_id WHERE " + where

	query := fmt.Sprintf("SELECT %s %s ORDER BY j.posted_date DESC, j.id DESC LIMIT %d OFFSET %d",
		jobDetailColumns, base, size, (page-1)*size)
	var jobs []models.JobDetail
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}
	return jobs, total, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return page, size
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
