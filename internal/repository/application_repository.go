package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
)

// ApplicationRepository persists job applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts app unless the (job, student) pair already exists. It reports whether a row was written.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) (bool, error) {
	const query = `INSERT INTO applications (job_id, student_id, status, applied_date)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (job_id, student_id) DO NOTHING
        RETURNING id`
	err := r.db.GetContext(ctx, &app.ID, query, app.JobID, app.StudentID, app.Status, app.AppliedDate)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create application: %w", err)
	}
	return true, nil
}

// Exists reports whether the student has applied to the job.
func (r *ApplicationRepository) Exists(ctx context.Context, studentID, jobID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM applications WHERE student_id = $1 AND job_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, jobID); err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return exists, nil
}

// AppliedStudentIDs returns the subset of studentIDs with an application for jobID.
func (r *ApplicationRepository) AppliedStudentIDs(ctx context.Context, jobID int64, studentIDs []int64) (map[int64]struct{}, error) {
	applied := make(map[int64]struct{})
	if len(studentIDs) == 0 {
		return applied, nil
	}
	const query = `SELECT student_id FROM applications WHERE job_id = $1 AND student_id = ANY($2)`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, jobID, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("list applied students: %w", err)
	}
	for _, id := range ids {
		applied[id] = struct{}{}
	}
	return applied, nil
}

// ListApplicantPage returns the next keyset page of students who applied to jobID.
func (r *ApplicationRepository) ListApplicantPage(ctx context.Context, jobID, afterStudentID int64, limit int) ([]models.Student, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT %s FROM applications a JOIN students s ON s.id = a.student_id
        WHERE a.job_id = $1 AND s.id > $2 ORDER BY s.id ASC LIMIT %d`, studentColumns, limit)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, jobID, afterStudentID); err != nil {
		return nil, fmt.Errorf("list applicant page: %w", err)
	}
	return students, nil
}

// ListForStudent returns the student's applications joined with job and company.
func (r *ApplicationRepository) ListForStudent(ctx context.Context, studentID int64) ([]models.StudentApplication, error) {
	const query = `SELECT a.id, a.job_id, a.student_id, a.status, a.applied_date,
        j.role AS job_role, j.location AS job_location, j.package, j.company_id, c.name AS company_name,
        j.interview_date, j.last_date_to_apply
        FROM applications a
        JOIN jobs j ON j.id = a.job_id
        JOIN companies c ON c.id = j.company_id
        WHERE a.student_id = $1
        ORDER BY a.applied_date DESC, a.id DESC`
	var apps []models.StudentApplication
	if err := r.db.SelectContext(ctx, &apps, query, studentID); err != nil {
		return nil, fmt.Errorf("list student applications: %w", err)
	}
	return apps, nil
}

// ListForJob returns a job's applicants.
func (r *ApplicationRepository) ListForJob(ctx context.Context, jobID int64) ([]models.Applicant, error) {
	const query = `SELECT a.id AS application_id, s.id AS student_id, s.reg_no, s.first_name, s.last_name, s.email,
        s.specialization, s.current_gpa, a.status, a.applied_date
        FROM applications a
        JOIN students s ON s.id = a.student_id
        WHERE a.job_id = $1
        ORDER BY a.applied_date ASC, a.id ASC`
	var applicants []models.Applicant
	if err := r.db.SelectContext(ctx, &applicants, query, jobID); err != nil {
		return nil, fmt.Errorf("list job applicants: %w", err)
	}
	return applicants, nil
}

// FindByID loads an application. sql.ErrNoRows is returned unwrapped.
func (r *ApplicationRepository) FindByID(ctx context.Context, id int64) (*models.Application, error) {
	const query = `SELECT id, job_id, student_id, status, applied_date FROM applications WHERE id = $1`
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// UpdateStatus sets the status of an application.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return requireRow(res)
}
