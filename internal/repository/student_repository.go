package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
)

const studentColumns = `s.id, s.reg_no, s.email, s.first_name, s.last_name, s.gender, s.current_gpa, s.backlogs,
        s.specialization, s.degree, s.batch, s.contact_no, s.resume_url, s.created_at, s.updated_at`

// StudentRepository reads student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID fetches a student. sql.ErrNoRows is returned unwrapped when absent.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students s WHERE s.id = $1"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListCandidatePage returns the next keyset page of students that pass the pushed-down
// eligibility predicates and have not applied to the job.
func (r *StudentRepository) ListCandidatePage(ctx context.Context, filter models.CandidateFilter) ([]models.Student, error) {
	args := []interface{}{filter.AfterID, filter.JobID}
	conditions := []string{
		"s.id > $1",
		"NOT EXISTS (SELECT 1 FROM applications a WHERE a.student_id = s.id AND a.job_id = $2)",
	}

	if gender := strings.ToLower(strings.TrimSpace(filter.Gender)); gender != "" && gender != models.GenderAll {
		args = append(args, gender)
		conditions = append(conditions, fmt.Sprintf("LOWER(s.gender) = $%d", len(args)))
	}
	if filter.MaxBacklogs != nil {
		args = append(args, *filter.MaxBacklogs)
		conditions = append(conditions, fmt.Sprintf("s.backlogs <= $%d", len(args)))
	}
	if filter.MinGPA > 0 {
		args = append(args, filter.MinGPA)
		conditions = append(conditions, fmt.Sprintf("s.current_gpa >= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf("SELECT %s FROM students s WHERE %s ORDER BY s.id ASC LIMIT %d",
		studentColumns, strings.Join(conditions, " AND "), limit)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list candidate students: %w", err)
	}
	return students, nil
}
