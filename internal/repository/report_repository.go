package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
)

// ReportRepository runs the aggregate queries behind placement reports.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// PlacedStudents lists placements, optionally restricted to a joining year.
func (r *ReportRepository) PlacedStudents(ctx context.Context, filter models.ReportFilter) ([]models.PlacedStudentRow, error) {
	where, args := reportConditions(filter)
	query := `SELECT p.id AS placement_id, s.reg_no, TRIM(s.first_name || ' ' || s.last_name) AS student_name,
        s.specialization AS branch, s.gender, c.name AS company_name, j.role AS job_role, p.salary_offered, p.joining_date
        FROM placements p
        JOIN students s ON s.id = p.student_id
        JOIN companies c ON c.id = p.company_id
        JOIN jobs j ON j.id = p.job_id` + where + `
        ORDER BY c.name ASC, s.reg_no ASC`
	var rows []models.PlacedStudentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("placed students report: %w", err)
	}
	return rows, nil
}

// EligibleStudents evaluates the job's rules in one query and flags students who already applied.
func (r *ReportRepository) EligibleStudents(ctx context.Context, job *models.Job) ([]models.EligibleStudentRow, error) {
	args := []interface{}{job.ID}
	conditions := []string{"1=1"}
	if g := strings.ToLower(job.GenderEligibility); g != "" && g != models.GenderAll {
		args = append(args, g)
		conditions = append(conditions, fmt.Sprintf("LOWER(s.gender) = $%d", len(args)))
	}
	if job.MinGPA > 0 {
		args = append(args, job.MinGPA)
		conditions = append(conditions, fmt.Sprintf("s.current_gpa >= $%d", len(args)))
	}
	if job.MaxBacklogs != nil {
		args = append(args, *job.MaxBacklogs)
		conditions = append(conditions, fmt.Sprintf("s.backlogs <= $%d", len(args)))
	}
	if job.EligibleBranches != nil && strings.TrimSpace(*job.EligibleBranches) != "" {
		args = append(args, *job.EligibleBranches)
		conditions = append(conditions, fmt.Sprintf(
			"LOWER(TRIM(s.specialization)) IN (SELECT LOWER(TRIM(b)) FROM unnest(string_to_array($%d, ',')) b)", len(args)))
	}

	query := `SELECT s.id AS student_id, s.reg_no, TRIM(s.first_name || ' ' || s.last_name) AS name, s.email,
        s.specialization AS branch, s.gender, s.current_gpa, s.backlogs,
        EXISTS (SELECT 1 FROM applications a WHERE a.student_id = s.id AND a.job_id = $1) AS applied
        FROM students s WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY s.reg_no ASC`
	var rows []models.EligibleStudentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("eligible students report: %w", err)
	}
	return rows, nil
}

// Summary returns overall totals plus the highest package and the company with most placements.
func (r *ReportRepository) Summary(ctx context.Context, filter models.ReportFilter) (*models.PlacementSummary, error) {
	where, args := reportConditions(models.ReportFilter{Year: filter.Year})
	query := `WITH scoped AS (
            SELECT p.* FROM placements p JOIN students s ON s.id = p.student_id` + where + `
        ), top_company AS (
            SELECT c.name, COUNT(*) AS placed FROM scoped sc JOIN companies c ON c.id = sc.company_id
            GROUP BY c.id, c.name ORDER BY placed DESC, c.name ASC LIMIT 1
        )
        SELECT
            (SELECT COUNT(*) FROM companies) AS total_companies,
            (SELECT COUNT(*) FROM jobs) AS total_jobs,
            (SELECT COUNT(*) FROM scoped) AS total_placements,
            (SELECT COUNT(DISTINCT student_id) FROM scoped) AS placed_students,
            (SELECT MAX(salary_offered) FROM scoped) AS highest_package,
            (SELECT ROUND(AVG(salary_offered), 2) FROM scoped) AS average_package,
            (SELECT name FROM top_company) AS top_company,
            COALESCE((SELECT placed FROM top_company), 0) AS top_company_placed`
	var summary models.PlacementSummary
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		return nil, fmt.Errorf("placement summary: %w", err)
	}
	return &summary, nil
}

// Breakdown groups placements by gender and company.
func (r *ReportRepository) Breakdown(ctx context.Context, filter models.ReportFilter) ([]models.PlacementBreakdownRow, error) {
	where, args := reportConditions(filter)
	query := `SELECT s.gender, c.id AS company_id, c.name AS company_name, COUNT(p.id) AS students_placed,
        ROUND(AVG(p.salary_offered), 2) AS avg_salary
        FROM placements p
        JOIN students s ON s.id = p.student_id
        JOIN companies c ON c.id = p.company_id` + where + `
        GROUP BY s.gender, c.id, c.name
        ORDER BY c.name ASC, s.gender ASC`
	var rows []models.PlacementBreakdownRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("placement breakdown: %w", err)
	}
	return rows, nil
}

func reportConditions(filter models.ReportFilter) (string, []interface{}) {
	var (
		args       []interface{}
		conditions []string
	)
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM p.joining_date) = $%d", len(args)))
	}
	if filter.Gender != "" {
		args = append(args, strings.ToLower(filter.Gender))
		conditions = append(conditions, fmt.Sprintf("LOWER(s.gender) = $%d", len(args)))
	}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		conditions = append(conditions, fmt.Sprintf("p.company_id = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
