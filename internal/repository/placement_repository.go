package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
)

const placementDetailSelect = `SELECT p.id, p.student_id, p.company_id, p.job_id, p.salary_offered, p.interview_date, p.joining_date,
        p.offer_letter_url, p.status, p.created_at, p.updated_at,
        s.reg_no, TRIM(s.first_name || ' ' || s.last_name) AS student_name, c.name AS company_name, j.role AS job_role
        FROM placements p
        JOIN students s ON s.id = p.student_id
        JOIN companies c ON c.id = p.company_id
        JOIN jobs j ON j.id = p.job_id`

// PlacementRepository persists placement records.
type PlacementRepository struct {
	db *sqlx.DB
}

func NewPlacementRepository(db *sqlx.DB) *PlacementRepository {
	return &PlacementRepository{db: db}
}

// CheckRefs reports in one round trip which of the referenced rows exist.
func (r *PlacementRepository) CheckRefs(ctx context.Context, studentID, companyID, jobID int64) (models.PlacementRefs, error) {
	const query = `SELECT
        EXISTS (SELECT 1 FROM students WHERE id = $1) AS student_exists,
        EXISTS (SELECT 1 FROM companies WHERE id = $2) AS company_exists,
        EXISTS (SELECT 1 FROM jobs WHERE id = $3) AS job_exists`
	var refs models.PlacementRefs
	if err := r.db.GetContext(ctx, &refs, query, studentID, companyID, jobID); err != nil {
		return refs, fmt.Errorf("check placement references: %w", err)
	}
	return refs, nil
}

// Create inserts a placement and sets its ID.
func (r *PlacementRepository) Create(ctx context.Context, p *models.Placement) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	const query = `INSERT INTO placements (student_id, company_id, job_id, salary_offered, interview_date, joining_date,
        offer_letter_url, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := r.db.GetContext(ctx, &p.ID, query, p.StudentID, p.CompanyID, p.JobID, p.SalaryOffered, p.InterviewDate,
		p.JoiningDate, p.OfferLetterURL, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create placement: %w", err)
	}
	return nil
}

// Update writes every mutable column of p.
func (r *PlacementRepository) Update(ctx context.Context, p *models.Placement) error {
	p.UpdatedAt = time.Now().UTC()
	const query = `UPDATE placements SET student_id = :student_id, company_id = :company_id, job_id = :job_id,
        salary_offered = :salary_offered, interview_date = :interview_date, joining_date = :joining_date,
        offer_letter_url = :offer_letter_url, status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("update placement: %w", err)
	}
	return requireRow(res)
}

// Delete removes exactly one placement. sql.ErrNoRows is returned when it does not exist.
func (r *PlacementRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM placements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete placement: %w", err)
	}
	return requireRow(res)
}

// FindByID loads a placement row.
func (r *PlacementRepository) FindByID(ctx context.Context, id int64) (*models.Placement, error) {
	const query = `SELECT id, student_id, company_id, job_id, salary_offered, interview_date, joining_date, offer_letter_url,
        status, created_at, updated_at FROM placements WHERE id = $1`
	var p models.Placement
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindDetail loads a placement with its labels.
func (r *PlacementRepository) FindDetail(ctx context.Context, id int64) (*models.PlacementDetail, error) {
	var p models.PlacementDetail
	if err := r.db.GetContext(ctx, &p, placementDetailSelect+" WHERE p.id = $1", id); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns a page of placements using a single joined query.
func (r *PlacementRepository) List(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementDetail, int, error) {
	var (
		args       []interface{}
		conditions = []string{"1=1"}
	)
	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("p.student_id = $%d", len(args)))
	}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		conditions = append(conditions, fmt.Sprintf("p.company_id = $%d", len(args)))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")
	page, size := normalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s%s ORDER BY p.id DESC LIMIT %d OFFSET %d", placementDetailSelect, where, size, (page-1)*size)
	var placements []models.PlacementDetail
	if err := r.db.SelectContext(ctx, &placements, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list placements: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM placements p"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count placements: %w", err)
	}
	return placements, total, nil
}

// ListForStudent returns every placement of a student.
func (r *PlacementRepository) ListForStudent(ctx context.Context, studentID int64) ([]models.PlacementDetail, error) {
	var placements []models.PlacementDetail
	if err := r.db.SelectContext(ctx, &placements, placementDetailSelect+" WHERE p.student_id = $1 ORDER BY p.id ASC", studentID); err != nil {
		return nil, fmt.Errorf("list student placements: %w", err)
	}
	return placements, nil
}

// SetOfferLetter stores the offer letter path and, when non-empty, the status.
func (r *PlacementRepository) SetOfferLetter(ctx context.Context, id, studentID int64, url string, status models.PlacementStatus) error {
	const query = `UPDATE placements
        SET offer_letter_url = COALESCE(NULLIF($1, ''), offer_letter_url),
            status = COALESCE(NULLIF($2, ''), status),
            updated_at = $3
        WHERE id = $4 AND student_id = $5`
	res, err := r.db.ExecContext(ctx, query, url, string(status), time.Now().UTC(), id, studentID)
	if err != nil {
		return fmt.Errorf("set offer letter: %w", err)
	}
	return requireRow(res)
}
