package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
)

// CompanyRepository persists companies.
type CompanyRepository struct {
	db *sqlx.DB
}

func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a company and sets its ID.
func (r *CompanyRepository) Create(ctx context.Context, exec sqlx.ExtContext, company *models.Company) error {
	const query = `INSERT INTO companies (name, type, website, description, contact_person, address)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := sqlx.GetContext(ctx, r.exec(exec), &company.ID, query,
		company.Name, company.Type, company.Website, company.Description, company.ContactPerson, company.Address)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// FindByID loads a company. sql.ErrNoRows is returned unwrapped.
func (r *CompanyRepository) FindByID(ctx context.Context, id int64) (*models.Company, error) {
	const query = `SELECT id, name, type, website, description, contact_person, address FROM companies WHERE id = $1`
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, id); err != nil {
		return nil, err
	}
	return &company, nil
}

// List returns every company ordered by name.
func (r *CompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	const query = `SELECT id, name, type, website, description, contact_person, address FROM companies ORDER BY name ASC, id ASC`
	var companies []models.Company
	if err := r.db.SelectContext(ctx, &companies, query); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// ListApplicants returns students who applied to any job of the company.
func (r *CompanyRepository) ListApplicants(ctx context.Context, companyID int64) ([]models.CompanyApplicant, error) {
	const query = `SELECT s.id AS student_id, s.reg_no, s.first_name, s.last_name, s.email, j.id AS job_id, j.role AS job_role, a.status
        FROM applications a
        JOIN jobs j ON j.id = a.job_id
        JOIN students s ON s.id = a.student_id
        WHERE j.company_id = $1
        ORDER BY j.id ASC, s.id ASC`
	var applicants []models.CompanyApplicant
	if err := r.db.SelectContext(ctx, &applicants, query, companyID); err != nil {
		return nil, fmt.Errorf("list company applicants: %w", err)
	}
	return applicants, nil
}
