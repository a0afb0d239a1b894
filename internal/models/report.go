package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlacedStudentRow is one line of the placed-students report.
type PlacedStudentRow struct {
	PlacementID   int64           `db:"placement_id" json:"placement_id"`
	RegNo         string          `db:"reg_no" json:"reg_no"`
	StudentName   string          `db:"student_name" json:"student_name"`
	Branch        string          `db:"branch" json:"branch"`
	Gender        string          `db:"gender" json:"gender"`
	CompanyName   string          `db:"company_name" json:"company_name"`
	JobRole       string          `db:"job_role" json:"job_role"`
	SalaryOffered decimal.Decimal `db:"salary_offered" json:"salary_offered"`
	JoiningDate   *time.Time      `db:"joining_date" json:"joining_date,omitempty"`
}

// EligibleStudentRow is one line of the eligible-students report.
type EligibleStudentRow struct {
	StudentID  int64    `db:"student_id" json:"student_id"`
	RegNo      string   `db:"reg_no" json:"reg_no"`
	Name       string   `db:"name" json:"name"`
	Email      string   `db:"email" json:"email"`
	Branch     string   `db:"branch" json:"branch"`
	Gender     string   `db:"gender" json:"gender"`
	CurrentGPA *float64 `db:"current_gpa" json:"current_gpa"`
	Backlogs   int      `db:"backlogs" json:"backlogs"`
	Applied    bool     `db:"applied" json:"applied"`
}

// PlacementSummary aggregates placement totals.
type PlacementSummary struct {
	TotalCompanies   int              `db:"total_companies" json:"total_companies"`
	TotalJobs        int              `db:"total_jobs" json:"total_jobs"`
	TotalPlacements  int              `db:"total_placements" json:"total_placements"`
	PlacedStudents   int              `db:"placed_students" json:"placed_students"`
	HighestPackage   *decimal.Decimal `db:"highest_package" json:"highest_package"`
	AveragePackage   *decimal.Decimal `db:"average_package" json:"average_package"`
	TopCompany       *string          `db:"top_company" json:"top_company"`
	TopCompanyPlaced int              `db:"top_company_placed" json:"top_company_placed"`
}

// PlacementBreakdownRow groups placements by gender and company.
type PlacementBreakdownRow struct {
	Gender         string           `db:"gender" json:"gender"`
	CompanyID      int64            `db:"company_id" json:"company_id"`
	CompanyName    string           `db:"company_name" json:"company_name"`
	StudentsPlaced int              `db:"students_placed" json:"students_placed"`
	AverageSalary  *decimal.Decimal `db:"avg_salary" json:"avg_salary"`
}

// ReportFilter holds optional report predicates.
type ReportFilter struct {
	Year      *int
	Gender    string
	CompanyID *int64
}
