package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlacementStatus is the student's answer to an offer.
type PlacementStatus string

const (
	PlacementPending  PlacementStatus = "pending"
	PlacementAccepted PlacementStatus = "Yes"
	PlacementDeclined PlacementStatus = "No"
)

// Valid reports whether s is a known status.
func (s PlacementStatus) Valid() bool {
	switch s {
	case PlacementPending, PlacementAccepted, PlacementDeclined:
		return true
	}
	return false
}

// Placement records an offer made to a student.
type Placement struct {
	ID             int64           `db:"id" json:"id"`
	StudentID      int64           `db:"student_id" json:"student_id"`
	CompanyID      int64           `db:"company_id" json:"company_id"`
	JobID          int64           `db:"job_id" json:"job_id"`
	SalaryOffered  decimal.Decimal `db:"salary_offered" json:"salary_offered"`
	InterviewDate  *time.Time      `db:"interview_date" json:"interview_date,omitempty"`
	JoiningDate    *time.Time      `db:"joining_date" json:"joining_date,omitempty"`
	OfferLetterURL string          `db:"offer_letter_url" json:"offer_letter_url,omitempty"`
	Status         PlacementStatus `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// PlacementDetail joins a placement with student, company and job labels.
type PlacementDetail struct {
	Placement
	RegNo       string `db:"reg_no" json:"reg_no"`
	StudentName string `db:"student_name" json:"student_name"`
	CompanyName string `db:"company_name" json:"company_name"`
	JobRole     string `db:"job_role" json:"job_role"`
}

// PlacementFilter narrows placement listings.
type PlacementFilter struct {
	StudentID *int64
	CompanyID *int64
	Page      int
	PageSize  int
}

// PlacementRefs reports which referenced rows exist for a placement write.
type PlacementRefs struct {
	StudentExists bool `db:"student_exists"`
	CompanyExists bool `db:"company_exists"`
	JobExists     bool `db:"job_exists"`
}
