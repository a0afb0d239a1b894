package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Gender eligibility values. Students carry the lower-case male/female forms.
const (
	GenderAll    = "all"
	GenderMale   = "male"
	GenderFemale = "female"
)

// Job is a posting owned by a company.
type Job struct {
	ID                int64           `db:"id" json:"id"`
	CompanyID         int64           `db:"company_id" json:"company_id"`
	Role              string          `db:"role" json:"role"`
	Location          string          `db:"location" json:"location"`
	Package           decimal.Decimal `db:"package" json:"package"`
	Description       string          `db:"description" json:"description"`
	ServiceAgreement  string          `db:"service_agreement" json:"service_agreement"`
	RegistrationLink  string          `db:"registration_link" json:"registration_link,omitempty"`
	Files             string          `db:"files" json:"files,omitempty"`
	PostedDate        time.Time       `db:"posted_date" json:"posted_date"`
	InterviewDate     time.Time       `db:"interview_date" json:"interview_date"`
	LastDateToApply   time.Time       `db:"last_date_to_apply" json:"last_date_to_apply"`
	MinGPA            float64         `db:"min_gpa" json:"min_gpa"`
	MaxBacklogs       *int            `db:"max_backlogs" json:"max_backlogs"`
	GenderEligibility string          `db:"gender_eligibility" json:"gender_eligibility"`
	EligibleBranches  *string         `db:"eligible_branches" json:"eligible_branches,omitempty"`
	CreatedBy         string          `db:"created_by" json:"created_by"`
	AdminID           *int64          `db:"admin_id" json:"admin_id,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// JobDetail is a job joined with its company.
type JobDetail struct {
	Job
	CompanyName        string `db:"company_name" json:"company_name"`
	CompanyType        string `db:"company_type" json:"company_type"`
	CompanyWebsite     string `db:"company_website" json:"company_website"`
	CompanyDescription string `db:"company_description" json:"company_description"`
}

// JobFilter narrows job listings.
type JobFilter struct {
	AdminID  *int64
	OpenOn   *time.Time
	Page     int
	PageSize int
}

// EligibleJobFilter selects open jobs a student could apply to.
type EligibleJobFilter struct {
	StudentID int64
	Gender    string
	GPA       *float64
	Backlogs  int
	OpenOn    time.Time
	Page      int
	PageSize  int
}
