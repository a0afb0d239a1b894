package dto

import (
	"io"

	"github.com/shopspring/decimal"
)

// Attachment is a file uploaded next to a job payload. It is never decoded from JSON.
type Attachment struct {
	Name    string
	Content io.Reader
}

// CreateJobRequest is the POST /jobs payload. A company is created from the company fields unless CompanyID names an existing one.
type CreateJobRequest struct {
	CompanyID          *int64          `json:"company_id,omitempty" validate:"omitempty,gt=0"`
	CompanyName        string          `json:"company_name" validate:"required_without=CompanyID"`
	CompanyType        string          `json:"company_type"`
	CompanyWebsite     string          `json:"website" validate:"omitempty,url"`
	CompanyDescription string          `json:"company_description"`
	ContactPerson      string          `json:"contact_person"`
	Address            string          `json:"address"`
	Role               string          `json:"role" validate:"required"`
	Location           string          `json:"location" validate:"required"`
	Package            decimal.Decimal `json:"package"`
	Description        string          `json:"description"`
	ServiceAgreement   string          `json:"service_agreement"`
	RegistrationLink   string          `json:"registration_link" validate:"omitempty,url"`
	InterviewDate      string          `json:"interview_date" validate:"required,datetime=2006-01-02"`
	LastDateToApply    string          `json:"last_date_to_apply" validate:"required,datetime=2006-01-02"`
	MinGPA             float64         `json:"min_gpa" validate:"gte=0,lte=10"`
	MaxBacklogs        *int            `json:"max_backlogs" validate:"omitempty,gte=0"`
	GenderEligibility  string          `json:"gender_eligibility" validate:"omitempty,oneof=all male female"`
	EligibleBranches   *string         `json:"eligible_branches"`
	Attachment         *Attachment     `json:"-" validate:"-"`
}

// UpdateJobRequest is the PUT /jobs/:id payload. Nil fields are left unchanged, so a null max_backlogs
// does not lift the ceiling; ClearMaxBacklogs does.
type UpdateJobRequest struct {
	Role              *string          `json:"role" validate:"omitempty,min=1"`
	Location          *string          `json:"location" validate:"omitempty,min=1"`
	Package           *decimal.Decimal `json:"package"`
	Description       *string          `json:"description"`
	ServiceAgreement  *string          `json:"service_agreement"`
	RegistrationLink  *string          `json:"registration_link" validate:"omitempty,url"`
	InterviewDate     *string          `json:"interview_date" validate:"omitempty,datetime=2006-01-02"`
	LastDateToApply   *string          `json:"last_date_to_apply" validate:"omitempty,datetime=2006-01-02"`
	MinGPA            *float64         `json:"min_gpa" validate:"omitempty,gte=0,lte=10"`
	MaxBacklogs       *int             `json:"max_backlogs" validate:"omitempty,gte=0"`
	GenderEligibility *string          `json:"gender_eligibility" validate:"omitempty,oneof=all male female"`
	EligibleBranches  *string          `json:"eligible_branches"`
	ClearMaxBacklogs  bool             `json:"clear_max_backlogs"`
	Attachment        *Attachment      `json:"-" validate:"-"`
}

// EligibilityResponse answers GET /jobs/:id/eligibility.
type EligibilityResponse struct {
	JobID          int64    `json:"job_id"`
	Eligible       bool     `json:"eligible"`
	AlreadyApplied bool     `json:"already_applied"`
	FailedRules    []string `json:"failed_rules,omitempty"`
}

// JobCreatedResponse is returned by POST /jobs.
type JobCreatedResponse struct {
	JobID     int64 `json:"job_id"`
	CompanyID int64 `json:"company_id"`
}
